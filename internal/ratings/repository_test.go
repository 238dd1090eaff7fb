package ratings

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagelift/backend/internal/contracts"
	"github.com/pagelift/backend/pkg/logger"
)

// setupRepo connects to the test database and seeds a site with one page.
// Requires the migrations to have been applied.
func setupRepo(t *testing.T) (*Repository, *pgxpool.Pool, string) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}
	connString := os.Getenv("DATABASE_URL")
	if connString == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	pool, err := pgxpool.New(context.Background(), connString)
	require.NoError(t, err, "database connection failed")
	t.Cleanup(pool.Close)

	ctx := context.Background()
	siteID := fmt.Sprintf("test-site-%d", time.Now().UnixNano())
	pageID := siteID + "-page"

	_, err = pool.Exec(ctx, `INSERT INTO sites (id) VALUES ($1)`, siteID)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO pages (id, site_id, url) VALUES ($1, $2, 'https://example.com/')`, pageID, siteID)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Exec(ctx, `DELETE FROM sites WHERE id = $1`, siteID)
	})

	return NewRepository(pool, logger.NewNop()), pool, pageID
}

func TestRepository_SaveAndGetRatings(t *testing.T) {
	repo, _, pageID := setupRepo(t)
	ctx := context.Background()

	// Before any analysis: absent, not an error.
	got, err := repo.GetCurrentSectionRatings(ctx, pageID)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Save a partial rating map.
	err = repo.SaveSectionRatings(ctx, pageID, "run-1", map[contracts.SectionType]int{
		contracts.SectionTitle:    8,
		contracts.SectionContent:  6,
		contracts.SectionHeadings: 10,
		contracts.SectionLinks:    4,
	})
	require.NoError(t, err)

	// All seven keys come back, missing sections defaulted to 0.
	got, err = repo.GetCurrentSectionRatings(ctx, pageID)
	require.NoError(t, err)
	require.Len(t, got, contracts.SectionCount)
	assert.Equal(t, 8, got[contracts.SectionTitle])
	assert.Equal(t, 0, got[contracts.SectionDescription])
	assert.Equal(t, 0, got[contracts.SectionSchema])
	assert.Equal(t, 0, got[contracts.SectionImages])
}

func TestRepository_ReAnalysisPreservesHistoryFields(t *testing.T) {
	repo, _, pageID := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveSectionRatings(ctx, pageID, "run-1", map[contracts.SectionType]int{
		contracts.SectionTitle: 4,
	}))

	// Deploy to title: 4 -> 7.
	_, err := repo.RecordDeployment(ctx, &contracts.DeploymentRecord{
		PageID:        pageID,
		SectionType:   contracts.SectionTitle,
		PreviousScore: 4,
		NewScore:      7,
		ContentRef:    "deploy/1",
		Model:         "rewriter-2",
		Actor:         "tester",
	})
	require.NoError(t, err)

	// Re-analysis updates the score, not the deployment history.
	require.NoError(t, repo.SaveSectionRatings(ctx, pageID, "run-2", map[contracts.SectionType]int{
		contracts.SectionTitle: 9,
	}))

	rows, err := repo.GetSectionRatingRows(ctx, pageID)
	require.NoError(t, err)

	var title *contracts.SectionRating
	for _, row := range rows {
		if row.SectionType == contracts.SectionTitle {
			title = row
		}
	}
	require.NotNil(t, title)
	assert.Equal(t, 9, title.CurrentScore)
	assert.Equal(t, 1, title.ImprovementCount)
	require.NotNil(t, title.PreviousScore)
	assert.Equal(t, 4, *title.PreviousScore)
	assert.NotNil(t, title.LastImprovedAt)
	assert.Equal(t, "run-2", title.AnalysisID)
}

func TestRepository_RecordDeploymentBookkeeping(t *testing.T) {
	repo, _, pageID := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveSectionRatings(ctx, pageID, "run-1", map[contracts.SectionType]int{
		contracts.SectionTitle: 4,
	}))

	record, err := repo.RecordDeployment(ctx, &contracts.DeploymentRecord{
		PageID:        pageID,
		SectionType:   contracts.SectionTitle,
		PreviousScore: 4,
		NewScore:      7,
		ContentRef:    "deploy/1",
		Model:         "rewriter-2",
		Actor:         "tester",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, record.ScoreImprovement)
	assert.NotZero(t, record.ID)

	rows, err := repo.GetSectionRatingRows(ctx, pageID)
	require.NoError(t, err)
	for _, row := range rows {
		if row.SectionType != contracts.SectionTitle {
			continue
		}
		assert.Equal(t, 7, row.CurrentScore)
		require.NotNil(t, row.PreviousScore)
		assert.Equal(t, 4, *row.PreviousScore)
		assert.Equal(t, 1, row.ImprovementCount)
	}

	history, err := repo.GetDeployments(ctx, pageID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "deploy/1", history[0].ContentRef)
}

func TestRepository_RecommendationHistorySurvivesReplacement(t *testing.T) {
	repo, _, pageID := setupRepo(t)
	ctx := context.Background()

	set1 := &contracts.RecommendationSet{
		PageID:      pageID,
		SectionType: contracts.SectionTitle,
		AnalysisID:  "run-1",
		Recommendations: []contracts.RecommendationItem{
			{Priority: contracts.PriorityHigh, Title: "Shorten the title", ExpectedImpact: 3},
		},
	}
	require.NoError(t, repo.SaveSectionRecommendations(ctx, pageID, "run-1", []*contracts.RecommendationSet{set1}))

	set2 := &contracts.RecommendationSet{
		PageID:      pageID,
		SectionType: contracts.SectionTitle,
		AnalysisID:  "run-2",
		Recommendations: []contracts.RecommendationItem{
			{Priority: contracts.PriorityMedium, Title: "Add the brand name", ExpectedImpact: 2},
		},
	}
	require.NoError(t, repo.SaveSectionRecommendations(ctx, pageID, "run-2", []*contracts.RecommendationSet{set2}))

	// Both runs' texts aggregate, in chronological order.
	texts := repo.GetSectionRecommendations(ctx, pageID, contracts.SectionTitle)
	assert.Equal(t, []string{"Shorten the title", "Add the brand name"}, texts)
}

func TestRepository_SaveAnalysisIsAtomic(t *testing.T) {
	repo, _, pageID := setupRepo(t)
	ctx := context.Background()

	set := &contracts.RecommendationSet{
		PageID:      pageID,
		SectionType: contracts.SectionContent,
		AnalysisID:  "run-1",
		Recommendations: []contracts.RecommendationItem{
			{Priority: contracts.PriorityHigh, Title: "Expand thin copy", ExpectedImpact: 4},
		},
	}

	err := repo.SaveAnalysis(ctx, pageID, "run-1",
		map[contracts.SectionType]int{contracts.SectionContent: 6}, []*contracts.RecommendationSet{set})
	require.NoError(t, err)

	ratings, err := repo.GetCurrentSectionRatings(ctx, pageID)
	require.NoError(t, err)
	assert.Equal(t, 6, ratings[contracts.SectionContent])

	texts := repo.GetSectionRecommendations(ctx, pageID, contracts.SectionContent)
	assert.Equal(t, []string{"Expand thin copy"}, texts)
}
