package pages

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pagelift/backend/internal/contracts"
)

// Repository implements contracts.PageRepository on PostgreSQL
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new page repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetSiteID returns the owning site of a page
func (r *Repository) GetSiteID(ctx context.Context, pageID string) (string, error) {
	var siteID string
	err := r.pool.QueryRow(ctx,
		`SELECT site_id FROM pages WHERE id = $1`,
		pageID,
	).Scan(&siteID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("page %s not found", pageID)
	}
	if err != nil {
		return "", fmt.Errorf("resolve site for page %s: %w", pageID, err)
	}
	return siteID, nil
}

// ListPageScoreSummaries returns score-bearing fields for every page of the
// site, scored or not. The cached page score joins in from page_scores; the
// legacy score lives on the pages row itself.
func (r *Repository) ListPageScoreSummaries(ctx context.Context, siteID string) ([]contracts.PageScoreSummary, error) {
	query := `
		SELECT p.id, ps.page_score, p.legacy_score
		FROM pages p
		LEFT JOIN page_scores ps ON ps.page_id = p.id
		WHERE p.site_id = $1
		ORDER BY p.id
	`

	rows, err := r.pool.Query(ctx, query, siteID)
	if err != nil {
		return nil, fmt.Errorf("query page summaries for site %s: %w", siteID, err)
	}
	defer rows.Close()

	var summaries []contracts.PageScoreSummary
	for rows.Next() {
		var s contracts.PageScoreSummary
		if err := rows.Scan(&s.PageID, &s.PageScore, &s.LegacyScore); err != nil {
			return nil, fmt.Errorf("scan page summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// ListPageIDs returns every page id of the site
func (r *Repository) ListPageIDs(ctx context.Context, siteID string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM pages WHERE site_id = $1 ORDER BY id`,
		siteID,
	)
	if err != nil {
		return nil, fmt.Errorf("query pages for site %s: %w", siteID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan page id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListSiteIDs returns every known site id
func (r *Repository) ListSiteIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM sites ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query sites: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan site id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ScoreStore implements contracts.PageScoreStore on PostgreSQL
type ScoreStore struct {
	pool *pgxpool.Pool
}

// NewScoreStore creates a new page score store
func NewScoreStore(pool *pgxpool.Pool) *ScoreStore {
	return &ScoreStore{pool: pool}
}

// Get returns the cached page score, or nil if none has been computed
func (s *ScoreStore) Get(ctx context.Context, pageID string) (*contracts.PageScore, error) {
	var ps contracts.PageScore
	err := s.pool.QueryRow(ctx,
		`SELECT page_id, page_score, last_score_update FROM page_scores WHERE page_id = $1`,
		pageID,
	).Scan(&ps.PageID, &ps.Score, &ps.LastScoreUpdate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get page score %s: %w", pageID, err)
	}
	return &ps, nil
}

// Save upserts the cached page score with a fresh timestamp
func (s *ScoreStore) Save(ctx context.Context, pageID string, score int) (*contracts.PageScore, error) {
	now := time.Now()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO page_scores (page_id, page_score, last_score_update)
		VALUES ($1, $2, $3)
		ON CONFLICT (page_id) DO UPDATE SET
			page_score = EXCLUDED.page_score,
			last_score_update = EXCLUDED.last_score_update
	`, pageID, score, now)
	if err != nil {
		return nil, fmt.Errorf("save page score %s: %w", pageID, err)
	}

	return &contracts.PageScore{PageID: pageID, Score: score, LastScoreUpdate: now}, nil
}
