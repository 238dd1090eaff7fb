package ratings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pagelift/backend/internal/contracts"
	"github.com/pagelift/backend/pkg/logger"
)

// Repository implements contracts.RatingStore on PostgreSQL.
//
// Schema: section_ratings keyed by (page_id, section_type);
// section_recommendations as an append-only log with an is_current pointer;
// deployments append-only.
type Repository struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

// NewRepository creates a new rating store
func NewRepository(pool *pgxpool.Pool, log *logger.Logger) *Repository {
	return &Repository{pool: pool, logger: log}
}

// SaveAnalysis atomically replaces the page's current ratings and
// recommendation sets in one transaction
func (r *Repository) SaveAnalysis(ctx context.Context, pageID, analysisID string, ratings map[contracts.SectionType]int, sets []*contracts.RecommendationSet) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin analysis tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := upsertRatings(ctx, tx, pageID, analysisID, ratings); err != nil {
		return err
	}
	if err := replaceRecommendations(ctx, tx, pageID, analysisID, sets); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// SaveSectionRatings atomically replaces all current rating rows for the page
// with exactly one row per section type; unspecified sections default to 0
func (r *Repository) SaveSectionRatings(ctx context.Context, pageID, analysisID string, ratings map[contracts.SectionType]int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin ratings tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := upsertRatings(ctx, tx, pageID, analysisID, ratings); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// SaveSectionRecommendations atomically replaces the page's current
// recommendation sets; superseded rows are kept for history
func (r *Repository) SaveSectionRecommendations(ctx context.Context, pageID, analysisID string, sets []*contracts.RecommendationSet) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin recommendations tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := replaceRecommendations(ctx, tx, pageID, analysisID, sets); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// upsertRatings writes one rating row per section type inside tx. The upsert
// deliberately leaves previous_score, improvement_count and last_improved_at
// untouched: re-analysis replaces the recommendation set, not the deployment
// history of the row.
func upsertRatings(ctx context.Context, tx pgx.Tx, pageID, analysisID string, ratings map[contracts.SectionType]int) error {
	query := `
		INSERT INTO section_ratings (page_id, section_type, current_score, max_score, analysis_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (page_id, section_type) DO UPDATE SET
			current_score = EXCLUDED.current_score,
			analysis_id = EXCLUDED.analysis_id,
			updated_at = EXCLUDED.updated_at
	`

	now := time.Now()
	for _, section := range contracts.AllSectionTypes() {
		score := contracts.ClampScore(ratings[section])
		if _, err := tx.Exec(ctx, query, pageID, section, score, contracts.MaxSectionScore, analysisID, now); err != nil {
			return fmt.Errorf("upsert rating %s/%s: %w", pageID, section, err)
		}
	}
	return nil
}

// replaceRecommendations retires the page's current recommendation rows and
// inserts the new sets inside tx
func replaceRecommendations(ctx context.Context, tx pgx.Tx, pageID, analysisID string, sets []*contracts.RecommendationSet) error {
	if _, err := tx.Exec(ctx,
		`UPDATE section_recommendations SET is_current = false WHERE page_id = $1 AND is_current`,
		pageID,
	); err != nil {
		return fmt.Errorf("retire recommendations for %s: %w", pageID, err)
	}

	query := `
		INSERT INTO section_recommendations
			(page_id, section_type, analysis_id, position, priority, category,
			 title, description, text, expected_impact, implementation, is_current, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, true, $12)
	`

	now := time.Now()
	for _, set := range sets {
		for i, rec := range set.Recommendations {
			if _, err := tx.Exec(ctx, query,
				pageID, set.SectionType, analysisID, i,
				rec.Priority, rec.Category, rec.Title, rec.Description, rec.Text,
				rec.ExpectedImpact, rec.Implementation, now,
			); err != nil {
				return fmt.Errorf("insert recommendation %s/%s: %w", pageID, set.SectionType, err)
			}
		}
	}
	return nil
}

// GetCurrentSectionRatings returns all seven section scores for the page,
// missing sections defaulted to 0. Returns nil if the page has never been
// analyzed.
func (r *Repository) GetCurrentSectionRatings(ctx context.Context, pageID string) (map[contracts.SectionType]int, error) {
	query := `
		SELECT section_type, current_score
		FROM section_ratings
		WHERE page_id = $1
	`

	rows, err := r.pool.Query(ctx, query, pageID)
	if err != nil {
		return nil, fmt.Errorf("query ratings for %s: %w", pageID, err)
	}
	defer rows.Close()

	found := make(map[contracts.SectionType]int)
	for rows.Next() {
		var section contracts.SectionType
		var score int
		if err := rows.Scan(&section, &score); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		found[section] = score
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read ratings for %s: %w", pageID, err)
	}

	// No rows at all means the page was never analyzed, which is a normal
	// "no data yet" result rather than an error.
	if len(found) == 0 {
		return nil, nil
	}

	return FillMissingSections(found), nil
}

// FillMissingSections returns a map with all seven section keys, defaulting
// any missing section to 0
func FillMissingSections(found map[contracts.SectionType]int) map[contracts.SectionType]int {
	full := make(map[contracts.SectionType]int, contracts.SectionCount)
	for _, section := range contracts.AllSectionTypes() {
		full[section] = found[section]
	}
	return full
}

// GetSectionRatingRows returns the full current rating rows for the page
func (r *Repository) GetSectionRatingRows(ctx context.Context, pageID string) ([]*contracts.SectionRating, error) {
	query := `
		SELECT page_id, section_type, current_score, max_score, previous_score,
			improvement_count, last_improved_at, analysis_id, updated_at
		FROM section_ratings
		WHERE page_id = $1
		ORDER BY section_type
	`

	rows, err := r.pool.Query(ctx, query, pageID)
	if err != nil {
		return nil, fmt.Errorf("query rating rows for %s: %w", pageID, err)
	}
	defer rows.Close()

	var ratings []*contracts.SectionRating
	for rows.Next() {
		var sr contracts.SectionRating
		if err := rows.Scan(
			&sr.PageID, &sr.SectionType, &sr.CurrentScore, &sr.MaxScore,
			&sr.PreviousScore, &sr.ImprovementCount, &sr.LastImprovedAt,
			&sr.AnalysisID, &sr.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan rating row: %w", err)
		}
		ratings = append(ratings, &sr)
	}
	return ratings, rows.Err()
}

// GetSectionRecommendations returns the flattened recommendation texts for
// the section across the page's whole history. Best-effort: store errors are
// logged and degrade to an empty list.
func (r *Repository) GetSectionRecommendations(ctx context.Context, pageID string, section contracts.SectionType) []string {
	query := `
		SELECT title, description, text, category, expected_impact
		FROM section_recommendations
		WHERE page_id = $1 AND section_type = $2
		ORDER BY created_at ASC, position ASC
	`

	rows, err := r.pool.Query(ctx, query, pageID, section)
	if err != nil {
		r.logger.WithError(err).WithFields(map[string]interface{}{
			"page_id": pageID,
			"section": section,
		}).Warn("Failed to load section recommendations")
		return []string{}
	}
	defer rows.Close()

	var items []flatItem
	for rows.Next() {
		var it flatItem
		if err := rows.Scan(&it.Title, &it.Description, &it.Text, &it.Category, &it.ExpectedImpact); err != nil {
			r.logger.WithError(err).Warn("Failed to scan recommendation row")
			return []string{}
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		r.logger.WithError(err).Warn("Failed to read recommendation rows")
		return []string{}
	}

	return Flatten(items)
}

// RecordDeployment appends an immutable deployment record and moves the
// section's rating forward. The rating row is locked for the duration of the
// transaction, so two deployments to the same section never interleave while
// deployments to different sections proceed in parallel.
func (r *Repository) RecordDeployment(ctx context.Context, d *contracts.DeploymentRecord) (*contracts.DeploymentRecord, error) {
	if !d.SectionType.Valid() {
		return nil, fmt.Errorf("unknown section type %q", d.SectionType)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin deployment tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the rating row. FOR UPDATE serializes concurrent deployments per
	// (page_id, section_type).
	var currentScore int
	hasRating := true
	err = tx.QueryRow(ctx,
		`SELECT current_score FROM section_ratings WHERE page_id = $1 AND section_type = $2 FOR UPDATE`,
		d.PageID, d.SectionType,
	).Scan(&currentScore)
	if errors.Is(err, pgx.ErrNoRows) {
		hasRating = false
	} else if err != nil {
		return nil, fmt.Errorf("lock rating %s/%s: %w", d.PageID, d.SectionType, err)
	}

	now := time.Now()
	record := *d
	record.NewScore = contracts.ClampScore(d.NewScore)
	record.ScoreImprovement = record.NewScore - record.PreviousScore
	record.DeployedAt = now

	err = tx.QueryRow(ctx, `
		INSERT INTO deployments
			(page_id, section_type, previous_score, new_score, score_improvement,
			 content_ref, model, actor, deployed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`,
		record.PageID, record.SectionType, record.PreviousScore, record.NewScore,
		record.ScoreImprovement, record.ContentRef, record.Model, record.Actor, now,
	).Scan(&record.ID)
	if err != nil {
		return nil, fmt.Errorf("insert deployment %s/%s: %w", d.PageID, d.SectionType, err)
	}

	if hasRating {
		_, err = tx.Exec(ctx, `
			UPDATE section_ratings SET
				previous_score = current_score,
				current_score = $3,
				improvement_count = improvement_count + 1,
				last_improved_at = $4,
				updated_at = $4
			WHERE page_id = $1 AND section_type = $2
		`, record.PageID, record.SectionType, record.NewScore, now)
	} else {
		// Deployment to a section that was never rated: create the row.
		_, err = tx.Exec(ctx, `
			INSERT INTO section_ratings
				(page_id, section_type, current_score, max_score, previous_score,
				 improvement_count, last_improved_at, analysis_id, updated_at)
			VALUES ($1, $2, $3, $4, $5, 1, $6, '', $6)
		`, record.PageID, record.SectionType, record.NewScore, contracts.MaxSectionScore, record.PreviousScore, now)
	}
	if err != nil {
		return nil, fmt.Errorf("advance rating %s/%s: %w", d.PageID, d.SectionType, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit deployment %s/%s: %w", d.PageID, d.SectionType, err)
	}

	return &record, nil
}

// GetDeployments returns the page's deployment history, newest first
func (r *Repository) GetDeployments(ctx context.Context, pageID string) ([]*contracts.DeploymentRecord, error) {
	query := `
		SELECT id, page_id, section_type, previous_score, new_score,
			score_improvement, content_ref, model, actor, deployed_at
		FROM deployments
		WHERE page_id = $1
		ORDER BY deployed_at DESC
	`

	rows, err := r.pool.Query(ctx, query, pageID)
	if err != nil {
		return nil, fmt.Errorf("query deployments for %s: %w", pageID, err)
	}
	defer rows.Close()

	var records []*contracts.DeploymentRecord
	for rows.Next() {
		var d contracts.DeploymentRecord
		if err := rows.Scan(
			&d.ID, &d.PageID, &d.SectionType, &d.PreviousScore, &d.NewScore,
			&d.ScoreImprovement, &d.ContentRef, &d.Model, &d.Actor, &d.DeployedAt,
		); err != nil {
			return nil, fmt.Errorf("scan deployment: %w", err)
		}
		records = append(records, &d)
	}
	return records, rows.Err()
}
