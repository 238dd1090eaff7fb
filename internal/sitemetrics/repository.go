package sitemetrics

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pagelift/backend/internal/contracts"
)

// Store implements contracts.SiteMetricsStore on PostgreSQL
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new site metrics store
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Get returns the cached snapshot, or nil if none has been computed
func (s *Store) Get(ctx context.Context, siteID string) (*contracts.SiteMetrics, error) {
	var m contracts.SiteMetrics
	err := s.pool.QueryRow(ctx, `
		SELECT site_id, average_score, total_pages, pages_with_scores, last_metrics_update
		FROM site_metrics
		WHERE site_id = $1
	`, siteID).Scan(&m.SiteID, &m.AverageScore, &m.TotalPages, &m.PagesWithScores, &m.LastMetricsUpdate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get site metrics %s: %w", siteID, err)
	}
	return &m, nil
}

// Save upserts the snapshot
func (s *Store) Save(ctx context.Context, m *contracts.SiteMetrics) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO site_metrics (site_id, average_score, total_pages, pages_with_scores, last_metrics_update)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (site_id) DO UPDATE SET
			average_score = EXCLUDED.average_score,
			total_pages = EXCLUDED.total_pages,
			pages_with_scores = EXCLUDED.pages_with_scores,
			last_metrics_update = EXCLUDED.last_metrics_update
	`, m.SiteID, m.AverageScore, m.TotalPages, m.PagesWithScores, m.LastMetricsUpdate)
	if err != nil {
		return fmt.Errorf("save site metrics %s: %w", m.SiteID, err)
	}
	return nil
}
