package jobs

import (
	"context"

	"github.com/pagelift/backend/internal/sitemetrics"
	"github.com/pagelift/backend/pkg/logger"
)

// RecomputeJob rebuilds every page score and site snapshot. The caches are
// derived data, so the job is safe to re-run at any time.
type RecomputeJob struct {
	metrics  *sitemetrics.Service
	schedule string
	logger   *logger.Logger
}

// NewRecomputeJob creates the nightly full-recompute job
func NewRecomputeJob(metrics *sitemetrics.Service, schedule string, log *logger.Logger) *RecomputeJob {
	return &RecomputeJob{
		metrics:  metrics,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *RecomputeJob) Name() string {
	return "score-recompute"
}

// Schedule returns the cron schedule expression
func (j *RecomputeJob) Schedule() string {
	return j.schedule
}

// Run recomputes all scores, tolerating individual page failures
func (j *RecomputeJob) Run(ctx context.Context) error {
	result, err := j.metrics.UpdateAllScores(ctx)
	if err != nil {
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"sites":        result.Sites,
		"pages":        result.Pages,
		"pages_failed": result.PagesFailed,
		"sites_failed": result.SitesFailed,
	}).Info("Score recompute finished")

	return nil
}
