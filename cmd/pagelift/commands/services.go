package commands

import (
	"fmt"

	"github.com/pagelift/backend/internal/analysis"
	"github.com/pagelift/backend/internal/pages"
	"github.com/pagelift/backend/internal/ratings"
	"github.com/pagelift/backend/internal/scoring"
	"github.com/pagelift/backend/internal/sitemetrics"
	"github.com/pagelift/backend/pkg/config"
	"github.com/pagelift/backend/pkg/database"
	"github.com/pagelift/backend/pkg/logger"
	"github.com/pagelift/backend/pkg/redis"
)

// services bundles the wired scoring pipeline shared by the CLI commands
type services struct {
	cfg *config.Config
	log *logger.Logger
	db  *database.DB
	rdb *redis.Client

	store    *ratings.Repository
	pageRepo *pages.Repository
	scores   *scoring.Service
	metrics  *sitemetrics.Service
	analysis *analysis.Service
}

// buildServices loads config and wires the full pipeline:
// allocator -> rating store -> page score aggregator -> site metrics propagator
func buildServices() (*services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	rdb, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	store := ratings.NewRepository(db.Pool, log)
	pageRepo := pages.NewRepository(db.Pool)
	scoreStore := pages.NewScoreStore(db.Pool)
	metricsStore := sitemetrics.NewStore(db.Pool)
	metricsCache := redis.NewCache(rdb, "pagelift")

	scoreSvc := scoring.NewService(store, pageRepo, scoreStore, log)
	metricsSvc := sitemetrics.NewService(pageRepo, metricsStore, scoreSvc, metricsCache, cfg.Scoring.MetricsTTL, log)
	scoreSvc.SetPropagator(metricsSvc)

	analysisSvc := analysis.NewService(store, scoreSvc, log)

	return &services{
		cfg:      cfg,
		log:      log,
		db:       db,
		rdb:      rdb,
		store:    store,
		pageRepo: pageRepo,
		scores:   scoreSvc,
		metrics:  metricsSvc,
		analysis: analysisSvc,
	}, nil
}

// Close releases the database and cache connections
func (s *services) Close() {
	if s.rdb != nil {
		s.rdb.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
}
