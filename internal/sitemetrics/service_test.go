package sitemetrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagelift/backend/internal/contracts"
	"github.com/pagelift/backend/pkg/logger"
	"github.com/pagelift/backend/pkg/redis"
)

func intPtr(v int) *int { return &v }

type fakePageRepo struct {
	contracts.PageRepository
	summaries map[string][]contracts.PageScoreSummary
	pageIDs   map[string][]string
	siteIDs   []string
	err       error
}

func (f *fakePageRepo) ListPageScoreSummaries(_ context.Context, siteID string) ([]contracts.PageScoreSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.summaries[siteID], nil
}

func (f *fakePageRepo) ListPageIDs(_ context.Context, siteID string) ([]string, error) {
	return f.pageIDs[siteID], nil
}

func (f *fakePageRepo) ListSiteIDs(_ context.Context) ([]string, error) {
	return f.siteIDs, nil
}

type memMetricsStore struct {
	snapshots map[string]*contracts.SiteMetrics
	saveErr   error
}

func (m *memMetricsStore) Get(_ context.Context, siteID string) (*contracts.SiteMetrics, error) {
	return m.snapshots[siteID], nil
}

func (m *memMetricsStore) Save(_ context.Context, metrics *contracts.SiteMetrics) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.snapshots == nil {
		m.snapshots = make(map[string]*contracts.SiteMetrics)
	}
	m.snapshots[metrics.SiteID] = metrics
	return nil
}

type fakeUpdater struct {
	updated []string
	failOn  map[string]bool
}

func (f *fakeUpdater) UpdatePageScore(_ context.Context, pageID string) (*int, error) {
	if f.failOn[pageID] {
		return nil, errors.New("page broken")
	}
	f.updated = append(f.updated, pageID)
	return intPtr(50), nil
}

func newTestService(pages *fakePageRepo, store *memMetricsStore, updater *fakeUpdater) *Service {
	cache := redis.NewCache(redis.Disabled(), "test")
	return NewService(pages, store, updater, cache, time.Minute, logger.NewNop())
}

func TestEffectiveScore_Precedence(t *testing.T) {
	score, source, ok := EffectiveScore(contracts.PageScoreSummary{PageScore: intPtr(80), LegacyScore: intPtr(40)})
	assert.True(t, ok)
	assert.Equal(t, 80, score)
	assert.Equal(t, SourcePageScore, source)

	score, source, ok = EffectiveScore(contracts.PageScoreSummary{LegacyScore: intPtr(40)})
	assert.True(t, ok)
	assert.Equal(t, 40, score)
	assert.Equal(t, SourceLegacy, source)

	_, source, ok = EffectiveScore(contracts.PageScoreSummary{})
	assert.False(t, ok)
	assert.Equal(t, SourceNone, source)

	// zero is a present score, distinguishable from absent
	score, _, ok = EffectiveScore(contracts.PageScoreSummary{PageScore: intPtr(0)})
	assert.True(t, ok)
	assert.Equal(t, 0, score)
}

func TestCompute_MixedScores(t *testing.T) {
	// effective scores [80, absent, 60]
	summaries := []contracts.PageScoreSummary{
		{PageID: "p1", PageScore: intPtr(80)},
		{PageID: "p2"},
		{PageID: "p3", LegacyScore: intPtr(60)},
	}

	m := Compute("site-1", summaries)
	assert.Equal(t, 3, m.TotalPages)
	assert.Equal(t, 2, m.PagesWithScores)
	assert.Equal(t, 70, m.AverageScore)
}

func TestCompute_ZeroScoresExcludedFromAverage(t *testing.T) {
	summaries := []contracts.PageScoreSummary{
		{PageID: "p1", PageScore: intPtr(0)},
		{PageID: "p2", PageScore: intPtr(90)},
	}

	m := Compute("site-1", summaries)
	assert.Equal(t, 2, m.TotalPages)
	assert.Equal(t, 1, m.PagesWithScores)
	assert.Equal(t, 90, m.AverageScore)
}

func TestCompute_NoScoredPages(t *testing.T) {
	m := Compute("site-1", []contracts.PageScoreSummary{{PageID: "p1"}, {PageID: "p2"}})
	assert.Equal(t, 2, m.TotalPages)
	assert.Equal(t, 0, m.PagesWithScores)
	assert.Equal(t, 0, m.AverageScore)

	empty := Compute("site-1", nil)
	assert.Equal(t, 0, empty.TotalPages)
	assert.Equal(t, 0, empty.AverageScore)
}

func TestCompute_AverageRounds(t *testing.T) {
	summaries := []contracts.PageScoreSummary{
		{PageID: "p1", PageScore: intPtr(91)},
		{PageID: "p2", PageScore: intPtr(90)},
	}

	// (91+90)/2 = 90.5 -> 91
	m := Compute("site-1", summaries)
	assert.Equal(t, 91, m.AverageScore)
}

func TestUpdateSiteMetrics_Idempotent(t *testing.T) {
	pages := &fakePageRepo{summaries: map[string][]contracts.PageScoreSummary{
		"site-1": {
			{PageID: "p1", PageScore: intPtr(80)},
			{PageID: "p2"},
			{PageID: "p3", LegacyScore: intPtr(60)},
		},
	}}
	store := &memMetricsStore{}
	svc := newTestService(pages, store, &fakeUpdater{})

	first, err := svc.UpdateSiteMetrics(context.Background(), "site-1")
	require.NoError(t, err)

	second, err := svc.UpdateSiteMetrics(context.Background(), "site-1")
	require.NoError(t, err)

	assert.Equal(t, first.AverageScore, second.AverageScore)
	assert.Equal(t, first.TotalPages, second.TotalPages)
	assert.Equal(t, first.PagesWithScores, second.PagesWithScores)
}

func TestGetSiteMetrics_ComputesThroughWhenAbsent(t *testing.T) {
	pages := &fakePageRepo{summaries: map[string][]contracts.PageScoreSummary{
		"site-1": {{PageID: "p1", PageScore: intPtr(72)}},
	}}
	store := &memMetricsStore{}
	svc := newTestService(pages, store, &fakeUpdater{})

	m, err := svc.GetSiteMetrics(context.Background(), "site-1")
	require.NoError(t, err)
	assert.Equal(t, 72, m.AverageScore)
	assert.NotNil(t, store.snapshots["site-1"], "compute-through must persist the snapshot")
}

func TestGetSiteMetrics_ReturnsStoredSnapshot(t *testing.T) {
	stored := &contracts.SiteMetrics{SiteID: "site-1", AverageScore: 55, TotalPages: 4, PagesWithScores: 3}
	store := &memMetricsStore{snapshots: map[string]*contracts.SiteMetrics{"site-1": stored}}
	// Empty page repo: if the service recomputed, the average would be 0.
	svc := newTestService(&fakePageRepo{}, store, &fakeUpdater{})

	m, err := svc.GetSiteMetrics(context.Background(), "site-1")
	require.NoError(t, err)
	assert.Equal(t, 55, m.AverageScore)
}

func TestUpdateAllPagesInSite_BestEffort(t *testing.T) {
	pages := &fakePageRepo{
		pageIDs:   map[string][]string{"site-1": {"p1", "p2", "p3"}},
		summaries: map[string][]contracts.PageScoreSummary{"site-1": {{PageID: "p1", PageScore: intPtr(50)}}},
	}
	store := &memMetricsStore{}
	updater := &fakeUpdater{failOn: map[string]bool{"p2": true}}
	svc := newTestService(pages, store, updater)

	result, err := svc.UpdateAllPagesInSite(context.Background(), "site-1")
	require.NoError(t, err, "a failing page must not abort the batch")
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, 1, result.PagesFailed)
	assert.Equal(t, []string{"p1", "p3"}, updater.updated)
	assert.NotNil(t, store.snapshots["site-1"], "metrics still recomputed after partial failure")
}

func TestUpdateAllScores_IteratesSites(t *testing.T) {
	pages := &fakePageRepo{
		siteIDs: []string{"site-1", "site-2"},
		pageIDs: map[string][]string{
			"site-1": {"p1"},
			"site-2": {"p2", "p3"},
		},
		summaries: map[string][]contracts.PageScoreSummary{},
	}
	store := &memMetricsStore{}
	updater := &fakeUpdater{}
	svc := newTestService(pages, store, updater)

	result, err := svc.UpdateAllScores(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Sites)
	assert.Equal(t, 3, result.Pages)
	assert.Equal(t, 0, result.PagesFailed)
}
