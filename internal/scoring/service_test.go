package scoring

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagelift/backend/internal/contracts"
	"github.com/pagelift/backend/pkg/logger"
)

// fakeRatingStore serves canned current ratings per page
type fakeRatingStore struct {
	contracts.RatingStore
	ratings map[string]map[contracts.SectionType]int
	err     error
}

func (f *fakeRatingStore) GetCurrentSectionRatings(_ context.Context, pageID string) (map[contracts.SectionType]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.ratings[pageID], nil
}

type fakePageRepo struct {
	contracts.PageRepository
	siteByPage map[string]string
}

func (f *fakePageRepo) GetSiteID(_ context.Context, pageID string) (string, error) {
	site, ok := f.siteByPage[pageID]
	if !ok {
		return "", errors.New("page not found")
	}
	return site, nil
}

type fakeScoreStore struct {
	saved   map[string]int
	saveErr error
}

func (f *fakeScoreStore) Get(_ context.Context, pageID string) (*contracts.PageScore, error) {
	score, ok := f.saved[pageID]
	if !ok {
		return nil, nil
	}
	return &contracts.PageScore{PageID: pageID, Score: score}, nil
}

func (f *fakeScoreStore) Save(_ context.Context, pageID string, score int) (*contracts.PageScore, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	if f.saved == nil {
		f.saved = make(map[string]int)
	}
	f.saved[pageID] = score
	return &contracts.PageScore{PageID: pageID, Score: score}, nil
}

type fakePropagator struct {
	calls []string
	err   error
}

func (f *fakePropagator) UpdateSiteMetrics(_ context.Context, siteID string) (*contracts.SiteMetrics, error) {
	f.calls = append(f.calls, siteID)
	return &contracts.SiteMetrics{SiteID: siteID}, f.err
}

func newTestService(ratings *fakeRatingStore, scores *fakeScoreStore, propagator *fakePropagator) *Service {
	svc := NewService(ratings, &fakePageRepo{siteByPage: map[string]string{"page-1": "site-1"}}, scores, logger.NewNop())
	if propagator != nil {
		svc.SetPropagator(propagator)
	}
	return svc
}

func partialRatings() map[contracts.SectionType]int {
	return map[contracts.SectionType]int{
		contracts.SectionTitle:       8,
		contracts.SectionDescription: 6,
		contracts.SectionHeadings:    10,
		contracts.SectionContent:     10,
		contracts.SectionSchema:      10,
		contracts.SectionImages:      10,
		contracts.SectionLinks:       10,
	}
}

func TestUpdatePageScore_ComputesAndPersists(t *testing.T) {
	ratings := &fakeRatingStore{ratings: map[string]map[contracts.SectionType]int{"page-1": partialRatings()}}
	scores := &fakeScoreStore{}
	propagator := &fakePropagator{}

	svc := newTestService(ratings, scores, propagator)

	got, err := svc.UpdatePageScore(context.Background(), "page-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 91, *got)
	assert.Equal(t, 91, scores.saved["page-1"])
	assert.Equal(t, []string{"site-1"}, propagator.calls)
}

func TestUpdatePageScore_NeverAnalyzedIsNoOp(t *testing.T) {
	ratings := &fakeRatingStore{ratings: map[string]map[contracts.SectionType]int{}}
	scores := &fakeScoreStore{}
	propagator := &fakePropagator{}

	svc := newTestService(ratings, scores, propagator)

	got, err := svc.UpdatePageScore(context.Background(), "page-1")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, scores.saved)
	assert.Empty(t, propagator.calls)
}

func TestUpdatePageScore_SaveFailureIsHard(t *testing.T) {
	ratings := &fakeRatingStore{ratings: map[string]map[contracts.SectionType]int{"page-1": partialRatings()}}
	scores := &fakeScoreStore{saveErr: errors.New("db down")}
	propagator := &fakePropagator{}

	svc := newTestService(ratings, scores, propagator)

	_, err := svc.UpdatePageScore(context.Background(), "page-1")
	require.Error(t, err)
	assert.Empty(t, propagator.calls, "propagation must not fire after a failed save")
}

func TestUpdatePageScore_PropagationFailureIsSwallowed(t *testing.T) {
	ratings := &fakeRatingStore{ratings: map[string]map[contracts.SectionType]int{"page-1": partialRatings()}}
	scores := &fakeScoreStore{}
	propagator := &fakePropagator{err: errors.New("metrics store down")}

	svc := newTestService(ratings, scores, propagator)

	got, err := svc.UpdatePageScore(context.Background(), "page-1")
	require.NoError(t, err, "propagation failure must not fail the page score update")
	require.NotNil(t, got)
	assert.Equal(t, 91, *got)
	assert.Len(t, propagator.calls, 1)
}

func TestUpdatePageScore_RatingsErrorPropagates(t *testing.T) {
	ratings := &fakeRatingStore{err: errors.New("store unreachable")}
	svc := newTestService(ratings, &fakeScoreStore{}, nil)

	_, err := svc.UpdatePageScore(context.Background(), "page-1")
	require.Error(t, err)
}
