package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raushankrgupta/fitly-closet/attributor"
	"github.com/raushankrgupta/fitly-closet/models"
	"github.com/raushankrgupta/fitly-closet/retry"
	"github.com/raushankrgupta/fitly-closet/store"
)

// fakeStyler counts invocations and can fail before producing its canned
// recommendation.
type fakeStyler struct {
	mu        sync.Mutex
	calls     int
	failTimes int
	failWith  error
	outfit    models.OutfitRecommendation
	lastItems []models.StylingItem
	lastCtx   models.StyleContext
}

func (f *fakeStyler) Style(ctx context.Context, items []models.StylingItem, sc models.StyleContext) (models.OutfitRecommendation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastItems = items
	f.lastCtx = sc
	if f.calls <= f.failTimes {
		return models.OutfitRecommendation{}, f.failWith
	}
	return f.outfit, nil
}

func (f *fakeStyler) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func closetItem(fingerprint, filename, identifier, category string) models.ClothingItem {
	return models.ClothingItem{
		Fingerprint: fingerprint,
		Filename:    filename,
		ContentType: "image/jpeg",
		Attributes: &models.Attributes{
			Image:      filename,
			Identifier: identifier,
			Category:   category,
		},
		ProcessedTimestamp: time.Now().UTC(),
		SavedLocations:     map[string]string{"processed": "alice/processed/" + fingerprint + ".jpg"},
	}
}

func newTestStylerService(t *testing.T, sty *fakeStyler) (*StylerService, *store.Store) {
	t.Helper()
	st, err := store.Open(t.TempDir())
	require.NoError(t, err)
	policy := retry.Policy{MaxAttempts: 3, BaseDelay: 1, Retryable: attributor.IsRetryable}
	return NewStylerService(st, newFakeBlobStore(), sty, policy), st
}

func seedCloset(t *testing.T, st *store.Store) {
	t.Helper()
	require.NoError(t, st.Insert("alice", closetItem("fp-top", "shirt.jpg", "top", "T-Shirt")))
	require.NoError(t, st.Insert("alice", closetItem("fp-bottom", "jeans.jpg", "bottom", "Jeans")))
	require.NoError(t, st.Insert("alice", closetItem("fp-outer", "jacket.jpg", "outerwear", "Jacket")))
}

func TestRecommendSuccess(t *testing.T) {
	sty := &fakeStyler{outfit: models.OutfitRecommendation{
		Top:           "shirt.jpg",
		Bottom:        "jeans.jpg",
		Outerwear:     "jacket.jpg",
		Justification: "classic combination",
	}}
	svc, st := newTestStylerService(t, sty)
	seedCloset(t, st)

	resp, err := svc.Recommend(context.Background(), "alice", models.StyleContext{})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	require.NotNil(t, resp.OutfitRecommendation)
	assert.Equal(t, "shirt.jpg", resp.OutfitRecommendation.Top)
	assert.Equal(t, 3, resp.AvailableItemsCount)

	// Each referenced slot resolves to a download URL for its stored image.
	assert.Contains(t, resp.OutfitImages["top"], "fp-top")
	assert.Contains(t, resp.OutfitImages["bottom"], "fp-bottom")
	assert.Contains(t, resp.OutfitImages["outerwear"], "fp-outer")
}

func TestRecommendAppliesDefaults(t *testing.T) {
	sty := &fakeStyler{outfit: models.OutfitRecommendation{Top: "shirt.jpg", Bottom: "jeans.jpg"}}
	svc, st := newTestStylerService(t, sty)
	seedCloset(t, st)

	resp, err := svc.Recommend(context.Background(), "alice", models.StyleContext{})
	require.NoError(t, err)

	assert.Equal(t, DefaultCity, resp.RequestParameters.City)
	assert.Equal(t, DefaultWeather, resp.RequestParameters.Weather)
	assert.Equal(t, DefaultOccasion, resp.RequestParameters.Occasion)
	assert.Equal(t, DefaultCity, sty.lastCtx.City)
}

func TestRecommendNoClosetData(t *testing.T) {
	sty := &fakeStyler{}
	svc, _ := newTestStylerService(t, sty)

	resp, err := svc.Recommend(context.Background(), "alice", models.StyleContext{})

	assert.True(t, errors.Is(err, ErrNoClosetData))
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
	assert.Equal(t, 0, sty.callCount())
}

func TestRecommendNoValidItems(t *testing.T) {
	sty := &fakeStyler{}
	svc, st := newTestStylerService(t, sty)

	// Items exist but none survive the attribute filter.
	noAttrs := closetItem("fp-1", "blurry.jpg", "top", "T-Shirt")
	noAttrs.Attributes = nil
	require.NoError(t, st.Insert("alice", noAttrs))
	require.NoError(t, st.Insert("alice", closetItem("fp-2", "thing.jpg", "unknown", "unknown")))

	resp, err := svc.Recommend(context.Background(), "alice", models.StyleContext{})

	assert.True(t, errors.Is(err, ErrNoValidItems))
	assert.False(t, resp.Success)
	assert.Equal(t, 0, sty.callCount())
}

func TestRecommendRejectsOverlongParameters(t *testing.T) {
	sty := &fakeStyler{}
	svc, st := newTestStylerService(t, sty)
	seedCloset(t, st)

	_, err := svc.Recommend(context.Background(), "alice", models.StyleContext{
		City: strings.Repeat("x", maxParamLength+1),
	})

	var validation *ValidationError
	assert.True(t, errors.As(err, &validation))
	assert.Equal(t, 0, sty.callCount())
}

func TestRecommendRetriesTransientFailures(t *testing.T) {
	sty := &fakeStyler{
		failTimes: 2,
		failWith:  &attributor.VendorUnavailableError{Err: errors.New("503")},
		outfit:    models.OutfitRecommendation{Top: "shirt.jpg", Bottom: "jeans.jpg"},
	}
	svc, st := newTestStylerService(t, sty)
	seedCloset(t, st)

	resp, err := svc.Recommend(context.Background(), "alice", models.StyleContext{})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, 3, sty.callCount())
}

func TestRecommendVendorFailureAfterRetries(t *testing.T) {
	sty := &fakeStyler{
		failTimes: 100,
		failWith:  &attributor.RateLimitError{Err: errors.New("429")},
	}
	svc, st := newTestStylerService(t, sty)
	seedCloset(t, st)

	resp, err := svc.Recommend(context.Background(), "alice", models.StyleContext{})

	require.Error(t, err)
	var exhausted *retry.ExhaustedError
	assert.True(t, errors.As(err, &exhausted))
	assert.False(t, resp.Success)
	assert.Equal(t, 3, sty.callCount())
}

func TestRecommendRejectsHallucinatedFilename(t *testing.T) {
	sty := &fakeStyler{outfit: models.OutfitRecommendation{
		Top:    "imaginary-silk-blouse.jpg",
		Bottom: "jeans.jpg",
	}}
	svc, st := newTestStylerService(t, sty)
	seedCloset(t, st)

	resp, err := svc.Recommend(context.Background(), "alice", models.StyleContext{})

	var invalid *InvalidRecommendationError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "imaginary-silk-blouse.jpg", invalid.Filename)
	assert.False(t, resp.Success)
	assert.Nil(t, resp.OutfitRecommendation)
}

func TestRecommendFillsMissingStylingFields(t *testing.T) {
	sty := &fakeStyler{outfit: models.OutfitRecommendation{Top: "shirt.jpg", Bottom: "jeans.jpg"}}
	svc, st := newTestStylerService(t, sty)
	seedCloset(t, st)

	_, err := svc.Recommend(context.Background(), "alice", models.StyleContext{})
	require.NoError(t, err)

	require.Len(t, sty.lastItems, 3)
	for _, item := range sty.lastItems {
		assert.Equal(t, "unisex", item.Gender)
		assert.Equal(t, "unknown", item.PrimaryColor)
		assert.Equal(t, "regular", item.Fit)
	}
}

func TestRecommendOptionalOuterwearOmitted(t *testing.T) {
	sty := &fakeStyler{outfit: models.OutfitRecommendation{Top: "shirt.jpg", Bottom: "jeans.jpg"}}
	svc, st := newTestStylerService(t, sty)
	seedCloset(t, st)

	resp, err := svc.Recommend(context.Background(), "alice", models.StyleContext{})
	require.NoError(t, err)

	assert.Empty(t, resp.OutfitRecommendation.Outerwear)
	assert.NotContains(t, resp.OutfitImages, "outerwear")
}
