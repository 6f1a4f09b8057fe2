package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/raushankrgupta/fitly-closet/attributor"
	"github.com/raushankrgupta/fitly-closet/blob"
	"github.com/raushankrgupta/fitly-closet/models"
	"github.com/raushankrgupta/fitly-closet/retry"
	"github.com/raushankrgupta/fitly-closet/store"
	"github.com/raushankrgupta/fitly-closet/styler"
)

// ErrNoClosetData means the user has no processed items at all.
var ErrNoClosetData = errors.New("no clothing data found, upload some images first")

// ErrNoValidItems means the user has items but none with usable attributes.
var ErrNoValidItems = errors.New("no valid clothing items available for styling")

// InvalidRecommendationError means the vendor referenced a filename that is
// not in the user's closet. The recommendation is rejected outright rather
// than silently substituted.
type InvalidRecommendationError struct {
	Filename string
}

func (e *InvalidRecommendationError) Error() string {
	return fmt.Sprintf("recommendation references unknown item %q", e.Filename)
}

// Styling parameter defaults.
const (
	DefaultCity     = "Toronto"
	DefaultWeather  = "early fall weather - expect temperatures around 15-20°C, partly cloudy"
	DefaultOccasion = "casual day out"

	maxParamLength = 200
)

// StylerService turns a user's closet into an outfit recommendation.
type StylerService struct {
	store  *store.Store
	blobs  blob.Store
	styler styler.Styler
	policy retry.Policy
}

// NewStylerService wires the recommendation pipeline's collaborators together.
func NewStylerService(st *store.Store, blobs blob.Store, sty styler.Styler, policy retry.Policy) *StylerService {
	if policy.Retryable == nil {
		policy.Retryable = attributor.IsRetryable
	}
	return &StylerService{store: st, blobs: blobs, styler: sty, policy: policy}
}

// Recommend selects an outfit for the given context. On failure it returns
// both a populated failure envelope and the typed error, so the handler can
// pick a status code while callers still get a structured response.
func (s *StylerService) Recommend(ctx context.Context, userID string, sc models.StyleContext) (models.StylerResponse, error) {
	sc, err := normalizeContext(sc)
	if err != nil {
		return s.failure(userID, sc, 0, err), err
	}

	items, err := s.store.ListAll(userID)
	if err != nil {
		return s.failure(userID, sc, 0, err), err
	}
	if len(items) == 0 {
		return s.failure(userID, sc, 0, ErrNoClosetData), ErrNoClosetData
	}

	valid := filterStylable(items)
	if len(valid) == 0 {
		return s.failure(userID, sc, 0, ErrNoValidItems), ErrNoValidItems
	}

	stylingItems := make([]models.StylingItem, len(valid))
	for i, item := range valid {
		stylingItems[i] = stylingItemFor(item)
	}

	outfit, err := retry.Do(ctx, s.policy, func(ctx context.Context) (models.OutfitRecommendation, error) {
		return s.styler.Style(ctx, stylingItems, sc)
	})
	if err != nil {
		return s.failure(userID, sc, len(valid), err), err
	}

	byFilename := make(map[string]models.ClothingItem, len(valid))
	for _, item := range valid {
		byFilename[item.Attributes.Image] = item
	}
	for _, ref := range outfit.ItemFilenames() {
		if _, ok := byFilename[ref]; !ok {
			invalid := &InvalidRecommendationError{Filename: ref}
			return s.failure(userID, sc, len(valid), invalid), invalid
		}
	}

	urls := s.resolveOutfitURLs(ctx, outfit, byFilename)

	return models.StylerResponse{
		Success:              true,
		Message:              fmt.Sprintf("Outfit recommendation generated successfully for user '%s'", userID),
		UserID:               userID,
		StylingTimestamp:     time.Now().UTC().Format(time.RFC3339),
		RequestParameters:    sc,
		OutfitRecommendation: &outfit,
		AvailableItemsCount:  len(valid),
		OutfitImages:         urls,
	}, nil
}

// resolveOutfitURLs maps the recommended item slots to presigned download
// URLs. A missing or unsignable reference is logged and skipped; the
// recommendation itself is still valid.
func (s *StylerService) resolveOutfitURLs(ctx context.Context, outfit models.OutfitRecommendation, byFilename map[string]models.ClothingItem) map[string]string {
	slots := map[string]string{
		"top":       outfit.Top,
		"bottom":    outfit.Bottom,
		"outerwear": outfit.Outerwear,
	}

	urls := make(map[string]string)
	for slot, filename := range slots {
		if filename == "" {
			continue
		}
		item := byFilename[filename]
		key := item.SavedLocations["processed"]
		if key == "" {
			log.Printf("no processed image location for %s item %q", slot, filename)
			continue
		}
		url, err := s.blobs.DownloadURL(ctx, key)
		if err != nil {
			log.Printf("failed to generate download URL for %s item %q: %v", slot, filename, err)
			continue
		}
		urls[slot] = url
	}
	return urls
}

func (s *StylerService) failure(userID string, sc models.StyleContext, available int, cause error) models.StylerResponse {
	return models.StylerResponse{
		Success:             false,
		Message:             fmt.Sprintf("Failed to generate outfit recommendation for user '%s'", userID),
		UserID:              userID,
		StylingTimestamp:    time.Now().UTC().Format(time.RFC3339),
		RequestParameters:   sc,
		AvailableItemsCount: available,
		Error:               cause.Error(),
	}
}

// normalizeContext trims the styling parameters, fills defaults, and caps
// their length.
func normalizeContext(sc models.StyleContext) (models.StyleContext, error) {
	sc.City = strings.TrimSpace(sc.City)
	sc.Weather = strings.TrimSpace(sc.Weather)
	sc.Occasion = strings.TrimSpace(sc.Occasion)

	if sc.City == "" {
		sc.City = DefaultCity
	}
	if sc.Weather == "" {
		sc.Weather = DefaultWeather
	}
	if sc.Occasion == "" {
		sc.Occasion = DefaultOccasion
	}

	for name, value := range map[string]string{"city": sc.City, "weather": sc.Weather, "occasion": sc.Occasion} {
		if len(value) > maxParamLength {
			return sc, &ValidationError{Reason: fmt.Sprintf("parameter %q is too long, maximum length is %d characters", name, maxParamLength)}
		}
	}
	return sc, nil
}

// filterStylable keeps items whose attributes are present and structurally
// usable for styling.
func filterStylable(items []models.ClothingItem) []models.ClothingItem {
	var valid []models.ClothingItem
	for _, item := range items {
		a := item.Attributes
		if a == nil {
			continue
		}
		if a.Identifier == "" || strings.EqualFold(a.Identifier, "unknown") {
			continue
		}
		if a.Category == "" || strings.EqualFold(a.Category, "unknown") {
			continue
		}
		if a.Image == "" {
			continue
		}
		valid = append(valid, item)
	}
	return valid
}

func stylingItemFor(item models.ClothingItem) models.StylingItem {
	a := item.Attributes
	si := models.StylingItem{
		Image:        a.Image,
		Identifier:   a.Identifier,
		Category:     a.Category,
		Gender:       a.Gender,
		PrimaryColor: a.PrimaryColor,
		Style:        a.Style,
		Occasion:     a.Occasion,
		Weather:      a.Weather,
		Fit:          a.Fit,
		Description:  a.Description,
	}
	if si.Gender == "" {
		si.Gender = "unisex"
	}
	if si.PrimaryColor == "" {
		si.PrimaryColor = "unknown"
	}
	if si.Style == "" {
		si.Style = "casual"
	}
	if si.Occasion == "" {
		si.Occasion = "everyday"
	}
	if si.Weather == "" {
		si.Weather = "mild"
	}
	if si.Fit == "" {
		si.Fit = "regular"
	}
	if si.Description == "" {
		si.Description = "clothing item"
	}
	return si
}
