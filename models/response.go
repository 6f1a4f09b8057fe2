package models

// ImageInfo describes an uploaded file as received, before any processing.
type ImageInfo struct {
	Filename      string  `json:"filename"`
	ContentType   string  `json:"content_type"`
	FileSizeBytes int64   `json:"file_size_bytes"`
	FileSizeMB    float64 `json:"file_size_mb"`
}

// DuplicateInfo is attached to a result when an upload matched an item that
// was already processed for the same user.
type DuplicateInfo struct {
	OriginalFilename           string `json:"original_filename"`
	OriginalProcessedTimestamp string `json:"original_processed_timestamp"`
}

// Per-image processing statuses.
const (
	StatusAttributesExtracted = "attributes_extracted"
	StatusDuplicateFound      = "duplicate_found"
	StatusError               = "error"
)

// ImageAnalysisResult is the outcome for a single image in a batch. Error is
// empty on success; a failed image never aborts the rest of the batch.
type ImageAnalysisResult struct {
	ImageInfo  ImageInfo      `json:"image_info"`
	Status     string         `json:"status"`
	Attributes *Attributes    `json:"attributes"`
	Duplicate  *DuplicateInfo `json:"duplicate_info,omitempty"`
	ImageURL   string         `json:"image_url,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// AttributeAnalysisResponse summarizes one batch-processing request.
type AttributeAnalysisResponse struct {
	Success             bool                  `json:"success"`
	Message             string                `json:"message"`
	ProcessingTimestamp string                `json:"processing_timestamp"`
	TotalImages         int                   `json:"total_images"`
	SuccessfulAnalyses  int                   `json:"successful_analyses"`
	FailedAnalyses      int                   `json:"failed_analyses"`
	Results             []ImageAnalysisResult `json:"results"`
}

// StyleContext carries the optional styling parameters. Empty fields are
// filled with defaults by the styler service.
type StyleContext struct {
	City     string `json:"city"`
	Weather  string `json:"weather"`
	Occasion string `json:"occasion"`
}

// StylingItem is the slimmed-down view of a closet item handed to the
// recommendation vendor.
type StylingItem struct {
	Image        string `json:"image"`
	Identifier   string `json:"identifier"`
	Category     string `json:"category"`
	Gender       string `json:"gender"`
	PrimaryColor string `json:"primary_color"`
	Style        string `json:"style"`
	Occasion     string `json:"occasion"`
	Weather      string `json:"weather"`
	Fit          string `json:"fit"`
	Description  string `json:"description"`
}

// OutfitRecommendation is the vendor-selected outfit. Top and Bottom reference
// filenames from the user's closet; Outerwear is optional.
type OutfitRecommendation struct {
	Top                  string `json:"top"`
	Bottom               string `json:"bottom"`
	Outerwear            string `json:"outerwear,omitempty"`
	Justification        string `json:"justification"`
	StyleNotes           string `json:"style_notes"`
	OtherAccessories     string `json:"other_accessories"`
	WeatherConsideration string `json:"weather_consideration"`
}

// ItemFilenames lists the closet filenames the recommendation references.
func (o OutfitRecommendation) ItemFilenames() []string {
	refs := []string{o.Top, o.Bottom}
	if o.Outerwear != "" {
		refs = append(refs, o.Outerwear)
	}
	return refs
}

// StylerResponse is the envelope returned by the styling endpoint.
type StylerResponse struct {
	Success              bool                  `json:"success"`
	Message              string                `json:"message"`
	UserID               string                `json:"user_id"`
	StylingTimestamp     string                `json:"styling_timestamp"`
	RequestParameters    StyleContext          `json:"request_parameters"`
	OutfitRecommendation *OutfitRecommendation `json:"outfit_recommendation,omitempty"`
	AvailableItemsCount  int                   `json:"available_items_count"`
	OutfitImages         map[string]string     `json:"outfit_images,omitempty"`
	Error                string                `json:"error,omitempty"`
}
