package models

import "time"

// Attributes holds the structured clothing attributes returned by an AI vendor.
// Only Identifier and Category are required for an item to be usable by the
// styler; everything else is best-effort vendor output.
type Attributes struct {
	Image        string `json:"image,omitempty"`
	Identifier   string `json:"identifier"`
	Category     string `json:"category"`
	Gender       string `json:"gender,omitempty"`
	PrimaryColor string `json:"primary_color,omitempty"`
	Style        string `json:"style,omitempty"`
	Occasion     string `json:"occasion,omitempty"`
	Weather      string `json:"weather,omitempty"`
	Fit          string `json:"fit,omitempty"`
	SleeveLength string `json:"sleeve_length,omitempty"`
	Description  string `json:"description,omitempty"`
}

// ClothingItem is one processed garment in a user's closet. The fingerprint is
// the sha256 of the normalized image bytes and is the item's identity key.
type ClothingItem struct {
	Fingerprint        string            `json:"image_hash"`
	Filename           string            `json:"filename"`
	ContentType        string            `json:"content_type"`
	SizeBytes          int64             `json:"file_size_bytes"`
	Attributes         *Attributes       `json:"attributes"`
	ProcessedTimestamp time.Time         `json:"processed_timestamp"`
	SavedLocations     map[string]string `json:"saved_images,omitempty"`
	Seq                int64             `json:"seq"`
}

// UserCloset is the persisted per-user document: all processed items keyed by
// fingerprint plus collection metadata.
type UserCloset struct {
	Images   map[string]ClothingItem `json:"images"`
	Metadata ClosetMetadata          `json:"metadata"`
}

// ClosetMetadata is collection-level bookkeeping for a user's closet.
type ClosetMetadata struct {
	TotalImages int       `json:"total_images"`
	LastUpdated time.Time `json:"last_updated"`
}

// NewUserCloset returns an empty closet document.
func NewUserCloset() UserCloset {
	return UserCloset{Images: make(map[string]ClothingItem)}
}
