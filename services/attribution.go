package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/raushankrgupta/fitly-closet/attributor"
	"github.com/raushankrgupta/fitly-closet/blob"
	"github.com/raushankrgupta/fitly-closet/imaging"
	"github.com/raushankrgupta/fitly-closet/models"
	"github.com/raushankrgupta/fitly-closet/retry"
	"github.com/raushankrgupta/fitly-closet/store"
)

// ValidationError rejects caller input before any processing happens. It is
// fatal and never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// Upload is one image as received from the routing layer.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AttributionService runs the upload pipeline: validate, normalize,
// fingerprint, dedupe, extract attributes under retry, persist.
type AttributionService struct {
	store       *store.Store
	blobs       blob.Store
	attributor  attributor.Attributor
	policy      retry.Policy
	imaging     imaging.Options
	maxFileSize int64
}

// NewAttributionService wires the pipeline's collaborators together.
func NewAttributionService(st *store.Store, blobs blob.Store, attr attributor.Attributor, policy retry.Policy, opts imaging.Options, maxFileSize int64) *AttributionService {
	if policy.Retryable == nil {
		policy.Retryable = attributor.IsRetryable
	}
	return &AttributionService{
		store:       st,
		blobs:       blobs,
		attributor:  attr,
		policy:      policy,
		imaging:     opts,
		maxFileSize: maxFileSize,
	}
}

// Process runs one image through the pipeline. Failures are reported inside
// the result, never as a bare error, so a batch caller can keep going.
func (s *AttributionService) Process(ctx context.Context, userID string, up Upload) models.ImageAnalysisResult {
	info := imageInfoFor(up)

	if err := s.validateUpload(up); err != nil {
		return errorResult(info, err)
	}

	normalized, err := imaging.Normalize(up.Data, s.imaging)
	if err != nil {
		return errorResult(info, err)
	}
	fingerprint, err := imaging.Fingerprint(normalized)
	if err != nil {
		return errorResult(info, err)
	}

	existing, err := s.store.Lookup(userID, fingerprint)
	if err == nil {
		return s.duplicateResult(ctx, info, existing)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return errorResult(info, err)
	}

	attrs, err := retry.Do(ctx, s.policy, func(ctx context.Context) (models.Attributes, error) {
		return s.attributor.Extract(ctx, normalized, up.Filename)
	})
	if err != nil {
		log.Printf("[user=%s] attribute extraction failed for %s: %v", userID, up.Filename, err)
		return errorResult(info, err)
	}

	key, err := s.blobs.Put(ctx, storageKey(userID, fingerprint), normalized, "image/jpeg")
	if err != nil {
		return errorResult(info, fmt.Errorf("failed to store processed image: %w", err))
	}

	item := models.ClothingItem{
		Fingerprint:        fingerprint,
		Filename:           up.Filename,
		ContentType:        up.ContentType,
		SizeBytes:          int64(len(up.Data)),
		Attributes:         &attrs,
		ProcessedTimestamp: time.Now().UTC(),
		SavedLocations:     map[string]string{"processed": key},
	}
	if err := s.store.Insert(userID, item); err != nil {
		var dup *store.DuplicateFingerprintError
		if errors.As(err, &dup) {
			// Lost a race with a concurrent upload of the same image. Report
			// the winner's record instead of failing.
			if winner, lookupErr := s.store.Lookup(userID, fingerprint); lookupErr == nil {
				return s.duplicateResult(ctx, info, winner)
			}
		}
		return errorResult(info, err)
	}

	url, err := s.blobs.DownloadURL(ctx, key)
	if err != nil {
		log.Printf("[user=%s] failed to generate download URL for %s: %v", userID, up.Filename, err)
	}

	return models.ImageAnalysisResult{
		ImageInfo:  info,
		Status:     models.StatusAttributesExtracted,
		Attributes: &attrs,
		ImageURL:   url,
	}
}

// ProcessBatch processes the uploads in order. Each image fails or succeeds
// on its own; items already committed stay committed regardless of later
// failures in the same batch.
func (s *AttributionService) ProcessBatch(ctx context.Context, userID string, uploads []Upload) models.AttributeAnalysisResponse {
	results := make([]models.ImageAnalysisResult, 0, len(uploads))
	successful := 0

	for i, up := range uploads {
		log.Printf("[user=%s] processing image %d/%d: %s", userID, i+1, len(uploads), up.Filename)
		result := s.Process(ctx, userID, up)
		results = append(results, result)
		if result.Error == "" {
			successful++
		}
	}

	failed := len(uploads) - successful
	var message string
	switch {
	case successful == len(uploads):
		message = fmt.Sprintf("All %d images processed successfully for user %s", len(uploads), userID)
	case successful > 0:
		message = fmt.Sprintf("%d of %d images processed successfully for user %s", successful, len(uploads), userID)
	default:
		message = fmt.Sprintf("Failed to process all %d images for user %s", len(uploads), userID)
	}

	return models.AttributeAnalysisResponse{
		Success:             successful > 0,
		Message:             message,
		ProcessingTimestamp: time.Now().UTC().Format(time.RFC3339),
		TotalImages:         len(uploads),
		SuccessfulAnalyses:  successful,
		FailedAnalyses:      failed,
		Results:             results,
	}
}

func (s *AttributionService) validateUpload(up Upload) error {
	if up.Filename == "" {
		return &ValidationError{Reason: "filename is required"}
	}
	ext := strings.ToLower(filepath.Ext(up.Filename))
	if !allowedExtensions[ext] {
		return &ValidationError{Reason: fmt.Sprintf("invalid file type %q, allowed: %s", ext, allowedExtensionList())}
	}
	if !strings.HasPrefix(up.ContentType, "image/") {
		return &ValidationError{Reason: fmt.Sprintf("invalid content type %q", up.ContentType)}
	}
	if len(up.Data) == 0 {
		return &ValidationError{Reason: "file is empty"}
	}
	if s.maxFileSize > 0 && int64(len(up.Data)) > s.maxFileSize {
		return &ValidationError{Reason: fmt.Sprintf("file too large, maximum size: %dMB", s.maxFileSize/(1024*1024))}
	}
	return nil
}

func (s *AttributionService) duplicateResult(ctx context.Context, info models.ImageInfo, existing models.ClothingItem) models.ImageAnalysisResult {
	var url string
	if key := existing.SavedLocations["processed"]; key != "" {
		if u, err := s.blobs.DownloadURL(ctx, key); err == nil {
			url = u
		}
	}
	return models.ImageAnalysisResult{
		ImageInfo:  info,
		Status:     models.StatusDuplicateFound,
		Attributes: existing.Attributes,
		Duplicate: &models.DuplicateInfo{
			OriginalFilename:           existing.Filename,
			OriginalProcessedTimestamp: existing.ProcessedTimestamp.Format(time.RFC3339),
		},
		ImageURL: url,
	}
}

func imageInfoFor(up Upload) models.ImageInfo {
	size := int64(len(up.Data))
	return models.ImageInfo{
		Filename:      up.Filename,
		ContentType:   up.ContentType,
		FileSizeBytes: size,
		FileSizeMB:    float64(size) / (1024 * 1024),
	}
}

func errorResult(info models.ImageInfo, err error) models.ImageAnalysisResult {
	return models.ImageAnalysisResult{
		ImageInfo: info,
		Status:    models.StatusError,
		Error:     err.Error(),
	}
}

func storageKey(userID, fingerprint string) string {
	uid, err := store.NormalizeUserID(userID)
	if err != nil {
		uid = "unknown"
	}
	return fmt.Sprintf("%s/processed/%s.jpg", uid, fingerprint)
}

func allowedExtensionList() string {
	exts := make([]string, 0, len(allowedExtensions))
	for ext := range allowedExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}
