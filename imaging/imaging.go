// Package imaging normalizes uploaded images into the canonical form the rest
// of the pipeline works with: a deterministic, EXIF-free JPEG scaled down to
// fit the configured bounds. Fingerprints are computed over these normalized
// bytes so re-uploads of the same photo at different source resolutions
// converge on one closet entry.
package imaging

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// InvalidImageError means the input bytes could not be treated as an image.
// It is fatal; retrying the same bytes cannot succeed.
type InvalidImageError struct {
	Reason string
	Err    error
}

func (e *InvalidImageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid image: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid image: %s", e.Reason)
}

func (e *InvalidImageError) Unwrap() error { return e.Err }

// Options bound the normalized output.
type Options struct {
	TargetWidth  int
	TargetHeight int
	JPEGQuality  int
}

// A crafted header can claim 65535x65535 and make image.Decode allocate ~16GB.
const maxDecodedBytes = 1 << 28 // 256MB of RGBA pixels

// Normalize decodes data (jpeg, png, gif, webp, bmp), downscales it to fit
// TargetWidth x TargetHeight preserving aspect ratio, and re-encodes it as
// JPEG at JPEGQuality. Images already within bounds keep their dimensions but
// are still re-encoded so the output is deterministic regardless of the
// source encoding.
func Normalize(data []byte, opts Options) ([]byte, error) {
	if len(data) == 0 {
		return nil, &InvalidImageError{Reason: "empty input"}
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &InvalidImageError{Reason: "unrecognized format", Err: err}
	}
	if int64(cfg.Width)*int64(cfg.Height)*4 > maxDecodedBytes {
		return nil, &InvalidImageError{
			Reason: fmt.Sprintf("image too large: %dx%d pixels", cfg.Width, cfg.Height),
		}
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &InvalidImageError{Reason: "decode failed", Err: err}
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	newWidth, newHeight := fitWithin(width, height, opts.TargetWidth, opts.TargetHeight)

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)

	quality := opts.JPEGQuality
	if quality <= 0 || quality > 100 {
		quality = jpeg.DefaultQuality
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode normalized image: %w", err)
	}
	return buf.Bytes(), nil
}

// Fingerprint returns the sha256 hex digest of the normalized image bytes.
func Fingerprint(normalized []byte) (string, error) {
	if len(normalized) == 0 {
		return "", &InvalidImageError{Reason: "empty input"}
	}
	sum := sha256.Sum256(normalized)
	return hex.EncodeToString(sum[:]), nil
}

// fitWithin scales (w, h) down to fit (maxW, maxH) keeping the aspect ratio.
// Images already inside the bounds are not upscaled.
func fitWithin(w, h, maxW, maxH int) (int, int) {
	if maxW <= 0 || maxH <= 0 {
		return w, h
	}
	scale := 1.0
	if wr := float64(maxW) / float64(w); wr < scale {
		scale = wr
	}
	if hr := float64(maxH) / float64(h); hr < scale {
		scale = hr
	}
	if scale >= 1.0 {
		return w, h
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}
	return newW, newH
}
