// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging processes uploaded images: EXIF-aware rotation, resized
// variants for article and service imagery, all in pure Go.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/awasec/awa-cms/internal/model"
)

// ProcessResult describes a stored original after rotation and re-encoding.
type ProcessResult struct {
	Width    int
	Height   int
	MimeType string
	Size     int64
	FilePath string
}

// VariantResult describes one stored resized variant.
type VariantResult struct {
	Type     string
	Width    int
	Height   int
	Size     int64
	FilePath string
}

// Processor turns uploaded images into normalized originals plus resized
// variants under the uploads tree.
type Processor struct {
	uploadDir string
}

// NewProcessor creates a processor rooted at uploadDir.
func NewProcessor(uploadDir string) *Processor {
	return &Processor{uploadDir: uploadDir}
}

// ProcessImage decodes an upload, bakes its EXIF orientation into the
// pixels and stores the result under originals/<uuid>/. Re-encoding through
// the pure Go encoders also drops EXIF metadata, so stored files carry no
// camera or location data.
func (p *Processor) ProcessImage(reader io.Reader, uuid, filename string) (*ProcessResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}

	format := sniffFormat(data)
	if format == "" {
		return nil, fmt.Errorf("unsupported image format")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	img = normalizeOrientation(img, bytes.NewReader(data))

	encoded, err := encode(img, format, 95)
	if err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}

	path, err := p.store(filepath.Join("originals", uuid), filename, encoded)
	if err != nil {
		return nil, err
	}

	return &ProcessResult{
		Width:    img.Bounds().Dx(),
		Height:   img.Bounds().Dy(),
		MimeType: mimeTypeFor(format),
		Size:     int64(len(encoded)),
		FilePath: path,
	}, nil
}

// CreateAllVariants renders every configured variant from a stored
// original. Individual variant failures are collected rather than aborting
// the batch; the error is non-nil only when nothing could be produced.
func (p *Processor) CreateAllVariants(sourcePath, uuid, filename string) ([]*VariantResult, error) {
	var results []*VariantResult
	var failures []string

	for variantType, cfg := range model.ImageVariants {
		result, err := p.createVariant(sourcePath, uuid, filename, cfg, variantType)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", variantType, err))
			continue
		}
		if result != nil {
			results = append(results, result)
		}
	}

	if len(failures) > 0 && len(results) == 0 {
		return nil, fmt.Errorf("all variants failed: %s", strings.Join(failures, "; "))
	}
	return results, nil
}

// createVariant resizes one variant. A nil result with nil error means the
// source was already smaller than the target, so no variant is needed.
func (p *Processor) createVariant(sourcePath, uuid, filename string, cfg model.ImageVariantConfig, variantType string) (*VariantResult, error) {
	img, err := imaging.Open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("opening source: %w", err)
	}

	src := img.Bounds()
	if src.Dx() <= cfg.Width && src.Dy() <= cfg.Height && !cfg.Crop {
		return nil, nil
	}

	var resized image.Image
	if cfg.Crop {
		resized = imaging.Fill(img, cfg.Width, cfg.Height, imaging.Center, imaging.Lanczos)
	} else {
		resized = imaging.Fit(img, cfg.Width, cfg.Height, imaging.Lanczos)
	}

	encoded, err := encode(resized, formatFromFilename(filename), cfg.Quality)
	if err != nil {
		return nil, fmt.Errorf("encoding variant: %w", err)
	}

	path, err := p.store(filepath.Join(variantType, uuid), filename, encoded)
	if err != nil {
		return nil, err
	}

	return &VariantResult{
		Type:     variantType,
		Width:    resized.Bounds().Dx(),
		Height:   resized.Bounds().Dy(),
		Size:     int64(len(encoded)),
		FilePath: path,
	}, nil
}

// normalizeOrientation rotates an image so its EXIF orientation tag, if
// any, becomes irrelevant. Unreadable EXIF means the image is left alone.
func normalizeOrientation(img image.Image, raw io.Reader) image.Image {
	x, err := exif.Decode(raw)
	if err != nil {
		return img
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return img
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return img
	}

	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	}
	return img
}

// encode serializes an image in the given format. WebP has no pure Go
// encoder, so WebP and anything unrecognized comes out as JPEG.
func encode(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sniffFormat identifies the image format from the leading bytes. TIFF is
// rejected outright (CVE-2023-36308 in disintegration/imaging).
func sniffFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	for _, format := range []string{"jpeg", "png", "gif", "webp"} {
		if strings.Contains(contentType, format) {
			return format
		}
	}
	return ""
}

func formatFromFilename(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "png"
	case ".gif":
		return "gif"
	case ".webp":
		return "webp"
	default:
		return "jpeg"
	}
}

func mimeTypeFor(format string) string {
	switch format {
	case "jpeg":
		return model.MimeTypeJPEG
	case "png":
		return model.MimeTypePNG
	case "gif":
		return model.MimeTypeGIF
	case "webp":
		return model.MimeTypeWebP
	}
	return "application/octet-stream"
}

// store writes image bytes under uploadDir/subDir/filename, refusing any
// path that would escape the uploads tree.
func (p *Processor) store(subDir, filename string, data []byte) (string, error) {
	name := filepath.Base(filename)
	if name == "." || name == ".." || name == "" {
		return "", fmt.Errorf("invalid filename")
	}

	cleaned := filepath.Clean(subDir)
	if strings.Contains(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid target directory")
	}

	base, err := filepath.Abs(p.uploadDir)
	if err != nil {
		return "", fmt.Errorf("resolving upload directory: %w", err)
	}
	target := filepath.Join(base, cleaned)
	rel, err := filepath.Rel(base, target)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("path escapes upload directory")
	}

	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}
	path := filepath.Join(target, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}
	return path, nil
}
