// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/awasec/awa-cms/internal/imaging"
	"github.com/awasec/awa-cms/internal/model"
	"github.com/awasec/awa-cms/internal/store"
)

// Upload limits
const (
	MaxImageUploadSize = 10 * 1024 * 1024 // 10MB
	MaxFileUploadSize  = 25 * 1024 * 1024 // 25MB
	DefaultUploadDir   = "./uploads"
)

// Upload rejection reasons, so handlers can map them to field errors.
var (
	ErrFileTooLarge        = errors.New("file size exceeds maximum allowed")
	ErrUnsupportedFileType = errors.New("file type is not allowed")
)

// AllowedImageMimeTypes defines the image types accepted for article and
// service imagery.
var AllowedImageMimeTypes = map[string]bool{
	model.MimeTypeJPEG: true,
	model.MimeTypePNG:  true,
	model.MimeTypeGIF:  true,
	model.MimeTypeWebP: true,
}

// AllowedFileMimeTypes defines the types accepted as project attachments.
var AllowedFileMimeTypes = map[string]bool{
	model.MimeTypeJPEG: true,
	model.MimeTypePNG:  true,
	model.MimeTypeGIF:  true,
	model.MimeTypeWebP: true,
	model.MimeTypePDF:  true,
	model.MimeTypeZIP:  true,
	model.MimeTypeDOCX: true,
	model.MimeTypeXLSX: true,
}

// ImageUploadResult describes a processed image upload.
type ImageUploadResult struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	MimeType     string `json:"mime_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Size         int64  `json:"size"`
}

// MediaService handles image uploads and project file attachments.
type MediaService struct {
	db        *sql.DB
	processor *imaging.Processor
	uploadDir string
}

// NewMediaService creates a new media service.
func NewMediaService(db *sql.DB, uploadDir string) *MediaService {
	if uploadDir == "" {
		uploadDir = DefaultUploadDir
	}
	return &MediaService{
		db:        db,
		processor: imaging.NewProcessor(uploadDir),
		uploadDir: uploadDir,
	}
}

// UploadImage processes an image for article or service use: the original is
// auto-rotated and stripped of metadata, and resized variants are generated.
// Returns public URL paths served from /uploads/.
func (s *MediaService) UploadImage(file multipart.File, header *multipart.FileHeader) (*ImageUploadResult, error) {
	if header.Size > MaxImageUploadSize {
		return nil, fmt.Errorf("%w (%d bytes)", ErrFileTooLarge, MaxImageUploadSize)
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = mimeTypeFromExtension(header.Filename)
	}
	if !AllowedImageMimeTypes[mimeType] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, mimeType)
	}

	fileUUID := uuid.New().String()
	filename := sanitizeFilename(header.Filename)

	processResult, err := s.processor.ProcessImage(file, fileUUID, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to process image: %w", err)
	}

	variants, err := s.processor.CreateAllVariants(processResult.FilePath, fileUUID, filename)
	if err != nil {
		// The original is saved; missing variants are an inconvenience,
		// not a failure.
		slog.Warn("failed to create some image variants", "uuid", fileUUID, "error", err)
	}

	result := &ImageUploadResult{
		URL:      fmt.Sprintf("/uploads/originals/%s/%s", fileUUID, filename),
		MimeType: processResult.MimeType,
		Width:    processResult.Width,
		Height:   processResult.Height,
		Size:     processResult.Size,
	}
	for _, v := range variants {
		if v.Type == model.VariantThumbnail {
			result.ThumbnailURL = fmt.Sprintf("/uploads/%s/%s/%s", v.Type, fileUUID, filename)
		}
	}
	return result, nil
}

// UploadProjectFile stores a project attachment and records it against the
// project. uploadedBy is "client" for portal uploads and "company" for
// dashboard uploads.
func (s *MediaService) UploadProjectFile(ctx context.Context, file multipart.File, header *multipart.FileHeader, projectID int64, uploadedBy string) (model.ProjectFile, error) {
	if header.Size > MaxFileUploadSize {
		return model.ProjectFile{}, fmt.Errorf("%w (%d bytes)", ErrFileTooLarge, MaxFileUploadSize)
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = mimeTypeFromExtension(header.Filename)
	}
	if !AllowedFileMimeTypes[mimeType] {
		return model.ProjectFile{}, fmt.Errorf("%w: %s", ErrUnsupportedFileType, mimeType)
	}

	fileUUID := uuid.New().String()
	filename := sanitizeFilename(header.Filename)

	filePath, size, err := s.saveFile(file, fileUUID, filename)
	if err != nil {
		return model.ProjectFile{}, fmt.Errorf("failed to save file: %w", err)
	}

	queries := store.New(s.db)
	pf, err := queries.CreateProjectFile(ctx, store.CreateProjectFileParams{
		ProjectID:  projectID,
		UploadedBy: uploadedBy,
		URL:        fmt.Sprintf("/uploads/originals/%s/%s", fileUUID, filename),
		Name:       header.Filename,
		Type:       mimeType,
		Size:       size,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		_ = os.Remove(filePath)
		return model.ProjectFile{}, fmt.Errorf("failed to create file record: %w", err)
	}
	return pf, nil
}

// DeleteProjectFile removes a file record and its data on disk.
func (s *MediaService) DeleteProjectFile(ctx context.Context, fileID, projectID int64) error {
	queries := store.New(s.db)

	files, err := queries.ListProjectFiles(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to list project files: %w", err)
	}
	var target *model.ProjectFile
	for i := range files {
		if files[i].ID == fileID {
			target = &files[i]
			break
		}
	}
	if target == nil {
		return sql.ErrNoRows
	}

	if err := queries.DeleteProjectFile(ctx, fileID); err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}

	// DB record is gone; a leftover file on disk is only noise.
	if path, ok := s.diskPath(target.URL); ok {
		if err := os.RemoveAll(filepath.Dir(path)); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to delete project file from disk", "file_id", fileID, "error", err)
		}
	}
	return nil
}

// RemoveStoredFile deletes a file's data on disk without touching the
// database. Used when the owning rows are already gone.
func (s *MediaService) RemoveStoredFile(f model.ProjectFile) error {
	path, ok := s.diskPath(f.URL)
	if !ok {
		return nil
	}
	if err := os.RemoveAll(filepath.Dir(path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file from disk: %w", err)
	}
	return nil
}

// OpenProjectFile resolves a stored file URL to a readable handle for
// download and archive streaming.
func (s *MediaService) OpenProjectFile(f model.ProjectFile) (io.ReadCloser, error) {
	path, ok := s.diskPath(f.URL)
	if !ok {
		return nil, fmt.Errorf("file %d is not stored locally", f.ID)
	}
	return os.Open(path)
}

// diskPath maps a public /uploads/ URL back to its path under the upload
// directory. Returns false for URLs outside the upload tree.
func (s *MediaService) diskPath(url string) (string, bool) {
	const prefix = "/uploads/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	rel := filepath.Clean(strings.TrimPrefix(url, prefix))
	if rel == "." || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return "", false
	}
	return filepath.Join(s.uploadDir, rel), true
}

// saveFile writes an attachment to the uploads directory.
func (s *MediaService) saveFile(file io.Reader, uuid, filename string) (string, int64, error) {
	dir := filepath.Join(s.uploadDir, "originals", uuid)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create directory: %w", err)
	}

	filePath := filepath.Join(dir, filename)
	out, err := os.Create(filePath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = out.Close() }()

	size, err := io.Copy(out, file)
	if err != nil {
		_ = os.Remove(filePath)
		return "", 0, fmt.Errorf("failed to write file: %w", err)
	}
	return filePath, size, nil
}

// Helper functions

func sanitizeFilename(filename string) string {
	// Remove path separators
	filename = filepath.Base(filename)

	// Replace problematic characters
	replacer := strings.NewReplacer(
		" ", "-",
		"'", "",
		"\"", "",
		"<", "",
		">", "",
		"&", "",
		"#", "",
		"?", "",
		"%", "",
	)
	filename = replacer.Replace(filename)

	// Ensure we have an extension
	if filepath.Ext(filename) == "" {
		filename += ".bin"
	}

	return filename
}

func mimeTypeFromExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg":
		return model.MimeTypeJPEG
	case ".png":
		return model.MimeTypePNG
	case ".gif":
		return model.MimeTypeGIF
	case ".webp":
		return model.MimeTypeWebP
	case ".pdf":
		return model.MimeTypePDF
	case ".zip":
		return model.MimeTypeZIP
	case ".docx":
		return model.MimeTypeDOCX
	case ".xlsx":
		return model.MimeTypeXLSX
	default:
		return "application/octet-stream"
	}
}
