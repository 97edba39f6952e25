// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/awasec/awa-cms/internal/model"
)

const sectionColumns = `id, page, kind, service_id, title, description, images, features,
	video_url, position, created_at, updated_at`

func scanSection(row interface{ Scan(...any) error }) (model.Section, error) {
	var s model.Section
	err := row.Scan(&s.ID, &s.Page, &s.Kind, &s.ServiceID, &s.Title, &s.Description,
		&s.Images, &s.Features, &s.VideoURL, &s.Order, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// GetSectionByID fetches a section by primary key.
func (q *Queries) GetSectionByID(ctx context.Context, id int64) (model.Section, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+sectionColumns+` FROM sections WHERE id = ?`, id)
	return scanSection(row)
}

// GetSectionByKind fetches the section of a given kind on a page.
// When several exist the lowest-ordered one wins.
func (q *Queries) GetSectionByKind(ctx context.Context, page, kind string) (model.Section, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+sectionColumns+` FROM sections
		WHERE page = ? AND kind = ? ORDER BY position, id LIMIT 1`, page, kind)
	return scanSection(row)
}

// ListSectionsParams filters the section list.
type ListSectionsParams struct {
	Page string // empty matches all pages
	Kind string // empty matches all kinds
}

// ListSections returns sections sorted by page then position.
func (q *Queries) ListSections(ctx context.Context, arg ListSectionsParams) ([]model.Section, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+sectionColumns+` FROM sections
		WHERE (? = '' OR page = ?) AND (? = '' OR kind = ?)
		ORDER BY page, position, id`,
		arg.Page, arg.Page, arg.Kind, arg.Kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []model.Section
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

// CreateSectionParams holds the fields for creating a section.
type CreateSectionParams struct {
	Page        string
	Kind        string
	ServiceID   sql.NullInt64
	Title       model.LocalizedText
	Description model.LocalizedText
	Images      model.ImageList
	Features    model.FeatureList
	VideoURL    sql.NullString
	Position    int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateSection inserts a section and returns the stored row.
func (q *Queries) CreateSection(ctx context.Context, arg CreateSectionParams) (model.Section, error) {
	res, err := q.db.ExecContext(ctx, `INSERT INTO sections
		(page, kind, service_id, title, description, images, features, video_url, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Page, arg.Kind, arg.ServiceID, arg.Title, arg.Description, arg.Images,
		arg.Features, arg.VideoURL, arg.Position, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return model.Section{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Section{}, err
	}
	return q.GetSectionByID(ctx, id)
}

// UpdateSectionParams holds the fields for updating a section.
type UpdateSectionParams struct {
	ID          int64
	Page        string
	Kind        string
	ServiceID   sql.NullInt64
	Title       model.LocalizedText
	Description model.LocalizedText
	Images      model.ImageList
	Features    model.FeatureList
	VideoURL    sql.NullString
	Position    int64
	UpdatedAt   time.Time
}

// UpdateSection updates a section and returns the stored row.
func (q *Queries) UpdateSection(ctx context.Context, arg UpdateSectionParams) (model.Section, error) {
	_, err := q.db.ExecContext(ctx, `UPDATE sections
		SET page = ?, kind = ?, service_id = ?, title = ?, description = ?,
			images = ?, features = ?, video_url = ?, position = ?, updated_at = ?
		WHERE id = ?`,
		arg.Page, arg.Kind, arg.ServiceID, arg.Title, arg.Description,
		arg.Images, arg.Features, arg.VideoURL, arg.Position, arg.UpdatedAt, arg.ID)
	if err != nil {
		return model.Section{}, err
	}
	return q.GetSectionByID(ctx, arg.ID)
}

// DeleteSection removes a section.
func (q *Queries) DeleteSection(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM sections WHERE id = ?`, id)
	return err
}
