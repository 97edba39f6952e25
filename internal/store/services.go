// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/awasec/awa-cms/internal/model"
)

const serviceColumns = `id, slug, title, description, features, images, created_at, updated_at`

func scanService(row interface{ Scan(...any) error }) (model.Service, error) {
	var s model.Service
	err := row.Scan(&s.ID, &s.Slug, &s.Title, &s.Description, &s.Features, &s.Images,
		&s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// GetServiceByID fetches a service by primary key.
func (q *Queries) GetServiceByID(ctx context.Context, id int64) (model.Service, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = ?`, id)
	return scanService(row)
}

// GetServiceBySlug fetches a service by slug.
func (q *Queries) GetServiceBySlug(ctx context.Context, slug string) (model.Service, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+serviceColumns+` FROM services WHERE slug = ?`, slug)
	return scanService(row)
}

// ListServices returns all services ordered by creation time.
func (q *Queries) ListServices(ctx context.Context) ([]model.Service, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+serviceColumns+` FROM services ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []model.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

// CreateServiceParams holds the fields for creating a service.
type CreateServiceParams struct {
	Slug        string
	Title       model.LocalizedText
	Description model.LocalizedText
	Features    model.FeatureList
	Images      model.ImageList
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateService inserts a service and returns the stored row.
func (q *Queries) CreateService(ctx context.Context, arg CreateServiceParams) (model.Service, error) {
	res, err := q.db.ExecContext(ctx, `INSERT INTO services
		(slug, title, description, features, images, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arg.Slug, arg.Title, arg.Description, arg.Features, arg.Images, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return model.Service{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Service{}, err
	}
	return q.GetServiceByID(ctx, id)
}

// UpdateServiceParams holds the fields for updating a service.
type UpdateServiceParams struct {
	ID          int64
	Slug        string
	Title       model.LocalizedText
	Description model.LocalizedText
	Features    model.FeatureList
	Images      model.ImageList
	UpdatedAt   time.Time
}

// UpdateService updates a service and returns the stored row.
func (q *Queries) UpdateService(ctx context.Context, arg UpdateServiceParams) (model.Service, error) {
	_, err := q.db.ExecContext(ctx, `UPDATE services
		SET slug = ?, title = ?, description = ?, features = ?, images = ?, updated_at = ?
		WHERE id = ?`,
		arg.Slug, arg.Title, arg.Description, arg.Features, arg.Images, arg.UpdatedAt, arg.ID)
	if err != nil {
		return model.Service{}, err
	}
	return q.GetServiceByID(ctx, arg.ID)
}

// DeleteService removes a service. Attached articles cascade.
func (q *Queries) DeleteService(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM services WHERE id = ?`, id)
	return err
}

// CountServicesBySlug counts services with the given slug, excluding one ID.
func (q *Queries) CountServicesBySlug(ctx context.Context, slug string, excludeID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM services WHERE slug = ? AND id != ?`, slug, excludeID).Scan(&count)
	return count, err
}
