// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/awasec/awa-cms/internal/model"
)

const articleColumns = `id, slug, title, description, body, main_image, service_id,
	published_at, created_at, updated_at`

func scanArticle(row interface{ Scan(...any) error }) (model.Article, error) {
	var a model.Article
	err := row.Scan(&a.ID, &a.Slug, &a.Title, &a.Description, &a.Body, &a.MainImage,
		&a.ServiceID, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func collectArticles(rows *sql.Rows) ([]model.Article, error) {
	defer rows.Close()
	var articles []model.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// GetArticleByID fetches an article by primary key.
func (q *Queries) GetArticleByID(ctx context.Context, id int64) (model.Article, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)
	return scanArticle(row)
}

// GetArticleBySlug fetches an article by slug.
func (q *Queries) GetArticleBySlug(ctx context.Context, slug string) (model.Article, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE slug = ?`, slug)
	return scanArticle(row)
}

// ListArticlesParams filters and paginates the admin article list.
type ListArticlesParams struct {
	ServiceID int64 // 0 matches all services
	Search    string
	Limit     int64
	Offset    int64
}

// ListArticles returns a page of articles, newest first.
// Search matches either locale of the title.
func (q *Queries) ListArticles(ctx context.Context, arg ListArticlesParams) ([]model.Article, error) {
	search := escapeLike(arg.Search)
	query := `SELECT ` + articleColumns + ` FROM articles
		WHERE (? = 0 OR service_id = ?)
		AND (? = '' OR json_extract(title, '$.en') LIKE '%' || ? || '%' ESCAPE '\'
			OR json_extract(title, '$.ar') LIKE '%' || ? || '%' ESCAPE '\')
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := q.db.QueryContext(ctx, query,
		arg.ServiceID, arg.ServiceID, search, search, search, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return collectArticles(rows)
}

// CountArticles counts articles matching the same filters as ListArticles.
func (q *Queries) CountArticles(ctx context.Context, arg ListArticlesParams) (int64, error) {
	search := escapeLike(arg.Search)
	query := `SELECT COUNT(*) FROM articles
		WHERE (? = 0 OR service_id = ?)
		AND (? = '' OR json_extract(title, '$.en') LIKE '%' || ? || '%' ESCAPE '\'
			OR json_extract(title, '$.ar') LIKE '%' || ? || '%' ESCAPE '\')`
	var count int64
	err := q.db.QueryRowContext(ctx, query,
		arg.ServiceID, arg.ServiceID, search, search, search).Scan(&count)
	return count, err
}

// ListPublishedArticlesParams paginates the public article feed.
type ListPublishedArticlesParams struct {
	ServiceID int64 // 0 matches all services
	Before    time.Time
	Limit     int64
	Offset    int64
}

// ListPublishedArticles returns articles whose publish time has passed,
// newest first. Used by the public site's infinite-scroll feed.
func (q *Queries) ListPublishedArticles(ctx context.Context, arg ListPublishedArticlesParams) ([]model.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles
		WHERE published_at IS NOT NULL AND published_at <= ?
		AND (? = 0 OR service_id = ?)
		ORDER BY published_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := q.db.QueryContext(ctx, query,
		arg.Before, arg.ServiceID, arg.ServiceID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return collectArticles(rows)
}

// CountPublishedArticles counts articles matching ListPublishedArticles filters.
func (q *Queries) CountPublishedArticles(ctx context.Context, arg ListPublishedArticlesParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles
		WHERE published_at IS NOT NULL AND published_at <= ?
		AND (? = 0 OR service_id = ?)`,
		arg.Before, arg.ServiceID, arg.ServiceID).Scan(&count)
	return count, err
}

// CreateArticleParams holds the fields for creating an article.
type CreateArticleParams struct {
	Slug        string
	Title       model.LocalizedText
	Description model.LocalizedText
	Body        model.LocalizedText
	MainImage   string
	ServiceID   int64
	PublishedAt sql.NullTime
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateArticle inserts an article and returns the stored row.
func (q *Queries) CreateArticle(ctx context.Context, arg CreateArticleParams) (model.Article, error) {
	res, err := q.db.ExecContext(ctx, `INSERT INTO articles
		(slug, title, description, body, main_image, service_id, published_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Slug, arg.Title, arg.Description, arg.Body, arg.MainImage, arg.ServiceID,
		arg.PublishedAt, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return model.Article{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Article{}, err
	}
	return q.GetArticleByID(ctx, id)
}

// UpdateArticleParams holds the fields for updating an article.
type UpdateArticleParams struct {
	ID          int64
	Slug        string
	Title       model.LocalizedText
	Description model.LocalizedText
	Body        model.LocalizedText
	MainImage   string
	ServiceID   int64
	PublishedAt sql.NullTime
	UpdatedAt   time.Time
}

// UpdateArticle updates an article and returns the stored row.
func (q *Queries) UpdateArticle(ctx context.Context, arg UpdateArticleParams) (model.Article, error) {
	_, err := q.db.ExecContext(ctx, `UPDATE articles
		SET slug = ?, title = ?, description = ?, body = ?, main_image = ?,
			service_id = ?, published_at = ?, updated_at = ?
		WHERE id = ?`,
		arg.Slug, arg.Title, arg.Description, arg.Body, arg.MainImage,
		arg.ServiceID, arg.PublishedAt, arg.UpdatedAt, arg.ID)
	if err != nil {
		return model.Article{}, err
	}
	return q.GetArticleByID(ctx, arg.ID)
}

// DeleteArticle removes an article.
func (q *Queries) DeleteArticle(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	return err
}

// CountArticlesBySlug counts articles with the given slug, excluding one ID.
func (q *Queries) CountArticlesBySlug(ctx context.Context, slug string, excludeID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM articles WHERE slug = ? AND id != ?`, slug, excludeID).Scan(&count)
	return count, err
}
