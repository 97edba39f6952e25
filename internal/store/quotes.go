// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/awasec/awa-cms/internal/model"
)

const quoteColumns = `id, name, email, phone, company_name, service_id, budget_from, budget_to,
	duration, start_date, end_date, description, status, created_at, updated_at`

func scanQuote(row interface{ Scan(...any) error }) (model.Quote, error) {
	var q model.Quote
	err := row.Scan(&q.ID, &q.Name, &q.Email, &q.Phone, &q.CompanyName, &q.ServiceID,
		&q.BudgetFrom, &q.BudgetTo, &q.Duration, &q.StartDate, &q.EndDate,
		&q.Description, &q.Status, &q.CreatedAt, &q.UpdatedAt)
	return q, err
}

// GetQuoteByID fetches a quotation request by primary key.
func (q *Queries) GetQuoteByID(ctx context.Context, id int64) (model.Quote, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = ?`, id)
	return scanQuote(row)
}

// ListQuotesParams filters and paginates quotation requests.
type ListQuotesParams struct {
	Status string // empty matches all
	Search string
	Limit  int64
	Offset int64
}

// ListQuotes returns a page of quotation requests, newest first.
func (q *Queries) ListQuotes(ctx context.Context, arg ListQuotesParams) ([]model.Quote, error) {
	search := escapeLike(arg.Search)
	query := `SELECT ` + quoteColumns + ` FROM quotes
		WHERE (? = '' OR status = ?)
		AND (? = '' OR name LIKE '%' || ? || '%' ESCAPE '\' OR email LIKE '%' || ? || '%' ESCAPE '\'
			OR company_name LIKE '%' || ? || '%' ESCAPE '\')
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := q.db.QueryContext(ctx, query,
		arg.Status, arg.Status, search, search, search, search,
		arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quotes []model.Quote
	for rows.Next() {
		quote, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, quote)
	}
	return quotes, rows.Err()
}

// CountQuotes counts quotation requests matching the same filters as ListQuotes.
func (q *Queries) CountQuotes(ctx context.Context, arg ListQuotesParams) (int64, error) {
	search := escapeLike(arg.Search)
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quotes
		WHERE (? = '' OR status = ?)
		AND (? = '' OR name LIKE '%' || ? || '%' ESCAPE '\' OR email LIKE '%' || ? || '%' ESCAPE '\'
			OR company_name LIKE '%' || ? || '%' ESCAPE '\')`,
		arg.Status, arg.Status, search, search, search, search).Scan(&count)
	return count, err
}

// CreateQuoteParams holds the fields of a submitted quotation request.
type CreateQuoteParams struct {
	Name        string
	Email       string
	Phone       string
	CompanyName string
	ServiceID   sql.NullInt64
	BudgetFrom  float64
	BudgetTo    float64
	Duration    string
	StartDate   sql.NullTime
	EndDate     sql.NullTime
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateQuote inserts a quotation request with status pending and returns the stored row.
func (q *Queries) CreateQuote(ctx context.Context, arg CreateQuoteParams) (model.Quote, error) {
	res, err := q.db.ExecContext(ctx, `INSERT INTO quotes
		(name, email, phone, company_name, service_id, budget_from, budget_to,
		duration, start_date, end_date, description, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Name, arg.Email, arg.Phone, arg.CompanyName, arg.ServiceID,
		arg.BudgetFrom, arg.BudgetTo, arg.Duration, arg.StartDate, arg.EndDate,
		arg.Description, model.QuoteStatusPending, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return model.Quote{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Quote{}, err
	}
	return q.GetQuoteByID(ctx, id)
}

// UpdateQuoteStatus moves a quotation request through its workflow.
func (q *Queries) UpdateQuoteStatus(ctx context.Context, id int64, status string, updatedAt time.Time) (model.Quote, error) {
	_, err := q.db.ExecContext(ctx, `UPDATE quotes SET status = ?, updated_at = ? WHERE id = ?`,
		status, updatedAt, id)
	if err != nil {
		return model.Quote{}, err
	}
	return q.GetQuoteByID(ctx, id)
}

// DeleteQuote removes a quotation request.
func (q *Queries) DeleteQuote(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM quotes WHERE id = ?`, id)
	return err
}

// CountQuotesByStatus returns per-status counts for the dashboard.
func (q *Queries) CountQuotesByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM quotes GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
