// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Quotation request statuses
const (
	QuoteStatusPending  = "pending"
	QuoteStatusInReview = "in_review"
	QuoteStatusQuoted   = "quoted"
	QuoteStatusClosed   = "closed"
)

// IsValidQuoteStatus reports whether status is a known quotation status.
func IsValidQuoteStatus(status string) bool {
	switch status {
	case QuoteStatusPending, QuoteStatusInReview, QuoteStatusQuoted, QuoteStatusClosed:
		return true
	}
	return false
}

// BudgetRange is the requester's expected budget bracket.
type BudgetRange struct {
	From float64 `json:"from"`
	To   float64 `json:"to"`
}

// Quote is a quotation request submitted from the public site.
type Quote struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	Phone       string        `json:"phone"`
	CompanyName string        `json:"company_name,omitempty"`
	ServiceID   sql.NullInt64 `json:"service_id,omitempty"`
	BudgetFrom  float64       `json:"budget_from"`
	BudgetTo    float64       `json:"budget_to"`
	Duration    string        `json:"duration,omitempty"`
	StartDate   sql.NullTime  `json:"start_date,omitempty"`
	EndDate     sql.NullTime  `json:"end_date,omitempty"`
	Description string        `json:"description"`
	Status      string        `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
