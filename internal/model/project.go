// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"time"
)

// Phase statuses
const (
	PhaseStatusUpcoming   = "upcoming"
	PhaseStatusInProgress = "in_progress"
	PhaseStatusCompleted  = "completed"
)

// Payment statuses
const (
	PaymentStatusPaid     = "paid"
	PaymentStatusDueSoon  = "due_soon"
	PaymentStatusUpcoming = "upcoming"
	PaymentStatusDue      = "due"
)

// File uploader kinds
const (
	FileUploaderClient  = "client"
	FileUploaderCompany = "company"
)

// DueSoonWindow is how far ahead of the due date a payment moves to due_soon.
const DueSoonWindow = 7 * 24 * time.Hour

// IsValidPhaseStatus reports whether status is a known phase status.
func IsValidPhaseStatus(status string) bool {
	return status == PhaseStatusUpcoming || status == PhaseStatusInProgress || status == PhaseStatusCompleted
}

// Phase is one stage of a project timeline.
type Phase struct {
	ID          int64         `json:"id"`
	ProjectID   int64         `json:"project_id"`
	Title       LocalizedText `json:"title"`
	Description LocalizedText `json:"description"`
	Status      string        `json:"status"`
	Duration    string        `json:"duration"`
	Progress    int64         `json:"progress"` // 0-100
	Position    int64         `json:"position"`
}

// Payment is a billed installment on a project.
type Payment struct {
	ID        int64         `json:"id"`
	ProjectID int64         `json:"project_id"`
	Title     LocalizedText `json:"title"`
	Amount    float64       `json:"amount"`
	DueDate   time.Time     `json:"due_date"`
	Status    string        `json:"status"`
	PaidAt    *time.Time    `json:"paid_at,omitempty"`
}

// ComputedStatus derives the non-paid status from the due date.
// Paid payments keep their status; everything else is a function of time.
func (p *Payment) ComputedStatus(now time.Time) string {
	if p.Status == PaymentStatusPaid {
		return PaymentStatusPaid
	}
	switch {
	case now.After(p.DueDate):
		return PaymentStatusDue
	case p.DueDate.Sub(now) <= DueSoonWindow:
		return PaymentStatusDueSoon
	default:
		return PaymentStatusUpcoming
	}
}

// ProjectFile is a document attached to a project by either side.
type ProjectFile struct {
	ID         int64     `json:"id"`
	ProjectID  int64     `json:"project_id"`
	UploadedBy string    `json:"uploaded_by"` // client or company
	URL        string    `json:"url"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"created_at"`
}

// Project is a client engagement tracked in the portal.
type Project struct {
	ID         int64         `json:"id"`
	Name       LocalizedText `json:"name"`
	UserID     int64         `json:"user_id"`
	AccessCode string        `json:"-"` // Portal access code, never exposed in listings
	TotalCost  float64       `json:"total_cost"`
	Progress   int64         `json:"progress"` // 0-100, derived from phases
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// OverallProgress computes the project progress as the mean of phase progress.
// Returns 0 for a project with no phases.
func OverallProgress(phases []Phase) int64 {
	if len(phases) == 0 {
		return 0
	}
	var sum int64
	for _, ph := range phases {
		sum += ph.Progress
	}
	return sum / int64(len(phases))
}
