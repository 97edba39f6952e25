// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"testing"
	"time"
)

func TestPaymentComputedStatus(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		payment Payment
		want    string
	}{
		{
			name:    "paid stays paid even when overdue",
			payment: Payment{Status: PaymentStatusPaid, DueDate: now.Add(-30 * 24 * time.Hour)},
			want:    PaymentStatusPaid,
		},
		{
			name:    "past due date",
			payment: Payment{DueDate: now.Add(-time.Hour)},
			want:    PaymentStatusDue,
		},
		{
			name:    "due within the week",
			payment: Payment{DueDate: now.Add(3 * 24 * time.Hour)},
			want:    PaymentStatusDueSoon,
		},
		{
			name:    "due exactly at the window edge",
			payment: Payment{DueDate: now.Add(DueSoonWindow)},
			want:    PaymentStatusDueSoon,
		},
		{
			name:    "due far in the future",
			payment: Payment{DueDate: now.Add(30 * 24 * time.Hour)},
			want:    PaymentStatusUpcoming,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.payment.ComputedStatus(now); got != tt.want {
				t.Errorf("ComputedStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOverallProgress(t *testing.T) {
	tests := []struct {
		name   string
		phases []Phase
		want   int64
	}{
		{
			name:   "no phases",
			phases: nil,
			want:   0,
		},
		{
			name:   "single phase",
			phases: []Phase{{Progress: 40}},
			want:   40,
		},
		{
			name:   "mean of several phases",
			phases: []Phase{{Progress: 100}, {Progress: 50}, {Progress: 0}},
			want:   50,
		},
		{
			name:   "integer division truncates",
			phases: []Phase{{Progress: 100}, {Progress: 1}},
			want:   50,
		},
		{
			name:   "all complete",
			phases: []Phase{{Progress: 100}, {Progress: 100}},
			want:   100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OverallProgress(tt.phases); got != tt.want {
				t.Errorf("OverallProgress() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsValidPhaseStatus(t *testing.T) {
	for _, status := range []string{PhaseStatusUpcoming, PhaseStatusInProgress, PhaseStatusCompleted} {
		if !IsValidPhaseStatus(status) {
			t.Errorf("IsValidPhaseStatus(%q) = false", status)
		}
	}
	for _, status := range []string{"done", "", "Completed"} {
		if IsValidPhaseStatus(status) {
			t.Errorf("IsValidPhaseStatus(%q) = true", status)
		}
	}
}

func TestIsValidQuoteStatus(t *testing.T) {
	for _, status := range []string{QuoteStatusPending, QuoteStatusInReview, QuoteStatusQuoted, QuoteStatusClosed} {
		if !IsValidQuoteStatus(status) {
			t.Errorf("IsValidQuoteStatus(%q) = false", status)
		}
	}
	if IsValidQuoteStatus("approved") {
		t.Error(`IsValidQuoteStatus("approved") = true`)
	}
}
