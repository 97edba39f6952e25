// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Notification types
const (
	NotificationTypeQuotation           = "quotation_request"
	NotificationTypeProjectModification = "project_modification"
)

// NotificationData is the typed payload on a notification. Type discriminates
// which denormalized display fields are populated.
type NotificationData struct {
	Type        string `json:"type"`
	QuoteID     int64  `json:"quote_id,omitempty"`
	ProjectID   int64  `json:"project_id,omitempty"`
	ServiceName string `json:"service_name,omitempty"`
	ClientName  string `json:"client_name,omitempty"`
	ProjectName string `json:"project_name,omitempty"`
}

// Value implements driver.Valuer.
func (d NotificationData) Value() (driver.Value, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshaling notification data: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (d *NotificationData) Scan(src any) error {
	return scanJSON(src, d, "notification data")
}

// Notification is a dashboard notification entry.
type Notification struct {
	ID        int64            `json:"id"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	Data      NotificationData `json:"data"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
