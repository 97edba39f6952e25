// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"testing"
	"time"
)

func TestNullInt64FromPtr(t *testing.T) {
	val := int64(42)
	n := NullInt64FromPtr(&val)
	if !n.Valid || n.Int64 != 42 {
		t.Errorf("NullInt64FromPtr(&42) = %+v", n)
	}

	n = NullInt64FromPtr(nil)
	if n.Valid {
		t.Errorf("NullInt64FromPtr(nil) = %+v, want invalid", n)
	}
}

func TestParseNullInt64(t *testing.T) {
	tests := []struct {
		input     string
		wantValid bool
		wantVal   int64
	}{
		{"42", true, 42},
		{"-7", true, -7},
		{"", false, 0},
		{"0", false, 0},
		{"abc", false, 0},
	}

	for _, tt := range tests {
		got := ParseNullInt64(tt.input)
		if got.Valid != tt.wantValid || got.Int64 != tt.wantVal {
			t.Errorf("ParseNullInt64(%q) = %+v, want valid=%v val=%d", tt.input, got, tt.wantValid, tt.wantVal)
		}
	}
}

func TestInt64PtrFromNull(t *testing.T) {
	if got := Int64PtrFromNull(NullInt64FromValue(9)); got == nil || *got != 9 {
		t.Errorf("Int64PtrFromNull(valid 9) = %v", got)
	}
	if got := Int64PtrFromNull(NullInt64FromPtr(nil)); got != nil {
		t.Errorf("Int64PtrFromNull(invalid) = %v, want nil", got)
	}
}

func TestNullStringHelpers(t *testing.T) {
	if n := NullStringFromValue("x"); !n.Valid || n.String != "x" {
		t.Errorf("NullStringFromValue(x) = %+v", n)
	}
	if n := NullStringFromValue(""); n.Valid {
		t.Errorf("NullStringFromValue(empty) = %+v, want invalid", n)
	}

	s := "ptr"
	if n := NullStringFromPtr(&s); !n.Valid || n.String != "ptr" {
		t.Errorf("NullStringFromPtr = %+v", n)
	}
	if n := NullStringFromPtr(nil); n.Valid {
		t.Errorf("NullStringFromPtr(nil) = %+v, want invalid", n)
	}
}

func TestNullTimeHelpers(t *testing.T) {
	now := time.Now()

	n := NullTimeFromPtr(&now)
	if !n.Valid || !n.Time.Equal(now) {
		t.Errorf("NullTimeFromPtr = %+v", n)
	}
	if back := TimePtrFromNull(n); back == nil || !back.Equal(now) {
		t.Errorf("TimePtrFromNull(valid) = %v", back)
	}

	if n := NullTimeFromPtr(nil); n.Valid {
		t.Errorf("NullTimeFromPtr(nil) = %+v, want invalid", n)
	}
	if back := TimePtrFromNull(NullTimeFromPtr(nil)); back != nil {
		t.Errorf("TimePtrFromNull(invalid) = %v, want nil", back)
	}
}
