// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package geoip resolves login IP addresses to countries for the audit log,
// using a MaxMind GeoLite2-Country database.
package geoip

import (
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/oschwald/maxminddb-golang"
)

// Lookup maps IPs to ISO country codes. The zero value is usable but
// disabled; Init points it at a database file.
type Lookup struct {
	mu      sync.RWMutex
	reader  *maxminddb.Reader
	path    string
	modTime time.Time
}

// countryRecord picks the one field we need out of GeoLite2-Country rows.
type countryRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
}

// NewLookup returns a disabled lookup. Call Init to point it at a database.
func NewLookup() *Lookup {
	return &Lookup{}
}

// Init opens the database at path. An empty path leaves lookups disabled;
// login auditing still works, just without country attribution.
func (g *Lookup) Init(path string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.path = path
	if path == "" {
		return nil
	}
	return g.open()
}

// Reload re-opens the database when the file on disk has changed. The
// scheduler calls this nightly so GeoLite2 updates are picked up without a
// restart.
func (g *Lookup) Reload() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.path == "" {
		return nil
	}
	return g.open()
}

// open loads the database unless the on-disk file is unchanged. Caller
// holds the write lock.
func (g *Lookup) open() error {
	info, err := os.Stat(g.path)
	if err != nil {
		return fmt.Errorf("stat GeoIP database %s: %w", g.path, err)
	}
	if g.reader != nil && info.ModTime().Equal(g.modTime) {
		return nil
	}

	reader, err := maxminddb.Open(g.path)
	if err != nil {
		return fmt.Errorf("opening GeoIP database: %w", err)
	}

	if g.reader != nil {
		_ = g.reader.Close()
	}
	g.reader = reader
	g.modTime = info.ModTime()
	return nil
}

// LookupCountry returns the 2-letter ISO code for an IP, "LOCAL" for
// private and loopback addresses, and "" when the country is unknown or
// lookups are disabled.
func (g *Lookup) LookupCountry(ip string) string {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ""
	}
	if parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsLinkLocalUnicast() {
		return "LOCAL"
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.reader == nil {
		return ""
	}
	var record countryRecord
	if err := g.reader.Lookup(parsed, &record); err != nil {
		return ""
	}
	return record.Country.ISOCode
}

// Close releases the database.
func (g *Lookup) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.reader == nil {
		return nil
	}
	err := g.reader.Close()
	g.reader = nil
	return err
}

// countryNames covers the regions most of our traffic comes from. Codes
// outside the table are shown as-is.
var countryNames = map[string]string{
	"LOCAL": "Local Network",
	"SA":    "Saudi Arabia",
	"AE":    "United Arab Emirates",
	"KW":    "Kuwait",
	"QA":    "Qatar",
	"BH":    "Bahrain",
	"OM":    "Oman",
	"JO":    "Jordan",
	"LB":    "Lebanon",
	"EG":    "Egypt",
	"IQ":    "Iraq",
	"MA":    "Morocco",
	"DZ":    "Algeria",
	"TN":    "Tunisia",
	"TR":    "Turkey",
	"US":    "United States",
	"GB":    "United Kingdom",
	"DE":    "Germany",
	"FR":    "France",
	"ES":    "Spain",
	"IT":    "Italy",
	"NL":    "Netherlands",
	"SE":    "Sweden",
	"PL":    "Poland",
	"UA":    "Ukraine",
	"CA":    "Canada",
	"BR":    "Brazil",
	"AU":    "Australia",
	"JP":    "Japan",
	"CN":    "China",
	"KR":    "South Korea",
	"IN":    "India",
	"PK":    "Pakistan",
	"SG":    "Singapore",
	"MY":    "Malaysia",
	"ID":    "Indonesia",
	"ZA":    "South Africa",
	"NG":    "Nigeria",
	"KE":    "Kenya",
}

// CountryName returns a display name for an ISO code, for the audit log UI.
func CountryName(code string) string {
	if name, ok := countryNames[code]; ok {
		return name
	}
	if code == "" {
		return "Unknown"
	}
	return code
}
