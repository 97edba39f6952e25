// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/awasec/awa-cms/internal/i18n"
)

// LoginProtectionConfig tunes brute-force defenses on login endpoints.
// Zero fields take the defaults.
type LoginProtectionConfig struct {
	IPRateLimit       float64       // login POSTs per second per IP
	IPBurst           int           // burst allowance per IP
	MaxFailedAttempts int           // failures before the account locks
	LockoutDuration   time.Duration // first lockout length, doubling per lockout
	AttemptWindow     time.Duration // window over which failures accumulate
}

// DefaultLoginProtectionConfig returns the production defaults: one login
// POST per two seconds per IP with a burst of five, and a 15-minute lockout
// after five failures.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

// LoginProtection combines per-IP rate limiting with per-account lockout
// for the dashboard and portal login endpoints. IP limiting throttles
// spraying; account lockout stops a targeted guess even from many IPs.
type LoginProtection struct {
	ipLimiters *limiterCache[string]

	mu       sync.RWMutex
	accounts map[string]*loginAttempt

	maxFailedAttempts int
	lockoutDuration   time.Duration
	attemptWindow     time.Duration
}

// loginAttempt is the failure history of one account.
type loginAttempt struct {
	count       int
	firstFailed time.Time
	lockedUntil time.Time
	lockouts    int
}

// NewLoginProtection creates a protection instance and starts its cleanup
// goroutine.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	defaults := DefaultLoginProtectionConfig()
	if cfg.IPRateLimit <= 0 {
		cfg.IPRateLimit = defaults.IPRateLimit
	}
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = defaults.IPBurst
	}
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = defaults.MaxFailedAttempts
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = defaults.LockoutDuration
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = defaults.AttemptWindow
	}

	lp := &LoginProtection{
		ipLimiters:        newLimiterCache[string](cfg.IPRateLimit, cfg.IPBurst),
		accounts:          make(map[string]*loginAttempt),
		maxFailedAttempts: cfg.MaxFailedAttempts,
		lockoutDuration:   cfg.LockoutDuration,
		attemptWindow:     cfg.AttemptWindow,
	}
	go lp.janitor()
	return lp
}

// CheckIPRateLimit reports whether a login attempt from ip is allowed.
func (lp *LoginProtection) CheckIPRateLimit(ip string) bool {
	return lp.ipLimiters.get(ip).Allow()
}

// IsAccountLocked reports whether the account is locked and for how much
// longer.
func (lp *LoginProtection) IsAccountLocked(account string) (bool, time.Duration) {
	lp.mu.RLock()
	attempt, ok := lp.accounts[account]
	lp.mu.RUnlock()

	if ok && time.Now().Before(attempt.lockedUntil) {
		return true, time.Until(attempt.lockedUntil)
	}
	return false, 0
}

// RecordFailedAttempt counts one failure. When the account crosses the
// threshold it locks, with the lockout length doubling on each repeat
// lockout up to a 24-hour cap. Returns whether this failure locked the
// account and for how long.
func (lp *LoginProtection) RecordFailedAttempt(account string) (bool, time.Duration) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	now := time.Now()
	attempt, ok := lp.accounts[account]
	if !ok || now.Sub(attempt.firstFailed) > lp.attemptWindow {
		if !ok {
			attempt = &loginAttempt{}
			lp.accounts[account] = attempt
		}
		attempt.count = 1
		attempt.firstFailed = now
		return false, 0
	}

	attempt.count++
	if attempt.count < lp.maxFailedAttempts {
		return false, 0
	}

	lock := lp.lockoutDuration << attempt.lockouts
	if lock > 24*time.Hour || lock <= 0 {
		lock = 24 * time.Hour
	}
	attempt.lockedUntil = now.Add(lock)
	attempt.lockouts++
	attempt.count = 0

	slog.Warn("account locked after repeated login failures",
		"account", account,
		"lockouts", attempt.lockouts,
		"duration", lock,
	)
	return true, lock
}

// RecordSuccessfulLogin clears the failure history for an account.
func (lp *LoginProtection) RecordSuccessfulLogin(account string) {
	lp.mu.Lock()
	delete(lp.accounts, account)
	lp.mu.Unlock()
}

// GetRemainingAttempts returns how many more failures the account can take
// before locking.
func (lp *LoginProtection) GetRemainingAttempts(account string) int {
	lp.mu.RLock()
	attempt, ok := lp.accounts[account]
	lp.mu.RUnlock()

	if !ok || time.Since(attempt.firstFailed) > lp.attemptWindow {
		return lp.maxFailedAttempts
	}
	if remaining := lp.maxFailedAttempts - attempt.count; remaining > 0 {
		return remaining
	}
	return 0
}

// janitor drops stale tracking state every ten minutes.
func (lp *LoginProtection) janitor() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		lp.cleanupStaleEntries()
	}
}

func (lp *LoginProtection) cleanupStaleEntries() {
	if lp.ipLimiters.clearIfExceeds(10000) {
		slog.Info("cleared login IP limiters due to size")
	}

	now := time.Now()
	lp.mu.Lock()
	for account, attempt := range lp.accounts {
		if now.After(attempt.lockedUntil) && now.Sub(attempt.firstFailed) > lp.attemptWindow {
			delete(lp.accounts, account)
		}
	}
	lp.mu.Unlock()
}

// Middleware rate limits login POSTs per client IP. Reads pass through so
// the limiter only spends tokens on actual attempts.
func (lp *LoginProtection) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ip := getClientIP(r)
			if !lp.CheckIPRateLimit(ip) {
				slog.Warn("login rate limit exceeded", "ip", ip)
				WriteAPIError(w, http.StatusTooManyRequests, "rate_limit_exceeded",
					i18n.T(GetLanguage(r), "error.rate_limited"), nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
