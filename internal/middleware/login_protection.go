// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// maxLockout caps the exponential lockout backoff.
const maxLockout = 24 * time.Hour

// maxTrackedIPs bounds the per-IP limiter cache between cleanups.
const maxTrackedIPs = 10000

// LoginProtection throttles login posts per IP and locks an email out after
// repeated rejections from the backend. The backend stays the only judge of
// credentials; this only slows down guessing through this site.
type LoginProtection struct {
	ipLimiters *limiterCache[string]

	mu       sync.Mutex
	accounts map[string]*accountState

	maxFailedAttempts int
	lockoutDuration   time.Duration
	attemptWindow     time.Duration
	now               func() time.Time
}

// accountState is the failure history of one email address.
type accountState struct {
	failures    int
	windowStart time.Time
	lockedUntil time.Time
	lockouts    int
}

// LoginProtectionConfig holds configuration for login protection.
type LoginProtectionConfig struct {
	// IPRateLimit is login posts per second per IP (default 0.5).
	IPRateLimit float64
	// IPBurst is the per-IP burst (default 5).
	IPBurst int
	// MaxFailedAttempts within AttemptWindow lock the email (default 5).
	MaxFailedAttempts int
	// LockoutDuration is the first lockout; each further one doubles it (default 15m).
	LockoutDuration time.Duration
	// AttemptWindow is how long failures are remembered (default 15m).
	AttemptWindow time.Duration
}

// DefaultLoginProtectionConfig returns the production settings.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

// NewLoginProtection creates a LoginProtection. Zero config fields take the
// DefaultLoginProtectionConfig values.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	def := DefaultLoginProtectionConfig()
	if cfg.IPRateLimit <= 0 {
		cfg.IPRateLimit = def.IPRateLimit
	}
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = def.IPBurst
	}
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = def.MaxFailedAttempts
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = def.AttemptWindow
	}

	lp := &LoginProtection{
		ipLimiters:        newLimiterCache[string](cfg.IPRateLimit, cfg.IPBurst),
		accounts:          make(map[string]*accountState),
		maxFailedAttempts: cfg.MaxFailedAttempts,
		lockoutDuration:   cfg.LockoutDuration,
		attemptWindow:     cfg.AttemptWindow,
		now:               time.Now,
	}

	go lp.cleanup()

	return lp
}

// normalizeEmail keys attempts case-insensitively.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CheckIPRateLimit reports whether a login post from ip is allowed.
func (lp *LoginProtection) CheckIPRateLimit(ip string) bool {
	return lp.ipLimiters.get(ip).Allow()
}

// IsAccountLocked reports whether email is locked and for how much longer.
func (lp *LoginProtection) IsAccountLocked(email string) (bool, time.Duration) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	st, ok := lp.accounts[normalizeEmail(email)]
	if !ok {
		return false, 0
	}
	if remaining := st.lockedUntil.Sub(lp.now()); remaining > 0 {
		return true, remaining
	}
	return false, 0
}

// RecordFailedAttempt counts a rejected login. It reports whether this
// failure locked the account, and for how long.
func (lp *LoginProtection) RecordFailedAttempt(email string) (bool, time.Duration) {
	key := normalizeEmail(email)
	now := lp.now()

	lp.mu.Lock()
	defer lp.mu.Unlock()

	st, ok := lp.accounts[key]
	if !ok {
		st = &accountState{}
		lp.accounts[key] = st
	}
	if st.failures == 0 || now.Sub(st.windowStart) > lp.attemptWindow {
		st.failures = 0
		st.windowStart = now
	}
	st.failures++
	slog.Debug("failed login recorded", "email", key, "count", st.failures)

	if st.failures < lp.maxFailedAttempts {
		return false, 0
	}

	d := lp.lockoutFor(st.lockouts)
	st.lockedUntil = now.Add(d)
	st.lockouts++
	st.failures = 0

	slog.Warn("login locked due to failed attempts",
		"email", key,
		"lockouts", st.lockouts,
		"duration", d,
		"category", "auth",
	)
	return true, d
}

// lockoutFor doubles the base lockout for every earlier lockout, up to maxLockout.
func (lp *LoginProtection) lockoutFor(previous int) time.Duration {
	d := lp.lockoutDuration
	for i := 0; i < previous && d < maxLockout; i++ {
		d *= 2
	}
	return min(d, maxLockout)
}

// RecordSuccessfulLogin forgets the failure history of email.
func (lp *LoginProtection) RecordSuccessfulLogin(email string) {
	lp.mu.Lock()
	delete(lp.accounts, normalizeEmail(email))
	lp.mu.Unlock()
}

// GetRemainingAttempts returns how many more failures email may have
// before it is locked.
func (lp *LoginProtection) GetRemainingAttempts(email string) int {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	st, ok := lp.accounts[normalizeEmail(email)]
	if !ok || lp.now().Sub(st.windowStart) > lp.attemptWindow {
		return lp.maxFailedAttempts
	}
	return max(lp.maxFailedAttempts-st.failures, 0)
}

func (lp *LoginProtection) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		lp.cleanupStaleEntries()
	}
}

func (lp *LoginProtection) cleanupStaleEntries() {
	if lp.ipLimiters.clearIfExceeds(maxTrackedIPs) {
		slog.Info("cleared login IP rate limiters", "limit", maxTrackedIPs)
	}

	now := lp.now()
	lp.mu.Lock()
	defer lp.mu.Unlock()
	for key, st := range lp.accounts {
		if now.After(st.lockedUntil) && now.Sub(st.windowStart) > lp.attemptWindow {
			delete(lp.accounts, key)
		}
	}
}

// Middleware rate limits login posts per client IP. Other methods pass.
func (lp *LoginProtection) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ip := ClientIP(r)
			if !lp.CheckIPRateLimit(ip) {
				slog.Warn("login rate limit exceeded", "ip", ip, "category", "auth")
				http.Error(w, "Too many login attempts. Please wait a moment and try again.", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
