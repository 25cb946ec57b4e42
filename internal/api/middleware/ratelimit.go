package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/moredevelopers26/chattest/internal/metrics"
)

// RateLimit defines limits for an endpoint pattern.
type RateLimit struct {
	Pattern  string // "METHOD /prefix"
	Requests int
	Window   time.Duration
	KeyFunc  func(r *http.Request) string
}

// RateLimiterConfig holds configuration for the rate limiter.
type RateLimiterConfig struct {
	PerMinute        int      // default budget for routes without a specific limit
	Whitelist        []string // IPs or CIDRs exempt from rate limiting
	AutoBlockEnabled bool     // Enable auto-blocking after repeated violations
}

// RateLimiter applies token-bucket limits per client and route.
type RateLimiter struct {
	limits       []RateLimit
	fallback     RateLimit
	blocker      *IPBlocker
	logger       zerolog.Logger
	whitelist    []*net.IPNet
	whitelistIPs map[string]bool
	autoBlock    bool

	mu         sync.Mutex
	visitors   map[string]*visitor
	violations map[string]int
	stop       chan struct{}
	stopOnce   sync.Once
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiter and starts its idle sweeper.
func NewRateLimiter(logger zerolog.Logger, cfg RateLimiterConfig) *RateLimiter {
	perMinute := cfg.PerMinute
	if perMinute <= 0 {
		perMinute = 120
	}

	rl := &RateLimiter{
		blocker:      NewIPBlocker(),
		logger:       logger,
		whitelistIPs: make(map[string]bool),
		autoBlock:    cfg.AutoBlockEnabled,
		visitors:     make(map[string]*visitor),
		violations:   make(map[string]int),
		stop:         make(chan struct{}),
		limits: []RateLimit{
			{"POST /auth/", 10, time.Minute, ipKey},
			{"POST /rooms/", 60, time.Minute, sessionOrIPKey},
			{"PUT /rooms/", 60, time.Minute, sessionOrIPKey},
			{"GET /rooms/", 240, time.Minute, sessionOrIPKey},
			{"POST /calls", 30, time.Minute, sessionOrIPKey},
			{"POST /vault", 60, time.Minute, sessionOrIPKey},
		},
		fallback: RateLimit{"*", perMinute, time.Minute, ipKey},
	}

	// Parse whitelist entries
	for _, entry := range cfg.Whitelist {
		if strings.Contains(entry, "/") {
			// CIDR notation
			_, ipNet, err := net.ParseCIDR(entry)
			if err != nil {
				logger.Warn().Str("entry", entry).Err(err).Msg("invalid CIDR in whitelist")
				continue
			}
			rl.whitelist = append(rl.whitelist, ipNet)
		} else {
			// Single IP
			rl.whitelistIPs[entry] = true
		}
	}

	if len(cfg.Whitelist) > 0 {
		logger.Info().
			Int("ips", len(rl.whitelistIPs)).
			Int("cidrs", len(rl.whitelist)).
			Msg("rate limit whitelist configured")
	}

	go rl.sweep()
	return rl
}

// Stop ends the idle sweeper.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// isWhitelisted checks if an IP is in the whitelist.
func (rl *RateLimiter) isWhitelisted(ipStr string) bool {
	// Check exact IP match
	if rl.whitelistIPs[ipStr] {
		return true
	}

	// Check CIDR ranges
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	for _, ipNet := range rl.whitelist {
		if ipNet.Contains(ip) {
			return true
		}
	}
	return false
}

// ipKey returns rate limit key based on client IP.
func ipKey(r *http.Request) string {
	return "ip:" + RealIP(r)
}

// sessionOrIPKey keys signed-in traffic by user, anonymous traffic by IP.
func sessionOrIPKey(r *http.Request) string {
	if u := GetUserFromContext(r.Context()); u != nil {
		return "user:" + u.ID
	}
	return ipKey(r)
}

// RealIP extracts the real client IP from headers or connection.
func RealIP(r *http.Request) string {
	// X-Forwarded-For first
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}
	// Then X-Real-IP
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	// Fallback to RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// limiter returns the bucket for key, creating it on first use.
func (rl *RateLimiter) limiter(key string, limit RateLimit) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[key]
	if !ok {
		every := rate.Limit(float64(limit.Requests) / limit.Window.Seconds())
		v = &visitor{limiter: rate.NewLimiter(every, limit.Requests)}
		rl.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// sweep drops buckets idle for five minutes.
func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-5 * time.Minute)
			rl.mu.Lock()
			for k, v := range rl.visitors {
				if v.lastSeen.Before(cutoff) {
					delete(rl.visitors, k)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Middleware returns the rate limiting middleware.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := RealIP(r)

		// Skip rate limiting for whitelisted IPs
		if rl.isWhitelisted(ip) {
			next.ServeHTTP(w, r)
			return
		}

		// Check IP block first
		if rl.blocker.IsBlocked(ip) {
			metrics.BlockedRequests.WithLabelValues("ip_blocked").Inc()
			rl.logger.Warn().
				Str("type", "security").
				Str("event", "blocked_request").
				Str("ip", ip).
				Str("endpoint", r.URL.Path).
				Msg("blocked IP attempted request")
			jsonError(w, http.StatusForbidden, "temporarily blocked")
			return
		}

		limit := rl.findLimit(r)
		key := limit.Pattern + "|" + limit.KeyFunc(r)
		lim := rl.limiter(key, limit)
		allowed := lim.Allow()

		// Set rate limit headers
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit.Requests))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(math.Max(0, math.Floor(lim.Tokens())))))

		if !allowed {
			perToken := limit.Window / time.Duration(limit.Requests)
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(perToken.Seconds()))))

			rl.trackViolation(ip)
			metrics.RateLimitHits.WithLabelValues(limit.Pattern).Inc()

			rl.logger.Warn().
				Str("type", "security").
				Str("event", "rate_limit_exceeded").
				Str("ip", ip).
				Str("endpoint", r.URL.Path).
				Str("key", key).
				Msg("rate limit exceeded")

			jsonError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// findLimit returns the first matching limit, or the default one.
func (rl *RateLimiter) findLimit(r *http.Request) RateLimit {
	key := r.Method + " " + r.URL.Path
	for _, limit := range rl.limits {
		if strings.HasPrefix(key, limit.Pattern) {
			return limit
		}
	}
	return rl.fallback
}

// trackViolation counts violations and auto-blocks repeat offenders.
func (rl *RateLimiter) trackViolation(ip string) {
	if !rl.autoBlock {
		return
	}

	rl.mu.Lock()
	rl.violations[ip]++
	count := rl.violations[ip]
	if count >= 10 {
		delete(rl.violations, ip)
	}
	rl.mu.Unlock()

	if count >= 10 {
		rl.blocker.Block(ip, 24*time.Hour)
		rl.logger.Warn().
			Str("type", "security").
			Str("event", "ip_auto_blocked").
			Str("ip", ip).
			Int("violations", count).
			Msg("IP auto-blocked for repeated violations")
	}
}

// IPBlocker manages temporary IP blocks.
type IPBlocker struct {
	mu      sync.Mutex
	blocked map[string]time.Time
}

// NewIPBlocker creates a new IP blocker.
func NewIPBlocker() *IPBlocker {
	return &IPBlocker{blocked: make(map[string]time.Time)}
}

// IsBlocked checks if an IP is blocked.
func (b *IPBlocker) IsBlocked(ip string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	until, ok := b.blocked[ip]
	if !ok {
		return false
	}
	if time.Now().After(until) {
		delete(b.blocked, ip)
		return false
	}
	return true
}

// Block blocks an IP for the specified duration.
func (b *IPBlocker) Block(ip string, duration time.Duration) {
	b.mu.Lock()
	b.blocked[ip] = time.Now().Add(duration)
	b.mu.Unlock()
}

// Unblock removes an IP block.
func (b *IPBlocker) Unblock(ip string) {
	b.mu.Lock()
	delete(b.blocked, ip)
	b.mu.Unlock()
}
