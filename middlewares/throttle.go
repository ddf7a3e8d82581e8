package middlewares

import (
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrymomot/waypoint/internal"
)

// Default throttle settings: 60 requests per minute per client.
const (
	DefaultThrottleLimit  = 60
	DefaultThrottleWindow = time.Minute
)

// ThrottleConfig configures the throttle middleware.
type ThrottleConfig struct {
	Limit  int           // Max requests per window
	Window time.Duration // Window duration
	KeyFn  func(c internal.Context) string
}

// ThrottleOption configures ThrottleConfig.
type ThrottleOption func(*ThrottleConfig)

// WithThrottleLimit sets the request limit per window.
func WithThrottleLimit(limit int) ThrottleOption {
	return func(cfg *ThrottleConfig) {
		if limit > 0 {
			cfg.Limit = limit
		}
	}
}

// WithThrottleWindow sets the window duration.
func WithThrottleWindow(d time.Duration) ThrottleOption {
	return func(cfg *ThrottleConfig) {
		if d > 0 {
			cfg.Window = d
		}
	}
}

// WithThrottleKeyFunc sets a custom client key function.
// Defaults to the client IP.
func WithThrottleKeyFunc(fn func(c internal.Context) string) ThrottleOption {
	return func(cfg *ThrottleConfig) {
		if fn != nil {
			cfg.KeyFn = fn
		}
	}
}

// Throttle returns middleware that rate-limits requests per client using
// an in-memory fixed window counter. Over-limit requests get a 429 with a
// Retry-After header. State is per-process: behind a load balancer each
// instance counts independently.
func Throttle(opts ...ThrottleOption) internal.Middleware {
	cfg := &ThrottleConfig{
		Limit:  DefaultThrottleLimit,
		Window: DefaultThrottleWindow,
		KeyFn:  clientIP,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	limiter := &fixedWindow{
		limit:   cfg.Limit,
		window:  cfg.Window,
		buckets: make(map[string]*windowBucket),
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			key := cfg.KeyFn(c)
			allowed, retryAfter := limiter.allow(key, time.Now())
			if !allowed {
				c.SetHeader("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
				return internal.ErrTooManyRequests("rate limit exceeded")
			}
			return next(c)
		}
	}
}

type windowBucket struct {
	start time.Time
	count int
}

type fixedWindow struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	buckets map[string]*windowBucket
}

func (fw *fixedWindow) allow(key string, now time.Time) (bool, time.Duration) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	b, ok := fw.buckets[key]
	if !ok || now.Sub(b.start) >= fw.window {
		// Expired buckets for other keys are reaped opportunistically so
		// the map does not grow without bound.
		if len(fw.buckets) > 1024 {
			for k, old := range fw.buckets {
				if now.Sub(old.start) >= fw.window {
					delete(fw.buckets, k)
				}
			}
		}
		fw.buckets[key] = &windowBucket{start: now, count: 1}
		return true, 0
	}

	if b.count >= fw.limit {
		return false, fw.window - now.Sub(b.start)
	}
	b.count++
	return true, 0
}

func clientIP(c internal.Context) string {
	r := c.Request()
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
