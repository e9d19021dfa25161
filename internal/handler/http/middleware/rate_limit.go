package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/onestaff/onestaff-os/internal/handler/http/response"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long a key may stay silent before its limiter is
// dropped. It must exceed the time a bucket needs to refill completely.
const limiterIdleTTL = 10 * time.Minute

type keyLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// UserRateLimiter throttles expensive endpoints per authenticated user.
type UserRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*keyLimiter
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewUserRateLimiter(perMinute, burst int) *UserRateLimiter {
	limit := rate.Every(time.Minute / time.Duration(perMinute))

	idleTTL := limiterIdleTTL
	if refill := time.Duration(float64(burst) / float64(limit) * float64(time.Second)); refill > idleTTL {
		idleTTL = refill
	}

	return &UserRateLimiter{
		limiters:  make(map[string]*keyLimiter),
		limit:     limit,
		burst:     burst,
		idleTTL:   idleTTL,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (l *UserRateLimiter) limiterFor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.sweep(now)
	}

	entry, ok := l.limiters[key]
	if !ok {
		entry = &keyLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// sweep drops limiters idle for longer than idleTTL. Callers hold mu.
func (l *UserRateLimiter) sweep(now time.Time) {
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) >= l.idleTTL {
			delete(l.limiters, key)
		}
	}
	l.lastSweep = now
}

// Allow reports whether key may make one more request now.
func (l *UserRateLimiter) Allow(key string) bool {
	return l.limiterFor(key).Allow()
}

func (l *UserRateLimiter) retryAfterSeconds() int {
	secs := int(math.Ceil(1 / float64(l.limit)))
	if secs < 1 {
		return 1
	}
	return secs
}

// Handler keys the limiter on the caller's user ID, falling back to the remote address.
func (l *UserRateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.RemoteAddr
		if p, ok := PrincipalFromContext(r.Context()); ok {
			key = p.UserID
		}

		if !l.Allow(key) {
			w.Header().Set("Retry-After", strconv.Itoa(l.retryAfterSeconds()))
			response.TooManyRequests(w, "Too many requests, please retry later")
			return
		}

		next.ServeHTTP(w, r)
	})
}
