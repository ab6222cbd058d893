package main

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withRequestLogging tags every request with an X-Request-Id and logs it once it
// has been served.
func withRequestLogging(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		w.Header().Set("X-Request-Id", requestID)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.Debug("Request served",
			slog.String("request_id", requestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

// clientIdleTTL is how long a client's limiter survives without requests.
const clientIdleTTL = 10 * time.Minute

// clientEntry is a client's limiter and the time of its latest request.
type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientLimiter rate limits requests per client address. Limiters of clients idle
// for longer than clientIdleTTL are dropped, so the map only holds recent clients.
type ClientLimiter struct {
	mu        sync.Mutex
	limits    map[string]*clientEntry
	rate      rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

// NewClientLimiter allows each client perSecond requests per second with the given
// burst. A perSecond of zero or less disables limiting.
func NewClientLimiter(perSecond float64, burst int) *ClientLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &ClientLimiter{
		limits:    make(map[string]*clientEntry),
		rate:      limit,
		burst:     burst,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// getLimiter gets or creates the limiter for key, sweeping idle clients at most
// once per clientIdleTTL.
func (cl *ClientLimiter) getLimiter(key string) *rate.Limiter {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	now := cl.now()
	if now.Sub(cl.lastSweep) >= clientIdleTTL {
		for k, e := range cl.limits {
			if now.Sub(e.lastSeen) >= clientIdleTTL {
				delete(cl.limits, k)
			}
		}
		cl.lastSweep = now
	}

	if e, ok := cl.limits[key]; ok {
		e.lastSeen = now
		return e.limiter
	}
	limiter := rate.NewLimiter(cl.rate, cl.burst)
	cl.limits[key] = &clientEntry{limiter: limiter, lastSeen: now}
	return limiter
}

// tracked is the number of clients currently holding a limiter.
func (cl *ClientLimiter) tracked() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return len(cl.limits)
}

// Allow reports whether a request from key may proceed now.
func (cl *ClientLimiter) Allow(key string) bool {
	return cl.getLimiter(key).Allow()
}

// Middleware rejects requests over the limit with 429 Too Many Requests.
func (cl *ClientLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !cl.Allow(clientKey(r)) {
			respondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey is the host part of the remote address.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
