package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// limiter keeps one token bucket per client address.
type limiter struct {
	mu          sync.Mutex
	rps         rate.Limit
	burst       int
	clients     map[string]*rate.Limiter
	lastCleanup time.Time
}

func newLimiter(rps float64, burst int) *limiter {
	if burst < 1 {
		burst = 1
	}
	return &limiter{
		rps:         rate.Limit(rps),
		burst:       burst,
		clients:     map[string]*rate.Limiter{},
		lastCleanup: time.Now(),
	}
}

func (l *limiter) allow(client string) bool {
	l.mu.Lock()
	// forget all clients hourly
	if time.Since(l.lastCleanup) > time.Hour {
		l.clients = map[string]*rate.Limiter{}
		l.lastCleanup = time.Now()
	}
	lim, ok := l.clients[client]
	if !ok {
		lim = rate.NewLimiter(l.rps, l.burst)
		l.clients[client] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

func (s *Server) withRateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.limiter.allow(c.RealIP()) {
			return echo.NewHTTPError(http.StatusTooManyRequests)
		}
		return next(c)
	}
}
