package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/slidinglog/rate-limiter/internal/limiter"
	"github.com/slidinglog/rate-limiter/internal/metrics"
)

// RateLimitMiddleware folds limiter decisions into the HTTP pipeline. The
// middleware is the component that owns the clock: it stamps each request
// with time.Now() and hands that to the limiter, which never reads a clock
// itself.
type RateLimitMiddleware struct {
	limiter *limiter.Limiter
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewRateLimitMiddleware(l *limiter.Limiter, logger *slog.Logger, m *metrics.Metrics) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: l,
		logger:  logger,
		metrics: m,
	}
}

func (m *RateLimitMiddleware) Handler(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID := m.getClientID(r)

		allowed, remaining, err := m.limiter.Allow(r.Context(), clientID, time.Now())
		if err != nil {
			// A store failure is not a rejection; surface it as one.
			m.metrics.StorageError()
			m.logger.Error("rate limiter error",
				"error", err,
				"client", clientID,
				"request_id", RequestIDFromContext(r.Context()),
			)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		rule := m.limiter.Rule(clientID)
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", rule.Capacity))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		if !allowed {
			m.metrics.Rejected()
			m.logger.Warn("rate limit exceeded",
				"client", clientID,
				"remaining", remaining,
				"path", r.URL.Path,
				"request_id", RequestIDFromContext(r.Context()),
			)

			m.sendRateLimitError(w, rule.Window, remaining)
			return
		}

		m.metrics.Admitted()
		m.logger.Info("request allowed",
			"client", clientID,
			"remaining", remaining,
			"path", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()),
		)

		next(w, r)
	}
}

func (m *RateLimitMiddleware) getClientID(r *http.Request) string {
	clientID := r.Header.Get("X-Client-ID")
	if clientID == "" {
		clientID = "default"
	}
	return clientID
}

func (m *RateLimitMiddleware) sendRateLimitError(w http.ResponseWriter, window time.Duration, remaining int) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
	w.WriteHeader(http.StatusTooManyRequests)

	response := map[string]interface{}{
		"error":     "Rate limit exceeded",
		"remaining": remaining,
	}

	json.NewEncoder(w).Encode(response)
}
