package server

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/creeeasy/online-store-sub000/pkg/models"
)

type contextKey string

const userContextKey contextKey = "authUser"

// UserFromContext returns the authenticated user set by the auth middleware.
func UserFromContext(ctx context.Context) (*models.AuthUser, bool) {
	user, ok := ctx.Value(userContextKey).(*models.AuthUser)
	return user, ok
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start).String(),
				"remote":   r.RemoteAddr,
			}).Info("Request handled")
		})
	}
}

// requireAuth resolves the bearer token to a user before letting the request
// through. Every failure shape is a 401 with the standard envelope.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			h.respondError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		user, err := h.auth.UserByToken(r.Context(), token)
		if err != nil {
			h.respondError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// rateLimiter throttles the public inquiry-create endpoint per remote
// address.
type rateLimiter struct {
	visitors sync.Map
	window   time.Duration
	logger   *logrus.Logger
}

func newRateLimiter(window time.Duration, logger *logrus.Logger) *rateLimiter {
	rl := &rateLimiter{window: window, logger: logger}
	go rl.cleanup()
	return rl
}

func (rl *rateLimiter) cleanup() {
	for {
		time.Sleep(time.Minute)
		now := time.Now()
		rl.visitors.Range(func(key, value interface{}) bool {
			if now.Sub(value.(time.Time)) > rl.window {
				rl.visitors.Delete(key)
			}
			return true
		})
	}
}

func (rl *rateLimiter) middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if lastSeen, ok := rl.visitors.Load(ip); ok {
			if time.Since(lastSeen.(time.Time)) < rl.window {
				rl.logger.WithField("remote", ip).Warn("Rate limit exceeded")
				writeEnvelope(w, http.StatusTooManyRequests, models.Response{
					Success:   false,
					Message:   "Too many requests, please try again later",
					Timestamp: time.Now().UTC().Format(time.RFC3339),
				})
				return
			}
		}
		rl.visitors.Store(ip, time.Now())
		next(w, r)
	}
}
