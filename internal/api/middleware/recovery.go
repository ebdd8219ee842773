package middleware

import (
	"log/slog"
	"net/http"

	"github.com/ijo-project/ijo-backend/internal/api/apierr"
	"github.com/ijo-project/ijo-backend/internal/middleware"
)

// Recovery creates panic recovery middleware that answers with a JSON error
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}

// RateLimit limits each client to perSecond requests with bursts of burst, answering
// with a JSON 429 when exceeded
func RateLimit(logger *slog.Logger, perSecond float64, burst int) func(http.Handler) http.Handler {
	limiter := middleware.NewRateLimiter(perSecond, burst, func(w http.ResponseWriter, r *http.Request) {
		logger.Warn("rate limit exceeded",
			slog.String("client", middleware.ClientIP(r)),
			slog.String("path", r.URL.Path),
		)
		apierr.WriteError(w, apierr.NewRateLimitedError())
	})
	return limiter.Middleware
}
