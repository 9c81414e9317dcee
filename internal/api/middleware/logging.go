package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/arcade-go/internal/middleware"
)

// Logging logs each API request
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger)
}

// RequestID tags each API request with an X-Request-ID
func RequestID(next http.Handler) http.Handler {
	return middleware.RequestID(next)
}
