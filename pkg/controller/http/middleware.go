package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

// maxSlackBodySize limits the size of Slack request bodies
const maxSlackBodySize = 1 << 20

// LoggingMiddleware returns a middleware that logs HTTP requests and puts the logger into the request context
func LoggingMiddleware(ctx context.Context) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			logger := ctxlog.From(ctx).With("request_id", middleware.GetReqID(r.Context()))

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("HTTP request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"duration_ms", time.Since(start).Milliseconds(),
				)
			}()

			next.ServeHTTP(ww, r.WithContext(ctxlog.With(r.Context(), logger)))
		})
	}
}

// VerifySlackSignature returns a middleware that rejects requests without a valid
// X-Slack-Signature for the signing secret. The body is restored for the next handler.
func VerifySlackSignature(secret string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := ctxlog.From(r.Context())

			body, err := io.ReadAll(io.LimitReader(r.Body, maxSlackBodySize))
			if err != nil {
				logger.Error("Failed to read request body", "error", err)
				writeError(r.Context(), w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
				return
			}
			_ = r.Body.Close()

			verifier, err := slack.NewSecretsVerifier(r.Header, secret)
			if err != nil {
				logger.Warn("Invalid slack signature headers", "error", err)
				writeError(r.Context(), w, goerr.Wrap(err, "invalid signature headers"), http.StatusUnauthorized)
				return
			}
			if _, err := verifier.Write(body); err != nil {
				writeError(r.Context(), w, goerr.Wrap(err, "failed to verify signature"), http.StatusInternalServerError)
				return
			}
			if err := verifier.Ensure(); err != nil {
				logger.Warn("Invalid slack signature", "error", err)
				writeError(r.Context(), w, goerr.New("invalid signature"), http.StatusUnauthorized)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}

// writeError writes an error response
func writeError(ctx context.Context, w http.ResponseWriter, err error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(map[string]string{
		"error": err.Error(),
	}); err != nil {
		ctxlog.From(ctx).Error("Failed to encode error response", "error", err)
	}
}
