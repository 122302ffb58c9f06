package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

var logger *slog.Logger

// initLogger sets up structured JSON logging. YTCAPS_LOG_LEVEL overrides
// the default level (debug, info, warn, error).
func initLogger(level slog.Level) {
	if env := os.Getenv("YTCAPS_LOG_LEVEL"); env != "" {
		level = parseLogLevel(env, level)
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

func parseLogLevel(s string, fallback slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return fallback
}

// logInfo logs an info message with optional attributes
func logInfo(msg string, attrs ...any) {
	if logger != nil {
		logger.Info(msg, attrs...)
	}
}

// logWarn logs a warning message with optional attributes
func logWarn(msg string, attrs ...any) {
	if logger != nil {
		logger.Warn(msg, attrs...)
	}
}

// logError logs an error message with optional attributes
func logError(msg string, attrs ...any) {
	if logger != nil {
		logger.Error(msg, attrs...)
	}
}

// logDebug logs a debug message with optional attributes
func logDebug(msg string, attrs ...any) {
	if logger != nil {
		logger.Debug(msg, attrs...)
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// requestContext holds request-scoped data for logging
type requestContext struct {
	VideoID  string
	Language string
	Source   string
	CacheHit bool
}

type ctxKey string

const reqCtxKey ctxKey = "requestContext"

// setRequestContext stores request context for logging
func setRequestContext(r *http.Request, ctx *requestContext) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), reqCtxKey, ctx))
}

// getRequestContext retrieves request context for logging
func getRequestContext(r *http.Request) *requestContext {
	if ctx, ok := r.Context().Value(reqCtxKey).(*requestContext); ok {
		return ctx
	}
	return &requestContext{}
}

// loggingMiddleware logs HTTP requests with structured data
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Initialize request context
		r = setRequestContext(r, &requestContext{})

		// Wrap response writer to capture status
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		reqCtx := getRequestContext(r)

		attrs := []any{
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", wrapped.status),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			slog.String("ip", getClientIP(r)),
		}

		if reqCtx.VideoID != "" {
			attrs = append(attrs, slog.String("video_id", reqCtx.VideoID))
		}
		if reqCtx.Language != "" {
			attrs = append(attrs, slog.String("language", reqCtx.Language))
		}
		if reqCtx.Source != "" {
			attrs = append(attrs, slog.String("source", reqCtx.Source))
		}
		if r.Method == "POST" {
			attrs = append(attrs, slog.Bool("cache_hit", reqCtx.CacheHit))
		}

		// Log based on status code
		if wrapped.status >= 500 {
			logError("request failed", attrs...)
		} else if wrapped.status >= 400 {
			logWarn("request error", attrs...)
		} else {
			logInfo("request completed", attrs...)
		}
	})
}
