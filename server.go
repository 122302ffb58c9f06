package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

// Server configuration
const (
	maxRequestBodySize      = 1024 // only accepting JSON with URL + language
	serverReadTimeout       = 5 * time.Second
	serverWriteTimeout      = 120 * time.Second // retrieval can be slow under throttling
	serverIdleTimeout       = 60 * time.Second
	gracefulShutdownTimeout = 30 * time.Second
)

// API request/response types

type CaptionsRequest struct {
	URL      string `json:"url"`
	Language string `json:"language,omitempty"` // defaults to "en"
}

type CaptionsResponse struct {
	VideoID    string `json:"video_id"`
	Title      string `json:"title,omitempty"`
	Transcript string `json:"transcript"`
	Language   string `json:"language"`
	Format     string `json:"format,omitempty"`
	Source     string `json:"source,omitempty"`
	Cached     bool   `json:"cached"`
	DurationMS int64  `json:"duration_ms"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	VideoID string `json:"video_id,omitempty"`
}

type HealthResponse struct {
	Status                string `json:"status"` // "ok", "degraded", "unhealthy"
	CacheEntries          int    `json:"cache_entries"`
	UptimeSeconds         int64  `json:"uptime_seconds"`
	LastSuccess           string `json:"last_success,omitempty"`
	LastSuccessAgeSeconds int64  `json:"last_success_age_seconds,omitempty"`
}

// Error codes
const (
	ErrNoCaptions       = "no_captions"
	ErrVideoUnavailable = "video_unavailable"
	ErrAgeRestricted    = "age_restricted"
	ErrRateLimited      = "rate_limited"
	ErrFetchFailed      = "fetch_failed"
	ErrInvalidRequest   = "invalid_request"
)

var (
	serverStartTime time.Time
	lastSuccessTime time.Time
)

// startServer starts the HTTP server with graceful shutdown
func startServer(addr string, apiKey string) error {
	serverStartTime = time.Now()

	// Initialize logger (INFO level for production)
	initLogger(slog.LevelInfo)
	logInfo("starting server", slog.String("addr", addr))

	mux := http.NewServeMux()

	// Wrap handlers with API key auth if configured
	authMiddleware := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if apiKey != "" {
				providedKey := r.Header.Get("X-API-Key")
				if providedKey == "" {
					providedKey = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
				}
				if providedKey != apiKey {
					writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid or missing API key")
					return
				}
			}
			next(w, r)
		}
	}

	// Initialize rate limiter
	initRateLimiter()

	// Routes (rate limiting applied to all endpoints except health)
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("POST /captions", rateLimitMiddleware(authMiddleware(handleCaptions)))

	// Create server with timeouts and logging
	server := &http.Server{
		Addr:         addr,
		Handler:      loggingMiddleware(http.MaxBytesHandler(mux, maxRequestBodySize)),
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logInfo("shutdown signal received, gracefully stopping server")

		ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logError("server forced to shutdown", slog.String("error", err.Error()))
		}
	}()

	logInfo("server started", slog.String("addr", addr), slog.Bool("auth_enabled", apiKey != ""))

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logError("server error", slog.String("error", err.Error()))
		return fmt.Errorf("server error: %w", err)
	}

	logInfo("server stopped")
	return nil
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	cacheCount, err := getCacheStats()
	status := "ok"
	if err != nil {
		status = "unhealthy"
		cacheCount = 0
	}

	resp := HealthResponse{
		Status:        status,
		CacheEntries:  cacheCount,
		UptimeSeconds: int64(time.Since(serverStartTime).Seconds()),
	}

	if !lastSuccessTime.IsZero() {
		resp.LastSuccess = lastSuccessTime.Format(time.RFC3339)
		resp.LastSuccessAgeSeconds = int64(time.Since(lastSuccessTime).Seconds())

		// Degraded if no success in over an hour
		if resp.LastSuccessAgeSeconds > 3600 && status == "ok" {
			resp.Status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func handleCaptions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, videoID, lang, err := parseRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidRequest, err.Error())
		return
	}

	// Update request context for logging
	reqCtx := getRequestContext(r)
	reqCtx.VideoID = videoID
	reqCtx.Language = lang

	// Check cache
	cached := false
	var transcript, title, format, source string

	entry, err := getCachedTranscript(videoID, lang)
	if err == nil {
		cached = true
		transcript = entry.Transcript
		title = entry.Title
		logDebug("cache hit", slog.String("video_id", videoID), slog.String("language", lang))
	} else {
		logDebug("cache miss, fetching captions", slog.String("video_id", videoID))
		result, err := fetchTranscript(r.Context(), req.URL, lang, retrieverMode)
		if err != nil {
			logWarn("fetch failed", slog.String("video_id", videoID), slog.String("error", err.Error()))
			handleFetchError(w, err, videoID)
			return
		}
		transcript = result.Transcript
		title = result.Title
		format = string(result.Format)
		source = result.Source
		reqCtx.Source = source

		// Cache it
		_ = cacheTranscript(videoID, lang, title, transcript)
	}

	reqCtx.CacheHit = cached
	lastSuccessTime = time.Now()

	writeJSON(w, http.StatusOK, CaptionsResponse{
		VideoID:    videoID,
		Title:      title,
		Transcript: transcript,
		Language:   lang,
		Format:     format,
		Source:     source,
		Cached:     cached,
		DurationMS: time.Since(start).Milliseconds(),
	})
}

func parseRequest(r *http.Request) (*CaptionsRequest, string, string, error) {
	var req CaptionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, "", "", fmt.Errorf("invalid JSON: %w", err)
	}

	if req.URL == "" {
		return nil, "", "", fmt.Errorf("url is required")
	}

	videoID, err := extractVideoID(req.URL)
	if err != nil {
		return nil, "", "", fmt.Errorf("invalid YouTube URL: %w", err)
	}

	lang := req.Language
	if lang == "" {
		lang = defaultLanguage
	}

	return &req, videoID, lang, nil
}

// handleFetchError maps retrieval errors onto API error codes. Only the
// absence of usable caption content reaches here; parse irregularities
// degrade inside the normalizer instead of failing the request.
func handleFetchError(w http.ResponseWriter, err error, videoID string) {
	switch {
	case errors.Is(err, errNoCaptions):
		writeErrorWithVideo(w, http.StatusNotFound, ErrNoCaptions, "This video has no captions available", videoID)
	case errors.Is(err, errVideoUnavailable):
		writeErrorWithVideo(w, http.StatusNotFound, ErrVideoUnavailable, "Video is private or unavailable", videoID)
	case errors.Is(err, errAgeRestricted):
		writeErrorWithVideo(w, http.StatusForbidden, ErrAgeRestricted, "Video is age-restricted", videoID)
	case errors.Is(err, errRateLimited):
		writeErrorWithVideo(w, http.StatusTooManyRequests, ErrRateLimited, "Rate limited by YouTube, try again later", videoID)
	default:
		writeErrorWithVideo(w, http.StatusBadGateway, ErrFetchFailed, err.Error(), videoID)
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: message,
	})
}

func writeErrorWithVideo(w http.ResponseWriter, status int, code, message, videoID string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: message,
		VideoID: videoID,
	})
}
