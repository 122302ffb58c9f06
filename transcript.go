package main

import (
	"context"
	"fmt"
	"regexp"
)

// Retriever selection for fetchTranscript.
const (
	retrieverAuto      = "auto"
	retrieverInnertube = "innertube"
	retrieverYtdlp     = "ytdlp"
)

var videoIDPatterns = []*regexp.Regexp{
	// Standard watch URL (including mobile)
	regexp.MustCompile(`(?:m\.)?youtube\.com/watch\?v=([a-zA-Z0-9_-]{11})`),
	// Short URL
	regexp.MustCompile(`youtu\.be/([a-zA-Z0-9_-]{11})`),
	// Embed and legacy URLs
	regexp.MustCompile(`youtube\.com/(?:embed|v)/([a-zA-Z0-9_-]{11})`),
	// Shorts
	regexp.MustCompile(`youtube\.com/shorts/([a-zA-Z0-9_-]{11})`),
	// Live streams
	regexp.MustCompile(`youtube\.com/live/([a-zA-Z0-9_-]{11})`),
}

var bareVideoIDRe = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

// extractVideoID pulls the video ID from various YouTube URL formats
// Supported formats:
//   - youtube.com/watch?v=VIDEO_ID
//   - youtu.be/VIDEO_ID
//   - youtube.com/embed/VIDEO_ID
//   - youtube.com/v/VIDEO_ID
//   - youtube.com/shorts/VIDEO_ID
//   - youtube.com/live/VIDEO_ID
//   - m.youtube.com/watch?v=VIDEO_ID
//   - With extra params: ?v=VIDEO_ID&t=123
func extractVideoID(url string) (string, error) {
	for _, re := range videoIDPatterns {
		matches := re.FindStringSubmatch(url)
		if len(matches) > 1 {
			return matches[1], nil
		}
	}

	// Check if it's already just a video ID
	if bareVideoIDRe.MatchString(url) {
		return url, nil
	}

	return "", fmt.Errorf("could not extract video ID from: %s", url)
}

// fetchTranscript obtains a plain-text transcript for the video. Mode
// "innertube" and "ytdlp" force a single retriever; "auto" tries the
// innertube API first and falls back to yt-dlp when the binary is
// installed.
func fetchTranscript(ctx context.Context, url, lang, mode string) (*FetchResult, error) {
	videoID, err := extractVideoID(url)
	if err != nil {
		return nil, fmt.Errorf("invalid YouTube URL: %w", err)
	}

	switch mode {
	case retrieverInnertube:
		return fetchTranscriptInnertube(ctx, videoID, lang)
	case retrieverYtdlp:
		return fetchTranscriptYtdlp(ctx, url, videoID, lang)
	}

	result, err := fetchTranscriptInnertube(ctx, videoID, lang)
	if err == nil {
		return result, nil
	}
	if !ytdlpAvailable() {
		return nil, err
	}

	fallback, fbErr := fetchTranscriptYtdlp(ctx, url, videoID, lang)
	if fbErr != nil {
		// The innertube error carries the more specific diagnosis
		return nil, err
	}
	return fallback, nil
}

// fetchTranscriptYtdlp retrieves raw captions via yt-dlp and runs them
// through the normalizer for the format the download produced.
func fetchTranscriptYtdlp(ctx context.Context, url, videoID, lang string) (*FetchResult, error) {
	raw, err := fetchCaptionsYtdlp(ctx, url, lang)
	if err != nil {
		return nil, err
	}

	transcript := extractPlainText(raw.Content, raw.Format)
	if transcript == "" {
		return nil, fmt.Errorf("failed to parse caption content")
	}

	return &FetchResult{
		VideoID:    videoID,
		Transcript: transcript,
		Language:   raw.Language,
		Format:     raw.Format,
		Source:     "yt-dlp",
	}, nil
}
