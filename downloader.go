package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// Retrieval error taxonomy. Handlers map these to user-visible conditions
// with errors.Is, so retrieval failures are never conflated with parse
// problems.
var (
	errNoCaptions       = errors.New("no subtitles available for this video")
	errRateLimited      = errors.New("rate limited by YouTube (429)")
	errVideoUnavailable = errors.New("video is private or unavailable")
	errAgeRestricted    = errors.New("video is age-restricted")
)

// rawCaptions is what a caption retriever yields: the raw file content plus
// the format hint the normalizer dispatches on.
type rawCaptions struct {
	Content  string
	Format   CaptionFormat
	Language string
}

// ytdlpAvailable reports whether the yt-dlp binary is on PATH.
func ytdlpAvailable() bool {
	_, err := exec.LookPath("yt-dlp")
	return err == nil
}

// fetchCaptionsYtdlp downloads auto-generated subtitles with yt-dlp into a
// temp directory, which is removed before returning. When ffmpeg is present
// the subtitles are converted to SRT; otherwise the raw VTT is used.
func fetchCaptionsYtdlp(ctx context.Context, url, lang string) (*rawCaptions, error) {
	if !ytdlpAvailable() {
		return nil, fmt.Errorf("yt-dlp not found in PATH")
	}

	tmpDir, err := os.MkdirTemp("", "ytcaps_")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	args := []string{
		"--skip-download",
		"--write-auto-sub",
		"--write-sub",
		"--sub-lang", lang,
		"--output", filepath.Join(tmpDir, "%(id)s.%(ext)s"),
	}
	if _, err := exec.LookPath("ffmpeg"); err == nil {
		args = append(args, "--convert-subs", "srt")
	}
	args = append(args, url)

	cmd := exec.CommandContext(ctx, "yt-dlp", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	runErr := cmd.Run()

	// yt-dlp can exit non-zero after writing subtitles (e.g. a late 429),
	// so look for output before giving up on the run error.
	subfile, format := findSubtitleFile(tmpDir)
	if subfile == "" {
		if runErr != nil {
			return nil, classifyYtdlpError(stderr.String(), runErr)
		}
		return nil, errNoCaptions
	}

	data, err := os.ReadFile(subfile)
	if err != nil {
		return nil, fmt.Errorf("failed to read subtitle file: %w", err)
	}

	return &rawCaptions{
		Content:  string(data),
		Format:   format,
		Language: lang,
	}, nil
}

// findSubtitleFile locates a caption file in dir, preferring SRT over VTT.
// With multiple matches the newest one wins.
func findSubtitleFile(dir string) (string, CaptionFormat) {
	for _, format := range []CaptionFormat{FormatSRT, FormatVTT} {
		matches, err := filepath.Glob(filepath.Join(dir, "*."+string(format)))
		if err != nil || len(matches) == 0 {
			continue
		}
		sort.Slice(matches, func(i, j int) bool {
			fi, errI := os.Stat(matches[i])
			fj, errJ := os.Stat(matches[j])
			if errI != nil || errJ != nil {
				return matches[i] < matches[j]
			}
			return fi.ModTime().After(fj.ModTime())
		})
		return matches[0], format
	}
	return "", ""
}

// classifyYtdlpError maps yt-dlp stderr output onto the retrieval error
// taxonomy.
func classifyYtdlpError(stderr string, err error) error {
	switch {
	case strings.Contains(stderr, "429"), strings.Contains(stderr, "Too Many Requests"):
		return errRateLimited
	case strings.Contains(stderr, "no subtitles"), strings.Contains(stderr, "There are no subtitles"):
		return errNoCaptions
	case strings.Contains(stderr, "Private video"), strings.Contains(stderr, "Video unavailable"):
		return errVideoUnavailable
	case strings.Contains(stderr, "age"):
		return errAgeRestricted
	}
	if line := firstLine(stderr); line != "" {
		return fmt.Errorf("yt-dlp failed: %w: %s", err, line)
	}
	return fmt.Errorf("yt-dlp failed: %w", err)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
