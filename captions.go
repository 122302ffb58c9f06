package main

import (
	"html"
	"regexp"
	"strings"
)

// CaptionFormat identifies the grammar a raw caption file follows.
// The caller supplies it (from a file extension or the retriever);
// no content sniffing happens here.
type CaptionFormat string

const (
	FormatSRT CaptionFormat = "srt"
	FormatVTT CaptionFormat = "vtt"
)

var (
	indexRe     = regexp.MustCompile(`^\d+$`)
	tagRe       = regexp.MustCompile(`<[^>]*>`)
	spaceRe     = regexp.MustCompile(`\s+`)
	vttHeaderRe = regexp.MustCompile(`^(WEBVTT|Kind:|Language:)`)
)

// extractPlainText normalizes raw caption content into plain text:
// logical lines joined by \n, no timing or index artifacts, no markup,
// no blank lines. Malformed input degrades to best-effort output,
// never an error.
func extractPlainText(content string, format CaptionFormat) string {
	if format == FormatSRT {
		return extractPlainFromSRT(content)
	}
	return extractPlainFromVTT(content)
}

// extractPlainFromSRT converts SRT content into one logical line per cue,
// preserving cue order. A well-formed block is a numeric index line, a
// timing line, then text lines; the text lines are joined with a space.
func extractPlainFromSRT(content string) string {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	blocks := strings.Split(normalized, "\n\n")

	var out []string
	for _, block := range blocks {
		var lines []string
		for _, l := range strings.Split(block, "\n") {
			if l = strings.TrimSpace(l); l != "" {
				lines = append(lines, l)
			}
		}
		if len(lines) == 0 {
			continue
		}
		if text := srtBlockText(lines); text != "" {
			out = append(out, text)
		}
	}

	return strings.Join(out, "\n")
}

// srtBlockText pulls the spoken text out of one SRT block. Blocks that
// don't match the strict grammar (auto-generated files drop indices or
// timing lines) fall back to keeping every line that is neither an index
// nor a timing line.
func srtBlockText(lines []string) string {
	if len(lines) >= 3 && indexRe.MatchString(lines[0]) && strings.Contains(lines[1], "-->") {
		return strings.Join(lines[2:], " ")
	}

	var text []string
	for _, line := range lines {
		if indexRe.MatchString(line) || strings.Contains(line, "-->") {
			continue
		}
		text = append(text, line)
	}
	return strings.Join(text, " ")
}

// extractPlainFromVTT converts WebVTT content into plain text lines.
// Auto-generated tracks carry inline timestamps like <00:00:02.840>,
// <c> styling tags, and a rolling-subtitle effect where consecutive cues
// repeat most of the previous cue's text, so each line is stripped of
// markup and consecutive duplicates are suppressed.
func extractPlainFromVTT(content string) string {
	var texts []string
	var lastLine string

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		// Skip the WEBVTT header, metadata lines, and timing lines
		if vttHeaderRe.MatchString(line) || strings.Contains(line, "-->") {
			continue
		}
		// Skip cue index numbers
		if indexRe.MatchString(line) {
			continue
		}

		clean := tagRe.ReplaceAllString(line, "")
		clean = html.UnescapeString(clean)
		clean = spaceRe.ReplaceAllString(clean, " ")
		clean = strings.TrimSpace(clean)
		if clean == "" {
			continue
		}

		// Suppress consecutive duplicates (rolling-subtitle effect)
		if clean == lastLine {
			continue
		}
		texts = append(texts, clean)
		lastLine = clean
	}

	return strings.Join(texts, "\n")
}
