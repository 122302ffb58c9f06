package main

import (
	"strings"
	"testing"
)

func TestExtractPlainFromSRT(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name: "two well-formed blocks",
			content: `1
00:00:00,000 --> 00:00:02,000
Hello world

2
00:00:02,000 --> 00:00:04,000
Goodbye
`,
			want: "Hello world\nGoodbye",
		},
		{
			name: "multi-line cue joined with space",
			content: `1
00:00:00,000 --> 00:00:02,000
first line
second line
`,
			want: "first line second line",
		},
		{
			name: "windows line endings",
			content: "1\r\n00:00:00,000 --> 00:00:02,000\r\nHello\r\n\r\n2\r\n00:00:02,000 --> 00:00:04,000\r\nWorld\r\n",
			want:    "Hello\nWorld",
		},
		{
			name: "missing index falls back to permissive parsing",
			content: `00:00:00,000 --> 00:00:02,000
no index here

2
00:00:02,000 --> 00:00:04,000
normal block
`,
			want: "no index here\nnormal block",
		},
		{
			name: "missing timing line falls back to permissive parsing",
			content: `1
just text without timing
`,
			want: "just text without timing",
		},
		{
			name: "block with no text yields nothing",
			content: `1
00:00:00,000 --> 00:00:02,000

2
00:00:02,000 --> 00:00:04,000
actual text
`,
			want: "actual text",
		},
		{
			name:    "empty input",
			content: "",
			want:    "",
		},
		{
			name:    "whitespace only",
			content: "\n\n   \n\n",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractPlainFromSRT(tt.content)
			if got != tt.want {
				t.Errorf("extractPlainFromSRT() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractPlainFromSRTOrderAndCount(t *testing.T) {
	content := `1
00:00:00,000 --> 00:00:01,000
alpha

2
00:00:01,000 --> 00:00:02,000
beta

3
00:00:02,000 --> 00:00:03,000
gamma
`
	got := extractPlainFromSRT(content)
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d output lines, want 3 (one per block)", len(lines))
	}
	want := []string{"alpha", "beta", "gamma"}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line %d = %q, want %q", i, lines[i], w)
		}
	}
}

func TestExtractPlainFromVTT(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name: "header and timing lines removed",
			content: `WEBVTT
Kind: captions
Language: en

00:00:00.000 --> 00:00:02.000
Hello world
`,
			want: "Hello world",
		},
		{
			name: "inline timestamps and style tags stripped",
			content: `WEBVTT

00:00:00.000 --> 00:00:02.000
Hello<00:00:01.000> <c>world</c>
`,
			want: "Hello world",
		},
		{
			name: "html entities decoded",
			content: `WEBVTT

00:00:00.000 --> 00:00:02.000
it&#39;s a test &amp; more
`,
			want: "it's a test & more",
		},
		{
			name: "consecutive duplicates suppressed",
			content: `WEBVTT

00:00:00.000 --> 00:00:02.000
the quick fox

00:00:02.000 --> 00:00:04.000
the quick fox

00:00:04.000 --> 00:00:06.000
jumps over
`,
			want: "the quick fox\njumps over",
		},
		{
			name: "duplicates after tag stripping suppressed",
			content: `WEBVTT

00:00:00.000 --> 00:00:02.000
rolling<00:00:01.000> text

00:00:02.000 --> 00:00:04.000
<c>rolling</c> text
`,
			want: "rolling text",
		},
		{
			name: "non-consecutive repeats are kept",
			content: `WEBVTT

00:00:00.000 --> 00:00:01.000
alpha

00:00:01.000 --> 00:00:02.000
beta

00:00:02.000 --> 00:00:03.000
alpha
`,
			want: "alpha\nbeta\nalpha",
		},
		{
			name: "numeric cue indices skipped",
			content: `WEBVTT

1
00:00:00.000 --> 00:00:02.000
first cue

2
00:00:02.000 --> 00:00:04.000
second cue
`,
			want: "first cue\nsecond cue",
		},
		{
			name: "whitespace runs collapsed",
			content: `WEBVTT

00:00:00.000 --> 00:00:02.000
spaced   out	text
`,
			want: "spaced out text",
		},
		{
			name: "line reduced to nothing by stripping is dropped",
			content: `WEBVTT

00:00:00.000 --> 00:00:02.000
<c></c>

00:00:02.000 --> 00:00:04.000
real text
`,
			want: "real text",
		},
		{
			name:    "empty input",
			content: "",
			want:    "",
		},
		{
			name:    "header only",
			content: "WEBVTT\n",
			want:    "",
		},
		{
			name: "timing line with position markup skipped",
			content: `WEBVTT

00:00:00.000 --> 00:00:02.000 align:start position:0%
positioned text
`,
			want: "positioned text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractPlainFromVTT(tt.content)
			if got != tt.want {
				t.Errorf("extractPlainFromVTT() = %q, want %q", got, tt.want)
			}
		})
	}
}

// Already-clean plain text should pass through the VTT cleaner unchanged.
func TestExtractPlainFromVTTIdempotent(t *testing.T) {
	clean := "first line\nsecond line\nthird line"
	once := extractPlainFromVTT(clean)
	if once != clean {
		t.Fatalf("first pass changed clean text: %q", once)
	}
	twice := extractPlainFromVTT(once)
	if twice != once {
		t.Errorf("second pass changed text: %q -> %q", once, twice)
	}
}

func TestExtractPlainTextDispatch(t *testing.T) {
	srt := "1\n00:00:00,000 --> 00:00:02,000\nsrt text\n"
	if got := extractPlainText(srt, FormatSRT); got != "srt text" {
		t.Errorf("srt dispatch = %q, want %q", got, "srt text")
	}

	vtt := "WEBVTT\n\n00:00:00.000 --> 00:00:02.000\nvtt text\n"
	if got := extractPlainText(vtt, FormatVTT); got != "vtt text" {
		t.Errorf("vtt dispatch = %q, want %q", got, "vtt text")
	}
}

// Feeding one format to the other parser must degrade, not panic or leak
// timing artifacts.
func TestExtractPlainTextWrongFormatDegrades(t *testing.T) {
	vtt := "WEBVTT\n\n00:00:00.000 --> 00:00:02.000\nsome text\n"
	got := extractPlainFromSRT(vtt)
	if strings.Contains(got, "-->") {
		t.Errorf("timing artifacts leaked into output: %q", got)
	}
	if !strings.Contains(got, "some text") {
		t.Errorf("expected best-effort text extraction, got %q", got)
	}
}
