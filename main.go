package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const defaultLanguage = "en"

func init() {
	// Load .env file if present (silently ignore if missing)
	godotenv.Load()
}

var (
	// Config flags
	cacheDir      string
	retrieverMode string
	language      string
	outputPath    string
	formatFlag    string
	serveAddr     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ytcaps",
		Short: "Fetch YouTube auto-generated captions as plain text",
		Long: `A tool that downloads auto-generated subtitle tracks for YouTube videos
and normalizes them into clean plain text, stripped of timestamps,
indices, inline markup, and rolling-subtitle duplicates.

Captions are fetched via YouTube's innertube API, with yt-dlp as a
fallback when it is installed.`,
	}

	// Fetch command: download + normalize
	fetchCmd := &cobra.Command{
		Use:   "fetch <youtube-url>",
		Short: "Fetch a video's captions and print the plain-text transcript",
		Args:  cobra.ExactArgs(1),
		RunE:  runFetch,
	}
	fetchCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write transcript to file (default: stdout)")

	// Extract command: normalize a local caption file
	extractCmd := &cobra.Command{
		Use:   "extract <caption-file>",
		Short: "Normalize a local .srt or .vtt file into plain text",
		Args:  cobra.ExactArgs(1),
		RunE:  runExtract,
	}
	extractCmd.Flags().StringVar(&formatFlag, "format", "", "Caption format: srt or vtt (default: from file extension)")
	extractCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write transcript to file (default: stdout)")

	// Serve command: HTTP API
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the captions HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return startServer(serveAddr, os.Getenv("YTCAPS_API_KEY"))
		},
	}
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Address to listen on")

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "./transcripts", "Directory for the transcript cache")
	rootCmd.PersistentFlags().StringVar(&language, "lang", defaultLanguage, "Caption language preference")
	rootCmd.PersistentFlags().StringVar(&retrieverMode, "retriever", retrieverAuto, "Caption retriever: auto, innertube, or ytdlp")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func log(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "→ "+format+"\n", args...)
}

func runFetch(cmd *cobra.Command, args []string) error {
	url := args[0]

	log("Parsing URL...")
	videoID, err := extractVideoID(url)
	if err != nil {
		return fmt.Errorf("invalid YouTube URL: %w", err)
	}
	log("Video ID: %s", videoID)

	// Check cache first
	log("Checking cache...")
	var transcript string
	entry, err := getCachedTranscript(videoID, language)
	if err != nil {
		log("Not cached, fetching captions...")
		result, err := fetchTranscript(cmd.Context(), url, language, retrieverMode)
		if err != nil {
			return fmt.Errorf("failed to fetch captions: %w", err)
		}
		transcript = result.Transcript
		log("Captions fetched via %s (%d chars)", result.Source, len(transcript))

		if err := cacheTranscript(videoID, language, result.Title, transcript); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to cache transcript: %v\n", err)
		} else {
			log("Cached transcript")
		}
	} else {
		transcript = entry.Transcript
		log("Found cached transcript (%d chars)", len(transcript))
	}

	return writeTranscript(transcript)
}

func runExtract(cmd *cobra.Command, args []string) error {
	path := args[0]

	format, err := resolveFormat(path, formatFlag)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read caption file: %w", err)
	}

	transcript := extractPlainText(string(data), format)
	return writeTranscript(transcript)
}

// resolveFormat picks the caption format from the --format flag, falling
// back to the file extension. Dispatch is always caller-supplied; content
// is never sniffed.
func resolveFormat(path, flag string) (CaptionFormat, error) {
	switch strings.ToLower(flag) {
	case "srt":
		return FormatSRT, nil
	case "vtt":
		return FormatVTT, nil
	case "":
	default:
		return "", fmt.Errorf("unknown format %q (expected srt or vtt)", flag)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".srt":
		return FormatSRT, nil
	case ".vtt":
		return FormatVTT, nil
	}
	return "", fmt.Errorf("cannot determine caption format of %s: pass --format srt or --format vtt", path)
}

func writeTranscript(transcript string) error {
	if outputPath == "" {
		fmt.Println(transcript)
		return nil
	}
	if err := os.WriteFile(outputPath, []byte(transcript+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	log("Transcript written to %s", outputPath)
	return nil
}
