package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Transcripts are cached in a SQLite database under cacheDir, keyed by
// (video_id, language) so the same video can be cached per language.
var db *sql.DB

const createTranscriptsTable = `
CREATE TABLE IF NOT EXISTS transcripts (
	video_id   TEXT NOT NULL,
	language   TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	transcript TEXT NOT NULL,
	fetched_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (video_id, language)
)`

// CacheEntry is one cached transcript row.
type CacheEntry struct {
	VideoID    string
	Language   string
	Title      string
	Transcript string
	FetchedAt  time.Time
}

// openCache lazily opens (and initializes) the cache database.
func openCache() (*sql.DB, error) {
	if db != nil {
		return db, nil
	}

	dir := cacheDir
	if dir == "" {
		dir = "./transcripts"
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", filepath.Join(dir, "transcripts.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if _, err := conn.Exec(createTranscriptsTable); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	db = conn
	return db, nil
}

// closeCache closes the cache database, if open.
func closeCache() {
	if db != nil {
		db.Close()
		db = nil
	}
}

// getCachedTranscript retrieves a cached transcript, returning an error on
// a cache miss.
func getCachedTranscript(videoID, lang string) (*CacheEntry, error) {
	conn, err := openCache()
	if err != nil {
		return nil, err
	}

	entry := CacheEntry{VideoID: videoID, Language: lang}
	row := conn.QueryRow(
		`SELECT title, transcript, fetched_at FROM transcripts WHERE video_id = ? AND language = ?`,
		videoID, lang,
	)
	if err := row.Scan(&entry.Title, &entry.Transcript, &entry.FetchedAt); err != nil {
		return nil, err
	}

	return &entry, nil
}

// cacheTranscript inserts or replaces a cached transcript.
func cacheTranscript(videoID, lang, title, transcript string) error {
	conn, err := openCache()
	if err != nil {
		return err
	}

	_, err = conn.Exec(
		`INSERT INTO transcripts (video_id, language, title, transcript, fetched_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (video_id, language) DO UPDATE SET
		 	title = excluded.title,
		 	transcript = excluded.transcript,
		 	fetched_at = excluded.fetched_at`,
		videoID, lang, title, transcript, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to cache transcript: %w", err)
	}
	return nil
}

// getCacheStats returns the number of cached transcripts.
func getCacheStats() (int, error) {
	conn, err := openCache()
	if err != nil {
		return 0, err
	}

	var count int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM transcripts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return count, nil
}
