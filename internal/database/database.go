package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"telegrab/internal/migrations"
	"telegrab/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// Database is the durable store behind the replay cache and the audit
// log. Safe for concurrent use; the upsert runs in one transaction so
// concurrent writers cannot interleave a partial file list.
type Database struct {
	db *sql.DB
}

func New(dbPath string) (*Database, error) {
	if len(dbPath) == 0 || dbPath[0] == '\x00' {
		return nil, fmt.Errorf("invalid database path")
	}

	file, err := os.OpenFile(dbPath, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create database file: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to close database file: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(migrations.InitialSchema); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize schema: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Database{db: db}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// GetCachedMedia returns the cache entry for a canonical URL, or nil if
// there is none. An entry whose file list resolves to zero usable
// handles is reported as absent. A hit refreshes last_used_at.
func (d *Database) GetCachedMedia(ctx context.Context, sourceURL string) (*models.CacheEntry, error) {
	query := `
		SELECT id, caption, last_used_at
		FROM media_cache
		WHERE source_url = ?
	`

	entry := &models.CacheEntry{SourceURL: sourceURL}
	err := d.db.QueryRowContext(ctx, query, sourceURL).Scan(&entry.ID, &entry.Caption, &entry.LastUsedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up cache entry: %w", err)
	}

	if _, err := d.db.ExecContext(ctx,
		`UPDATE media_cache SET last_used_at = CURRENT_TIMESTAMP WHERE id = ?`, entry.ID); err != nil {
		return nil, fmt.Errorf("failed to refresh cache entry: %w", err)
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT file_id, media_type FROM cached_files WHERE cache_id = ? ORDER BY position`, entry.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cached files: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fileID, typeStr string
		if err := rows.Scan(&fileID, &typeStr); err != nil {
			return nil, fmt.Errorf("failed to scan cached file: %w", err)
		}
		mediaType, ok := models.ParseMediaType(typeStr)
		if !ok {
			continue
		}
		entry.Files = append(entry.Files, models.CachedFile{FileID: fileID, Type: mediaType})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cached files: %w", err)
	}

	if len(entry.Files) == 0 {
		return nil, nil
	}

	return entry, nil
}

// StoreCachedMedia upserts the entry for a canonical URL, replacing the
// caption and the whole file list and refreshing last_used_at. The
// write is a single transaction.
func (d *Database) StoreCachedMedia(ctx context.Context, sourceURL, caption string, files []models.SentMedia) error {
	if len(files) == 0 {
		return fmt.Errorf("refusing to store cache entry with no files")
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var cacheID int64
	upsert := `
		INSERT INTO media_cache (source_url, caption) VALUES (?, ?)
		ON CONFLICT(source_url) DO UPDATE SET
			caption = excluded.caption,
			last_used_at = CURRENT_TIMESTAMP
		RETURNING id
	`
	if err := tx.QueryRowContext(ctx, upsert, sourceURL, caption).Scan(&cacheID); err != nil {
		return fmt.Errorf("failed to upsert cache entry: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cached_files WHERE cache_id = ?`, cacheID); err != nil {
		return fmt.Errorf("failed to clear cached files: %w", err)
	}

	for position, f := range files {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cached_files (cache_id, file_id, media_type, position) VALUES (?, ?, ?, ?)`,
			cacheID, f.FileID, string(f.Type), position); err != nil {
			return fmt.Errorf("failed to insert cached file: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cache entry: %w", err)
	}

	return nil
}

// LogRequest appends one audit record. One row per request, regardless
// of outcome.
func (d *Database) LogRequest(ctx context.Context, chatID int64, sourceURL string, status models.AuditStatus, processingTimeMs int64) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO requests (chat_id, source_url, status, processing_time_ms) VALUES (?, ?, ?, ?)`,
		chatID, sourceURL, string(status), processingTimeMs)
	if err != nil {
		return fmt.Errorf("failed to log request: %w", err)
	}
	return nil
}

// CleanupExpiredCache removes entries not replayed within ttlDays.
// cached_files rows go with them via the foreign key cascade.
func (d *Database) CleanupExpiredCache(ctx context.Context, ttlDays int) (int64, error) {
	result, err := d.db.ExecContext(ctx,
		`DELETE FROM media_cache WHERE last_used_at < datetime('now', '-' || ? || ' days')`, ttlDays)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired cache entries: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}
