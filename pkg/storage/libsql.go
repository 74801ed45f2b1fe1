package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// LibSQL implements the Storage, Preferences and Library interfaces using libsql
// for remote databases and SQLite for local files
type LibSQL struct {
	db *sql.DB
}

// NewLibSQL creates a new LibSQL storage. "file:" URLs open a local SQLite
// database, anything else is handed to the libsql client.
func NewLibSQL(url string) (*LibSQL, error) {
	driver, dsn := "libsql", url
	if path, ok := strings.CutPrefix(url, "file:"); ok {
		driver, dsn = "sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &LibSQL{db: db}, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS extensions (
		pkg_name TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL,
		version_name TEXT NOT NULL,
		version_code INTEGER NOT NULL,
		lang TEXT NOT NULL,
		nsfw BOOLEAN NOT NULL DEFAULT 0,
		apk_path TEXT NOT NULL,
		installed_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS preferences (
		pref_key TEXT NOT NULL PRIMARY KEY,
		pref_value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS mangas (
		_id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
		source INTEGER NOT NULL,
		url TEXT NOT NULL,
		title TEXT NOT NULL,
		favorite BOOLEAN NOT NULL DEFAULT 0,
		initialized BOOLEAN NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS search_metadata (
		manga_id INTEGER NOT NULL PRIMARY KEY,
		uploader TEXT,
		extra TEXT NOT NULL,
		extra_version INTEGER NOT NULL,
		FOREIGN KEY (manga_id) REFERENCES mangas(_id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS sources (
		id INTEGER NOT NULL PRIMARY KEY,
		name TEXT NOT NULL,
		lang TEXT NOT NULL,
		online BOOLEAN NOT NULL DEFAULT 1
	)`,
}

// Initialize creates the database schema
func (s *LibSQL) Initialize(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// AddExtension records a newly installed extension
func (s *LibSQL) AddExtension(ctx context.Context, ext *Extension) error {
	now := time.Now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO extensions (
			pkg_name, name, version_name, version_code, lang, nsfw,
			apk_path, installed_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		ext.PackageName, ext.Name, ext.VersionName, ext.VersionCode, ext.Lang, ext.IsNSFW,
		ext.ApkPath, now.UnixMilli(), now.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert extension: %w", err)
	}

	ext.InstalledAt = now
	ext.UpdatedAt = now
	return nil
}

const extensionColumns = `pkg_name, name, version_name, version_code, lang, nsfw,
	apk_path, installed_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExtension(row rowScanner) (*Extension, error) {
	ext := &Extension{}
	var installedAt, updatedAt int64
	err := row.Scan(
		&ext.PackageName, &ext.Name, &ext.VersionName, &ext.VersionCode, &ext.Lang, &ext.IsNSFW,
		&ext.ApkPath, &installedAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	ext.InstalledAt = time.UnixMilli(installedAt)
	ext.UpdatedAt = time.UnixMilli(updatedAt)
	return ext, nil
}

// GetExtension gets an extension by package name
func (s *LibSQL) GetExtension(ctx context.Context, pkgName string) (*Extension, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+extensionColumns+`
		FROM extensions
		WHERE pkg_name = ?
	`, pkgName)

	ext, err := scanExtension(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get extension: %w", err)
	}

	return ext, nil
}

// ListExtensions lists all installed extensions
func (s *LibSQL) ListExtensions(ctx context.Context) ([]*Extension, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+extensionColumns+`
		FROM extensions
		ORDER BY pkg_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list extensions: %w", err)
	}
	defer rows.Close()

	var extensions []*Extension
	for rows.Next() {
		ext, err := scanExtension(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan extension: %w", err)
		}
		extensions = append(extensions, ext)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate extensions: %w", err)
	}

	return extensions, nil
}

// UpdateExtension updates an existing extension
func (s *LibSQL) UpdateExtension(ctx context.Context, ext *Extension) error {
	now := time.Now()
	result, err := s.db.ExecContext(ctx, `
		UPDATE extensions
		SET name = ?, version_name = ?, version_code = ?, lang = ?, nsfw = ?,
			apk_path = ?, updated_at = ?
		WHERE pkg_name = ?
	`,
		ext.Name, ext.VersionName, ext.VersionCode, ext.Lang, ext.IsNSFW,
		ext.ApkPath, now.UnixMilli(),
		ext.PackageName,
	)
	if err != nil {
		return fmt.Errorf("failed to update extension: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("extension %s: %w", ext.PackageName, ErrNotFound)
	}

	ext.UpdatedAt = now
	return nil
}

// DeleteExtension deletes an extension
func (s *LibSQL) DeleteExtension(ctx context.Context, pkgName string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM extensions
		WHERE pkg_name = ?
	`, pkgName)
	if err != nil {
		return fmt.Errorf("failed to delete extension: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("extension %s: %w", pkgName, ErrNotFound)
	}

	return nil
}

// Exec runs a raw statement against the database
func (s *LibSQL) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return execAffected(ctx, s.db, query, args...)
}

// InTransaction runs fn inside a transaction
func (s *LibSQL) InTransaction(ctx context.Context, fn func(ctx context.Context, tx Executor) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(ctx, &txExecutor{tx: tx}); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *LibSQL) Close() error {
	return s.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func execAffected(ctx context.Context, e execer, query string, args ...any) (int64, error) {
	result, err := e.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to execute statement: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}

// txExecutor scopes Exec to a running transaction
type txExecutor struct {
	tx *sql.Tx
}

func (t *txExecutor) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return execAffected(ctx, t.tx, query, args...)
}

// InTransaction on an open transaction runs fn within it
func (t *txExecutor) InTransaction(ctx context.Context, fn func(ctx context.Context, tx Executor) error) error {
	return fn(ctx, t)
}
