package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a row that must exist is missing
var ErrNotFound = errors.New("not found")

// Extension represents an installed extension
type Extension struct {
	PackageName string    // Android package name
	Name        string    // Display name
	VersionName string    // Installed version name
	VersionCode int       // Installed version code
	Lang        string    // Source language code
	IsNSFW      bool      // Adult content flag
	ApkPath     string    // Location of the installed APK
	InstalledAt time.Time // When the extension was installed
	UpdatedAt   time.Time // When the extension was last updated
}

// Storage defines the interface for installed extension storage
type Storage interface {
	// Initialize initializes the storage (e.g., creates tables)
	Initialize(ctx context.Context) error

	// AddExtension records a newly installed extension
	AddExtension(ctx context.Context, ext *Extension) error

	// GetExtension gets an extension by package name, nil if absent
	GetExtension(ctx context.Context, pkgName string) (*Extension, error)

	// ListExtensions lists all installed extensions
	ListExtensions(ctx context.Context) ([]*Extension, error)

	// UpdateExtension updates an existing extension
	UpdateExtension(ctx context.Context, ext *Extension) error

	// DeleteExtension deletes an extension
	DeleteExtension(ctx context.Context, pkgName string) error

	// Close closes the storage
	Close() error
}

// Preferences is a persisted key/value store for user settings
type Preferences interface {
	GetString(ctx context.Context, key, def string) (string, error)
	SetString(ctx context.Context, key, value string) error
	GetInt64(ctx context.Context, key string, def int64) (int64, error)
	SetInt64(ctx context.Context, key string, value int64) error
	GetBool(ctx context.Context, key string, def bool) (bool, error)
	SetBool(ctx context.Context, key string, value bool) error
	GetStringSet(ctx context.Context, key string) ([]string, error)
	SetStringSet(ctx context.Context, key string, values []string) error
}

// Executor runs raw mutations against the library database
type Executor interface {
	// Exec runs a statement and returns the number of affected rows
	Exec(ctx context.Context, query string, args ...any) (int64, error)

	// InTransaction runs fn inside a transaction, rolling back if it fails
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Executor) error) error
}

// Manga is a row of the library's manga table
type Manga struct {
	ID          int64
	Source      int64
	URL         string
	Title       string
	Favorite    bool
	Initialized bool
}

// SearchMetadata is the flattened metadata attached to a manga
type SearchMetadata struct {
	MangaID      int64
	Uploader     string
	Extra        string // Source specific JSON document
	ExtraVersion int
}

// Source is a catalogue source provided by an installed extension
type Source struct {
	ID     int64
	Name   string
	Lang   string
	Online bool
}

// Library gives the debug utilities access to library data
type Library interface {
	Executor

	AddManga(ctx context.Context, m *Manga) error
	ListManga(ctx context.Context) ([]*Manga, error)
	ListFavoriteMangaWithMetadata(ctx context.Context) ([]*Manga, error)

	GetSearchMetadata(ctx context.Context, mangaID int64) (*SearchMetadata, error)
	PutSearchMetadata(ctx context.Context, meta *SearchMetadata) error
	CountSearchMetadata(ctx context.Context) (int, error)

	AddSource(ctx context.Context, src *Source) error
	ListSources(ctx context.Context) ([]*Source, error)
}
