package github

import (
	"context"
	"errors"
)

// DefaultRepoURL is the raw GitHub location of the extension repository branch
const DefaultRepoURL = "https://raw.githubusercontent.com/inorichi/tachiyomi-extensions/repo"

// Library version range supported by the extension loader
const (
	LibVersionMin = 1.2
	LibVersionMax = 1.2
)

var (
	// ErrTransport is returned when the manifest could not be fetched or decoded
	ErrTransport = errors.New("manifest transport failure")
	// ErrMalformedEntry marks a manifest entry whose version string cannot be parsed
	ErrMalformedEntry = errors.New("malformed manifest entry")
)

// ManifestEntry is one raw record of index.json
type ManifestEntry struct {
	Name    string `json:"name"`
	Pkg     string `json:"pkg"`
	Apk     string `json:"apk"`
	Version string `json:"version"`
	Code    int    `json:"code"`
	Lang    string `json:"lang"`
	NSFW    int    `json:"nsfw"`
}

// Extension represents an extension available in the remote repository
type Extension struct {
	Name        string `json:"name" yaml:"name"`                 // Display name without branding
	PackageName string `json:"package_name" yaml:"package_name"` // Android package name
	VersionName string `json:"version_name" yaml:"version_name"` // e.g. "1.2.14"
	VersionCode int    `json:"version_code" yaml:"version_code"` // Monotonic build number
	Lang        string `json:"lang" yaml:"lang"`                 // Source language code
	IsNSFW      bool   `json:"nsfw" yaml:"nsfw"`                 // Adult content flag
	ApkName     string `json:"apk_name" yaml:"apk_name"`         // APK file name in the repo
	IconURL     string `json:"icon_url" yaml:"icon_url"`         // Derived icon location
}

// LibBounds is an inclusive range of supported library versions
type LibBounds struct {
	Min float64
	Max float64
}

// DefaultLibBounds returns the range the extension loader supports
func DefaultLibBounds() LibBounds {
	return LibBounds{Min: LibVersionMin, Max: LibVersionMax}
}

// Contains reports whether v lies within the bounds
func (b LibBounds) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Client defines the interface for extension repository operations
type Client interface {
	// FindExtensions fetches the manifest and returns the compatible extensions
	FindExtensions(ctx context.Context) ([]Extension, error)

	// ApkURL returns the download location of an extension's APK
	ApkURL(ext Extension) string

	// DownloadApk downloads an extension's APK to a specified path
	DownloadApk(ctx context.Context, ext Extension, destPath string) error
}
