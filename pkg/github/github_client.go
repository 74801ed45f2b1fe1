package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dikkadev/tachiext/pkg/logger"
)

const defaultTimeout = 30 * time.Second

// Options configures the repository client
type Options struct {
	RepoURL string        // Repository root, defaults to DefaultRepoURL
	Token   string        // Optional GitHub token
	Timeout time.Duration // Per-request timeout, defaults to 30s
	Bounds  LibBounds     // Supported library versions, defaults to DefaultLibBounds
}

// client implements the Client interface
type client struct {
	httpClient *http.Client
	repoURL    string
	token      string
	bounds     LibBounds
}

// NewClient creates a new repository client
func NewClient(opts Options) Client {
	if opts.RepoURL == "" {
		opts.RepoURL = DefaultRepoURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Bounds == (LibBounds{}) {
		opts.Bounds = DefaultLibBounds()
	}

	return &client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		repoURL: strings.TrimRight(opts.RepoURL, "/"),
		token:   opts.Token,
		bounds:  opts.Bounds,
	}
}

// FindExtensions fetches index.json and returns the compatible extensions
func (c *client) FindExtensions(ctx context.Context) ([]Extension, error) {
	entries, err := c.fetchManifest(ctx)
	if err != nil {
		return nil, err
	}

	extensions, skipped := ParseManifest(entries, c.bounds, c.repoURL)
	for _, err := range skipped {
		logger.Logger.Warn().Err(err).Msg("Skipping manifest entry")
	}

	logger.Logger.Debug().
		Int("entries", len(entries)).
		Int("compatible", len(extensions)).
		Int("malformed", len(skipped)).
		Msg("Parsed extension manifest")

	return extensions, nil
}

func (c *client) fetchManifest(ctx context.Context) ([]ManifestEntry, error) {
	url := c.repoURL + "/index.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrTransport, ctx.Err())
		}
		return nil, fmt.Errorf("%w: failed to get manifest: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: failed to get manifest: %s", ErrTransport, resp.Status)
	}

	var entries []ManifestEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: failed to decode manifest: %w", ErrTransport, err)
	}

	return entries, nil
}

// ApkURL returns the download location of an extension's APK
func (c *client) ApkURL(ext Extension) string {
	return ApkURL(c.repoURL, ext.ApkName)
}

// DownloadApk downloads an extension's APK to a specified path
func (c *client) DownloadApk(ctx context.Context, ext Extension, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ApkURL(ext), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}
	req.Header.Set("Accept", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to download apk: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: failed to download apk: %s", ErrTransport, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Download next to the destination and rename once complete
	tmpPath := destPath + ".part"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	return nil
}
