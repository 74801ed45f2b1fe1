package updater

import (
	"context"
	"fmt"
	"time"

	"github.com/dikkadev/tachiext/pkg/github"
	"github.com/dikkadev/tachiext/pkg/logger"
	"github.com/dikkadev/tachiext/pkg/storage"
	"github.com/google/uuid"
)

// Filter decides whether an installed extension takes part in update checks
type Filter func(ext *storage.Extension) bool

// NotBlacklisted excludes the listed package names while enabled is set
func NotBlacklisted(list []string, enabled bool) Filter {
	blocked := make(map[string]struct{}, len(list))
	for _, pkg := range list {
		blocked[pkg] = struct{}{}
	}

	return func(ext *storage.Extension) bool {
		if !enabled {
			return true
		}
		_, ok := blocked[ext.PackageName]
		return !ok
	}
}

// Latest returns the first catalog entry for a package
func Latest(available []github.Extension, pkgName string) (github.Extension, bool) {
	for _, ext := range available {
		if ext.PackageName == pkgName {
			return ext, true
		}
	}
	return github.Extension{}, false
}

// FindUpdates returns the installed extensions that have a newer version code in the catalog.
// If a package appears more than once in the catalog the first entry is used.
func FindUpdates(installed []*storage.Extension, available []github.Extension) []*storage.Extension {
	latest := make(map[string]int, len(available))
	for _, ext := range available {
		if _, seen := latest[ext.PackageName]; !seen {
			latest[ext.PackageName] = ext.VersionCode
		}
	}

	var updates []*storage.Extension
	for _, ext := range installed {
		if code, ok := latest[ext.PackageName]; ok && code > ext.VersionCode {
			updates = append(updates, ext)
		}
	}
	return updates
}

// Checker compares installed extensions against the remote catalog
type Checker struct {
	client    github.Client
	store     storage.Storage
	prefs     storage.Preferences
	blacklist []string
	now       func() time.Time
}

// NewChecker creates a new update checker
func NewChecker(client github.Client, store storage.Storage, prefs storage.Preferences, blacklist []string) *Checker {
	return &Checker{
		client:    client,
		store:     store,
		prefs:     prefs,
		blacklist: blacklist,
		now:       time.Now,
	}
}

// CheckForUpdates fetches the catalog and returns the upgradable extensions.
// Nothing is recorded when the catalog cannot be fetched.
func (c *Checker) CheckForUpdates(ctx context.Context) ([]*storage.Extension, error) {
	updates, _, err := c.CheckWithCatalog(ctx)
	return updates, err
}

// CheckWithCatalog is CheckForUpdates that also returns the fetched catalog,
// so callers can apply the updates without fetching it again.
func (c *Checker) CheckWithCatalog(ctx context.Context) ([]*storage.Extension, []github.Extension, error) {
	log := logger.Logger.With().Str("run_id", uuid.NewString()).Logger()
	log.Debug().Msg("Checking for extension updates")

	available, err := c.client.FindExtensions(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch extension catalog")
		return nil, nil, fmt.Errorf("failed to fetch extensions: %w", err)
	}

	if err := c.prefs.SetInt64(ctx, storage.PrefLastExtCheck, c.now().UnixMilli()); err != nil {
		return nil, nil, fmt.Errorf("failed to record last check: %w", err)
	}

	enabled, err := c.prefs.GetBool(ctx, storage.PrefEnableSourceBlacklist, true)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read blacklist preference: %w", err)
	}

	installed, err := c.store.ListExtensions(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list installed extensions: %w", err)
	}

	keep := NotBlacklisted(c.blacklist, enabled)
	var candidates []*storage.Extension
	for _, ext := range installed {
		if keep(ext) {
			candidates = append(candidates, ext)
		}
	}

	updates := FindUpdates(candidates, available)
	log.Info().
		Int("available", len(available)).
		Int("installed", len(installed)).
		Int("updates", len(updates)).
		Msg("Extension update check finished")

	return updates, available, nil
}
