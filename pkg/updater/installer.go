package updater

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dikkadev/tachiext/pkg/config"
	"github.com/dikkadev/tachiext/pkg/github"
	"github.com/dikkadev/tachiext/pkg/storage"
)

var (
	// ErrAlreadyInstalled is returned when installing an extension twice
	ErrAlreadyInstalled = errors.New("extension already installed")
	// ErrUnknownExtension is returned when a package is missing from the catalog
	ErrUnknownExtension = errors.New("extension not in catalog")
)

// Options represents installation options
type Options struct {
	NonInteractive bool
	DryRun         bool
}

// Install downloads an extension from the catalog and records it
func Install(ctx context.Context, pkgName string, cfg *config.Config, store storage.Storage, client github.Client, opts Options) error {
	// Check if extension is already installed
	existing, err := store.GetExtension(ctx, pkgName)
	if err != nil {
		return fmt.Errorf("failed to check existing extension: %w", err)
	}
	if existing != nil {
		return fmt.Errorf("%w: %s %s", ErrAlreadyInstalled, pkgName, existing.VersionName)
	}

	available, err := client.FindExtensions(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch extensions: %w", err)
	}
	ext, ok := Latest(available, pkgName)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownExtension, pkgName)
	}

	apkPath := filepath.Join(cfg.GetDirectories().Extensions, ext.ApkName)

	if opts.DryRun {
		fmt.Printf("Would install %s@%s:\n", ext.PackageName, ext.VersionName)
		fmt.Printf("  Source: %s\n", client.ApkURL(ext))
		fmt.Printf("  APK: %s\n", apkPath)
		return nil
	}

	if err := client.DownloadApk(ctx, ext, apkPath); err != nil {
		return fmt.Errorf("failed to download apk: %w", err)
	}

	installed := &storage.Extension{
		PackageName: ext.PackageName,
		Name:        ext.Name,
		VersionName: ext.VersionName,
		VersionCode: ext.VersionCode,
		Lang:        ext.Lang,
		IsNSFW:      ext.IsNSFW,
		ApkPath:     apkPath,
	}

	if err := store.AddExtension(ctx, installed); err != nil {
		os.Remove(apkPath) // Clean up on error
		return fmt.Errorf("failed to add extension to database: %w", err)
	}

	fmt.Printf("Successfully installed %s@%s\n", ext.PackageName, ext.VersionName)
	return nil
}

// Update replaces an installed extension with the newest version in the
// given catalog. installed is only modified once the database accepts the new row.
func Update(ctx context.Context, installed *storage.Extension, available []github.Extension, cfg *config.Config, store storage.Storage, client github.Client, opts Options) error {
	ext, ok := Latest(available, installed.PackageName)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownExtension, installed.PackageName)
	}

	// Check if update is needed
	if ext.VersionCode <= installed.VersionCode {
		fmt.Printf("%s is already at the latest version (%s)\n", installed.PackageName, installed.VersionName)
		return nil
	}

	apkPath := filepath.Join(cfg.GetDirectories().Extensions, ext.ApkName)

	if opts.DryRun {
		fmt.Printf("Would update %s from %s to %s:\n", installed.PackageName, installed.VersionName, ext.VersionName)
		fmt.Printf("  Source: %s\n", client.ApkURL(ext))
		fmt.Printf("  APK: %s\n", apkPath)
		return nil
	}

	if err := client.DownloadApk(ctx, ext, apkPath); err != nil {
		return fmt.Errorf("failed to download apk: %w", err)
	}

	oldPath := installed.ApkPath
	updated := *installed
	updated.Name = ext.Name
	updated.VersionName = ext.VersionName
	updated.VersionCode = ext.VersionCode
	updated.Lang = ext.Lang
	updated.IsNSFW = ext.IsNSFW
	updated.ApkPath = apkPath

	if err := store.UpdateExtension(ctx, &updated); err != nil {
		if apkPath != oldPath {
			os.Remove(apkPath) // Clean up on error
		}
		return fmt.Errorf("failed to update extension in database: %w", err)
	}
	*installed = updated

	if oldPath != "" && oldPath != apkPath {
		os.Remove(oldPath) // Ignore error, the file may already be gone
	}

	fmt.Printf("Successfully updated %s to %s\n", installed.PackageName, ext.VersionName)
	return nil
}

// Remove removes an installed extension
func Remove(ctx context.Context, installed *storage.Extension, store storage.Storage, opts Options) error {
	if opts.DryRun {
		fmt.Printf("Would remove %s@%s:\n", installed.PackageName, installed.VersionName)
		fmt.Printf("  APK: %s\n", installed.ApkPath)
		return nil
	}

	// Remove from database first
	if err := store.DeleteExtension(ctx, installed.PackageName); err != nil {
		return fmt.Errorf("failed to remove extension from database: %w", err)
	}

	if err := os.Remove(installed.ApkPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove apk: %w", err)
	}

	fmt.Printf("Successfully removed %s\n", installed.PackageName)
	return nil
}
