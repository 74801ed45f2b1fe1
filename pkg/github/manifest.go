package github

import (
	"fmt"
	"math"
	"path"
	"strconv"
	"strings"
)

const brandingPrefix = "Tachiyomi: "

// LibVersion extracts the library version from an extension version name.
// "1.2.14" yields 1.2; a version without a dot is parsed whole.
func LibVersion(versionName string) (float64, error) {
	lib := versionName
	if i := strings.LastIndex(versionName, "."); i >= 0 {
		lib = versionName[:i]
	}

	if lib == "" {
		return 0, fmt.Errorf("%w: empty library version in %q", ErrMalformedEntry, versionName)
	}

	dots := 0
	for _, r := range lib {
		switch {
		case r == '.':
			dots++
		case r < '0' || r > '9':
			return 0, fmt.Errorf("%w: invalid library version %q", ErrMalformedEntry, versionName)
		}
	}
	if dots > 1 {
		return 0, fmt.Errorf("%w: invalid library version %q", ErrMalformedEntry, versionName)
	}

	v, err := strconv.ParseFloat(lib, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: invalid library version %q", ErrMalformedEntry, versionName)
	}

	return v, nil
}

// ParseManifest maps raw entries into extensions compatible with bounds.
// Entries outside the bounds are dropped silently; malformed entries are
// dropped and reported in the returned error slice.
func ParseManifest(entries []ManifestEntry, bounds LibBounds, repoURL string) ([]Extension, []error) {
	var (
		extensions []Extension
		skipped    []error
	)

	for _, entry := range entries {
		libVersion, err := LibVersion(entry.Version)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("%s: %w", entry.Pkg, err))
			continue
		}
		if !bounds.Contains(libVersion) {
			continue
		}

		extensions = append(extensions, Extension{
			Name:        strings.TrimPrefix(entry.Name, brandingPrefix),
			PackageName: entry.Pkg,
			VersionName: entry.Version,
			VersionCode: entry.Code,
			Lang:        entry.Lang,
			IsNSFW:      entry.NSFW == 1,
			ApkName:     entry.Apk,
			IconURL:     IconURL(repoURL, entry.Apk),
		})
	}

	return extensions, skipped
}

// IconURL derives the icon location of an APK in the repository
func IconURL(repoURL, apkName string) string {
	icon := strings.TrimSuffix(apkName, path.Ext(apkName)) + ".png"
	return strings.TrimRight(repoURL, "/") + "/icon/" + icon
}

// ApkURL derives the download location of an APK in the repository
func ApkURL(repoURL, apkName string) string {
	return strings.TrimRight(repoURL, "/") + "/apk/" + apkName
}
