package debug

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dikkadev/tachiext/pkg/logger"
	"github.com/dikkadev/tachiext/pkg/storage"
)

// Gallery sources with search metadata
const (
	EHSourceID  int64 = 6901
	EXHSourceID int64 = 6902
)

// Source languages enabled when the preference was never written
var defaultSourceLanguages = []string{"all", "en"}

// Upgrader runs pending data migrations
type Upgrader interface {
	Upgrade(ctx context.Context) (bool, error)
}

// GalleryMetadata is the part of an E-Hentai metadata document the debug tools touch
type GalleryMetadata struct {
	GID   string `json:"gId"`
	Token string `json:"gToken"`
	Title string `json:"title"`
	Aged  bool   `json:"aged"`
}

// Functions bundles the maintenance operations over a library database
type Functions struct {
	lib      storage.Library
	prefs    storage.Preferences
	migrator Upgrader
}

// New creates the debug functions over the given stores
func New(lib storage.Library, prefs storage.Preferences, migrator Upgrader) *Functions {
	return &Functions{lib: lib, prefs: prefs, migrator: migrator}
}

// ForceUpgradeMigration replays every data migration
func (f *Functions) ForceUpgradeMigration(ctx context.Context) (bool, error) {
	if err := f.prefs.SetInt64(ctx, storage.PrefLastVersionCode, 1); err != nil {
		return false, fmt.Errorf("failed to reset version code: %w", err)
	}
	return f.migrator.Upgrade(ctx)
}

type gallery struct {
	manga *storage.Manga
	meta  *storage.SearchMetadata
	info  GalleryMetadata
}

// galleries returns the favorite E-Hentai/ExHentai manga with decodable metadata
func (f *Functions) galleries(ctx context.Context) ([]gallery, error) {
	mangas, err := f.lib.ListFavoriteMangaWithMetadata(ctx)
	if err != nil {
		return nil, err
	}

	var out []gallery
	for _, m := range mangas {
		if m.Source != EHSourceID && m.Source != EXHSourceID {
			continue
		}

		meta, err := f.lib.GetSearchMetadata(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		if meta == nil {
			continue
		}

		var info GalleryMetadata
		if err := json.Unmarshal([]byte(meta.Extra), &info); err != nil {
			logger.Logger.Warn().Err(err).Int64("manga_id", m.ID).Msg("Skipping undecodable gallery metadata")
			continue
		}
		out = append(out, gallery{manga: m, meta: meta, info: info})
	}
	return out, nil
}

// ResetAgedFlag clears the aged flag on every gallery and returns how many were set
func (f *Functions) ResetAgedFlag(ctx context.Context) (int, error) {
	galleries, err := f.galleries(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load galleries: %w", err)
	}

	reset := 0
	for _, g := range galleries {
		if !g.info.Aged {
			continue
		}

		// Rewrite only the flag so unknown metadata fields survive
		var doc map[string]json.RawMessage
		if err := json.Unmarshal([]byte(g.meta.Extra), &doc); err != nil {
			return reset, fmt.Errorf("failed to decode metadata of manga %d: %w", g.manga.ID, err)
		}
		doc["aged"] = json.RawMessage("false")
		extra, err := json.Marshal(doc)
		if err != nil {
			return reset, fmt.Errorf("failed to encode metadata of manga %d: %w", g.manga.ID, err)
		}

		g.meta.Extra = string(extra)
		if err := f.lib.PutSearchMetadata(ctx, g.meta); err != nil {
			return reset, err
		}
		reset++
	}
	return reset, nil
}

// CountAgedFlag returns the number of galleries flagged as aged
func (f *Functions) CountAgedFlag(ctx context.Context) (int, error) {
	galleries, err := f.galleries(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load galleries: %w", err)
	}

	aged := 0
	for _, g := range galleries {
		if g.info.Aged {
			aged++
		}
	}
	return aged, nil
}

// AgedFlagReport lists every gallery with its aged flag
func (f *Functions) AgedFlagReport(ctx context.Context) (string, error) {
	galleries, err := f.galleries(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load galleries: %w", err)
	}

	lines := make([]string, 0, len(galleries))
	for _, g := range galleries {
		lines = append(lines, fmt.Sprintf("Aged: %t\t Title: %s", g.info.Aged, g.manga.Title))
	}
	return strings.Join(lines, ",\n"), nil
}

// AddAllMangaToLibrary marks every manga in the database as favorite
func (f *Functions) AddAllMangaToLibrary(ctx context.Context) (int64, error) {
	var affected int64
	err := f.lib.InTransaction(ctx, func(ctx context.Context, tx storage.Executor) error {
		n, err := tx.Exec(ctx, `UPDATE mangas SET favorite = 1`)
		affected = n
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to add manga to library: %w", err)
	}
	return affected, nil
}

func (f *Functions) countManga(ctx context.Context, keep func(m *storage.Manga) bool) (int, error) {
	mangas, err := f.lib.ListManga(ctx)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, m := range mangas {
		if keep(m) {
			n++
		}
	}
	return n, nil
}

func (f *Functions) CountMangaInLibrary(ctx context.Context) (int, error) {
	return f.countManga(ctx, func(m *storage.Manga) bool { return m.Favorite })
}

func (f *Functions) CountMangaNotInLibrary(ctx context.Context) (int, error) {
	return f.countManga(ctx, func(m *storage.Manga) bool { return !m.Favorite })
}

func (f *Functions) CountManga(ctx context.Context) (int, error) {
	return f.countManga(ctx, func(*storage.Manga) bool { return true })
}

func (f *Functions) CountMetadata(ctx context.Context) (int, error) {
	return f.lib.CountSearchMetadata(ctx)
}

// CountLibraryMangaMissingMetadata counts favorites without search metadata
func (f *Functions) CountLibraryMangaMissingMetadata(ctx context.Context) (int, error) {
	mangas, err := f.lib.ListManga(ctx)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, m := range mangas {
		if !m.Favorite {
			continue
		}
		meta, err := f.lib.GetSearchMetadata(ctx, m.ID)
		if err != nil {
			return 0, err
		}
		if meta == nil {
			n++
		}
	}
	return n, nil
}

// ClearSavedSearches removes every saved search of every source
func (f *Functions) ClearSavedSearches(ctx context.Context) error {
	return f.prefs.SetStringSet(ctx, storage.PrefSavedSearches, nil)
}

func formatSources(sources []*storage.Source) string {
	lines := make([]string, 0, len(sources))
	for _, src := range sources {
		lines = append(lines, fmt.Sprintf("%d: %s (%s)", src.ID, src.Name, strings.ToUpper(src.Lang)))
	}
	return strings.Join(lines, "\n")
}

// visibleFilter keeps sources that are not hidden and whose language is enabled
func (f *Functions) visibleFilter(ctx context.Context) (func(*storage.Source) bool, error) {
	hidden, err := f.prefs.GetStringSet(ctx, storage.PrefHiddenCatalogues)
	if err != nil {
		return nil, err
	}
	langs, err := f.prefs.GetStringSet(ctx, storage.PrefEnabledSourceLanguages)
	if err != nil {
		return nil, err
	}
	if len(langs) == 0 {
		langs = defaultSourceLanguages
	}

	return func(src *storage.Source) bool {
		return slices.Contains(langs, src.Lang) &&
			!slices.Contains(hidden, strconv.FormatInt(src.ID, 10))
	}, nil
}

func (f *Functions) listSources(ctx context.Context, visibleOnly, onlineOnly bool) (string, error) {
	sources, err := f.lib.ListSources(ctx)
	if err != nil {
		return "", err
	}

	visible := func(*storage.Source) bool { return true }
	if visibleOnly {
		if visible, err = f.visibleFilter(ctx); err != nil {
			return "", err
		}
	}

	var out []*storage.Source
	for _, src := range sources {
		if onlineOnly && !src.Online {
			continue
		}
		if visible(src) {
			out = append(out, src)
		}
	}
	return formatSources(out), nil
}

func (f *Functions) ListAllSources(ctx context.Context) (string, error) {
	return f.listSources(ctx, false, false)
}

func (f *Functions) ListVisibleSources(ctx context.Context) (string, error) {
	return f.listSources(ctx, true, false)
}

func (f *Functions) ListOnlineSources(ctx context.Context) (string, error) {
	return f.listSources(ctx, false, true)
}

func (f *Functions) ListVisibleOnlineSources(ctx context.Context) (string, error) {
	return f.listSources(ctx, true, true)
}

// ConvertSources moves every manga of one source to another
func (f *Functions) ConvertSources(ctx context.Context, from, to int64) (int64, error) {
	n, err := f.lib.Exec(ctx, `UPDATE mangas SET source = ? WHERE source = ?`, to, from)
	if err != nil {
		return 0, fmt.Errorf("failed to convert source %d to %d: %w", from, to, err)
	}
	return n, nil
}

func (f *Functions) ConvertEHToEXH(ctx context.Context) (int64, error) {
	return f.ConvertSources(ctx, EHSourceID, EXHSourceID)
}

func (f *Functions) ConvertEXHToEH(ctx context.Context) (int64, error) {
	return f.ConvertSources(ctx, EXHSourceID, EHSourceID)
}
