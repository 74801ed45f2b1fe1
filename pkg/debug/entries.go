package debug

import (
	"context"
	"fmt"
	"strconv"
)

// Entry is a named debug function runnable from the CLI
type Entry struct {
	Name        string
	Description string
	Run         func(ctx context.Context) (string, error)
}

func countEntry[T int | int64](fn func(ctx context.Context) (T, error)) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		n, err := fn(ctx)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(int64(n), 10), nil
	}
}

func doneEntry(fn func(ctx context.Context) error) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		if err := fn(ctx); err != nil {
			return "", err
		}
		return "done", nil
	}
}

// Entries lists every debug function in menu order
func (f *Functions) Entries() []Entry {
	return []Entry{
		{
			Name:        "force-upgrade-migration",
			Description: "Replay every data migration",
			Run: func(ctx context.Context) (string, error) {
				ran, err := f.ForceUpgradeMigration(ctx)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("migrations applied: %t", ran), nil
			},
		},
		{"reset-aged-flag", "Clear the aged flag on E-Hentai galleries", countEntry(f.ResetAgedFlag)},
		{"count-aged-flag", "Count E-Hentai galleries flagged as aged", countEntry(f.CountAgedFlag)},
		{"aged-flag-report", "List E-Hentai galleries with their aged flag", f.AgedFlagReport},
		{"add-all-manga-to-library", "Mark every manga in the database as favorite", countEntry(f.AddAllMangaToLibrary)},
		{"count-manga-in-library", "Count manga in the library", countEntry(f.CountMangaInLibrary)},
		{"count-manga-not-in-library", "Count manga outside the library", countEntry(f.CountMangaNotInLibrary)},
		{"count-manga", "Count every manga in the database", countEntry(f.CountManga)},
		{"count-metadata", "Count search metadata rows", countEntry(f.CountMetadata)},
		{"count-library-missing-metadata", "Count library manga without metadata", countEntry(f.CountLibraryMangaMissingMetadata)},
		{"clear-saved-searches", "Delete every saved search", doneEntry(f.ClearSavedSearches)},
		{"list-all-sources", "List all catalogue sources", f.ListAllSources},
		{"list-visible-sources", "List sources shown in the browse list", f.ListVisibleSources},
		{"list-online-sources", "List online sources", f.ListOnlineSources},
		{"list-visible-online-sources", "List online sources shown in the browse list", f.ListVisibleOnlineSources},
		{"convert-eh-to-exh", "Move every E-Hentai gallery to ExHentai", countEntry(f.ConvertEHToEXH)},
		{"convert-exh-to-eh", "Move every ExHentai gallery to E-Hentai", countEntry(f.ConvertEXHToEH)},
		{"copy-eh-saved-searches-to-exh", "Copy E-Hentai saved searches to ExHentai", doneEntry(f.CopyEHSavedSearchesToEXH)},
		{"copy-exh-saved-searches-to-eh", "Copy ExHentai saved searches to E-Hentai", doneEntry(f.CopyEXHSavedSearchesToEH)},
	}
}

// Find returns the entry with the given name
func (f *Functions) Find(name string) (*Entry, error) {
	for _, e := range f.Entries() {
		if e.Name == name {
			return &e, nil
		}
	}
	return nil, fmt.Errorf("unknown debug function: %s", name)
}
