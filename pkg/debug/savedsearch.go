package debug

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dikkadev/tachiext/pkg/logger"
	"github.com/dikkadev/tachiext/pkg/storage"
)

// SavedSearch is a browse query saved for a source, stored as "<sourceID>:<json>"
type SavedSearch struct {
	Name    string          `json:"name"`
	Query   string          `json:"query"`
	Filters json.RawMessage `json:"filters"`
}

// ParseSavedSearch splits a stored entry into its source ID and search
func ParseSavedSearch(entry string) (int64, SavedSearch, error) {
	id, body, ok := strings.Cut(entry, ":")
	if !ok {
		return 0, SavedSearch{}, errors.New("missing source id")
	}

	source, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, SavedSearch{}, fmt.Errorf("invalid source id %q: %w", id, err)
	}

	var raw struct {
		Name    *string         `json:"name"`
		Query   *string         `json:"query"`
		Filters json.RawMessage `json:"filters"`
	}
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return 0, SavedSearch{}, fmt.Errorf("invalid saved search: %w", err)
	}
	if raw.Name == nil || raw.Query == nil {
		return 0, SavedSearch{}, errors.New("saved search needs a name and a query")
	}
	if !bytes.HasPrefix(bytes.TrimSpace(raw.Filters), []byte("[")) {
		return 0, SavedSearch{}, errors.New("saved search filters must be an array")
	}

	return source, SavedSearch{Name: *raw.Name, Query: *raw.Query, Filters: raw.Filters}, nil
}

// Encode serializes the search for the given source
func (s SavedSearch) Encode(source int64) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(source, 10) + ":" + string(data), nil
}

func searchesOf(entries []string, source int64) []SavedSearch {
	var out []SavedSearch
	for _, entry := range entries {
		id, search, err := ParseSavedSearch(entry)
		if err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to load saved search")
			continue
		}
		if id == source {
			out = append(out, search)
		}
	}
	return out
}

// MergeSavedSearches copies the searches of one source onto another. The target
// keeps its own searches whose names are not taken by the copied ones; entries of
// every other source are left as they are.
func MergeSavedSearches(entries []string, from, to int64) ([]string, error) {
	merged := searchesOf(entries, from)
	names := make(map[string]struct{}, len(merged))
	for _, s := range merged {
		names[s.Name] = struct{}{}
	}
	for _, s := range searchesOf(entries, to) {
		if _, taken := names[s.Name]; !taken {
			merged = append(merged, s)
		}
	}

	prefix := strconv.FormatInt(to, 10) + ":"
	var out []string
	for _, entry := range entries {
		if !strings.HasPrefix(entry, prefix) {
			out = append(out, entry)
		}
	}

	for _, s := range merged {
		encoded, err := s.Encode(to)
		if err != nil {
			return nil, fmt.Errorf("failed to encode saved search %q: %w", s.Name, err)
		}
		out = append(out, encoded)
	}
	return out, nil
}

// CopySavedSearches merges the saved searches of one source into another
func (f *Functions) CopySavedSearches(ctx context.Context, from, to int64) error {
	entries, err := f.prefs.GetStringSet(ctx, storage.PrefSavedSearches)
	if err != nil {
		return fmt.Errorf("failed to read saved searches: %w", err)
	}

	merged, err := MergeSavedSearches(entries, from, to)
	if err != nil {
		return err
	}

	if err := f.prefs.SetStringSet(ctx, storage.PrefSavedSearches, merged); err != nil {
		return fmt.Errorf("failed to write saved searches: %w", err)
	}
	return nil
}

func (f *Functions) CopyEHSavedSearchesToEXH(ctx context.Context) error {
	return f.CopySavedSearches(ctx, EHSourceID, EXHSourceID)
}

func (f *Functions) CopyEXHSavedSearchesToEH(ctx context.Context) error {
	return f.CopySavedSearches(ctx, EXHSourceID, EHSourceID)
}
