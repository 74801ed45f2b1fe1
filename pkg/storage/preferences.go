package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Well-known preference keys
const (
	PrefLastExtCheck           = "last_ext_check"
	PrefEnableSourceBlacklist  = "eh_enable_source_blacklist"
	PrefSavedSearches          = "eh_saved_searches"
	PrefLastVersionCode        = "eh_last_version_code"
	PrefHiddenCatalogues       = "hidden_catalogues"
	PrefEnabledSourceLanguages = "source_languages"
)

func (s *LibSQL) getRaw(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT pref_value FROM preferences WHERE pref_key = ?
	`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read preference %s: %w", key, err)
	}
	return value, true, nil
}

func (s *LibSQL) setRaw(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (pref_key, pref_value) VALUES (?, ?)
		ON CONFLICT(pref_key) DO UPDATE SET pref_value = excluded.pref_value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write preference %s: %w", key, err)
	}
	return nil
}

// GetString returns a string preference or def when unset
func (s *LibSQL) GetString(ctx context.Context, key, def string) (string, error) {
	value, ok, err := s.getRaw(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	return value, nil
}

// SetString stores a string preference
func (s *LibSQL) SetString(ctx context.Context, key, value string) error {
	return s.setRaw(ctx, key, value)
}

// GetInt64 returns an integer preference or def when unset
func (s *LibSQL) GetInt64(ctx context.Context, key string, def int64) (int64, error) {
	value, ok, err := s.getRaw(ctx, key)
	if err != nil || !ok {
		return def, err
	}

	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def, fmt.Errorf("preference %s is not an integer: %w", key, err)
	}
	return n, nil
}

// SetInt64 stores an integer preference
func (s *LibSQL) SetInt64(ctx context.Context, key string, value int64) error {
	return s.setRaw(ctx, key, strconv.FormatInt(value, 10))
}

// GetBool returns a boolean preference or def when unset
func (s *LibSQL) GetBool(ctx context.Context, key string, def bool) (bool, error) {
	value, ok, err := s.getRaw(ctx, key)
	if err != nil || !ok {
		return def, err
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return def, fmt.Errorf("preference %s is not a boolean: %w", key, err)
	}
	return b, nil
}

// SetBool stores a boolean preference
func (s *LibSQL) SetBool(ctx context.Context, key string, value bool) error {
	return s.setRaw(ctx, key, strconv.FormatBool(value))
}

// GetStringSet returns a string set preference, sorted. Unset yields an empty set.
func (s *LibSQL) GetStringSet(ctx context.Context, key string) ([]string, error) {
	value, ok, err := s.getRaw(ctx, key)
	if err != nil || !ok {
		return nil, err
	}

	var values []string
	if err := json.Unmarshal([]byte(value), &values); err != nil {
		return nil, fmt.Errorf("preference %s is not a string set: %w", key, err)
	}
	return values, nil
}

// SetStringSet stores a string set preference. Duplicates are collapsed.
func (s *LibSQL) SetStringSet(ctx context.Context, key string, values []string) error {
	seen := make(map[string]struct{}, len(values))
	set := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		set = append(set, v)
	}
	sort.Strings(set)

	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to marshal preference %s: %w", key, err)
	}
	return s.setRaw(ctx, key, string(data))
}
