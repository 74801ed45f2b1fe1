package storage

import (
	"context"
	"fmt"

	"github.com/dikkadev/tachiext/pkg/logger"
)

// Migration is a data migration introduced with a given version code.
// Apply must be idempotent: ForceUpgradeMigration replays every migration.
type Migration struct {
	Version int64
	Name    string
	Apply   func(ctx context.Context, tx Executor) error
}

func execMigration(query string) func(ctx context.Context, tx Executor) error {
	return func(ctx context.Context, tx Executor) error {
		_, err := tx.Exec(ctx, query)
		return err
	}
}

// Migrations lists the library data migrations in version order
var Migrations = []Migration{
	{
		Version: 2,
		Name:    "index manga by source",
		Apply:   execMigration(`CREATE INDEX IF NOT EXISTS mangas_source_index ON mangas(source)`),
	},
	{
		Version: 3,
		Name:    "drop orphaned search metadata",
		Apply:   execMigration(`DELETE FROM search_metadata WHERE manga_id NOT IN (SELECT _id FROM mangas)`),
	},
	{
		Version: 4,
		Name:    "index library favorites",
		Apply:   execMigration(`CREATE INDEX IF NOT EXISTS mangas_favorite_index ON mangas(favorite)`),
	},
}

// Migrator applies pending migrations and tracks the last applied version
type Migrator struct {
	exec       Executor
	prefs      Preferences
	migrations []Migration
}

// NewMigrator creates a migrator over the given stores
func NewMigrator(exec Executor, prefs Preferences) *Migrator {
	return &Migrator{exec: exec, prefs: prefs, migrations: Migrations}
}

// Upgrade runs every migration newer than the recorded version code.
// A fresh install (no recorded version) only records the current code.
// It reports whether any migration ran.
func (m *Migrator) Upgrade(ctx context.Context) (bool, error) {
	last, err := m.prefs.GetInt64(ctx, PrefLastVersionCode, 0)
	if err != nil {
		return false, err
	}

	current := m.migrations[len(m.migrations)-1].Version
	if last >= current {
		return false, nil
	}

	if last == 0 {
		return false, m.prefs.SetInt64(ctx, PrefLastVersionCode, current)
	}

	ran := 0
	err = m.exec.InTransaction(ctx, func(ctx context.Context, tx Executor) error {
		for _, mig := range m.migrations {
			if mig.Version <= last {
				continue
			}
			logger.Logger.Info().Int64("version", mig.Version).Str("migration", mig.Name).Msg("Applying migration")
			if err := mig.Apply(ctx, tx); err != nil {
				return fmt.Errorf("migration %d (%s): %w", mig.Version, mig.Name, err)
			}
			ran++
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if err := m.prefs.SetInt64(ctx, PrefLastVersionCode, current); err != nil {
		return false, err
	}

	return ran > 0, nil
}
