package storage

import (
	"context"
	"testing"
)

// insertOrphanMetadata writes metadata for a missing manga the way databases
// created without foreign key enforcement could hold it
func insertOrphanMetadata(t *testing.T, store *LibSQL, mangaID int64) {
	t.Helper()
	ctx := context.Background()

	conn, err := store.db.Conn(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		t.Fatal(err)
	}
	defer conn.ExecContext(ctx, "PRAGMA foreign_keys = ON")

	if _, err := conn.ExecContext(ctx, `INSERT INTO search_metadata (manga_id, extra, extra_version) VALUES (?, '{}', 0)`, mangaID); err != nil {
		t.Fatal(err)
	}
}

func TestMigratorFreshInstall(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ran, err := NewMigrator(store, store).Upgrade(ctx)
	if err != nil {
		t.Fatalf("Upgrade failed: %v", err)
	}
	if ran {
		t.Error("Fresh install should not run migrations")
	}

	last, _ := store.GetInt64(ctx, PrefLastVersionCode, 0)
	if want := Migrations[len(Migrations)-1].Version; last != want {
		t.Errorf("Recorded version %d, want %d", last, want)
	}
}

func TestMigratorReplay(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	m := &Manga{Source: 6901, URL: "/g/1/abc/", Title: "gallery", Favorite: true}
	if err := store.AddManga(ctx, m); err != nil {
		t.Fatal(err)
	}
	if err := store.PutSearchMetadata(ctx, &SearchMetadata{MangaID: m.ID, Extra: "{}"}); err != nil {
		t.Fatal(err)
	}
	insertOrphanMetadata(t, store, 999)

	migrator := NewMigrator(store, store)
	for i := 0; i < 2; i++ {
		if err := store.SetInt64(ctx, PrefLastVersionCode, 1); err != nil {
			t.Fatal(err)
		}
		ran, err := migrator.Upgrade(ctx)
		if err != nil {
			t.Fatalf("Upgrade #%d failed: %v", i+1, err)
		}
		if !ran {
			t.Errorf("Upgrade #%d ran no migrations", i+1)
		}
	}

	n, err := store.CountSearchMetadata(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Got %d metadata rows, want orphan removed leaving 1", n)
	}

	ran, err := migrator.Upgrade(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ran {
		t.Error("Up to date database should not run migrations")
	}
}
