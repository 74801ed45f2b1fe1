package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// AddManga inserts a manga and fills in its ID
func (s *LibSQL) AddManga(ctx context.Context, m *Manga) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO mangas (source, url, title, favorite, initialized)
		VALUES (?, ?, ?, ?, ?)
	`, m.Source, m.URL, m.Title, m.Favorite, m.Initialized)
	if err != nil {
		return fmt.Errorf("failed to insert manga: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get manga id: %w", err)
	}
	m.ID = id
	return nil
}

func (s *LibSQL) queryManga(ctx context.Context, query string, args ...any) ([]*Manga, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list manga: %w", err)
	}
	defer rows.Close()

	var mangas []*Manga
	for rows.Next() {
		m := &Manga{}
		if err := rows.Scan(&m.ID, &m.Source, &m.URL, &m.Title, &m.Favorite, &m.Initialized); err != nil {
			return nil, fmt.Errorf("failed to scan manga: %w", err)
		}
		mangas = append(mangas, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate manga: %w", err)
	}
	return mangas, nil
}

// ListManga lists every manga in the database
func (s *LibSQL) ListManga(ctx context.Context) ([]*Manga, error) {
	return s.queryManga(ctx, `
		SELECT _id, source, url, title, favorite, initialized
		FROM mangas
		ORDER BY _id
	`)
}

// ListFavoriteMangaWithMetadata lists library manga that have search metadata
func (s *LibSQL) ListFavoriteMangaWithMetadata(ctx context.Context) ([]*Manga, error) {
	return s.queryManga(ctx, `
		SELECT m._id, m.source, m.url, m.title, m.favorite, m.initialized
		FROM mangas m
		JOIN search_metadata sm ON sm.manga_id = m._id
		WHERE m.favorite = 1
		ORDER BY m._id
	`)
}

// GetSearchMetadata returns the metadata of a manga, nil if it has none
func (s *LibSQL) GetSearchMetadata(ctx context.Context, mangaID int64) (*SearchMetadata, error) {
	meta := &SearchMetadata{}
	var uploader sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT manga_id, uploader, extra, extra_version
		FROM search_metadata
		WHERE manga_id = ?
	`, mangaID).Scan(&meta.MangaID, &uploader, &meta.Extra, &meta.ExtraVersion)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get search metadata: %w", err)
	}

	meta.Uploader = uploader.String
	return meta, nil
}

// PutSearchMetadata inserts or replaces the metadata of a manga
func (s *LibSQL) PutSearchMetadata(ctx context.Context, meta *SearchMetadata) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO search_metadata (manga_id, uploader, extra, extra_version)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(manga_id) DO UPDATE SET
			uploader = excluded.uploader,
			extra = excluded.extra,
			extra_version = excluded.extra_version
	`, meta.MangaID, meta.Uploader, meta.Extra, meta.ExtraVersion)
	if err != nil {
		return fmt.Errorf("failed to store search metadata: %w", err)
	}
	return nil
}

// CountSearchMetadata returns the number of metadata rows
func (s *LibSQL) CountSearchMetadata(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM search_metadata`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count search metadata: %w", err)
	}
	return n, nil
}

// AddSource registers a catalogue source, replacing one with the same ID
func (s *LibSQL) AddSource(ctx context.Context, src *Source) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sources (id, name, lang, online) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			lang = excluded.lang,
			online = excluded.online
	`, src.ID, src.Name, src.Lang, src.Online)
	if err != nil {
		return fmt.Errorf("failed to store source: %w", err)
	}
	return nil
}

// ListSources lists all catalogue sources ordered by ID
func (s *LibSQL) ListSources(ctx context.Context) ([]*Source, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, lang, online FROM sources ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var sources []*Source
	for rows.Next() {
		src := &Source{}
		if err := rows.Scan(&src.ID, &src.Name, &src.Lang, &src.Online); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, src)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sources: %w", err)
	}
	return sources, nil
}
