package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"marquee/internal/config"
	"marquee/internal/media"
)

// Store manages canonical media record persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the catalog database and applies the
// schema. A lock file next to the database serializes schema creation across
// concurrent CLI processes.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "catalog.db")
	lock := flock.New(dbPath + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("acquire catalog lock: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	if err := lock.Unlock(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("release catalog lock: %w", err)
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

const recordColumns = `id, kind, title, original_title, overview, poster_ref,
    release_year, original_language, genres_json, popularity, vote_average,
    vote_count, critic_rating, critic_summary, budget, box_office`

// FindByTitle returns records whose title or original title contains the
// query, case-insensitively, most popular first. A positive yearHint
// restricts matches to that exact release year.
func (s *Store) FindByTitle(ctx context.Context, title string, yearHint int) ([]media.Record, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, nil
	}

	// SQLite LIKE is case-insensitive for ASCII, which matches the lookup
	// contract.
	query := `SELECT ` + recordColumns + `
        FROM media_records
        WHERE (title LIKE ? ESCAPE '\' OR original_title LIKE ? ESCAPE '\')`
	pattern := "%" + escapeLike(title) + "%"
	args := []any{pattern, pattern}
	if yearHint > 0 {
		query += " AND release_year = ?"
		args = append(args, yearHint)
	}
	query += " ORDER BY popularity DESC, vote_count DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query by title: %w", err)
	}
	defer rows.Close()

	var records []media.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate title matches: %w", err)
	}
	return records, nil
}

// FindByID fetches a record by catalog id, returning nil when absent.
func (s *Store) FindByID(ctx context.Context, id int64) (*media.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM media_records WHERE id = ?`, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Upsert merges partial into the stored record for id and returns the
// result. Fields set on partial win; absent fields keep their stored values.
// The merge never clears a populated field, so concurrent upserts for the
// same id are commutative over disjoint fields.
func (s *Store) Upsert(ctx context.Context, id int64, partial media.Record) (media.Record, error) {
	var empty media.Record
	if id <= 0 {
		return empty, errors.New("upsert: id must be positive")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return empty, fmt.Errorf("begin upsert tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)

	existing := media.Record{ID: id}
	createdAt := now
	row := tx.QueryRowContext(ctx,
		`SELECT `+recordColumns+`, created_at FROM media_records WHERE id = ?`, id)
	found, err := scanRecordWithCreatedAt(row, &existing, &createdAt)
	if err != nil {
		return empty, err
	}

	partial.ID = id
	merged := existing.Merge(partial)
	if strings.TrimSpace(merged.Title) == "" {
		return empty, errors.New("upsert: record has no title")
	}

	genresJSON, err := encodeGenres(merged.Genres)
	if err != nil {
		return empty, err
	}

	if found {
		_, err = tx.ExecContext(ctx,
			`UPDATE media_records SET
                kind = ?, title = ?, original_title = ?, overview = ?,
                poster_ref = ?, release_year = ?, original_language = ?,
                genres_json = ?, popularity = ?, vote_average = ?,
                vote_count = ?, critic_rating = ?, critic_summary = ?,
                budget = ?, box_office = ?, updated_at = ?
            WHERE id = ?`,
			merged.Kind.String(),
			merged.Title,
			nullableString(merged.OriginalTitle),
			nullableString(merged.Overview),
			nullableString(merged.PosterRef),
			nullableInt(int64(merged.ReleaseYear)),
			nullableString(merged.OriginalLanguage),
			genresJSON,
			merged.Popularity,
			merged.VoteAverage,
			merged.VoteCount,
			nullableFloat(merged.CriticRating),
			nullableString(merged.CriticSummary),
			nullableInt(merged.Budget),
			nullableInt(merged.BoxOffice),
			now,
			id,
		)
	} else {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO media_records (
                id, kind, title, original_title, overview, poster_ref,
                release_year, original_language, genres_json, popularity,
                vote_average, vote_count, critic_rating, critic_summary,
                budget, box_office, created_at, updated_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id,
			merged.Kind.String(),
			merged.Title,
			nullableString(merged.OriginalTitle),
			nullableString(merged.Overview),
			nullableString(merged.PosterRef),
			nullableInt(int64(merged.ReleaseYear)),
			nullableString(merged.OriginalLanguage),
			genresJSON,
			merged.Popularity,
			merged.VoteAverage,
			merged.VoteCount,
			nullableFloat(merged.CriticRating),
			nullableString(merged.CriticSummary),
			nullableInt(merged.Budget),
			nullableInt(merged.BoxOffice),
			createdAt,
			now,
		)
	}
	if err != nil {
		return empty, fmt.Errorf("write record %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return empty, fmt.Errorf("commit upsert: %w", err)
	}
	return merged, nil
}

// Stats summarizes the stored catalog for operator-facing output.
type Stats struct {
	Records       int64
	WithSummaries int64
	MostPopular   string
}

// Summarize reports catalog size and the most popular stored title.
func (s *Store) Summarize(ctx context.Context) (Stats, error) {
	var stats Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1),
            COALESCE(SUM(CASE WHEN critic_summary IS NOT NULL AND critic_summary != '' THEN 1 ELSE 0 END), 0)
        FROM media_records`,
	).Scan(&stats.Records, &stats.WithSummaries)
	if err != nil {
		return stats, fmt.Errorf("count records: %w", err)
	}
	err = s.db.QueryRowContext(ctx,
		`SELECT title FROM media_records ORDER BY popularity DESC LIMIT 1`,
	).Scan(&stats.MostPopular)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return stats, fmt.Errorf("find most popular: %w", err)
	}
	return stats, nil
}

// escapeLike escapes the SQL LIKE wildcards in a user-supplied query so a
// title containing % or _ matches literally.
func escapeLike(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, "%", `\%`)
	return strings.ReplaceAll(value, "_", `\_`)
}

func encodeGenres(genres []string) (any, error) {
	if len(genres) == 0 {
		return nil, nil
	}
	encoded, err := json.Marshal(genres)
	if err != nil {
		return nil, fmt.Errorf("marshal genres: %w", err)
	}
	return string(encoded), nil
}
