package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"marquee/internal/media"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (media.Record, error) {
	var (
		record        media.Record
		kind          string
		originalTitle sql.NullString
		overview      sql.NullString
		posterRef     sql.NullString
		releaseYear   sql.NullInt64
		language      sql.NullString
		genresJSON    sql.NullString
		criticRating  sql.NullFloat64
		criticSummary sql.NullString
		budget        sql.NullInt64
		boxOffice     sql.NullInt64
	)
	err := row.Scan(
		&record.ID,
		&kind,
		&record.Title,
		&originalTitle,
		&overview,
		&posterRef,
		&releaseYear,
		&language,
		&genresJSON,
		&record.Popularity,
		&record.VoteAverage,
		&record.VoteCount,
		&criticRating,
		&criticSummary,
		&budget,
		&boxOffice,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return record, err
		}
		return record, fmt.Errorf("scan record: %w", err)
	}

	record.Kind = parseKind(kind)
	record.OriginalTitle = originalTitle.String
	record.Overview = overview.String
	record.PosterRef = posterRef.String
	record.ReleaseYear = int(releaseYear.Int64)
	record.OriginalLanguage = language.String
	record.CriticRating = criticRating.Float64
	record.CriticSummary = criticSummary.String
	record.Budget = budget.Int64
	record.BoxOffice = boxOffice.Int64

	if genresJSON.Valid && strings.TrimSpace(genresJSON.String) != "" {
		if err := json.Unmarshal([]byte(genresJSON.String), &record.Genres); err != nil {
			return record, fmt.Errorf("decode genres for record %d: %w", record.ID, err)
		}
	}
	return record, nil
}

// scanRecordWithCreatedAt scans a record plus its created_at column,
// reporting found=false on sql.ErrNoRows.
func scanRecordWithCreatedAt(row *sql.Row, target *media.Record, createdAt *string) (bool, error) {
	var (
		kind          string
		originalTitle sql.NullString
		overview      sql.NullString
		posterRef     sql.NullString
		releaseYear   sql.NullInt64
		language      sql.NullString
		genresJSON    sql.NullString
		criticRating  sql.NullFloat64
		criticSummary sql.NullString
		budget        sql.NullInt64
		boxOffice     sql.NullInt64
	)
	err := row.Scan(
		&target.ID,
		&kind,
		&target.Title,
		&originalTitle,
		&overview,
		&posterRef,
		&releaseYear,
		&language,
		&genresJSON,
		&target.Popularity,
		&target.VoteAverage,
		&target.VoteCount,
		&criticRating,
		&criticSummary,
		&budget,
		&boxOffice,
		createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("scan existing record: %w", err)
	}

	target.Kind = parseKind(kind)
	target.OriginalTitle = originalTitle.String
	target.Overview = overview.String
	target.PosterRef = posterRef.String
	target.ReleaseYear = int(releaseYear.Int64)
	target.OriginalLanguage = language.String
	target.CriticRating = criticRating.Float64
	target.CriticSummary = criticSummary.String
	target.Budget = budget.Int64
	target.BoxOffice = boxOffice.Int64

	if genresJSON.Valid && strings.TrimSpace(genresJSON.String) != "" {
		if err := json.Unmarshal([]byte(genresJSON.String), &target.Genres); err != nil {
			return false, fmt.Errorf("decode genres for record %d: %w", target.ID, err)
		}
	}
	return true, nil
}

func parseKind(value string) media.Kind {
	if strings.EqualFold(strings.TrimSpace(value), string(media.KindSeries)) {
		return media.KindSeries
	}
	return media.KindMovie
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func nullableInt(value int64) any {
	if value <= 0 {
		return nil
	}
	return value
}

func nullableFloat(value float64) any {
	if value <= 0 {
		return nil
	}
	return value
}
