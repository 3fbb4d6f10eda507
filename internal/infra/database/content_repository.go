package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"oftheday_display/internal/domain/ofday"

	sq "github.com/Masterminds/squirrel"
	"github.com/sirupsen/logrus"
)

const contentTable = "of_the_day_content"

// ContentRepository reads and writes yearly category content in SQL.
type ContentRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
	logger  *logrus.Entry
}

// NewContentRepository picks the placeholder style for driver ($1 for postgres, ? otherwise).
func NewContentRepository(db *sql.DB, driver string, logger *logrus.Entry) *ContentRepository {
	var format sq.PlaceholderFormat = sq.Question
	if driver == DriverPostgres {
		format = sq.Dollar
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &ContentRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(format),
		logger:  logger.WithField("component", "content_repository"),
	}
}

// LoadCategory returns every stored day for category. Rows with a blank title are skipped with a warning.
func (r *ContentRepository) LoadCategory(ctx context.Context, category string) (ofday.Yearly, error) {
	query, args, err := r.builder.
		Select("day_of_year", "title", "subtitle", "description").
		From(contentTable).
		Where(sq.Eq{"category_key": category}).
		OrderBy("day_of_year").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query content for %s: %w", category, err)
	}
	defer rows.Close()

	yearly := make(ofday.Yearly)
	for rows.Next() {
		var day int
		var rec ofday.Record
		if err := rows.Scan(&day, &rec.Title, &rec.Subtitle, &rec.Description); err != nil {
			return nil, fmt.Errorf("scan content row: %w", err)
		}
		if strings.TrimSpace(rec.Title) == "" {
			r.logger.WithFields(logrus.Fields{"category": category, "day_of_year": day}).
				Warn("Skipping stored entry with empty title")
			continue
		}
		yearly[day] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content rows: %w", err)
	}
	return yearly, nil
}

// Source exposes one category as an ofday.ContentSource.
func (r *ContentRepository) Source(category string) ofday.ContentSource {
	return ofday.ContentSourceFunc(func(ctx context.Context) (ofday.Yearly, error) {
		yearly, err := r.LoadCategory(ctx, category)
		if err != nil {
			return nil, &ofday.DataSourceError{Category: category, Err: err}
		}
		return yearly, nil
	})
}

// Import upserts every day in yearly for category inside one transaction and returns the row count.
func (r *ContentRepository) Import(ctx context.Context, category string, yearly ofday.Yearly) (int, error) {
	days := make([]int, 0, len(yearly))
	for day := range yearly {
		if ofday.ValidDay(day) {
			days = append(days, day)
		}
	}
	sort.Ints(days)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, day := range days {
		rec := yearly[day]
		query, args, err := r.builder.
			Insert(contentTable).
			Columns("category_key", "day_of_year", "title", "subtitle", "description").
			Values(category, day, rec.Title, rec.Subtitle, rec.Description).
			Suffix(`ON CONFLICT (category_key, day_of_year) DO UPDATE
				SET title = excluded.title,
				    subtitle = excluded.subtitle,
				    description = excluded.description,
				    updated_at = CURRENT_TIMESTAMP`).
			ToSql()
		if err != nil {
			return 0, fmt.Errorf("build upsert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("upsert %s day %d: %w", category, day, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return len(days), nil
}

// Counts returns the number of stored days per category.
func (r *ContentRepository) Counts(ctx context.Context) (map[string]int, error) {
	query, args, err := r.builder.
		Select("category_key", "COUNT(*)").
		From(contentTable).
		GroupBy("category_key").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count content: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("scan count row: %w", err)
		}
		counts[key] = n
	}
	return counts, rows.Err()
}
