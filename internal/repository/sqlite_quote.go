package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/itinera/internal/db"
	"github.com/alexanderramin/itinera/internal/domain"
)

// SQLiteQuoteRepo implements QuoteRepo using a SQLite database.
// A NULL segment_id is the pool binding.
type SQLiteQuoteRepo struct {
	db db.DBTX
}

func NewSQLiteQuoteRepo(conn db.DBTX) *SQLiteQuoteRepo {
	return &SQLiteQuoteRepo{db: conn}
}

const quoteColumns = `id, trip_id, segment_id, category, title, source, price, currency, duration_min, comfort_score, attributes, seq, created_at`

func (r *SQLiteQuoteRepo) Create(ctx context.Context, q *domain.Quote) error {
	attrs, err := encodeAttributes(q.Attributes)
	if err != nil {
		return err
	}

	var seq int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM quotes WHERE trip_id = ?`, q.TripID).Scan(&seq); err != nil {
		return fmt.Errorf("allocating quote seq: %w", err)
	}

	segmentID, _ := q.Binding.SegmentID()
	query := `INSERT INTO quotes (` + quoteColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		q.ID,
		q.TripID,
		nullableString(segmentID),
		string(q.Category),
		q.Title,
		q.Source,
		q.Price,
		q.Currency,
		q.DurationMin,
		q.ComfortScore,
		attrs,
		seq,
		formatTS(q.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting quote: %w", err)
	}
	q.Seq = seq
	return nil
}

func (r *SQLiteQuoteRepo) GetByID(ctx context.Context, id string) (*domain.Quote, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = ?`, id)
	q, err := scanQuote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("quote %s: %w", id, ErrNotFound)
	}
	return q, err
}

func (r *SQLiteQuoteRepo) ListByTrip(ctx context.Context, tripID string) ([]*domain.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE trip_id = ? ORDER BY category, seq`
	rows, err := r.db.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("listing quotes: %w", err)
	}
	defer rows.Close()
	return scanQuotes(rows)
}

func (r *SQLiteQuoteRepo) ListPool(ctx context.Context, tripID string, category domain.Category, limit int) ([]*domain.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes
		WHERE trip_id = ? AND category = ? AND segment_id IS NULL
		ORDER BY price ASC, seq ASC
		LIMIT ?`
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, query, tripID, string(category), limit)
	if err != nil {
		return nil, fmt.Errorf("listing pool quotes: %w", err)
	}
	defer rows.Close()
	return scanQuotes(rows)
}

func (r *SQLiteQuoteRepo) CountByCategory(ctx context.Context, tripID string) (map[domain.Category]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, COUNT(*) FROM quotes WHERE trip_id = ? GROUP BY category`, tripID)
	if err != nil {
		return nil, fmt.Errorf("counting quotes: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Category]int)
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("scanning quote count: %w", err)
		}
		counts[domain.Category(category)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating quote counts: %w", err)
	}
	return counts, nil
}

func (r *SQLiteQuoteRepo) UpdatePrice(ctx context.Context, id string, price float64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE quotes SET price = ? WHERE id = ?`, price, id)
	if err != nil {
		return fmt.Errorf("updating quote price: %w", err)
	}
	return requireAffected(res, "quote "+id)
}

func (r *SQLiteQuoteRepo) Attach(ctx context.Context, quoteID, segmentID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE quotes SET segment_id = ? WHERE id = ?`, segmentID, quoteID)
	if err != nil {
		return fmt.Errorf("attaching quote: %w", err)
	}
	return requireAffected(res, "quote "+quoteID)
}

func (r *SQLiteQuoteRepo) Detach(ctx context.Context, segmentID string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE quotes SET segment_id = NULL WHERE segment_id = ?`, segmentID); err != nil {
		return fmt.Errorf("detaching quotes: %w", err)
	}
	return nil
}

func scanQuote(row rowScanner) (*domain.Quote, error) {
	var q domain.Quote
	var segmentID sql.NullString
	var category, attrs, createdStr string
	err := row.Scan(&q.ID, &q.TripID, &segmentID, &category, &q.Title, &q.Source, &q.Price,
		&q.Currency, &q.DurationMin, &q.ComfortScore, &attrs, &q.Seq, &createdStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning quote: %w", err)
	}
	q.Category = domain.Category(category)
	if id := parseNullableString(segmentID); id != "" {
		q.Binding = domain.AttachedTo(id)
	}
	if q.Attributes, err = decodeAttributes(attrs); err != nil {
		return nil, err
	}
	if q.CreatedAt, err = parseTS(createdStr, "created_at"); err != nil {
		return nil, err
	}
	return &q, nil
}

func scanQuotes(rows *sql.Rows) ([]*domain.Quote, error) {
	var quotes []*domain.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating quotes: %w", err)
	}
	return quotes, nil
}
