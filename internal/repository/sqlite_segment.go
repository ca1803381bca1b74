package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/itinera/internal/db"
	"github.com/alexanderramin/itinera/internal/domain"
)

// SQLiteSegmentRepo implements SegmentRepo using a SQLite database.
type SQLiteSegmentRepo struct {
	db db.DBTX
}

func NewSQLiteSegmentRepo(conn db.DBTX) *SQLiteSegmentRepo {
	return &SQLiteSegmentRepo{db: conn}
}

const segmentColumns = `id, trip_id, category, title, provider, start_ts, end_ts, duration_min,
	comfort_score, price, currency, locked, status, attributes, created_at, updated_at`

func (r *SQLiteSegmentRepo) Create(ctx context.Context, s *domain.Segment) error {
	attrs, err := encodeAttributes(s.Attributes)
	if err != nil {
		return err
	}
	query := `INSERT INTO segments (` + segmentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		s.ID,
		s.TripID,
		string(s.Category),
		s.Title,
		s.Provider,
		formatTS(s.StartTS),
		formatTS(s.EndTS),
		s.DurationMin,
		s.ComfortScore,
		s.Price,
		s.Currency,
		boolToInt(s.Locked),
		string(s.Status),
		attrs,
		formatTS(s.CreatedAt),
		formatTS(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting segment: %w", err)
	}
	return nil
}

func (r *SQLiteSegmentRepo) GetByID(ctx context.Context, id string) (*domain.Segment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+segmentColumns+` FROM segments WHERE id = ?`, id)
	s, err := scanSegment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("segment %s: %w", id, ErrNotFound)
	}
	return s, err
}

func (r *SQLiteSegmentRepo) ListByTrip(ctx context.Context, tripID string) ([]*domain.Segment, error) {
	query := `SELECT ` + segmentColumns + ` FROM segments WHERE trip_id = ? ORDER BY start_ts ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("listing segments: %w", err)
	}
	defer rows.Close()

	var segments []*domain.Segment
	for rows.Next() {
		s, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		segments = append(segments, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating segments: %w", err)
	}
	return segments, nil
}

// Update rewrites an unlocked segment's content. A locked row is left alone
// and reported as not found, so a stale caller can never overwrite it.
func (r *SQLiteSegmentRepo) Update(ctx context.Context, s *domain.Segment) error {
	return r.update(ctx, s, true)
}

// Overwrite rewrites the segment's content regardless of its lock. Only a
// user-invoked replace goes through here.
func (r *SQLiteSegmentRepo) Overwrite(ctx context.Context, s *domain.Segment) error {
	return r.update(ctx, s, false)
}

func (r *SQLiteSegmentRepo) update(ctx context.Context, s *domain.Segment, unlockedOnly bool) error {
	attrs, err := encodeAttributes(s.Attributes)
	if err != nil {
		return err
	}
	query := `UPDATE segments SET title = ?, provider = ?, start_ts = ?, end_ts = ?, duration_min = ?,
		comfort_score = ?, price = ?, currency = ?, status = ?, attributes = ?, updated_at = ?
		WHERE id = ?`
	what := "segment " + s.ID
	if unlockedOnly {
		query += ` AND locked = 0`
		what = "unlocked " + what
	}
	res, err := r.db.ExecContext(ctx, query,
		s.Title,
		s.Provider,
		formatTS(s.StartTS),
		formatTS(s.EndTS),
		s.DurationMin,
		s.ComfortScore,
		s.Price,
		s.Currency,
		string(s.Status),
		attrs,
		formatTS(s.UpdatedAt),
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("updating segment: %w", err)
	}
	return requireAffected(res, what)
}

func (r *SQLiteSegmentRepo) SetLocked(ctx context.Context, id string, locked bool, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE segments SET locked = ?, updated_at = ? WHERE id = ?`,
		boolToInt(locked), formatTS(now), id)
	if err != nil {
		return fmt.Errorf("setting segment lock: %w", err)
	}
	return requireAffected(res, "segment "+id)
}

func scanSegment(row rowScanner) (*domain.Segment, error) {
	var s domain.Segment
	var category, startStr, endStr, status, attrs, createdStr, updatedStr string
	var locked int
	err := row.Scan(&s.ID, &s.TripID, &category, &s.Title, &s.Provider, &startStr, &endStr,
		&s.DurationMin, &s.ComfortScore, &s.Price, &s.Currency, &locked, &status, &attrs,
		&createdStr, &updatedStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning segment: %w", err)
	}
	s.Category = domain.Category(category)
	s.Status = domain.SegmentStatus(status)
	s.Locked = intToBool(locked)

	if s.StartTS, err = parseTS(startStr, "start_ts"); err != nil {
		return nil, err
	}
	if s.EndTS, err = parseTS(endStr, "end_ts"); err != nil {
		return nil, err
	}
	if s.Attributes, err = decodeAttributes(attrs); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = parseTS(createdStr, "created_at"); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTS(updatedStr, "updated_at"); err != nil {
		return nil, err
	}
	return &s, nil
}
