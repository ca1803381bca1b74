package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexanderramin/itinera/internal/db"
	"github.com/alexanderramin/itinera/internal/domain"
)

// SQLiteEventRepo implements EventRepo. Events are append-only.
type SQLiteEventRepo struct {
	db db.DBTX
}

func NewSQLiteEventRepo(conn db.DBTX) *SQLiteEventRepo {
	return &SQLiteEventRepo{db: conn}
}

const eventColumns = `id, trip_id, kind, payload, severity, created_at`

func (r *SQLiteEventRepo) Create(ctx context.Context, e *domain.Event) error {
	payload := string(e.Payload)
	if payload == "" {
		payload = "{}"
	}
	query := `INSERT INTO events (` + eventColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.TripID, string(e.Kind), payload, string(e.Severity), formatTS(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

func (r *SQLiteEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	return e, err
}

func (r *SQLiteEventRepo) ListByTrip(ctx context.Context, tripID string) ([]*domain.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE trip_id = ? ORDER BY created_at, id`, tripID)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}
	return events, nil
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	var e domain.Event
	var kind, payload, severity, createdStr string
	if err := row.Scan(&e.ID, &e.TripID, &kind, &payload, &severity, &createdStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning event: %w", err)
	}
	e.Kind = domain.EventKind(kind)
	e.Severity = domain.Severity(severity)
	e.Payload = json.RawMessage(payload)

	var err error
	if e.CreatedAt, err = parseTS(createdStr, "created_at"); err != nil {
		return nil, err
	}
	return &e, nil
}
