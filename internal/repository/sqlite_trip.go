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

// SQLiteTripRepo implements TripRepo using a SQLite database.
type SQLiteTripRepo struct {
	db db.DBTX
}

func NewSQLiteTripRepo(conn db.DBTX) *SQLiteTripRepo {
	return &SQLiteTripRepo{db: conn}
}

const tripColumns = `id, title, origin, destination, start_date, end_date, currency, total_budget, status, created_at, updated_at`

func (r *SQLiteTripRepo) Create(ctx context.Context, t *domain.Trip) error {
	query := `INSERT INTO trips (` + tripColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.Title,
		t.Origin,
		t.Destination,
		t.StartDate.Format(dateLayout),
		t.EndDate.Format(dateLayout),
		t.Currency,
		t.TotalBudget,
		string(t.Status),
		formatTS(t.CreatedAt),
		formatTS(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting trip: %w", err)
	}
	return nil
}

func (r *SQLiteTripRepo) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = ?`, id)
	t, err := scanTrip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("trip %s: %w", id, ErrNotFound)
	}
	return t, err
}

func (r *SQLiteTripRepo) List(ctx context.Context) ([]*domain.Trip, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+tripColumns+` FROM trips ORDER BY start_date, created_at`)
	if err != nil {
		return nil, fmt.Errorf("listing trips: %w", err)
	}
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating trips: %w", err)
	}
	return trips, nil
}

func (r *SQLiteTripRepo) Update(ctx context.Context, t *domain.Trip) error {
	query := `UPDATE trips SET title = ?, origin = ?, destination = ?, start_date = ?, end_date = ?,
		currency = ?, total_budget = ?, status = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		t.Title,
		t.Origin,
		t.Destination,
		t.StartDate.Format(dateLayout),
		t.EndDate.Format(dateLayout),
		t.Currency,
		t.TotalBudget,
		string(t.Status),
		formatTS(t.UpdatedAt),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating trip: %w", err)
	}
	return requireAffected(res, "trip "+t.ID)
}

func (r *SQLiteTripRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trips WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting trip: %w", err)
	}
	return requireAffected(res, "trip "+id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*domain.Trip, error) {
	var t domain.Trip
	var startStr, endStr, status, createdStr, updatedStr string
	err := row.Scan(&t.ID, &t.Title, &t.Origin, &t.Destination, &startStr, &endStr,
		&t.Currency, &t.TotalBudget, &status, &createdStr, &updatedStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning trip: %w", err)
	}
	t.Status = domain.TripStatus(status)

	if t.StartDate, err = time.Parse(dateLayout, startStr); err != nil {
		return nil, fmt.Errorf("parsing start_date: %w", err)
	}
	if t.EndDate, err = time.Parse(dateLayout, endStr); err != nil {
		return nil, fmt.Errorf("parsing end_date: %w", err)
	}
	if t.CreatedAt, err = parseTS(createdStr, "created_at"); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTS(updatedStr, "updated_at"); err != nil {
		return nil, err
	}
	return &t, nil
}

func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
