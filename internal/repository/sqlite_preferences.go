package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/itinera/internal/db"
	"github.com/alexanderramin/itinera/internal/domain"
)

// SQLitePreferencesRepo implements PreferencesRepo. A trip has at most one row.
type SQLitePreferencesRepo struct {
	db db.DBTX
}

func NewSQLitePreferencesRepo(conn db.DBTX) *SQLitePreferencesRepo {
	return &SQLitePreferencesRepo{db: conn}
}

func (r *SQLitePreferencesRepo) Get(ctx context.Context, tripID string) (*domain.Preferences, error) {
	query := `SELECT trip_id, weight_cost, weight_time, weight_comfort, created_at, updated_at
		FROM preferences WHERE trip_id = ?`
	var p domain.Preferences
	var createdStr, updatedStr string
	err := r.db.QueryRowContext(ctx, query, tripID).Scan(
		&p.TripID, &p.WeightCost, &p.WeightTime, &p.WeightComfort, &createdStr, &updatedStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("preferences for trip %s: %w", tripID, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning preferences: %w", err)
	}
	if p.CreatedAt, err = parseTS(createdStr, "created_at"); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTS(updatedStr, "updated_at"); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *SQLitePreferencesRepo) Upsert(ctx context.Context, p *domain.Preferences) error {
	query := `INSERT INTO preferences (trip_id, weight_cost, weight_time, weight_comfort, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(trip_id) DO UPDATE SET
			weight_cost = excluded.weight_cost,
			weight_time = excluded.weight_time,
			weight_comfort = excluded.weight_comfort,
			updated_at = excluded.updated_at`
	created := p.CreatedAt
	if created.IsZero() {
		created = p.UpdatedAt
	}
	_, err := r.db.ExecContext(ctx, query,
		p.TripID, p.WeightCost, p.WeightTime, p.WeightComfort, formatTS(created), formatTS(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upserting preferences: %w", err)
	}
	return nil
}
