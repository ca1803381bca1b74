package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/itinera/internal/db"
	"github.com/alexanderramin/itinera/internal/domain"
)

// SQLiteBudgetCapRepo implements BudgetCapRepo using a SQLite database.
type SQLiteBudgetCapRepo struct {
	db db.DBTX
}

func NewSQLiteBudgetCapRepo(conn db.DBTX) *SQLiteBudgetCapRepo {
	return &SQLiteBudgetCapRepo{db: conn}
}

func (r *SQLiteBudgetCapRepo) Create(ctx context.Context, c *domain.BudgetCap) error {
	query := `INSERT INTO budget_caps (id, trip_id, category, cap, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.TripID, string(c.Category), c.Cap, formatTS(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting budget cap: %w", err)
	}
	return nil
}

func (r *SQLiteBudgetCapRepo) ListByTrip(ctx context.Context, tripID string) ([]domain.BudgetCap, error) {
	query := `SELECT id, trip_id, category, cap, created_at FROM budget_caps
		WHERE trip_id = ?
		ORDER BY CASE category WHEN 'transport' THEN 0 WHEN 'stay' THEN 1 WHEN 'activity' THEN 2 ELSE 3 END`
	rows, err := r.db.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("listing budget caps: %w", err)
	}
	defer rows.Close()

	var caps []domain.BudgetCap
	for rows.Next() {
		var c domain.BudgetCap
		var category, createdStr string
		if err := rows.Scan(&c.ID, &c.TripID, &category, &c.Cap, &createdStr); err != nil {
			return nil, fmt.Errorf("scanning budget cap: %w", err)
		}
		c.Category = domain.Category(category)
		if c.CreatedAt, err = parseTS(createdStr, "created_at"); err != nil {
			return nil, err
		}
		caps = append(caps, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating budget caps: %w", err)
	}
	return caps, nil
}
