package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/repository"
)

type toolRepository struct {
	db *sql.DB
}

func NewToolRepository(db *sql.DB) repository.ToolRepository {
	return &toolRepository{db: db}
}

func (r *toolRepository) Create(ctx context.Context, t *domain.Tool) error {
	query := `INSERT INTO tools (owner_id, name, status, price_per_day_cents, price_per_week_cents, price_per_month_cents)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	return r.db.QueryRowContext(ctx, query, t.OwnerID, t.Name, string(t.Status), t.PricePerDayCents, t.PricePerWeekCents, t.PricePerMonthCents).Scan(&t.ID)
}

func (r *toolRepository) GetByID(ctx context.Context, id int64) (*domain.Tool, error) {
	t := &domain.Tool{}
	var status string
	query := `SELECT id, owner_id, name, status, price_per_day_cents, COALESCE(price_per_week_cents, 0), COALESCE(price_per_month_cents, 0) FROM tools WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.OwnerID, &t.Name, &status, &t.PricePerDayCents, &t.PricePerWeekCents, &t.PricePerMonthCents)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrToolNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tool %d: %w", id, err)
	}
	t.Status = domain.ToolStatus(status)
	return t, nil
}
