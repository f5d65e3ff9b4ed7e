package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/logger"
	"toolrent-backend/internal/repository"
)

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, b *domain.OrderBinding) error {
	if b.CreatedOn.IsZero() {
		b.CreatedOn = time.Now().UTC()
	}
	query := `INSERT INTO payment_orders (order_id, rent_id, amount_cents, currency, created_on)
	          VALUES ($1, $2, $3, $4, $5)`
	logger.DatabaseCall("INSERT", "payment_orders", "orderID", b.OrderID, "rentID", b.RentID)
	res, err := r.db.ExecContext(ctx, query, b.OrderID, b.RentID, b.Amount.ValueCents, b.Amount.Currency, b.CreatedOn)
	if err != nil {
		logger.DatabaseResult("INSERT", 0, err, "orderID", b.OrderID)
		return fmt.Errorf("insert payment order %s: %w", b.OrderID, err)
	}
	n, _ := res.RowsAffected()
	logger.DatabaseResult("INSERT", n, nil, "orderID", b.OrderID)
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, orderID string) (*domain.OrderBinding, error) {
	b := &domain.OrderBinding{}
	query := `SELECT order_id, rent_id, amount_cents, currency, created_on FROM payment_orders WHERE order_id = $1`
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(&b.OrderID, &b.RentID, &b.Amount.ValueCents, &b.Amount.Currency, &b.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get payment order %s: %w", orderID, err)
	}
	return b, nil
}
