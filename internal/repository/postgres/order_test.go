package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderCols = []string{"order_id", "rent_id", "amount_cents", "currency", "created_on"}

func TestOrderRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewOrderRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		b := &domain.OrderBinding{OrderID: "ORDER-1", RentID: 7, Amount: domain.Money{Currency: "USD", ValueCents: 3000}}
		mock.ExpectExec("INSERT INTO payment_orders").
			WithArgs("ORDER-1", int64(7), int64(3000), "USD", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(ctx, b))
		assert.False(t, b.CreatedOn.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Driver error is wrapped", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO payment_orders").WillReturnError(errors.New("duplicate key"))

		err := repo.Create(ctx, &domain.OrderBinding{OrderID: "ORDER-1"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "insert payment order")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrderRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewOrderRepository(db)
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM payment_orders WHERE order_id").
			WithArgs("ORDER-1").
			WillReturnRows(sqlmock.NewRows(orderCols).AddRow("ORDER-1", int64(0), int64(1), "USD", march(1)))

		b, err := repo.GetByID(ctx, "ORDER-1")
		require.NoError(t, err)
		assert.Equal(t, domain.NoRentID, b.RentID)
		assert.Equal(t, domain.Money{Currency: "USD", ValueCents: 1}, b.Amount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM payment_orders").WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(ctx, "ORDER-9")
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
