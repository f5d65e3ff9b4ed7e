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

	"github.com/lib/pq"
)

const (
	rentColumns = `id, tool_id, user_id, start_date, end_date, status, message, version, created_on, updated_on`
	liveFilter  = `status IN ('PENDING', 'APPROVED', 'ACTIVE')`

	// exclusion_violation, raised by the rents_no_overlap constraint
	pqExclusionViolation = "23P01"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

type rentRepository struct {
	db *sql.DB
	rentStore
}

// rentStore holds the queries that also run inside a booking transaction.
type rentStore struct {
	q querier
}

func NewRentRepository(db *sql.DB) repository.RentRepository {
	return &rentRepository{db: db, rentStore: rentStore{q: db}}
}

func scanRent(s rowScanner) (*domain.Rent, error) {
	rt := &domain.Rent{}
	var status string
	if err := s.Scan(&rt.ID, &rt.ToolID, &rt.UserID, &rt.StartDate, &rt.EndDate, &status, &rt.Message, &rt.Version, &rt.CreatedOn, &rt.UpdatedOn); err != nil {
		return nil, err
	}
	st, err := domain.ParseRentStatus(status)
	if err != nil {
		return nil, err
	}
	rt.Status = st
	return rt, nil
}

func collectRents(rows *sql.Rows) ([]domain.Rent, error) {
	defer rows.Close()

	var rents []domain.Rent
	for rows.Next() {
		rt, err := scanRent(rows)
		if err != nil {
			return nil, err
		}
		rents = append(rents, *rt)
	}
	return rents, rows.Err()
}

func (s rentStore) Create(ctx context.Context, rt *domain.Rent) error {
	logger.EnterMethod("rentRepository.Create", "toolID", rt.ToolID, "userID", rt.UserID)

	now := time.Now().UTC()
	query := `INSERT INTO rents (tool_id, user_id, start_date, end_date, status, message, version, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, 1, $7, $8) RETURNING id`
	err := s.q.QueryRowContext(ctx, query, rt.ToolID, rt.UserID, rt.StartDate, rt.EndDate, string(rt.Status), rt.Message, now, now).Scan(&rt.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqExclusionViolation {
			logger.ExitMethod("rentRepository.Create", "toolID", rt.ToolID, "overlap", true)
			return domain.ErrToolNotAvailable
		}
		logger.ExitMethodWithError("rentRepository.Create", err, "toolID", rt.ToolID)
		return fmt.Errorf("insert rent: %w", err)
	}
	rt.Version = 1
	rt.CreatedOn = now
	rt.UpdatedOn = now

	logger.ExitMethod("rentRepository.Create", "rentID", rt.ID)
	return nil
}

func (s rentStore) FindLiveByTool(ctx context.Context, toolID int64) ([]domain.Rent, error) {
	query := `SELECT ` + rentColumns + ` FROM rents WHERE tool_id = $1 AND ` + liveFilter + ` ORDER BY start_date`
	rows, err := s.q.QueryContext(ctx, query, toolID)
	if err != nil {
		return nil, fmt.Errorf("find live rents for tool %d: %w", toolID, err)
	}
	return collectRents(rows)
}

func (r *rentRepository) GetByID(ctx context.Context, id int64) (*domain.Rent, error) {
	query := `SELECT ` + rentColumns + ` FROM rents WHERE id = $1`
	rt, err := scanRent(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get rent %d: %w", id, err)
	}
	return rt, nil
}

func (r *rentRepository) Update(ctx context.Context, rt *domain.Rent) error {
	logger.EnterMethod("rentRepository.Update", "rentID", rt.ID, "status", rt.Status, "version", rt.Version)

	now := time.Now().UTC()
	query := `UPDATE rents SET status=$1, message=$2, version=version+1, updated_on=$3 WHERE id=$4 AND version=$5`
	logger.DatabaseCall("rents.update", query, "rentID", rt.ID)
	res, err := r.db.ExecContext(ctx, query, string(rt.Status), rt.Message, now, rt.ID, rt.Version)
	if err != nil {
		logger.DatabaseResult("rents.update", 0, err, "rentID", rt.ID)
		logger.ExitMethodWithError("rentRepository.Update", err, "rentID", rt.ID)
		return fmt.Errorf("update rent %d: %w", rt.ID, err)
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("rents.update", n, err, "rentID", rt.ID)
	if err != nil {
		return fmt.Errorf("update rent %d: %w", rt.ID, err)
	}
	if n == 0 {
		logger.ExitMethod("rentRepository.Update", "rentID", rt.ID, "conflict", true)
		return domain.ErrConcurrentUpdate
	}
	rt.Version++
	rt.UpdatedOn = now

	logger.ExitMethod("rentRepository.Update", "rentID", rt.ID, "version", rt.Version)
	return nil
}

func (r *rentRepository) FindByStartBetween(ctx context.Context, from, to time.Time) ([]domain.Rent, error) {
	query := `SELECT ` + rentColumns + ` FROM rents WHERE start_date BETWEEN $1 AND $2 ORDER BY start_date`
	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("find rents by start date: %w", err)
	}
	return collectRents(rows)
}

func (r *rentRepository) FinishElapsed(ctx context.Context, now time.Time) ([]domain.Rent, error) {
	logger.EnterMethod("rentRepository.FinishElapsed", "now", now)

	query := `UPDATE rents SET status = 'FINISHED', version = version + 1, updated_on = $1
	          WHERE status = 'ACTIVE' AND end_date <= $2
	          RETURNING ` + rentColumns
	rows, err := r.db.QueryContext(ctx, query, now, now)
	if err != nil {
		logger.ExitMethodWithError("rentRepository.FinishElapsed", err)
		return nil, fmt.Errorf("finish elapsed rents: %w", err)
	}
	rents, err := collectRents(rows)
	logger.DatabaseResult("rents.finish_elapsed", int64(len(rents)), err)
	if err != nil {
		return nil, err
	}

	logger.ExitMethod("rentRepository.FinishElapsed", "count", len(rents))
	return rents, nil
}

// WithToolLock opens a transaction and takes a transaction scoped advisory lock on
// the tool id, so concurrent bookings of one tool run their check and insert in turn.
func (r *rentRepository) WithToolLock(ctx context.Context, toolID int64, fn func(ctx context.Context, store repository.RentStore) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin booking transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, toolID); err != nil {
		return fmt.Errorf("lock tool %d: %w", toolID, err)
	}

	if err := fn(ctx, rentStore{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit booking transaction: %w", err)
	}
	return nil
}
