package service

import (
	"context"
	"errors"
	"time"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/logger"
	"toolrent-backend/internal/metrics"
	"toolrent-backend/internal/repository"
)

type rentalService struct {
	rentRepo  repository.RentRepository
	toolRepo  repository.ToolRepository
	validator *BookingValidator
	overlap   OverlapDetector
	machine   *RentalStateMachine
}

func NewRentalService(
	rentRepo repository.RentRepository,
	toolRepo repository.ToolRepository,
	validator *BookingValidator,
) RentalService {
	return &rentalService{
		rentRepo:  rentRepo,
		toolRepo:  toolRepo,
		validator: validator,
		machine:   NewRentalStateMachine(),
	}
}

func (s *rentalService) Create(ctx context.Context, callerID, toolID int64, start, end *time.Time) (*domain.Rent, error) {
	logger.EnterMethod("rentalService.Create", "callerID", callerID, "toolID", toolID)

	interval, err := s.validator.Validate(start, end)
	if err != nil {
		metrics.ObserveBookingRejection("invalid_dates")
		logger.ExitMethodWithError("rentalService.Create", err, "toolID", toolID)
		return nil, err
	}

	if _, err := s.toolRepo.GetByID(ctx, toolID); err != nil {
		logger.ExitMethodWithError("rentalService.Create", err, "toolID", toolID)
		return nil, err
	}

	rent := domain.NewRent(toolID, callerID, interval, domain.RentStatusPending)
	err = s.rentRepo.WithToolLock(ctx, toolID, func(ctx context.Context, store repository.RentStore) error {
		busy, err := s.overlap.HasOverlap(ctx, store, toolID, interval, 0)
		if err != nil {
			return err
		}
		if busy {
			return domain.ErrToolNotAvailable
		}
		return store.Create(ctx, rent)
	})
	if err != nil {
		if errors.Is(err, domain.ErrToolNotAvailable) {
			metrics.ObserveBookingRejection("overlap")
		}
		logger.ExitMethodWithError("rentalService.Create", err, "toolID", toolID)
		return nil, err
	}

	metrics.ObserveTransition("NONE", string(rent.Status))
	logger.InfoContext(ctx, "Rent requested", "rentID", rent.ID, "toolID", toolID, "userID", callerID,
		"start", rent.StartDate, "end", rent.EndDate)
	logger.ExitMethod("rentalService.Create", "rentID", rent.ID)
	return rent, nil
}

func (s *rentalService) Approve(ctx context.Context, rentID, callerID int64) (*domain.Rent, error) {
	return s.ownerTransition(ctx, "rentalService.Approve", rentID, func(rent *domain.Rent, tool *domain.Tool) error {
		return s.machine.Approve(rent, tool, callerID)
	})
}

func (s *rentalService) Reject(ctx context.Context, rentID, callerID int64, reason string) (*domain.Rent, error) {
	return s.ownerTransition(ctx, "rentalService.Reject", rentID, func(rent *domain.Rent, tool *domain.Tool) error {
		return s.machine.Reject(rent, tool, callerID, reason)
	})
}

// ownerTransition reloads the tool on every call, so a change of owner is honoured immediately.
func (s *rentalService) ownerTransition(ctx context.Context, method string, rentID int64, apply func(*domain.Rent, *domain.Tool) error) (*domain.Rent, error) {
	logger.EnterMethod(method, "rentID", rentID)

	rent, err := s.rentRepo.GetByID(ctx, rentID)
	if err != nil {
		logger.ExitMethodWithError(method, err, "rentID", rentID)
		return nil, err
	}
	tool, err := s.toolRepo.GetByID(ctx, rent.ToolID)
	if err != nil {
		logger.ExitMethodWithError(method, err, "rentID", rentID)
		return nil, err
	}

	from := rent.Status
	if err := apply(rent, tool); err != nil {
		logger.ExitMethodWithError(method, err, "rentID", rentID)
		return nil, err
	}
	if err := s.rentRepo.Update(ctx, rent); err != nil {
		logger.ExitMethodWithError(method, err, "rentID", rentID)
		return nil, err
	}

	metrics.ObserveTransition(string(from), string(rent.Status))
	logger.InfoContext(ctx, "Rent status changed", "rentID", rent.ID, "from", from, "to", rent.Status)
	logger.ExitMethod(method, "rentID", rentID)
	return rent, nil
}

func (s *rentalService) Cancel(ctx context.Context, rentID, callerID int64) (*domain.Rent, error) {
	logger.EnterMethod("rentalService.Cancel", "rentID", rentID, "callerID", callerID)

	rent, err := s.rentRepo.GetByID(ctx, rentID)
	if err != nil {
		logger.ExitMethodWithError("rentalService.Cancel", err, "rentID", rentID)
		return nil, err
	}

	from := rent.Status
	if err := s.machine.Cancel(rent, callerID); err != nil {
		logger.ExitMethodWithError("rentalService.Cancel", err, "rentID", rentID)
		return nil, err
	}
	if err := s.rentRepo.Update(ctx, rent); err != nil {
		logger.ExitMethodWithError("rentalService.Cancel", err, "rentID", rentID)
		return nil, err
	}

	metrics.ObserveTransition(string(from), string(rent.Status))
	logger.InfoContext(ctx, "Rent canceled", "rentID", rent.ID, "from", from)
	logger.ExitMethod("rentalService.Cancel", "rentID", rentID)
	return rent, nil
}

func (s *rentalService) Get(ctx context.Context, rentID int64) (*domain.Rent, error) {
	return s.rentRepo.GetByID(ctx, rentID)
}

func (s *rentalService) FindByInterval(ctx context.Context, from, to time.Time) ([]domain.Rent, error) {
	if to.Before(from) {
		return nil, domain.ErrEndBeforeStart
	}
	return s.rentRepo.FindByStartBetween(ctx, from, to)
}
