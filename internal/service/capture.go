package service

import (
	"context"
	"errors"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/logger"
	"toolrent-backend/internal/metrics"
	"toolrent-backend/internal/reliability/retry"
	"toolrent-backend/internal/repository"
)

type captureOrchestrator struct {
	rentRepo repository.RentRepository
	machine  *RentalStateMachine
	retryCfg *retry.Config
}

// NewCaptureOrchestrator retries version conflicts with cfg. A nil cfg uses retry.DefaultConfig.
func NewCaptureOrchestrator(rentRepo repository.RentRepository, cfg *retry.Config) CaptureOrchestrator {
	if cfg == nil {
		cfg = retry.DefaultConfig()
	}
	c := *cfg
	c.RetryIf = func(err error) bool { return errors.Is(err, domain.ErrConcurrentUpdate) }
	return &captureOrchestrator{rentRepo: rentRepo, machine: NewRentalStateMachine(), retryCfg: &c}
}

// OnCaptureResult never fails the payment: a missing or terminal rent is logged and skipped.
// Only storage errors are returned.
func (o *captureOrchestrator) OnCaptureResult(ctx context.Context, rentID int64, status domain.CaptureStatus) error {
	if rentID == domain.NoRentID {
		metrics.ObserveCapture("pay_first")
		logger.InfoContext(ctx, "Capture without rent, nothing to activate", "status", status)
		return nil
	}
	if status != domain.CaptureStatusCompleted {
		metrics.ObserveCapture("not_completed")
		logger.InfoContext(ctx, "Capture not completed, rent unchanged", "rentID", rentID, "status", status)
		return nil
	}

	outcome, err := retry.Do(ctx, o.retryCfg, logger.FromContext(ctx), "activate paid rent", func(ctx context.Context) (string, error) {
		rent, err := o.rentRepo.GetByID(ctx, rentID)
		if errors.Is(err, domain.ErrRentNotFound) {
			return "rent_missing", nil
		}
		if err != nil {
			return "", err
		}

		from := rent.Status
		if !o.machine.Activate(rent) {
			return "orphaned", nil
		}
		if err := o.rentRepo.Update(ctx, rent); err != nil {
			return "", err
		}
		metrics.ObserveTransition(string(from), string(rent.Status))
		return "activated", nil
	})
	if err != nil {
		metrics.ObserveCapture("error")
		logger.ErrorContext(ctx, "Failed to activate paid rent", "rentID", rentID, "error", err)
		return err
	}

	metrics.ObserveCapture(outcome)
	switch outcome {
	case "rent_missing":
		logger.WarnContext(ctx, "Capture completed for unknown rent, skipped", "rentID", rentID)
	case "orphaned":
		logger.ErrorContext(ctx, "Capture completed for a closed rent, manual refund needed", "rentID", rentID)
	default:
		logger.InfoContext(ctx, "Rent activated by payment", "rentID", rentID)
	}
	return nil
}
