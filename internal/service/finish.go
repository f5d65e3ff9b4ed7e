package service

import (
	"context"
	"time"

	"toolrent-backend/internal/logger"
	"toolrent-backend/internal/metrics"
	"toolrent-backend/internal/repository"
)

type finishService struct {
	rentRepo repository.RentRepository
	now      func() time.Time
}

func NewFinishService(rentRepo repository.RentRepository, now func() time.Time) FinishService {
	if now == nil {
		now = time.Now
	}
	return &finishService{rentRepo: rentRepo, now: now}
}

// FinishElapsed moves every ACTIVE rent whose end has passed to FINISHED.
func (s *finishService) FinishElapsed(ctx context.Context) (int, error) {
	finished, err := s.rentRepo.FinishElapsed(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	for _, r := range finished {
		metrics.ObserveTransition("ACTIVE", string(r.Status))
		logger.Info("Rent finished", "rentID", r.ID, "toolID", r.ToolID, "end", r.EndDate)
	}
	metrics.AddFinishedRents(len(finished))
	return len(finished), nil
}
