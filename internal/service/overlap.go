package service

import (
	"context"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/repository"
)

// OverlapDetector decides whether a candidate interval collides with a live rent of the same tool.
type OverlapDetector struct{}

// HasOverlap must run inside the tool's locked booking region for the answer to still
// hold at insert time. excludeRentID skips one rent; zero skips none.
func (OverlapDetector) HasOverlap(ctx context.Context, store repository.RentStore, toolID int64, candidate domain.Interval, excludeRentID int64) (bool, error) {
	live, err := store.FindLiveByTool(ctx, toolID)
	if err != nil {
		return false, err
	}
	return conflicts(live, candidate, excludeRentID), nil
}

func conflicts(existing []domain.Rent, candidate domain.Interval, excludeRentID int64) bool {
	for i := range existing {
		r := &existing[i]
		if excludeRentID != 0 && r.ID == excludeRentID {
			continue
		}
		if !r.Status.IsLive() {
			continue
		}
		if r.Interval().Overlaps(candidate) {
			return true
		}
	}
	return false
}
