package jobs

import (
	"context"

	"toolrent-backend/internal/logger"
)

// FinishElapsedRents moves ACTIVE rents whose end date has passed to FINISHED
func (jr *JobRunner) FinishElapsedRents() {
	jr.runWithRecovery("FinishElapsedRents", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
		defer cancel()

		count, err := jr.services.Finish.FinishElapsed(ctx)
		if err != nil {
			logger.Error("Failed to finish elapsed rents", "error", err)
			return
		}

		logger.Info("Finished elapsed rents", "count", count)
	})
}
