package tasks

import (
	"context"
	"fmt"
	"time"
)

// archiveRetention is how long archived messages are kept before pruning.
const archiveRetention = 90 * 24 * time.Hour

const maintenanceTimeout = 5 * time.Minute

// newArchiveMaintenanceTask returns a task that prunes old archive rows and
// vacuums the database.
func newArchiveMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "archive_maintenance")

	return func(ctx context.Context) error {
		taskCtx, cancel := context.WithTimeout(ctx, maintenanceTimeout)
		defer cancel()

		cutoff := time.Now().UTC().Add(-archiveRetention)
		deleted, err := deps.Store.DeleteMessagesBefore(taskCtx, cutoff)
		if err != nil {
			return fmt.Errorf("failed to prune archive: %w", err)
		}
		log.InfoContext(ctx, "Pruned archive", "deleted", deleted, "cutoff", cutoff)

		if err := deps.Store.RunMaintenance(taskCtx); err != nil {
			return fmt.Errorf("failed to run database maintenance: %w", err)
		}

		return nil
	}
}
