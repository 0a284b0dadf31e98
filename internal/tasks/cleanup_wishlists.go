package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// WishlistPruner provides the ability to delete stale empty wishlists.
type WishlistPruner interface {
	DeleteStaleEmpty(olderThan time.Time) (int64, error)
}

// CleanupWishlistsTask removes empty created wishlists that have been idle
// beyond the configured number of days. Borrowed wishlists are permanent
// history and are never deleted.
type CleanupWishlistsTask struct {
	IdleDays int `json:"idle_days"`
}

// Config returns the queue configuration for wishlist cleanup tasks.
func (t CleanupWishlistsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_wishlists",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupWishlistsProcessor creates a processor function for
// CleanupWishlistsTask.
func CleanupWishlistsProcessor(pruner WishlistPruner) backlite.QueueProcessor[CleanupWishlistsTask] {
	return func(ctx context.Context, task CleanupWishlistsTask) error {
		if pruner == nil {
			return fmt.Errorf("wishlist pruner not configured")
		}

		idleDays := task.IdleDays
		if idleDays <= 0 {
			idleDays = 90
		}
		cutoff := time.Now().Add(-time.Duration(idleDays) * 24 * time.Hour)

		deleted, err := pruner.DeleteStaleEmpty(cutoff)
		if err != nil {
			return fmt.Errorf("cleanup wishlists: %w", err)
		}

		log.Printf("[TASK] Cleaned up %d empty wishlists idle for over %d days", deleted, idleDays)
		return nil
	}
}

// NewCleanupWishlistsQueue creates a backlite queue for wishlist cleanup
// tasks.
func NewCleanupWishlistsQueue(pruner WishlistPruner) backlite.Queue {
	return backlite.NewQueue(CleanupWishlistsProcessor(pruner))
}
