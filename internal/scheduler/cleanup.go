// Package scheduler runs periodic maintenance via cron schedules. The jobs
// only enqueue backlite tasks; the task queue owns retries and timeouts.
package scheduler

import (
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/shelflift/internal/tasks"
)

// CleanupScheduler periodically enqueues the stale-wishlist cleanup task.
type CleanupScheduler struct {
	taskClient *tasks.Client
	schedule   string
	idleDays   int

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.Mutex
	isRunning bool
}

// NewCleanupScheduler creates a new scheduler instance.
func NewCleanupScheduler(taskClient *tasks.Client, schedule string, idleDays int) *CleanupScheduler {
	return &CleanupScheduler{
		taskClient: taskClient,
		schedule:   schedule,
		idleDays:   idleDays,
		cron:       cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the cron schedule.
func (s *CleanupScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.enqueue)
	if err != nil {
		return fmt.Errorf("failed to schedule wishlist cleanup: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true
	log.Printf("Wishlist cleanup scheduled: %s (idle threshold %d days)", s.schedule, s.idleDays)
	return nil
}

// Stop halts the cron schedule. In-flight tasks keep running in the queue.
func (s *CleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	s.cron.Remove(s.entryID)
	s.cron.Stop()
	s.isRunning = false
	log.Printf("Wishlist cleanup scheduler stopped")
}

func (s *CleanupScheduler) enqueue() {
	task := tasks.CleanupWishlistsTask{IdleDays: s.idleDays}
	if _, err := s.taskClient.Add(task).Save(); err != nil {
		log.Printf("Failed to enqueue wishlist cleanup task: %v", err)
	}
}
