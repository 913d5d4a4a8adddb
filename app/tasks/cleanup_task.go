package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/akarpov87/stockfeed/app/database"
)

// CleanupTask garbage-collects raw captures whose fulltext extraction has
// completed: items, html, and progress rows flagged can_delete = 1.
type CleanupTask struct {
	Task
	archiveRepo database.ArchiveRepository
}

func NewCleanupTask(archiveRepo database.ArchiveRepository) *CleanupTask {
	return &CleanupTask{
		Task:        NewTask(TaskTypeCleanup, "archive"),
		archiveRepo: archiveRepo,
	}
}

func (t *CleanupTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	deleted, err := t.archiveRepo.DeleteCollectable()
	if err != nil {
		return fmt.Errorf("failed to delete collectable entries: %w", err)
	}

	if deleted == 0 {
		slog.Debug("No collectable entries")
		return nil
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"deleted", deleted)

	return nil
}
