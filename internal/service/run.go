package service

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/TWRT/board-sync/internal/config"
	"github.com/TWRT/board-sync/internal/logger"
	"github.com/TWRT/board-sync/internal/repository"
)

// RunStats counts what a run did to the local backlog and the board.
type RunStats struct {
	Created   int
	Updated   int
	Relocated int
	Deleted   int
	Skipped   int
}

func startRun(repo *repository.RunRepository, direction string, cfg *config.Config) (*repository.Run, error) {
	run := &repository.Run{
		Id:          uuid.NewString(),
		Direction:   direction,
		BoardOwner:  cfg.BoardOwner,
		BoardNumber: cfg.BoardNumber,
		Status:      "running",
	}

	if err := repo.Create(run); err != nil {
		return nil, fmt.Errorf("start run: %w", err)
	}

	return run, nil
}

func finishRun(repo *repository.RunRepository, run *repository.Run, stats *RunStats) {
	run.Status = "completed"
	run.CreatedCount = stats.Created
	run.UpdatedCount = stats.Updated
	run.RelocatedCount = stats.Relocated
	run.DeletedCount = stats.Deleted
	run.SkippedCount = stats.Skipped

	if err := repo.Complete(run); err != nil {
		logger.Warnf("Could not record run completion: %v", err)
	}
}

func failRun(repo *repository.RunRepository, runID string, cause error) {
	if err := repo.Fail(runID, cause.Error()); err != nil {
		logger.Warnf("Could not record run failure: %v", err)
	}
}

// recordEvent writes one per-item ledger row. Ledger trouble never stops
// a run, it only warns.
func recordEvent(repo *repository.ItemEventRepository, runID string, identifier int, title, action, detail string) {
	event := &repository.ItemEvent{
		RunID:      runID,
		Identifier: identifier,
		Title:      title,
		Action:     action,
		Detail:     detail,
	}

	if err := repo.Create(event); err != nil {
		logger.Warnf("Could not record item event: %v", err)
	}
}
