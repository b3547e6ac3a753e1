package repository

import (
	"database/sql"
	"fmt"
	"time"
)

type Run struct {
	Id             string
	Direction      string
	BoardOwner     string
	BoardNumber    int
	Status         string
	CreatedCount   int
	UpdatedCount   int
	RelocatedCount int
	DeletedCount   int
	SkippedCount   int
	ErrorMessage   *string
	StartedAt      time.Time
	FinishedAt     *time.Time
}

type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) Create(run *Run) error {
	query := `
	INSERT INTO sync_runs (id, direction, board_owner, board_number, status)
        VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		run.Id,
		run.Direction,
		run.BoardOwner,
		run.BoardNumber,
		run.Status,
	)

	if err != nil {
		return fmt.Errorf("Error trying to create the run: %w", err)
	}

	return nil
}

func (r *RunRepository) Complete(run *Run) error {
	query := `
	UPDATE sync_runs
	SET status = ?, created_count = ?, updated_count = ?, relocated_count = ?,
	    deleted_count = ?, skipped_count = ?, finished_at = CURRENT_TIMESTAMP
	WHERE id = ?
	`
	_, err := r.db.Exec(query,
		run.Status,
		run.CreatedCount,
		run.UpdatedCount,
		run.RelocatedCount,
		run.DeletedCount,
		run.SkippedCount,
		run.Id,
	)
	return err
}

func (r *RunRepository) Fail(id string, message string) error {
	query := `UPDATE sync_runs SET status = 'failed', error_message = ?, finished_at = CURRENT_TIMESTAMP WHERE id = ?`
	_, err := r.db.Exec(query, message, id)
	return err
}

func (r *RunRepository) GetRuns(limit int) ([]Run, error) {
	query := `
	SELECT * FROM sync_runs ORDER BY started_at DESC LIMIT ?
	`
	rows, err := r.db.Query(query, limit)

	if err != nil {
		return nil, fmt.Errorf("Error trying to get runs: %w", err)
	}
	defer rows.Close()

	var runs []Run

	for rows.Next() {
		var run Run
		err := rows.Scan(
			&run.Id,
			&run.Direction,
			&run.BoardOwner,
			&run.BoardNumber,
			&run.Status,
			&run.CreatedCount,
			&run.UpdatedCount,
			&run.RelocatedCount,
			&run.DeletedCount,
			&run.SkippedCount,
			&run.ErrorMessage,
			&run.StartedAt,
			&run.FinishedAt,
		)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, nil
}

func (r *RunRepository) GetRun(id string) (Run, error) {
	query := `
		SELECT * FROM sync_runs where id = ?
	`

	var run Run
	err := r.db.QueryRow(query, id).Scan(
		&run.Id,
		&run.Direction,
		&run.BoardOwner,
		&run.BoardNumber,
		&run.Status,
		&run.CreatedCount,
		&run.UpdatedCount,
		&run.RelocatedCount,
		&run.DeletedCount,
		&run.SkippedCount,
		&run.ErrorMessage,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if err != nil {
		return Run{}, fmt.Errorf("Error trying to get run: %w", err)
	}

	return run, nil
}
