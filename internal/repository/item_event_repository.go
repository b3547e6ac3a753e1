package repository

import (
	"database/sql"
	"fmt"
	"time"
)

type ItemEvent struct {
	ID         int64
	RunID      string
	Identifier int
	Title      string
	Action     string
	Detail     string
	CreatedAt  time.Time
}

type ItemEventRepository struct {
	db *sql.DB
}

func NewItemEventRepository(db *sql.DB) *ItemEventRepository {
	return &ItemEventRepository{db: db}
}

func (r *ItemEventRepository) Create(event *ItemEvent) error {
	query := `
		INSERT INTO item_events (run_id, identifier, title, action, detail)
        VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		event.RunID,
		event.Identifier,
		event.Title,
		event.Action,
		event.Detail,
	)

	if err != nil {
		return fmt.Errorf("Error trying to record the item event: %w", err)
	}

	return nil
}

func (r *ItemEventRepository) GetEvents(runID string) ([]ItemEvent, error) {
	query := `
	SELECT id, run_id, identifier, title, action, detail, created_at
	FROM item_events WHERE run_id = ? ORDER BY id
	`
	rows, err := r.db.Query(query, runID)

	if err != nil {
		return nil, fmt.Errorf("Error trying to get item events: %w", err)
	}
	defer rows.Close()

	var events []ItemEvent

	for rows.Next() {
		var e ItemEvent
		err := rows.Scan(
			&e.ID,
			&e.RunID,
			&e.Identifier,
			&e.Title,
			&e.Action,
			&e.Detail,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	return events, nil
}
