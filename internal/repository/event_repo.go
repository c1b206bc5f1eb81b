package repository

import (
	"fmt"

	"flashdeck/internal/database"
	"flashdeck/internal/models"
)

// EventRepository handles database operations for session events
type EventRepository struct {
	db database.DBTX
}

// NewEventRepository creates a new event repository
func NewEventRepository(db database.DBTX) *EventRepository {
	return &EventRepository{db: db}
}

// RecordEvent appends an event to a session's history
func (r *EventRepository) RecordEvent(event *models.SessionEvent) error {
	query := `
		INSERT INTO session_events (session_id, kind, card_index, payload)
		VALUES (?, ?, ?, ?)
	`
	eventID, err := r.db.ExecReturningID(query,
		event.SessionID, event.Kind, event.CardIndex, event.Payload)
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}

	event.ID = eventID
	return nil
}

// GetSessionEvents retrieves all events for a session in recording order
func (r *EventRepository) GetSessionEvents(sessionID string) ([]models.SessionEvent, error) {
	query := `
		SELECT id, session_id, kind, card_index, payload, created_at
		FROM session_events
		WHERE session_id = ?
		ORDER BY id ASC
	`
	rows, err := r.db.Query(query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.SessionEvent
	for rows.Next() {
		var event models.SessionEvent
		if err := rows.Scan(
			&event.ID,
			&event.SessionID,
			&event.Kind,
			&event.CardIndex,
			&event.Payload,
			&event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

// PurgeSessionEvents removes a session's event history
func (r *EventRepository) PurgeSessionEvents(sessionID string) error {
	query := "DELETE FROM session_events WHERE session_id = ?"
	_, err := r.db.Exec(query, sessionID)
	if err != nil {
		return fmt.Errorf("failed to purge events: %w", err)
	}
	return nil
}

// CountEventsByKind returns how many events of the given kind a session has
func (r *EventRepository) CountEventsByKind(sessionID, kind string) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM session_events WHERE session_id = ? AND kind = ?"
	err := r.db.QueryRow(query, sessionID, kind).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}
