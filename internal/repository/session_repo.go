package repository

import (
	"database/sql"
	"fmt"
	"time"

	"flashdeck/internal/database"
	"flashdeck/internal/models"
)

// SessionRepository handles database operations for learner sessions
type SessionRepository struct {
	db database.DBTX
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db database.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

// CreateSession persists a new learner session
func (r *SessionRepository) CreateSession(session *models.LearnerSession) error {
	query := `
		INSERT INTO learner_sessions (id, deck_id, learner_id, score, max_score)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		session.ID, session.DeckID, session.LearnerID,
		session.Score, session.MaxScore)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSessionByID retrieves a session with its latest snapshot, or nil if
// it does not exist
func (r *SessionRepository) GetSessionByID(sessionID string) (*models.LearnerSession, error) {
	query := `
		SELECT s.id, s.deck_id, s.learner_id, s.started_at, s.completed_at, s.score, s.max_score,
		       COALESCE(sn.snapshot, '')
		FROM learner_sessions s
		LEFT JOIN session_snapshots sn ON sn.session_id = s.id
		WHERE s.id = ?
	`
	session := &models.LearnerSession{}
	err := r.db.QueryRow(query, sessionID).Scan(
		&session.ID,
		&session.DeckID,
		&session.LearnerID,
		&session.StartedAt,
		&session.CompletedAt,
		&session.Score,
		&session.MaxScore,
		&session.Snapshot,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// SaveSnapshot stores the serialized engine state for a session,
// replacing any previous snapshot
func (r *SessionRepository) SaveSnapshot(sessionID, snapshot string) error {
	query := "INSERT INTO session_snapshots (session_id, snapshot) VALUES (?, ?) " +
		r.db.GetDialect().UpsertSnapshotClause()
	_, err := r.db.Exec(query, sessionID, snapshot)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// UpdateScore records the session's current score
func (r *SessionRepository) UpdateScore(sessionID string, score int) error {
	query := "UPDATE learner_sessions SET score = ? WHERE id = ?"
	_, err := r.db.Exec(query, score, sessionID)
	if err != nil {
		return fmt.Errorf("failed to update score: %w", err)
	}
	return nil
}

// CompleteSession marks a session as completed with its final score
func (r *SessionRepository) CompleteSession(sessionID string, score int) error {
	query := "UPDATE learner_sessions SET score = ?, completed_at = ? WHERE id = ?"
	_, err := r.db.Exec(query, score, time.Now(), sessionID)
	if err != nil {
		return fmt.Errorf("failed to complete session: %w", err)
	}
	return nil
}

// ReopenSession clears a session's completion state after a retry
func (r *SessionRepository) ReopenSession(sessionID string) error {
	query := "UPDATE learner_sessions SET score = 0, completed_at = NULL WHERE id = ?"
	_, err := r.db.Exec(query, sessionID)
	if err != nil {
		return fmt.Errorf("failed to reopen session: %w", err)
	}
	return nil
}

// GetDeckSessions retrieves all sessions for a deck, most recent first
func (r *SessionRepository) GetDeckSessions(deckID int64) ([]models.LearnerSession, error) {
	query := `
		SELECT s.id, s.deck_id, s.learner_id, s.started_at, s.completed_at, s.score, s.max_score,
		       COALESCE(sn.snapshot, '')
		FROM learner_sessions s
		LEFT JOIN session_snapshots sn ON sn.session_id = s.id
		WHERE s.deck_id = ?
		ORDER BY s.started_at DESC
	`
	rows, err := r.db.Query(query, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.LearnerSession
	for rows.Next() {
		var session models.LearnerSession
		if err := rows.Scan(
			&session.ID,
			&session.DeckID,
			&session.LearnerID,
			&session.StartedAt,
			&session.CompletedAt,
			&session.Score,
			&session.MaxScore,
			&session.Snapshot,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

// GetLearnerSessions retrieves a learner's most recent sessions
func (r *SessionRepository) GetLearnerSessions(learnerID string, limit int) ([]models.LearnerSession, error) {
	query := `
		SELECT s.id, s.deck_id, s.learner_id, s.started_at, s.completed_at, s.score, s.max_score,
		       COALESCE(sn.snapshot, '')
		FROM learner_sessions s
		LEFT JOIN session_snapshots sn ON sn.session_id = s.id
		WHERE s.learner_id = ?
		ORDER BY s.started_at DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, learnerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query learner sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.LearnerSession
	for rows.Next() {
		var session models.LearnerSession
		if err := rows.Scan(
			&session.ID,
			&session.DeckID,
			&session.LearnerID,
			&session.StartedAt,
			&session.CompletedAt,
			&session.Score,
			&session.MaxScore,
			&session.Snapshot,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}
