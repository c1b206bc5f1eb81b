package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"flashdeck/internal/database"
)

// BackupData represents the complete database backup structure
type BackupData struct {
	Version    string          `json:"version"`
	ExportedAt time.Time       `json:"exported_at"`
	Decks      []DeckBackup    `json:"decks"`
	Sessions   []SessionBackup `json:"sessions"`
}

// DeckBackup represents a deck and its cards for backup
type DeckBackup struct {
	ID                         int64        `json:"id"`
	Title                      string       `json:"title"`
	Description                string       `json:"description"`
	OwnerEmail                 string       `json:"owner_email"`
	CaseSensitive              bool         `json:"case_sensitive"`
	ShowSolutionsRequiresInput bool         `json:"show_solutions_requires_input"`
	UseSpeechRecognition       bool         `json:"use_speech_recognition"`
	IsPublic                   bool         `json:"is_public"`
	CreatedAt                  time.Time    `json:"created_at"`
	Cards                      []CardBackup `json:"cards"`
}

// CardBackup represents a card for backup
type CardBackup struct {
	Position     int     `json:"position"`
	Text         string  `json:"text"`
	ImagePath    string  `json:"image_path"`
	ImageAlt     string  `json:"image_alt"`
	Answer       *string `json:"answer"`
	AudioPath    string  `json:"audio_path"`
	Tip          string  `json:"tip"`
	SubContentID string  `json:"sub_content_id"`
}

// SessionBackup represents a learner session for backup
type SessionBackup struct {
	ID          string        `json:"id"`
	DeckID      int64         `json:"deck_id"`
	LearnerID   string        `json:"learner_id"`
	Snapshot    string        `json:"snapshot"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at"`
	Score       int           `json:"score"`
	MaxScore    int           `json:"max_score"`
	Events      []EventBackup `json:"events"`
}

// EventBackup represents a session event for backup
type EventBackup struct {
	Kind      string    `json:"kind"`
	CardIndex *int      `json:"card_index"`
	Payload   string    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}

	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter writes a complete backup as indented JSON
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now(),
	}

	if err := s.exportDecks(backup); err != nil {
		return fmt.Errorf("failed to export decks: %w", err)
	}
	if err := s.exportSessions(backup); err != nil {
		return fmt.Errorf("failed to export sessions: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Exported: %d decks, %d sessions", len(backup.Decks), len(backup.Sessions))
	return nil
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a database from a backup stream. Decks keep
// their original IDs so sessions stay attached.
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, deck := range backup.Decks {
		if err := importDeck(tx, deck); err != nil {
			return err
		}
	}
	for _, session := range backup.Sessions {
		if err := importSession(tx, session); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}

	log.Printf("Imported: %d decks, %d sessions", len(backup.Decks), len(backup.Sessions))
	return nil
}

func (s *BackupService) exportDecks(backup *BackupData) error {
	rows, err := s.db.Query(`
		SELECT id, title, description, owner_email, case_sensitive, show_solutions_requires_input, use_speech_recognition, is_public, created_at
		FROM decks ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var deck DeckBackup
		if err := rows.Scan(&deck.ID, &deck.Title, &deck.Description, &deck.OwnerEmail,
			&deck.CaseSensitive, &deck.ShowSolutionsRequiresInput, &deck.UseSpeechRecognition,
			&deck.IsPublic, &deck.CreatedAt); err != nil {
			return err
		}
		backup.Decks = append(backup.Decks, deck)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range backup.Decks {
		cards, err := s.exportCards(backup.Decks[i].ID)
		if err != nil {
			return err
		}
		backup.Decks[i].Cards = cards
	}
	return nil
}

func (s *BackupService) exportCards(deckID int64) ([]CardBackup, error) {
	rows, err := s.db.Query(`
		SELECT position, text, image_path, image_alt, answer, audio_path, tip, sub_content_id
		FROM cards WHERE deck_id = ? ORDER BY position`, deckID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []CardBackup
	for rows.Next() {
		var card CardBackup
		if err := rows.Scan(&card.Position, &card.Text, &card.ImagePath, &card.ImageAlt,
			&card.Answer, &card.AudioPath, &card.Tip, &card.SubContentID); err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

func (s *BackupService) exportSessions(backup *BackupData) error {
	rows, err := s.db.Query(`
		SELECT s.id, s.deck_id, s.learner_id, COALESCE(sn.snapshot, ''), s.started_at, s.completed_at, s.score, s.max_score
		FROM learner_sessions s
		LEFT JOIN session_snapshots sn ON sn.session_id = s.id
		ORDER BY s.started_at`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var session SessionBackup
		if err := rows.Scan(&session.ID, &session.DeckID, &session.LearnerID, &session.Snapshot,
			&session.StartedAt, &session.CompletedAt, &session.Score, &session.MaxScore); err != nil {
			return err
		}
		backup.Sessions = append(backup.Sessions, session)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range backup.Sessions {
		events, err := s.exportEvents(backup.Sessions[i].ID)
		if err != nil {
			return err
		}
		backup.Sessions[i].Events = events
	}
	return nil
}

func (s *BackupService) exportEvents(sessionID string) ([]EventBackup, error) {
	rows, err := s.db.Query(`
		SELECT kind, card_index, payload, created_at
		FROM session_events WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []EventBackup
	for rows.Next() {
		var event EventBackup
		if err := rows.Scan(&event.Kind, &event.CardIndex, &event.Payload, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func importDeck(tx *database.Tx, deck DeckBackup) error {
	_, err := tx.Exec(`
		INSERT INTO decks (id, title, description, owner_email, case_sensitive, show_solutions_requires_input, use_speech_recognition, is_public, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		deck.ID, deck.Title, deck.Description, deck.OwnerEmail,
		deck.CaseSensitive, deck.ShowSolutionsRequiresInput, deck.UseSpeechRecognition,
		deck.IsPublic, deck.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to import deck %d: %w", deck.ID, err)
	}

	for _, card := range deck.Cards {
		_, err := tx.Exec(`
			INSERT INTO cards (deck_id, position, text, image_path, image_alt, answer, audio_path, tip, sub_content_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			deck.ID, card.Position, card.Text, card.ImagePath, card.ImageAlt,
			card.Answer, card.AudioPath, card.Tip, card.SubContentID)
		if err != nil {
			return fmt.Errorf("failed to import card %d of deck %d: %w", card.Position, deck.ID, err)
		}
	}
	return nil
}

func importSession(tx *database.Tx, session SessionBackup) error {
	_, err := tx.Exec(`
		INSERT INTO learner_sessions (id, deck_id, learner_id, started_at, completed_at, score, max_score)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.DeckID, session.LearnerID, session.StartedAt,
		session.CompletedAt, session.Score, session.MaxScore)
	if err != nil {
		return fmt.Errorf("failed to import session %s: %w", session.ID, err)
	}

	if session.Snapshot != "" {
		_, err := tx.Exec(
			"INSERT INTO session_snapshots (session_id, snapshot) VALUES (?, ?)",
			session.ID, session.Snapshot)
		if err != nil {
			return fmt.Errorf("failed to import snapshot for session %s: %w", session.ID, err)
		}
	}

	for _, event := range session.Events {
		_, err := tx.Exec(`
			INSERT INTO session_events (session_id, kind, card_index, payload, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			session.ID, event.Kind, event.CardIndex, event.Payload, event.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import events for session %s: %w", session.ID, err)
		}
	}
	return nil
}
