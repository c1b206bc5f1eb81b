package repository

import (
	"database/sql"
	"fmt"
	"time"

	"flashdeck/internal/database"
	"flashdeck/internal/models"
)

// DeckRepository handles database operations for decks and cards
type DeckRepository struct {
	db database.DBTX
}

// NewDeckRepository creates a new deck repository
func NewDeckRepository(db database.DBTX) *DeckRepository {
	return &DeckRepository{db: db}
}

// CreateDeck creates a new deck and returns it with its ID set
func (r *DeckRepository) CreateDeck(deck *models.Deck) (*models.Deck, error) {
	query := `
		INSERT INTO decks (title, description, owner_email, case_sensitive, show_solutions_requires_input, use_speech_recognition, is_public)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	deckID, err := r.db.ExecReturningID(query,
		deck.Title, deck.Description, deck.OwnerEmail,
		deck.CaseSensitive, deck.ShowSolutionsRequiresInput,
		deck.UseSpeechRecognition, deck.IsPublic)
	if err != nil {
		return nil, fmt.Errorf("failed to create deck: %w", err)
	}

	created := *deck
	created.ID = deckID
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt

	return &created, nil
}

// GetDeckByID retrieves a deck by ID, or nil if it does not exist
func (r *DeckRepository) GetDeckByID(deckID int64) (*models.Deck, error) {
	query := `
		SELECT id, title, description, owner_email, case_sensitive, show_solutions_requires_input, use_speech_recognition, is_public, created_at, updated_at
		FROM decks
		WHERE id = ?
	`
	deck := &models.Deck{}
	err := r.db.QueryRow(query, deckID).Scan(
		&deck.ID,
		&deck.Title,
		&deck.Description,
		&deck.OwnerEmail,
		&deck.CaseSensitive,
		&deck.ShowSolutionsRequiresInput,
		&deck.UseSpeechRecognition,
		&deck.IsPublic,
		&deck.CreatedAt,
		&deck.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}

	return deck, nil
}

// GetDeckWithCards retrieves a deck and its cards in navigation order,
// or nil if the deck does not exist
func (r *DeckRepository) GetDeckWithCards(deckID int64) (*models.DeckWithCards, error) {
	deck, err := r.GetDeckByID(deckID)
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, nil
	}

	cards, err := r.GetDeckCards(deckID)
	if err != nil {
		return nil, err
	}

	return &models.DeckWithCards{Deck: *deck, Cards: cards}, nil
}

// ListDecks retrieves all decks with their card counts
func (r *DeckRepository) ListDecks() ([]models.DeckSummary, error) {
	query := `
		SELECT d.id, d.title, d.description, d.owner_email, d.case_sensitive, d.show_solutions_requires_input, d.use_speech_recognition, d.is_public, d.created_at, d.updated_at,
		       COUNT(c.id), COUNT(c.answer)
		FROM decks d
		LEFT JOIN cards c ON c.deck_id = d.id
		GROUP BY d.id, d.title, d.description, d.owner_email, d.case_sensitive, d.show_solutions_requires_input, d.use_speech_recognition, d.is_public, d.created_at, d.updated_at
		ORDER BY d.created_at DESC
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query decks: %w", err)
	}
	defer rows.Close()

	var decks []models.DeckSummary
	for rows.Next() {
		var summary models.DeckSummary
		if err := rows.Scan(
			&summary.ID,
			&summary.Title,
			&summary.Description,
			&summary.OwnerEmail,
			&summary.CaseSensitive,
			&summary.ShowSolutionsRequiresInput,
			&summary.UseSpeechRecognition,
			&summary.IsPublic,
			&summary.CreatedAt,
			&summary.UpdatedAt,
			&summary.CardCount,
			&summary.AnswerableCards,
		); err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		decks = append(decks, summary)
	}

	return decks, rows.Err()
}

// UpdateDeck updates a deck's title and description
func (r *DeckRepository) UpdateDeck(deckID int64, title, description string) error {
	query := "UPDATE decks SET title = ?, description = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	_, err := r.db.Exec(query, title, description, deckID)
	if err != nil {
		return fmt.Errorf("failed to update deck: %w", err)
	}
	return nil
}

// DeleteDeck deletes a deck and all associated cards and sessions
func (r *DeckRepository) DeleteDeck(deckID int64) error {
	query := "DELETE FROM decks WHERE id = ?"
	_, err := r.db.Exec(query, deckID)
	if err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}
	return nil
}

// AddCard adds a card to a deck and returns it with its ID set
func (r *DeckRepository) AddCard(card *models.Card) (*models.Card, error) {
	var imagePath, imageAlt string
	if card.Image != nil {
		imagePath = card.Image.Path
		imageAlt = card.Image.AltText
	}

	query := `
		INSERT INTO cards (deck_id, position, text, image_path, image_alt, answer, audio_path, tip, sub_content_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	cardID, err := r.db.ExecReturningID(query,
		card.DeckID, card.Position, card.Text,
		imagePath, imageAlt, card.Answer,
		card.AudioPath, card.Tip, card.SubContentID)
	if err != nil {
		return nil, fmt.Errorf("failed to add card: %w", err)
	}

	created := *card
	created.ID = cardID
	created.CreatedAt = time.Now()

	return &created, nil
}

// GetDeckCards retrieves all cards for a deck in navigation order
func (r *DeckRepository) GetDeckCards(deckID int64) ([]models.Card, error) {
	query := `
		SELECT id, deck_id, position, text, image_path, image_alt, answer, audio_path, tip, sub_content_id, created_at
		FROM cards
		WHERE deck_id = ?
		ORDER BY position ASC
	`
	rows, err := r.db.Query(query, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		var card models.Card
		var imagePath, imageAlt string
		if err := rows.Scan(
			&card.ID,
			&card.DeckID,
			&card.Position,
			&card.Text,
			&imagePath,
			&imageAlt,
			&card.Answer,
			&card.AudioPath,
			&card.Tip,
			&card.SubContentID,
			&card.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		if imagePath != "" {
			card.Image = &models.CardImage{Path: imagePath, AltText: imageAlt}
		}
		cards = append(cards, card)
	}

	return cards, rows.Err()
}
