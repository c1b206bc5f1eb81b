package service

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"flashdeck/internal/audio"
	"flashdeck/internal/database"
	"flashdeck/internal/models"
	"flashdeck/internal/repository"
	"flashdeck/internal/validation"
)

var (
	ErrDeckNotFound = errors.New("deck not found")
)

// CardInput is the authoring payload for a single card
type CardInput struct {
	Text         string
	ImagePath    string
	ImageAlt     string
	Answer       *string
	AudioPath    string
	Tip          string
	SubContentID string
}

// DeckInput is the authoring payload for a deck
type DeckInput struct {
	Title                      string
	Description                string
	OwnerEmail                 string
	CaseSensitive              bool
	ShowSolutionsRequiresInput bool
	UseSpeechRecognition       bool
	IsPublic                   bool
	Cards                      []CardInput
}

// DeckService handles deck authoring and retrieval
type DeckService struct {
	db       *database.DB
	deckRepo *repository.DeckRepository
	tts      *audio.TTSService
}

// NewDeckService creates a new deck service. tts may be nil, in which case
// cards without audio simply stay silent.
func NewDeckService(db *database.DB, deckRepo *repository.DeckRepository, tts *audio.TTSService) *DeckService {
	return &DeckService{db: db, deckRepo: deckRepo, tts: tts}
}

// CreateDeck validates and stores a deck with its cards in one transaction
func (s *DeckService) CreateDeck(input DeckInput) (*models.DeckWithCards, error) {
	if err := validateDeckInput(input); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	txRepo := repository.NewDeckRepository(tx)

	deck, err := txRepo.CreateDeck(&models.Deck{
		Title:                      strings.TrimSpace(input.Title),
		Description:                strings.TrimSpace(input.Description),
		OwnerEmail:                 strings.TrimSpace(input.OwnerEmail),
		CaseSensitive:              input.CaseSensitive,
		ShowSolutionsRequiresInput: input.ShowSolutionsRequiresInput,
		UseSpeechRecognition:       input.UseSpeechRecognition,
		IsPublic:                   input.IsPublic,
	})
	if err != nil {
		return nil, err
	}

	cards := make([]models.Card, 0, len(input.Cards))
	for i, in := range input.Cards {
		audioPath := in.AudioPath
		if audioPath == "" && s.tts != nil && strings.TrimSpace(in.Text) != "" {
			generated, err := s.tts.GenerateCardAudio(strings.TrimSpace(in.Text))
			if err != nil {
				log.Printf("Failed to generate audio for card %d: %v", i, err)
			} else {
				audioPath = generated
			}
		}
		card := &models.Card{
			DeckID:       deck.ID,
			Position:     i,
			Text:         strings.TrimSpace(in.Text),
			Answer:       in.Answer,
			AudioPath:    audioPath,
			Tip:          in.Tip,
			SubContentID: in.SubContentID,
		}
		if in.ImagePath != "" {
			card.Image = &models.CardImage{Path: in.ImagePath, AltText: in.ImageAlt}
		}
		created, err := txRepo.AddCard(card)
		if err != nil {
			return nil, err
		}
		cards = append(cards, *created)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit deck: %w", err)
	}

	return &models.DeckWithCards{Deck: *deck, Cards: cards}, nil
}

// GetDeck retrieves a deck with its cards
func (s *DeckService) GetDeck(deckID int64) (*models.DeckWithCards, error) {
	deck, err := s.deckRepo.GetDeckWithCards(deckID)
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, ErrDeckNotFound
	}
	return deck, nil
}

// ListDecks retrieves all decks with card counts
func (s *DeckService) ListDecks() ([]models.DeckSummary, error) {
	return s.deckRepo.ListDecks()
}

// DeleteDeck removes a deck and everything attached to it
func (s *DeckService) DeleteDeck(deckID int64) error {
	deck, err := s.deckRepo.GetDeckByID(deckID)
	if err != nil {
		return err
	}
	if deck == nil {
		return ErrDeckNotFound
	}
	return s.deckRepo.DeleteDeck(deckID)
}

func validateDeckInput(input DeckInput) error {
	if err := validation.ValidateTitle(input.Title); err != nil {
		return err
	}
	if strings.TrimSpace(input.OwnerEmail) != "" {
		if err := validation.ValidateEmail(input.OwnerEmail); err != nil {
			return err
		}
	}
	if len(input.Cards) == 0 {
		return errors.New("deck needs at least one card")
	}
	for i, card := range input.Cards {
		if strings.TrimSpace(card.Text) == "" && card.ImagePath == "" {
			return fmt.Errorf("card %d needs text or an image", i)
		}
		if card.Answer != nil && card.ImagePath != "" && card.ImageAlt == "" {
			return fmt.Errorf("card %d image needs alt text", i)
		}
	}
	return nil
}
