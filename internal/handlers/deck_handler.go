package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"flashdeck/internal/service"
)

// DeckHandler handles deck authoring HTTP requests
type DeckHandler struct {
	deckService *service.DeckService
}

// NewDeckHandler creates a new deck handler
func NewDeckHandler(deckService *service.DeckService) *DeckHandler {
	return &DeckHandler{deckService: deckService}
}

type cardRequest struct {
	Text         string  `json:"text"`
	ImagePath    string  `json:"imagePath"`
	ImageAlt     string  `json:"imageAlt"`
	Answer       *string `json:"answer"`
	AudioPath    string  `json:"audioPath"`
	Tip          string  `json:"tip"`
	SubContentID string  `json:"subContentId"`
}

type createDeckRequest struct {
	Title                      string        `json:"title"`
	Description                string        `json:"description"`
	OwnerEmail                 string        `json:"ownerEmail"`
	CaseSensitive              bool          `json:"caseSensitive"`
	ShowSolutionsRequiresInput *bool         `json:"showSolutionsRequiresInput"`
	UseSpeechRecognition       bool          `json:"useSpeechRecognition"`
	IsPublic                   bool          `json:"isPublic"`
	Cards                      []cardRequest `json:"cards"`
}

// CreateDeck handles POST /api/decks
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	var req createDeckRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	input := service.DeckInput{
		Title:                      req.Title,
		Description:                req.Description,
		OwnerEmail:                 req.OwnerEmail,
		CaseSensitive:              req.CaseSensitive,
		ShowSolutionsRequiresInput: true,
		UseSpeechRecognition:       req.UseSpeechRecognition,
		IsPublic:                   req.IsPublic,
	}
	if req.ShowSolutionsRequiresInput != nil {
		input.ShowSolutionsRequiresInput = *req.ShowSolutionsRequiresInput
	}
	for _, card := range req.Cards {
		input.Cards = append(input.Cards, service.CardInput{
			Text:         card.Text,
			ImagePath:    card.ImagePath,
			ImageAlt:     card.ImageAlt,
			Answer:       card.Answer,
			AudioPath:    card.AudioPath,
			Tip:          card.Tip,
			SubContentID: card.SubContentID,
		})
	}

	deck, err := h.deckService.CreateDeck(input)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "Failed to create deck", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, deckResponse(deck))
}

// ListDecks handles GET /api/decks
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := h.deckService.ListDecks()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list decks", "", err)
		return
	}

	summaries := make([]map[string]interface{}, 0, len(decks))
	for _, deck := range decks {
		summaries = append(summaries, map[string]interface{}{
			"id":              deck.ID,
			"title":           deck.Title,
			"description":     deck.Description,
			"isPublic":        deck.IsPublic,
			"cardCount":       deck.CardCount,
			"answerableCards": deck.AnswerableCards,
			"createdAt":       deck.CreatedAt,
		})
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"decks": summaries})
}

// GetDeck handles GET /api/decks/{id}
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	deckID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deck ID", "", err)
		return
	}

	deck, err := h.deckService.GetDeck(deckID)
	if err != nil {
		if errors.Is(err, service.ErrDeckNotFound) {
			respondWithError(w, http.StatusNotFound, "Deck not found", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to get deck", "", err)
		return
	}

	respondWithJSON(w, http.StatusOK, deckResponse(deck))
}

// DeleteDeck handles DELETE /api/decks/{id}
func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	deckID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deck ID", "", err)
		return
	}

	if err := h.deckService.DeleteDeck(deckID); err != nil {
		if errors.Is(err, service.ErrDeckNotFound) {
			respondWithError(w, http.StatusNotFound, "Deck not found", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to delete deck", "", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
