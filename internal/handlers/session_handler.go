package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"flashdeck/internal/engine"
	"flashdeck/internal/security"
	"flashdeck/internal/service"
)

// SessionHandler handles learner session HTTP requests
type SessionHandler struct {
	sessionService *service.SessionService
	tokens         *security.TokenIssuer
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService *service.SessionService, tokens *security.TokenIssuer) *SessionHandler {
	return &SessionHandler{sessionService: sessionService, tokens: tokens}
}

type startSessionRequest struct {
	DeckID        int64           `json:"deckId"`
	LearnerID     string          `json:"learnerId"`
	PreviousState json.RawMessage `json:"previousState"`
}

// StartSession handles POST /api/sessions
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	view, err := h.sessionService.StartSession(req.DeckID, req.LearnerID, req.PreviousState)
	if err != nil {
		if errors.Is(err, service.ErrDeckNotFound) {
			respondWithError(w, http.StatusNotFound, "Deck not found", "", nil)
			return
		}
		if errors.Is(err, engine.ErrNoCards) {
			respondWithError(w, http.StatusUnprocessableEntity, "Deck has no cards", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to start session", "", err)
		return
	}

	token, err := h.tokens.Issue(view.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to issue session token", "", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"token":   token,
		"session": view,
	})
}

// GetSession handles GET /api/sessions/{id}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessionService.State(r.PathValue("id"))
	if err != nil {
		h.respondSessionError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}

// GetSnapshot handles GET /api/sessions/{id}/state
func (h *SessionHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.sessionService.Snapshot(r.PathValue("id"))
	if err != nil {
		h.respondSessionError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(snapshot)
}

type submitAnswerRequest struct {
	CardIndex *int   `json:"cardIndex"`
	Answer    string `json:"answer"`
}

// SubmitAnswer handles POST /api/sessions/{id}/answers
func (h *SessionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req submitAnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}
	if req.CardIndex == nil {
		respondWithError(w, http.StatusBadRequest, "cardIndex is required", "", nil)
		return
	}

	result, err := h.sessionService.Submit(r.PathValue("id"), *req.CardIndex, req.Answer)
	if err != nil {
		h.respondSessionError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

type navigateRequest struct {
	Direction string `json:"direction"`
}

// Navigate handles POST /api/sessions/{id}/navigate
func (h *SessionHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	view, err := h.sessionService.Navigate(r.PathValue("id"), req.Direction)
	if err != nil {
		h.respondSessionError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}

// ShowResults handles POST /api/sessions/{id}/results
func (h *SessionHandler) ShowResults(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessionService.ShowResults(r.PathValue("id"))
	if err != nil {
		h.respondSessionError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}

// GetResults handles GET /api/sessions/{id}/results
func (h *SessionHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.sessionService.Results(r.PathValue("id"))
	if err != nil {
		h.respondSessionError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, results)
}

// Retry handles POST /api/sessions/{id}/retry
func (h *SessionHandler) Retry(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessionService.Retry(r.PathValue("id"))
	if err != nil {
		h.respondSessionError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}

// respondSessionError maps service and engine errors to HTTP statuses
func (h *SessionHandler) respondSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		respondWithError(w, http.StatusNotFound, "Session not found", "", nil)
	case errors.Is(err, engine.ErrCardIndex):
		respondWithError(w, http.StatusBadRequest, "Card index out of range", "", nil)
	case errors.Is(err, engine.ErrNotCurrent):
		respondWithError(w, http.StatusConflict, "Card is not the current card", "", nil)
	case errors.Is(err, engine.ErrAlreadyChecked):
		respondWithError(w, http.StatusConflict, "Card has already been checked", "", nil)
	case errors.Is(err, engine.ErrDisplayOnly):
		respondWithError(w, http.StatusUnprocessableEntity, "Card has no answer to check", "", nil)
	case errors.Is(err, engine.ErrNoResults):
		respondWithError(w, http.StatusConflict, "Retry is only available from the results screen", "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, "Session operation failed", "session error", err)
	}
}
