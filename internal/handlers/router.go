package handlers

import (
	"net/http"
)

// RegisterRoutes wires every API route onto the mux. Authoring routes are
// API-key guarded; session routes require the bearer token issued when the
// session was started.
func RegisterRoutes(mux *http.ServeMux, m *Middleware, decks *DeckHandler, sessions *SessionHandler) {
	// Deck authoring
	mux.HandleFunc("POST /api/decks", m.RequireAPIKey(decks.CreateDeck))
	mux.HandleFunc("GET /api/decks", m.RequireAPIKey(decks.ListDecks))
	mux.HandleFunc("GET /api/decks/{id}", m.RequireAPIKey(decks.GetDeck))
	mux.HandleFunc("DELETE /api/decks/{id}", m.RequireAPIKey(decks.DeleteDeck))

	// Learner sessions
	mux.HandleFunc("POST /api/sessions", m.RateLimit(sessions.StartSession))
	mux.HandleFunc("GET /api/sessions/{id}", m.RequireSessionToken(sessions.GetSession))
	mux.HandleFunc("GET /api/sessions/{id}/state", m.RequireSessionToken(sessions.GetSnapshot))
	mux.HandleFunc("POST /api/sessions/{id}/answers", m.RequireSessionToken(m.RateLimit(sessions.SubmitAnswer)))
	mux.HandleFunc("POST /api/sessions/{id}/navigate", m.RequireSessionToken(sessions.Navigate))
	mux.HandleFunc("POST /api/sessions/{id}/results", m.RequireSessionToken(sessions.ShowResults))
	mux.HandleFunc("GET /api/sessions/{id}/results", m.RequireSessionToken(sessions.GetResults))
	mux.HandleFunc("POST /api/sessions/{id}/retry", m.RequireSessionToken(sessions.Retry))
}
