package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"flashdeck/internal/database"
	"flashdeck/internal/repository"
	"flashdeck/internal/security"
	"flashdeck/internal/service"
)

const testAPIKey = "test-api-key"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	deckRepo := repository.NewDeckRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	eventRepo := repository.NewEventRepository(db)

	deckService := service.NewDeckService(db, deckRepo, nil)
	sessionService := service.NewSessionService(deckRepo, sessionRepo, eventRepo, nil, nil, nil)
	t.Cleanup(sessionService.CloseAll)

	tokens := security.NewTokenIssuer("test-secret", time.Hour)
	apiKeyHash, err := security.HashAPIKey(testAPIKey)
	if err != nil {
		t.Fatalf("Failed to hash API key: %v", err)
	}

	mux := http.NewServeMux()
	RegisterRoutes(mux,
		NewMiddleware(tokens, apiKeyHash, security.NewRateLimiter(100, time.Minute)),
		NewDeckHandler(deckService),
		NewSessionHandler(sessionService, tokens))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url string, headers map[string]string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	var decoded map[string]interface{}
	if resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
	}
	return resp, decoded
}

func apiKeyHeader() map[string]string {
	return map[string]string{"X-API-Key": testAPIKey}
}

func createDeckViaAPI(t *testing.T, server *httptest.Server) float64 {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/decks", apiKeyHeader(), map[string]interface{}{
		"title": "Capitals",
		"cards": []map[string]interface{}{
			{"text": "What is the capital of France?", "answer": "Paris"},
			{"text": "Cat or dog?", "answer": "cat|dog"},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("CreateDeck status = %d, want 201: %v", resp.StatusCode, body)
	}
	return body["id"].(float64)
}

func startSessionViaAPI(t *testing.T, server *httptest.Server, deckID float64) (sessionID, token string) {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/sessions", nil, map[string]interface{}{
		"deckId": deckID,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("StartSession status = %d, want 201: %v", resp.StatusCode, body)
	}
	token = body["token"].(string)
	session := body["session"].(map[string]interface{})
	return session["id"].(string), token
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestDeckEndpointsRequireAPIKey(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	server := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/decks", nil, map[string]interface{}{"title": "x"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Status without key = %d, want 401", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/decks", map[string]string{"X-API-Key": "wrong"}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Status with wrong key = %d, want 401", resp.StatusCode)
	}
}

func TestDeckLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	server := newTestServer(t)
	deckID := createDeckViaAPI(t, server)

	resp, body := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/decks/%.0f", server.URL, deckID), apiKeyHeader(), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GetDeck status = %d, want 200", resp.StatusCode)
	}
	cards := body["cards"].([]interface{})
	if len(cards) != 2 {
		t.Errorf("len(cards) = %d, want 2", len(cards))
	}
	first := cards[0].(map[string]interface{})
	if first["answer"] != "Paris" {
		t.Errorf("First card answer = %v, want Paris", first["answer"])
	}

	resp, body = doJSON(t, http.MethodGet, server.URL+"/api/decks", apiKeyHeader(), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ListDecks status = %d, want 200", resp.StatusCode)
	}
	decks := body["decks"].([]interface{})
	if len(decks) != 1 {
		t.Fatalf("len(decks) = %d, want 1", len(decks))
	}
	summary := decks[0].(map[string]interface{})
	if summary["cardCount"].(float64) != 2 || summary["answerableCards"].(float64) != 2 {
		t.Errorf("Summary counts = %v/%v, want 2/2", summary["cardCount"], summary["answerableCards"])
	}

	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/decks/%.0f", server.URL, deckID), apiKeyHeader(), nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("DeleteDeck status = %d, want 204", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/decks/%.0f", server.URL, deckID), apiKeyHeader(), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GetDeck after delete status = %d, want 404", resp.StatusCode)
	}
}

func TestSessionTokenBinding(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	server := newTestServer(t)
	deckID := createDeckViaAPI(t, server)

	sessionID, token := startSessionViaAPI(t, server, deckID)
	otherSessionID, _ := startSessionViaAPI(t, server, deckID)

	// No token
	resp, _ := doJSON(t, http.MethodGet, server.URL+"/api/sessions/"+sessionID, nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Status without token = %d, want 401", resp.StatusCode)
	}

	// Right token, right session
	resp, body := doJSON(t, http.MethodGet, server.URL+"/api/sessions/"+sessionID, bearer(token), nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Status with token = %d, want 200: %v", resp.StatusCode, body)
	}

	// Right token, someone else's session
	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/sessions/"+otherSessionID, bearer(token), nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Status with mismatched token = %d, want 403", resp.StatusCode)
	}
}

func TestSessionAnswerFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	server := newTestServer(t)
	deckID := createDeckViaAPI(t, server)
	sessionID, token := startSessionViaAPI(t, server, deckID)

	base := server.URL + "/api/sessions/" + sessionID

	// Submit a correct answer to the first card
	idx := 0
	resp, body := doJSON(t, http.MethodPost, base+"/answers", bearer(token), map[string]interface{}{
		"cardIndex": idx,
		"answer":    "paris",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("SubmitAnswer status = %d, want 200: %v", resp.StatusCode, body)
	}
	if body["counted"] != true || body["correct"] != true {
		t.Errorf("Submit response = %v, want counted and correct", body)
	}

	// Re-checking the same card conflicts
	resp, _ = doJSON(t, http.MethodPost, base+"/answers", bearer(token), map[string]interface{}{
		"cardIndex": idx,
		"answer":    "paris",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("Re-check status = %d, want 409", resp.StatusCode)
	}

	// Move on and finish the deck
	resp, _ = doJSON(t, http.MethodPost, base+"/navigate", bearer(token), map[string]interface{}{"direction": "next"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Navigate status = %d, want 200", resp.StatusCode)
	}

	resp, body = doJSON(t, http.MethodPost, base+"/answers", bearer(token), map[string]interface{}{
		"cardIndex": 1,
		"answer":    "dog",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("SubmitAnswer status = %d, want 200: %v", resp.StatusCode, body)
	}
	if body["completed"] != true {
		t.Error("Final submission should complete the session")
	}
	session := body["session"].(map[string]interface{})
	if session["resultsShown"] != true {
		t.Error("Completing on the last card should show results")
	}

	// Results summary
	resp, body = doJSON(t, http.MethodGet, base+"/results", bearer(token), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GetResults status = %d, want 200", resp.StatusCode)
	}
	if body["score"].(float64) != 2 || body["maxScore"].(float64) != 2 {
		t.Errorf("Results = %v/%v, want 2/2", body["score"], body["maxScore"])
	}

	// Snapshot endpoint exposes the serialized engine state
	resp, body = doJSON(t, http.MethodGet, base+"/state", bearer(token), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GetSnapshot status = %d, want 200", resp.StatusCode)
	}
	if _, ok := body["cards"]; !ok {
		t.Errorf("Snapshot missing cards: %v", body)
	}

	// Retry restarts from the results screen
	resp, body = doJSON(t, http.MethodPost, base+"/retry", bearer(token), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Retry status = %d, want 200: %v", resp.StatusCode, body)
	}
	if body["position"].(float64) != 1 || body["numAnswered"].(float64) != 0 {
		t.Errorf("State after retry = %v, want fresh first card", body)
	}
}

func TestStartSessionErrors(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	server := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/sessions", nil, map[string]interface{}{
		"deckId": 12345,
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("StartSession for missing deck = %d, want 404", resp.StatusCode)
	}
}
