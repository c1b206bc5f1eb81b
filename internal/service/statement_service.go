package service

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"flashdeck/internal/engine"
	"flashdeck/internal/models"
	"flashdeck/internal/security"
)

// Statement is the activity record forwarded to a learning record store
type Statement struct {
	SessionID string    `json:"sessionId"`
	LearnerID string    `json:"learnerId,omitempty"`
	DeckID    int64     `json:"deckId"`
	DeckTitle string    `json:"deckTitle"`
	Verb      string    `json:"verb"`
	Score     *int      `json:"score,omitempty"`
	MaxScore  *int      `json:"maxScore,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// StatementService forwards activity statements to an external learning
// record store over an OAuth2 client-credentials connection. Each request
// carries an HMAC signature header so the store can verify the origin.
type StatementService struct {
	endpoint string
	client   *http.Client
	signer   *security.StatementSigner
	enabled  bool
}

// NewStatementService creates a statement service. An empty endpoint
// yields a disabled service that drops every statement.
func NewStatementService(endpoint, tokenURL, clientID, clientSecret, signingSecret string) *StatementService {
	if endpoint == "" {
		log.Println("Statement forwarding disabled: LRS_ENDPOINT not configured")
		return &StatementService{enabled: false}
	}

	var client *http.Client
	if tokenURL != "" && clientID != "" {
		oauthConfig := &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
		}
		client = oauthConfig.Client(context.Background())
	} else {
		client = &http.Client{}
	}
	client.Timeout = 30 * time.Second

	log.Printf("Statement forwarding enabled: endpoint=%s", endpoint)

	return &StatementService{
		endpoint: endpoint,
		client:   client,
		signer:   security.NewStatementSigner(signingSecret),
		enabled:  true,
	}
}

// IsEnabled returns whether statement forwarding is enabled
func (s *StatementService) IsEnabled() bool {
	return s.enabled
}

// ForwardCompletion sends a completion statement for a finished session.
// Failures are logged, not returned, since it runs off the request path.
func (s *StatementService) ForwardCompletion(session models.LearnerSession, deck models.Deck, results engine.ResultSummary) {
	score := results.Score
	maxScore := results.MaxScore
	s.forward(Statement{
		SessionID: session.ID,
		LearnerID: session.LearnerID,
		DeckID:    deck.ID,
		DeckTitle: deck.Title,
		Verb:      "completed",
		Score:     &score,
		MaxScore:  &maxScore,
		Timestamp: time.Now(),
	})
}

// ForwardProgress sends a progress statement after a counted submission
func (s *StatementService) ForwardProgress(session models.LearnerSession, deck models.Deck) {
	s.forward(Statement{
		SessionID: session.ID,
		LearnerID: session.LearnerID,
		DeckID:    deck.ID,
		DeckTitle: deck.Title,
		Verb:      "progressed",
		Timestamp: time.Now(),
	})
}

func (s *StatementService) forward(statement Statement) {
	if !s.enabled {
		return
	}

	payload, err := json.Marshal(statement)
	if err != nil {
		log.Printf("Failed to encode statement for session %s: %v", statement.SessionID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		log.Printf("Failed to build statement request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Statement-Signature", s.signer.Sign(payload))

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("Failed to forward %s statement for session %s: %v", statement.Verb, statement.SessionID, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("Statement endpoint returned %d for session %s", resp.StatusCode, statement.SessionID)
		return
	}
}
