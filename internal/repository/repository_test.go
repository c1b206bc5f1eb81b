package repository

import (
	"path/filepath"
	"testing"

	"flashdeck/internal/database"
	"flashdeck/internal/models"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func strPtr(s string) *string { return &s }

func createTestDeck(t *testing.T, db *database.DB) *models.Deck {
	t.Helper()

	repo := NewDeckRepository(db)
	deck, err := repo.CreateDeck(&models.Deck{
		Title:                      "Capitals",
		Description:                "European capitals",
		ShowSolutionsRequiresInput: true,
	})
	if err != nil {
		t.Fatalf("CreateDeck failed: %v", err)
	}
	return deck
}

func TestDeckRepositoryRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := newTestDB(t)
	repo := NewDeckRepository(db)

	deck := createTestDeck(t, db)
	if deck.ID <= 0 {
		t.Fatalf("CreateDeck returned ID %d", deck.ID)
	}

	got, err := repo.GetDeckByID(deck.ID)
	if err != nil {
		t.Fatalf("GetDeckByID failed: %v", err)
	}
	if got == nil {
		t.Fatal("GetDeckByID returned nil for existing deck")
	}
	if got.Title != "Capitals" {
		t.Errorf("Title = %v, want Capitals", got.Title)
	}
	if !got.ShowSolutionsRequiresInput {
		t.Error("ShowSolutionsRequiresInput not persisted")
	}

	missing, err := repo.GetDeckByID(99999)
	if err != nil {
		t.Fatalf("GetDeckByID failed: %v", err)
	}
	if missing != nil {
		t.Error("GetDeckByID returned deck for missing ID")
	}
}

func TestDeckRepositoryCards(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := newTestDB(t)
	repo := NewDeckRepository(db)
	deck := createTestDeck(t, db)

	// Second card inserted first; order must come from position
	_, err := repo.AddCard(&models.Card{
		DeckID:   deck.ID,
		Position: 1,
		Text:     "Just a picture",
		Image:    &models.CardImage{Path: "images/berlin.jpg", AltText: "Brandenburg Gate"},
	})
	if err != nil {
		t.Fatalf("AddCard failed: %v", err)
	}
	_, err = repo.AddCard(&models.Card{
		DeckID:   deck.ID,
		Position: 0,
		Text:     "What is the capital of France?",
		Answer:   strPtr("Paris"),
	})
	if err != nil {
		t.Fatalf("AddCard failed: %v", err)
	}

	cards, err := repo.GetDeckCards(deck.ID)
	if err != nil {
		t.Fatalf("GetDeckCards failed: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("len(cards) = %d, want 2", len(cards))
	}
	if cards[0].Position != 0 || cards[1].Position != 1 {
		t.Error("Cards not ordered by position")
	}
	if !cards[0].HasAnswer() {
		t.Error("First card should have an answer")
	}
	if cards[1].HasAnswer() {
		t.Error("Display-only card should have nil answer")
	}
	if cards[1].Image == nil || cards[1].Image.AltText != "Brandenburg Gate" {
		t.Error("Card image not persisted")
	}
	if cards[0].Image != nil {
		t.Error("Card without image should have nil Image")
	}

	withCards, err := repo.GetDeckWithCards(deck.ID)
	if err != nil {
		t.Fatalf("GetDeckWithCards failed: %v", err)
	}
	if withCards == nil || len(withCards.Cards) != 2 {
		t.Error("GetDeckWithCards did not return deck with both cards")
	}

	summaries, err := repo.ListDecks()
	if err != nil {
		t.Fatalf("ListDecks failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("len(summaries) = %d, want 1", len(summaries))
	}
	if summaries[0].CardCount != 2 {
		t.Errorf("CardCount = %d, want 2", summaries[0].CardCount)
	}
	if summaries[0].AnswerableCards != 1 {
		t.Errorf("AnswerableCards = %d, want 1", summaries[0].AnswerableCards)
	}
}

func TestSessionRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := newTestDB(t)
	deck := createTestDeck(t, db)
	repo := NewSessionRepository(db)

	session := &models.LearnerSession{
		ID:        "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee",
		DeckID:    deck.ID,
		LearnerID: "learner-1",
		MaxScore:  2,
	}
	if err := repo.CreateSession(session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	got, err := repo.GetSessionByID(session.ID)
	if err != nil {
		t.Fatalf("GetSessionByID failed: %v", err)
	}
	if got == nil {
		t.Fatal("GetSessionByID returned nil for existing session")
	}
	if got.Completed() {
		t.Error("New session should not be completed")
	}
	if got.Snapshot != "" {
		t.Errorf("New session snapshot = %q, want empty", got.Snapshot)
	}

	// Snapshots replace in place
	if err := repo.SaveSnapshot(session.ID, `{"cards":[]}`); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if err := repo.SaveSnapshot(session.ID, `{"index":1,"cards":[]}`); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	got, err = repo.GetSessionByID(session.ID)
	if err != nil {
		t.Fatalf("GetSessionByID failed: %v", err)
	}
	if got.Snapshot != `{"index":1,"cards":[]}` {
		t.Errorf("Snapshot = %q, want latest value", got.Snapshot)
	}

	if err := repo.CompleteSession(session.ID, 2); err != nil {
		t.Fatalf("CompleteSession failed: %v", err)
	}
	got, err = repo.GetSessionByID(session.ID)
	if err != nil {
		t.Fatalf("GetSessionByID failed: %v", err)
	}
	if !got.Completed() {
		t.Error("Session should be completed")
	}
	if got.Score != 2 {
		t.Errorf("Score = %d, want 2", got.Score)
	}

	if err := repo.ReopenSession(session.ID); err != nil {
		t.Fatalf("ReopenSession failed: %v", err)
	}
	got, err = repo.GetSessionByID(session.ID)
	if err != nil {
		t.Fatalf("GetSessionByID failed: %v", err)
	}
	if got.Completed() {
		t.Error("Reopened session should not be completed")
	}
	if got.Score != 0 {
		t.Errorf("Score after reopen = %d, want 0", got.Score)
	}

	sessions, err := repo.GetDeckSessions(deck.ID)
	if err != nil {
		t.Fatalf("GetDeckSessions failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Errorf("len(sessions) = %d, want 1", len(sessions))
	}

	byLearner, err := repo.GetLearnerSessions(session.LearnerID, 10)
	if err != nil {
		t.Fatalf("GetLearnerSessions failed: %v", err)
	}
	if len(byLearner) != 1 || byLearner[0].ID != session.ID {
		t.Errorf("GetLearnerSessions = %+v, want the one created session", byLearner)
	}
	if none, _ := repo.GetLearnerSessions("someone-else", 10); len(none) != 0 {
		t.Errorf("GetLearnerSessions for unknown learner = %d sessions, want 0", len(none))
	}
}

func TestEventRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := newTestDB(t)
	deck := createTestDeck(t, db)

	sessions := NewSessionRepository(db)
	session := &models.LearnerSession{ID: "11111111-2222-3333-4444-555555555555", DeckID: deck.ID, MaxScore: 1}
	if err := sessions.CreateSession(session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	repo := NewEventRepository(db)
	cardIndex := 0
	events := []*models.SessionEvent{
		{SessionID: session.ID, Kind: models.EventInteracted, CardIndex: &cardIndex},
		{SessionID: session.ID, Kind: models.EventAnswered, CardIndex: &cardIndex, Payload: `{"correct":true}`},
		{SessionID: session.ID, Kind: models.EventCompleted, Payload: `{"score":1,"maxScore":1}`},
	}
	for _, e := range events {
		if err := repo.RecordEvent(e); err != nil {
			t.Fatalf("RecordEvent failed: %v", err)
		}
		if e.ID <= 0 {
			t.Errorf("RecordEvent did not set ID")
		}
	}

	got, err := repo.GetSessionEvents(session.ID)
	if err != nil {
		t.Fatalf("GetSessionEvents failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len(events) = %d, want 3", len(got))
	}
	if got[0].Kind != models.EventInteracted || got[2].Kind != models.EventCompleted {
		t.Error("Events not in recording order")
	}
	if got[2].CardIndex != nil {
		t.Error("Completed event should have nil card index")
	}
	if got[1].CardIndex == nil || *got[1].CardIndex != 0 {
		t.Error("Answered event card index not persisted")
	}

	count, err := repo.CountEventsByKind(session.ID, models.EventAnswered)
	if err != nil {
		t.Fatalf("CountEventsByKind failed: %v", err)
	}
	if count != 1 {
		t.Errorf("CountEventsByKind = %d, want 1", count)
	}
}
