package database

import (
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// TestDatabaseIntegration tests the complete database lifecycle
func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := newTestDB(t)

	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	// Test that tables were created by migrations
	tables := []string{"decks", "cards", "learner_sessions", "session_snapshots", "session_events", "migrations"}

	for _, table := range tables {
		query := "SELECT name FROM sqlite_master WHERE type='table' AND name=?"
		var name string
		err := db.QueryRow(query, table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}

	// Running migrations again must be a no-op
	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Second migration run failed: %v", err)
	}
}

// TestExecReturningID tests dialect-aware insert ID retrieval
func TestExecReturningID(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := newTestDB(t)

	id, err := db.ExecReturningID(
		"INSERT INTO decks (title, description) VALUES (?, ?)",
		"Test Deck", "")
	if err != nil {
		t.Fatalf("ExecReturningID failed: %v", err)
	}
	if id <= 0 {
		t.Errorf("ExecReturningID returned %d, want positive ID", id)
	}

	id2, err := db.ExecReturningID(
		"INSERT INTO decks (title, description) VALUES (?, ?)",
		"Second Deck", "")
	if err != nil {
		t.Fatalf("ExecReturningID failed: %v", err)
	}
	if id2 <= id {
		t.Errorf("Second insert ID %d not greater than first %d", id2, id)
	}
}

// TestDatabaseTransactions tests transaction support
func TestDatabaseTransactions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := newTestDB(t)

	// Successful transaction
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}

	deckID, err := tx.ExecReturningID(
		"INSERT INTO decks (title, description) VALUES (?, ?)",
		"Tx Deck", "")
	if err != nil {
		tx.Rollback()
		t.Fatalf("Failed to insert in transaction: %v", err)
	}

	_, err = tx.Exec(
		"INSERT INTO cards (deck_id, position, text, answer) VALUES (?, ?, ?, ?)",
		deckID, 0, "What is the capital of France?", "Paris")
	if err != nil {
		tx.Rollback()
		t.Fatalf("Failed to insert card in transaction: %v", err)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit transaction: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM cards WHERE deck_id = ?", deckID).Scan(&count); err != nil {
		t.Fatalf("Failed to count cards: %v", err)
	}
	if count != 1 {
		t.Errorf("Card count = %d, want 1", count)
	}

	// Rolled-back transaction leaves no rows
	tx2, err := db.Begin()
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	_, err = tx2.ExecReturningID(
		"INSERT INTO decks (title, description) VALUES (?, ?)",
		"Rollback Deck", "")
	if err != nil {
		t.Fatalf("Failed to insert in transaction: %v", err)
	}
	if err := tx2.Rollback(); err != nil {
		t.Fatalf("Failed to rollback: %v", err)
	}

	if err := db.QueryRow("SELECT COUNT(*) FROM decks WHERE title = ?", "Rollback Deck").Scan(&count); err != nil {
		t.Fatalf("Failed to count decks: %v", err)
	}
	if count != 0 {
		t.Errorf("Rolled-back deck count = %d, want 0", count)
	}
}

// TestUpsertSnapshot tests the dialect upsert clause against a live database
func TestUpsertSnapshot(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := newTestDB(t)

	deckID, err := db.ExecReturningID(
		"INSERT INTO decks (title, description) VALUES (?, ?)",
		"Snapshot Deck", "")
	if err != nil {
		t.Fatalf("Failed to insert deck: %v", err)
	}

	sessionID := "11111111-2222-3333-4444-555555555555"
	_, err = db.Exec(
		"INSERT INTO learner_sessions (id, deck_id, max_score) VALUES (?, ?, ?)",
		sessionID, deckID, 1)
	if err != nil {
		t.Fatalf("Failed to insert session: %v", err)
	}

	upsert := "INSERT INTO session_snapshots (session_id, snapshot) VALUES (?, ?) " +
		db.Dialect.UpsertSnapshotClause()

	if _, err := db.Exec(upsert, sessionID, `{"cards":[]}`); err != nil {
		t.Fatalf("First snapshot insert failed: %v", err)
	}
	if _, err := db.Exec(upsert, sessionID, `{"index":0,"cards":[]}`); err != nil {
		t.Fatalf("Snapshot upsert failed: %v", err)
	}

	var count int
	var snapshot string
	if err := db.QueryRow("SELECT COUNT(*) FROM session_snapshots WHERE session_id = ?", sessionID).Scan(&count); err != nil {
		t.Fatalf("Failed to count snapshots: %v", err)
	}
	if count != 1 {
		t.Errorf("Snapshot row count = %d, want 1", count)
	}
	if err := db.QueryRow("SELECT snapshot FROM session_snapshots WHERE session_id = ?", sessionID).Scan(&snapshot); err != nil {
		t.Fatalf("Failed to read snapshot: %v", err)
	}
	if snapshot != `{"index":0,"cards":[]}` {
		t.Errorf("Snapshot = %s, want updated value", snapshot)
	}
}

// TestSeedStarterDeck tests first-run seeding and its idempotence
func TestSeedStarterDeck(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := newTestDB(t)

	if err := db.SeedStarterDeck(); err != nil {
		t.Fatalf("SeedStarterDeck failed: %v", err)
	}

	var deckCount, cardCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM decks").Scan(&deckCount); err != nil {
		t.Fatalf("Failed to count decks: %v", err)
	}
	if deckCount != 1 {
		t.Errorf("Deck count = %d, want 1", deckCount)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM cards").Scan(&cardCount); err != nil {
		t.Fatalf("Failed to count cards: %v", err)
	}
	if cardCount == 0 {
		t.Error("Starter deck has no cards")
	}

	// Second run must not duplicate
	if err := db.SeedStarterDeck(); err != nil {
		t.Fatalf("Second SeedStarterDeck failed: %v", err)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM decks").Scan(&deckCount); err != nil {
		t.Fatalf("Failed to count decks: %v", err)
	}
	if deckCount != 1 {
		t.Errorf("Deck count after reseed = %d, want 1", deckCount)
	}
}
