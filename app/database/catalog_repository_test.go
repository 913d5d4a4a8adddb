package database

import (
	"path/filepath"
	"testing"
)

func newTestCatalogDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunCatalogMigrations(db); err != nil {
		t.Fatalf("Failed to run catalog migrations: %v", err)
	}

	return db
}

func TestTextsPrimaryKeyUniqueness(t *testing.T) {
	db := newTestCatalogDB(t)

	insert := `INSERT INTO texts (url, date, title, description, fulltext) VALUES (?, ?, ?, ?, ?)`

	if _, err := db.Exec(insert, "https://example.com/a", "2023-07-03", "", "", ""); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}
	if _, err := db.Exec(insert, "https://example.com/a", "2023-07-03", "", "", ""); err == nil {
		t.Error("Expected primary key violation for duplicate (url, date)")
	}
	// Same URL on a different date is a distinct key.
	if _, err := db.Exec(insert, "https://example.com/a", "2023-07-04", "", "", ""); err != nil {
		t.Errorf("Expected insert with different date to succeed: %v", err)
	}
}

func TestUpsertText(t *testing.T) {
	db := newTestCatalogDB(t)
	repo := NewCatalogRepository(db)

	text := Text{
		URL:         "https://example.com/a",
		Date:        "2023-07-03",
		Title:       "Original Title",
		Description: "Original Description",
		Fulltext:    "Original fulltext.",
	}
	if err := repo.UpsertText(text); err != nil {
		t.Fatal(err)
	}

	text.Fulltext = "Updated fulltext."
	if err := repo.UpsertText(text); err != nil {
		t.Fatal(err)
	}

	count, err := repo.GetTextCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 text after upsert, got %d", count)
	}

	var fulltext string
	err = db.QueryRow("SELECT fulltext FROM texts WHERE url = ? AND date = ?",
		text.URL, text.Date).Scan(&fulltext)
	if err != nil {
		t.Fatal(err)
	}
	if fulltext != "Updated fulltext." {
		t.Errorf("Expected upsert to replace fulltext, got '%s'", fulltext)
	}
}

func TestPendingAnalyses(t *testing.T) {
	db := newTestCatalogDB(t)
	repo := NewCatalogRepository(db)

	texts := []Text{
		{URL: "https://example.com/a", Date: "2023-07-03", Title: "A"},
		{URL: "https://example.com/b", Date: "2023-07-04", Title: "B"},
	}
	for _, text := range texts {
		if err := repo.UpsertText(text); err != nil {
			t.Fatal(err)
		}
	}

	pending, err := repo.GetPendingAnalyses(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 {
		t.Fatalf("Expected 2 pending analyses, got %d", len(pending))
	}

	err = repo.StoreAnalysis(Analysis{
		URL:             "https://example.com/a",
		Date:            "2023-07-03",
		SymbolsVerbatim: "ITM",
		SymbolsDeduced:  "ITM,PLUG",
	})
	if err != nil {
		t.Fatal(err)
	}

	pending, err = repo.GetPendingAnalyses(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 {
		t.Fatalf("Expected 1 pending analysis after storing, got %d", len(pending))
	}
	if pending[0].URL != "https://example.com/b" {
		t.Errorf("Expected pending analysis for 'https://example.com/b', got '%s'", pending[0].URL)
	}

	count, err := repo.GetAnalysisCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 analysis row, got %d", count)
	}
}

func TestPendingAnalysesBatchLimit(t *testing.T) {
	db := newTestCatalogDB(t)
	repo := NewCatalogRepository(db)

	for _, text := range []Text{
		{URL: "https://example.com/a", Date: "2023-07-03"},
		{URL: "https://example.com/b", Date: "2023-07-04"},
		{URL: "https://example.com/c", Date: "2023-07-05"},
	} {
		if err := repo.UpsertText(text); err != nil {
			t.Fatal(err)
		}
	}

	pending, err := repo.GetPendingAnalyses(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 {
		t.Errorf("Expected batch of 2 pending analyses, got %d", len(pending))
	}
}

func TestGetArticlesBySymbol(t *testing.T) {
	db := newTestCatalogDB(t)
	repo := NewCatalogRepository(db)

	articles := []struct {
		text     Text
		analysis Analysis
	}{
		{
			Text{URL: "https://example.com/a", Date: "2023-07-03", Title: "ITM Power climbs"},
			Analysis{URL: "https://example.com/a", Date: "2023-07-03", SymbolsVerbatim: "ITM", SymbolsDeduced: "ITM"},
		},
		{
			Text{URL: "https://example.com/b", Date: "2023-07-04", Title: "Tesla deliveries"},
			Analysis{URL: "https://example.com/b", Date: "2023-07-04", SymbolsVerbatim: "TSLA", SymbolsDeduced: "TSLA,NIO"},
		},
	}
	for _, a := range articles {
		if err := repo.UpsertText(a.text); err != nil {
			t.Fatal(err)
		}
		if err := repo.StoreAnalysis(a.analysis); err != nil {
			t.Fatal(err)
		}
	}

	found, err := repo.GetArticlesBySymbol("NIO", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 {
		t.Fatalf("Expected 1 article for NIO, got %d", len(found))
	}
	if found[0].URL != "https://example.com/b" {
		t.Errorf("Expected article 'https://example.com/b', got '%s'", found[0].URL)
	}

	// Partial ticker must not match: "IT" is not "ITM".
	found, err = repo.GetArticlesBySymbol("IT", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 0 {
		t.Errorf("Expected no articles for partial symbol 'IT', got %d", len(found))
	}

	// LIKE metacharacters in the query symbol match literally, not as
	// wildcards.
	for _, symbol := range []string{"%", "IT_", "_", "%%"} {
		found, err = repo.GetArticlesBySymbol(symbol, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(found) != 0 {
			t.Errorf("Expected no articles for symbol %q, got %d", symbol, len(found))
		}
	}

	recent, err := repo.GetRecentArticles(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Fatalf("Expected 2 recent articles, got %d", len(recent))
	}
	if recent[0].Date != "2023-07-04" {
		t.Errorf("Expected newest article first, got date '%s'", recent[0].Date)
	}
}

func TestMarkAnalyzed(t *testing.T) {
	db := newTestCatalogDB(t)
	repo := NewCatalogRepository(db)

	if err := repo.MarkAnalyzed("https://example.com/a", "2023-07-03"); err != nil {
		t.Fatal(err)
	}
	// Marking twice is a no-op, not a constraint violation.
	if err := repo.MarkAnalyzed("https://example.com/a", "2023-07-03"); err != nil {
		t.Fatal(err)
	}

	var canDelete int
	err := db.QueryRow("SELECT can_delete FROM progress WHERE url = ? AND date = ?",
		"https://example.com/a", "2023-07-03").Scan(&canDelete)
	if err != nil {
		t.Fatal(err)
	}
	if canDelete != 1 {
		t.Errorf("Expected can_delete = 1, got %d", canDelete)
	}
}
