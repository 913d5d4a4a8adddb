package database

import (
	"database/sql"
	"fmt"
	"strings"
)

var _ CatalogRepository = (*CatalogRepo)(nil)

// CatalogRepo handles database operations for the catalog schema:
// the texts, analysis, and progress tables.
type CatalogRepo struct {
	db *DB
}

func NewCatalogRepository(db *DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

// UpsertText stores a canonicalized article record keyed by (url, date).
func (r *CatalogRepo) UpsertText(text Text) error {
	_, err := r.db.Exec(`
		INSERT INTO texts (url, date, title, description, fulltext)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (url, date) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			fulltext = excluded.fulltext
	`, text.URL, text.Date, text.Title, text.Description, text.Fulltext)
	if err != nil {
		return fmt.Errorf("failed to upsert text: %w", err)
	}

	return nil
}

func (r *CatalogRepo) GetTextCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM texts").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get text count: %w", err)
	}
	return count, nil
}

// GetPendingAnalyses returns texts that have no analysis row yet.
func (r *CatalogRepo) GetPendingAnalyses(limit int) ([]Text, error) {
	rows, err := r.db.Query(`
		SELECT t.url, t.date, COALESCE(t.title, ''), COALESCE(t.description, ''), COALESCE(t.fulltext, '')
		FROM texts t
		LEFT JOIN analysis a ON a.url = t.url AND a.date = t.date
		WHERE a.url IS NULL
		ORDER BY t.date DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending analyses: %w", err)
	}
	defer rows.Close()

	var texts []Text
	for rows.Next() {
		var text Text
		err := rows.Scan(&text.URL, &text.Date, &text.Title, &text.Description, &text.Fulltext)
		if err != nil {
			return nil, fmt.Errorf("failed to scan text row: %w", err)
		}
		texts = append(texts, text)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating text rows: %w", err)
	}

	return texts, nil
}

func (r *CatalogRepo) GetPendingAnalysisCount() (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*)
		FROM texts t
		LEFT JOIN analysis a ON a.url = t.url AND a.date = t.date
		WHERE a.url IS NULL
	`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get pending analysis count: %w", err)
	}
	return count, nil
}

// StoreAnalysis stores extracted symbol mentions for an article.
func (r *CatalogRepo) StoreAnalysis(analysis Analysis) error {
	_, err := r.db.Exec(`
		INSERT INTO analysis (url, date, symbols_verbatim, symbols_deduced)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (url, date) DO UPDATE SET
			symbols_verbatim = excluded.symbols_verbatim,
			symbols_deduced = excluded.symbols_deduced
	`, analysis.URL, analysis.Date, analysis.SymbolsVerbatim, analysis.SymbolsDeduced)
	if err != nil {
		return fmt.Errorf("failed to store analysis: %w", err)
	}

	return nil
}

// MarkAnalyzed flags a catalog entry as fully processed.
func (r *CatalogRepo) MarkAnalyzed(url, date string) error {
	_, err := r.db.Exec(`
		INSERT INTO progress (url, date, can_delete)
		VALUES (?, ?, 1)
		ON CONFLICT (url, date) DO UPDATE SET
			can_delete = 1
	`, url, date)
	if err != nil {
		return fmt.Errorf("failed to mark entry as analyzed: %w", err)
	}

	return nil
}

func (r *CatalogRepo) GetAnalysisCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM analysis").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get analysis count: %w", err)
	}
	return count, nil
}

// GetRecentArticles returns the newest catalog entries joined with their
// analysis rows.
func (r *CatalogRepo) GetRecentArticles(limit int) ([]Article, error) {
	rows, err := r.db.Query(`
		SELECT t.url, t.date, COALESCE(t.title, ''), COALESCE(t.description, ''), COALESCE(t.fulltext, ''),
		       COALESCE(a.symbols_verbatim, ''), COALESCE(a.symbols_deduced, '')
		FROM texts t
		LEFT JOIN analysis a ON a.url = t.url AND a.date = t.date
		ORDER BY t.date DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent articles: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

// GetArticlesBySymbol returns catalog entries whose analysis mentions the
// given symbol, verbatim or deduced. Symbol lists are comma-joined, so the
// match is anchored on the separators.
func (r *CatalogRepo) GetArticlesBySymbol(symbol string, limit int) ([]Article, error) {
	pattern := "%," + escapeLike(strings.ToUpper(strings.TrimSpace(symbol))) + ",%"

	rows, err := r.db.Query(`
		SELECT t.url, t.date, COALESCE(t.title, ''), COALESCE(t.description, ''), COALESCE(t.fulltext, ''),
		       COALESCE(a.symbols_verbatim, ''), COALESCE(a.symbols_deduced, '')
		FROM texts t
		JOIN analysis a ON a.url = t.url AND a.date = t.date
		WHERE ',' || a.symbols_verbatim || ',' LIKE ? ESCAPE '\'
		   OR ',' || a.symbols_deduced || ',' LIKE ? ESCAPE '\'
		ORDER BY t.date DESC
		LIMIT ?
	`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get articles by symbol: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

// escapeLike neutralizes LIKE metacharacters in user-supplied symbols so
// they match literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func scanArticles(rows *sql.Rows) ([]Article, error) {
	var articles []Article
	for rows.Next() {
		var a Article
		err := rows.Scan(&a.URL, &a.Date, &a.Title, &a.Description, &a.Fulltext,
			&a.SymbolsVerbatim, &a.SymbolsDeduced)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, nil
}
