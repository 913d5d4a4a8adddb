package database

import (
	"fmt"
)

var _ ArchiveRepository = (*ArchiveRepo)(nil)

// ArchiveRepo handles database operations for the raw capture schema:
// the items, html, and progress tables.
type ArchiveRepo struct {
	db *DB
}

func NewArchiveRepository(db *DB) *ArchiveRepo {
	return &ArchiveRepo{db: db}
}

// InsertItem stores an RSS entry, ignoring duplicates on the
// (rss_guid, rss_link) primary key. Reports whether a row was inserted.
func (r *ArchiveRepo) InsertItem(item Item) (bool, error) {
	result, err := r.db.Exec(`
		INSERT OR IGNORE INTO items (rss_guid, rss_link, rss_pubdate, rss_title, rss_description)
		VALUES (?, ?, ?, ?, ?)
	`, item.GUID, item.Link, item.PubDate, item.Title, item.Description)
	if err != nil {
		return false, fmt.Errorf("failed to insert item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected > 0, nil
}

func (r *ArchiveRepo) GetItemCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM items").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get item count: %w", err)
	}
	return count, nil
}

// GetPendingDownloads returns items that have no html row yet.
func (r *ArchiveRepo) GetPendingDownloads(limit int) ([]Item, error) {
	rows, err := r.db.Query(`
		SELECT i.rss_guid, i.rss_link, COALESCE(i.rss_pubdate, ''),
		       COALESCE(i.rss_title, ''), COALESCE(i.rss_description, '')
		FROM items i
		LEFT JOIN html h ON h.rss_guid = i.rss_guid AND h.rss_link = i.rss_link
		WHERE h.rss_guid IS NULL
		ORDER BY i.rss_pubdate DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending downloads: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		err := rows.Scan(&item.GUID, &item.Link, &item.PubDate, &item.Title, &item.Description)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}

	return items, nil
}

func (r *ArchiveRepo) GetPendingDownloadCount() (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*)
		FROM items i
		LEFT JOIN html h ON h.rss_guid = i.rss_guid AND h.rss_link = i.rss_link
		WHERE h.rss_guid IS NULL
	`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get pending download count: %w", err)
	}
	return count, nil
}

// StoreCapture stores the downloaded HTML for an RSS entry's target URL.
func (r *ArchiveRepo) StoreCapture(guid, link, destURL, html string) error {
	_, err := r.db.Exec(`
		INSERT INTO html (rss_guid, rss_link, dest_url, html)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (rss_guid, rss_link) DO UPDATE SET
			dest_url = excluded.dest_url,
			html = excluded.html
	`, guid, link, destURL, html)
	if err != nil {
		return fmt.Errorf("failed to store capture: %w", err)
	}

	return nil
}

func (r *ArchiveRepo) GetCaptureCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM html").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get capture count: %w", err)
	}
	return count, nil
}

// GetPendingExtractions returns html rows that have no progress row, i.e.
// captures whose fulltext has not been extracted yet.
func (r *ArchiveRepo) GetPendingExtractions(limit int) ([]Capture, error) {
	rows, err := r.db.Query(`
		SELECT h.rss_guid, h.rss_link, COALESCE(h.dest_url, ''), COALESCE(h.html, ''),
		       COALESCE(i.rss_pubdate, ''), COALESCE(i.rss_title, ''), COALESCE(i.rss_description, '')
		FROM html h
		LEFT JOIN progress p ON p.rss_guid = h.rss_guid AND p.rss_link = h.rss_link
		LEFT JOIN items i ON i.rss_guid = h.rss_guid AND i.rss_link = h.rss_link
		WHERE p.rss_guid IS NULL
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending extractions: %w", err)
	}
	defer rows.Close()

	var captures []Capture
	for rows.Next() {
		var c Capture
		err := rows.Scan(&c.GUID, &c.Link, &c.DestURL, &c.HTML, &c.PubDate, &c.Title, &c.Description)
		if err != nil {
			return nil, fmt.Errorf("failed to scan capture row: %w", err)
		}
		captures = append(captures, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating capture rows: %w", err)
	}

	return captures, nil
}

func (r *ArchiveRepo) GetPendingExtractionCount() (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*)
		FROM html h
		LEFT JOIN progress p ON p.rss_guid = h.rss_guid AND p.rss_link = h.rss_link
		WHERE p.rss_guid IS NULL
	`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get pending extraction count: %w", err)
	}
	return count, nil
}

// MarkExtracted flags an entry as fully extracted. Flagged rows become
// eligible for garbage collection via DeleteCollectable.
func (r *ArchiveRepo) MarkExtracted(guid, link string) error {
	_, err := r.db.Exec(`
		INSERT INTO progress (rss_guid, rss_link, can_delete)
		VALUES (?, ?, 1)
		ON CONFLICT (rss_guid, rss_link) DO UPDATE SET
			can_delete = 1
	`, guid, link)
	if err != nil {
		return fmt.Errorf("failed to mark entry as extracted: %w", err)
	}

	return nil
}

func (r *ArchiveRepo) GetCollectableCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM progress WHERE can_delete = 1").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get collectable count: %w", err)
	}
	return count, nil
}

// DeleteCollectable removes raw captures flagged can_delete = 1 from the
// items, html, and progress tables. Returns the number of entries collected.
func (r *ArchiveRepo) DeleteCollectable() (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		DELETE FROM items
		WHERE (rss_guid, rss_link) IN (SELECT rss_guid, rss_link FROM progress WHERE can_delete = 1)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete collectable items: %w", err)
	}

	_, err = tx.Exec(`
		DELETE FROM html
		WHERE (rss_guid, rss_link) IN (SELECT rss_guid, rss_link FROM progress WHERE can_delete = 1)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete collectable captures: %w", err)
	}

	result, err := tx.Exec("DELETE FROM progress WHERE can_delete = 1")
	if err != nil {
		return 0, fmt.Errorf("failed to delete progress rows: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return int(affected), nil
}
