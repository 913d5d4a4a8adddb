package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/akarpov87/stockfeed/app/database"
	"github.com/akarpov87/stockfeed/app/feed"
)

// ExtractTextsTask processes a batch of HTML captures without extracted
// fulltext: it runs readability extraction, writes the canonicalized
// article into the catalog texts table, and flags the raw capture as
// collectable.
type ExtractTextsTask struct {
	Task
	extractor   *feed.ContentExtractor
	archiveRepo database.ArchiveRepository
	catalogRepo database.CatalogRepository
	maxItems    int
}

func NewExtractTextsTask(extractor *feed.ContentExtractor, archiveRepo database.ArchiveRepository, catalogRepo database.CatalogRepository, maxItems int) *ExtractTextsTask {
	return &ExtractTextsTask{
		Task:        NewTask(TaskTypeExtractTexts, "archive"),
		extractor:   extractor,
		archiveRepo: archiveRepo,
		catalogRepo: catalogRepo,
		maxItems:    maxItems,
	}
}

func (t *ExtractTextsTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	captures, err := t.archiveRepo.GetPendingExtractions(t.maxItems)
	if err != nil {
		return fmt.Errorf("failed to get captures pending extraction: %w", err)
	}

	if len(captures) == 0 {
		slog.Debug("No captures pending extraction")
		return nil
	}

	successCount := 0
	errorCount := 0

	for _, capture := range captures {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := t.extractCapture(capture); err != nil {
			slog.Error("Failed to extract fulltext", "guid", capture.GUID, "dest_url", capture.DestURL, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"total", len(captures),
		"success", successCount,
		"errors", errorCount)

	return nil
}

func (t *ExtractTextsTask) extractCapture(capture database.Capture) error {
	fulltext, err := t.extractor.Run(capture.DestURL, []byte(capture.HTML))
	if err != nil {
		return fmt.Errorf("failed to extract content: %w", err)
	}

	text := database.Text{
		URL:         capture.DestURL,
		Date:        catalogDate(capture.PubDate),
		Title:       capture.Title,
		Description: capture.Description,
		Fulltext:    fulltext,
	}

	if err := t.catalogRepo.UpsertText(text); err != nil {
		return fmt.Errorf("failed to store text: %w", err)
	}

	if err := t.archiveRepo.MarkExtracted(capture.GUID, capture.Link); err != nil {
		return fmt.Errorf("failed to mark capture as extracted: %w", err)
	}

	slog.Debug("Fulltext extracted", "url", text.URL, "date", text.Date, "length", len(fulltext))
	return nil
}

// catalogDate derives the catalog date key (YYYY-MM-DD) from a raw RSS
// pubDate string. Unparsable dates fall back to today, keeping the entry
// cataloged rather than dropped.
func catalogDate(pubDate string) string {
	formats := []string{
		time.RFC1123Z,
		time.RFC1123,
		time.RFC822Z,
		time.RFC822,
		time.RFC3339,
	}

	for _, format := range formats {
		if parsed, err := time.Parse(format, pubDate); err == nil {
			return parsed.UTC().Format("2006-01-02")
		}
	}

	return time.Now().UTC().Format("2006-01-02")
}
