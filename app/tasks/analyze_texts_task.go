package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/akarpov87/stockfeed/app/analysis"
	"github.com/akarpov87/stockfeed/app/database"
)

// AnalyzeTextsTask processes a batch of catalog texts without an analysis
// row: it extracts verbatim and deduced stock symbols from the article and
// flags the catalog entry as fully processed.
type AnalyzeTextsTask struct {
	Task
	analyzer    *analysis.Extractor
	catalogRepo database.CatalogRepository
	maxItems    int
}

func NewAnalyzeTextsTask(analyzer *analysis.Extractor, catalogRepo database.CatalogRepository, maxItems int) *AnalyzeTextsTask {
	return &AnalyzeTextsTask{
		Task:        NewTask(TaskTypeAnalyzeTexts, "catalog"),
		analyzer:    analyzer,
		catalogRepo: catalogRepo,
		maxItems:    maxItems,
	}
}

func (t *AnalyzeTextsTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	texts, err := t.catalogRepo.GetPendingAnalyses(t.maxItems)
	if err != nil {
		return fmt.Errorf("failed to get texts pending analysis: %w", err)
	}

	if len(texts) == 0 {
		slog.Debug("No texts pending analysis")
		return nil
	}

	successCount := 0
	errorCount := 0

	for _, text := range texts {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := t.analyzeText(text); err != nil {
			slog.Error("Failed to analyze text", "url", text.URL, "date", text.Date, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"total", len(texts),
		"success", successCount,
		"errors", errorCount)

	return nil
}

func (t *AnalyzeTextsTask) analyzeText(text database.Text) error {
	body := strings.Join([]string{text.Title, text.Description, text.Fulltext}, "\n")
	verbatim, deduced := t.analyzer.Run(body)

	err := t.catalogRepo.StoreAnalysis(database.Analysis{
		URL:             text.URL,
		Date:            text.Date,
		SymbolsVerbatim: strings.Join(verbatim, ","),
		SymbolsDeduced:  strings.Join(deduced, ","),
	})
	if err != nil {
		return fmt.Errorf("failed to store analysis: %w", err)
	}

	if err := t.catalogRepo.MarkAnalyzed(text.URL, text.Date); err != nil {
		return fmt.Errorf("failed to mark text as analyzed: %w", err)
	}

	slog.Debug("Text analyzed", "url", text.URL, "verbatim", len(verbatim), "deduced", len(deduced))
	return nil
}
