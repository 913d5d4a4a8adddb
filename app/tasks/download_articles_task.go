package tasks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/akarpov87/stockfeed/app/database"
	"github.com/akarpov87/stockfeed/app/feed"
)

const downloadTimeout = 30 * time.Second

// DownloadArticlesTask processes a batch of archived items that have no
// HTML capture yet: it fetches each entry's link, traces it to the
// destination article page, and stores the destination URL and HTML.
type DownloadArticlesTask struct {
	Task
	httpClient  *http.Client
	tracer      *feed.Tracer
	archiveRepo database.ArchiveRepository
	userAgent   string
	maxItems    int
}

func NewDownloadArticlesTask(httpClient *http.Client, tracer *feed.Tracer, archiveRepo database.ArchiveRepository, userAgent string, maxItems int) *DownloadArticlesTask {
	return &DownloadArticlesTask{
		Task:        NewTask(TaskTypeDownloadArticles, "archive"),
		httpClient:  httpClient,
		tracer:      tracer,
		archiveRepo: archiveRepo,
		userAgent:   userAgent,
		maxItems:    maxItems,
	}
}

func (t *DownloadArticlesTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	items, err := t.archiveRepo.GetPendingDownloads(t.maxItems)
	if err != nil {
		return fmt.Errorf("failed to get items pending download: %w", err)
	}

	if len(items) == 0 {
		slog.Debug("No items pending download")
		return nil
	}

	successCount := 0
	errorCount := 0

	for _, item := range items {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := t.downloadItem(ctx, item); err != nil {
			slog.Error("Failed to download article", "guid", item.GUID, "url", item.Link, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"total", len(items),
		"success", successCount,
		"errors", errorCount)

	return nil
}

func (t *DownloadArticlesTask) downloadItem(ctx context.Context, item database.Item) error {
	if item.Link == "" {
		return fmt.Errorf("item has no link")
	}

	data, err := t.fetchPage(ctx, item.Link)
	if err != nil {
		return fmt.Errorf("failed to fetch linked page: %w", err)
	}

	destURL, err := t.tracer.Run(item.Link, data)
	if err != nil {
		return fmt.Errorf("failed to trace link: %w", err)
	}

	// Aggregator pages forward to the publisher; fetch the real article.
	if destURL != item.Link {
		data, err = t.fetchPage(ctx, destURL)
		if err != nil {
			return fmt.Errorf("failed to fetch destination page: %w", err)
		}
	}

	err = t.archiveRepo.StoreCapture(item.GUID, item.Link, destURL, string(data))
	if err != nil {
		return fmt.Errorf("failed to store capture: %w", err)
	}

	slog.Debug("Article downloaded", "guid", item.GUID, "dest_url", destURL, "size", len(data))
	return nil
}

func (t *DownloadArticlesTask) fetchPage(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(strings.ToLower(contentType), "html") {
		return nil, fmt.Errorf("content type is not HTML: %s", contentType)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
