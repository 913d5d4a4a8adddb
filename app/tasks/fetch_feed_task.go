package tasks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/akarpov87/stockfeed/app/database"
	"github.com/akarpov87/stockfeed/app/feed"
)

// FetchFeedTask downloads one RSS feed and archives every new entry into
// the items table. Entries already captured are ignored via the
// (rss_guid, rss_link) primary key.
type FetchFeedTask struct {
	Task
	FeedConfig  *feed.Config
	httpClient  *http.Client
	parser      *feed.Parser
	archiveRepo database.ArchiveRepository
	userAgent   string
}

func NewFetchFeedTask(feedName string, feedConfig *feed.Config, httpClient *http.Client, parser *feed.Parser, archiveRepo database.ArchiveRepository, userAgent string) *FetchFeedTask {
	return &FetchFeedTask{
		Task:        NewTask(TaskTypeFetchFeed, feedName),
		FeedConfig:  feedConfig,
		httpClient:  httpClient,
		parser:      parser,
		archiveRepo: archiveRepo,
		userAgent:   userAgent,
	}
}

func (t *FetchFeedTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.FeedConfig.Settings.Enabled {
		slog.Debug("Feed disabled, skipping", "feed", t.Subject)
		return nil
	}

	data, err := t.fetchFeed(ctx, t.FeedConfig.URL)
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	_, items, err := t.parser.Run(data)
	if err != nil {
		return fmt.Errorf("failed to parse feed: %w", err)
	}

	newCount := 0
	duplicateCount := 0

	for _, item := range items {
		if item.GUID == "" && item.Link == "" {
			slog.Warn("Skipping item without guid and link", "feed", t.Subject, "title", item.Title)
			continue
		}

		inserted, err := t.archiveRepo.InsertItem(database.Item{
			GUID:        item.GUID,
			Link:        item.Link,
			PubDate:     item.PubDate,
			Title:       item.Title,
			Description: item.Description,
		})
		if err != nil {
			return fmt.Errorf("failed to store item: %w", err)
		}

		if inserted {
			newCount++
		} else {
			duplicateCount++
		}
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"feed", t.Subject,
		"duration", t.GetDuration(),
		"total", len(items),
		"new", newCount,
		"duplicates", duplicateCount)

	return nil
}

func (t *FetchFeedTask) fetchFeed(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(t.FeedConfig.Settings.Timeout)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
