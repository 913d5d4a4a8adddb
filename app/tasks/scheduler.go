package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/akarpov87/stockfeed/app/analysis"
	"github.com/akarpov87/stockfeed/app/cfg"
	"github.com/akarpov87/stockfeed/app/database"
	"github.com/akarpov87/stockfeed/app/feed"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	configCache *feed.ConfigCache
	archiveRepo database.ArchiveRepository
	catalogRepo database.CatalogRepository
	httpClient  *http.Client
	parser      *feed.Parser
	tracer      *feed.Tracer
	extractor   *feed.ContentExtractor
	analyzer    *analysis.Extractor
	userAgent   string
	interval    time.Duration
	workerCount int
	maxItems    int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface

	// nextFetch tracks per-feed due times. The fixed storage schema has no
	// feeds table, so scheduling state lives in memory and every feed is
	// fetched once at startup.
	mu        sync.Mutex
	nextFetch map[string]time.Time
}

func NewScheduler(configCache *feed.ConfigCache, archiveRepo database.ArchiveRepository,
	catalogRepo database.CatalogRepository, httpClient *http.Client, parser *feed.Parser,
	tracer *feed.Tracer, extractor *feed.ContentExtractor, analyzer *analysis.Extractor) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		configCache: configCache,
		archiveRepo: archiveRepo,
		catalogRepo: catalogRepo,
		httpClient:  httpClient,
		parser:      parser,
		tracer:      tracer,
		extractor:   extractor,
		analyzer:    analyzer,
		userAgent:   cfg.UserAgent,
		interval:    time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount: cfg.WorkerCount,
		maxItems:    cfg.MaxItems,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 300),
		nextFetch:   make(map[string]time.Time),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueTasks() {
	feedConfigs := s.configCache.GetEnabledConfigs()
	if len(feedConfigs) == 0 {
		slog.Debug("No enabled feed configurations found")
		return
	}

	now := time.Now().UTC()

	for _, feedConfig := range feedConfigs {
		if !s.feedDue(feedConfig.Name, now) {
			slog.Debug("Feed not due for refresh yet", "feed", feedConfig.Name)
			continue
		}

		fetchTask := NewFetchFeedTask(feedConfig.Name, feedConfig, s.httpClient, s.parser, s.archiveRepo, s.userAgent)
		if err := s.EnqueueTask(fetchTask); err != nil {
			slog.Warn("Failed to enqueue FetchFeedTask", "feed", feedConfig.Name, "error", err)
			continue
		}

		s.scheduleNextFetch(feedConfig.Name, now.Add(time.Duration(feedConfig.Settings.RefreshInterval)*time.Second))
	}

	s.enqueuePipelineTasks()
}

func (s *Scheduler) enqueuePipelineTasks() {
	pipelineTasks := []TaskInterface{
		NewDownloadArticlesTask(s.httpClient, s.tracer, s.archiveRepo, s.userAgent, s.maxItems),
		NewExtractTextsTask(s.extractor, s.archiveRepo, s.catalogRepo, s.maxItems),
		NewAnalyzeTextsTask(s.analyzer, s.catalogRepo, s.maxItems),
		NewCleanupTask(s.archiveRepo),
	}

	for _, task := range pipelineTasks {
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue pipeline task", "type", string(task.GetType()), "error", err)
		}
	}
}

func (s *Scheduler) feedDue(feedName string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	due, ok := s.nextFetch[feedName]
	return !ok || !due.After(now)
}

func (s *Scheduler) scheduleNextFetch(feedName string, due time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextFetch[feedName] = due
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "subject", task.GetSubject(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			// The retry goroutine joins the WaitGroup so Stop cannot close
			// the task queue while a re-enqueue is still in flight.
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()

				select {
				case <-time.After(retryDelay):
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				}

				if retryErr := s.EnqueueTask(task); retryErr != nil {
					slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
