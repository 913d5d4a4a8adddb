package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/akarpov87/stockfeed/app/database"
	"github.com/akarpov87/stockfeed/app/feed"
	"github.com/akarpov87/stockfeed/app/tasks"
	"github.com/gin-gonic/gin"
)

const defaultArticleLimit = 20

func NewHandler(configCache *feed.ConfigCache, archiveRepo database.ArchiveRepository,
	catalogRepo database.CatalogRepository, scheduler tasks.TaskSchedulerInterface,
	httpClient *http.Client, parser *feed.Parser, userAgent string) *Handler {
	return &Handler{
		archiveRepo: archiveRepo,
		catalogRepo: catalogRepo,
		configCache: configCache,
		scheduler:   scheduler,
		httpClient:  httpClient,
		parser:      parser,
		userAgent:   userAgent,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	if itemCount, err := h.archiveRepo.GetItemCount(); err == nil {
		health["archived_items"] = itemCount
	}

	if textCount, err := h.catalogRepo.GetTextCount(); err == nil {
		health["cataloged_texts"] = textCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"feeds": h.configCache.GetConfigCount(),
	}

	archive := map[string]interface{}{}
	if count, err := h.archiveRepo.GetItemCount(); err == nil {
		archive["items"] = count
	}
	if count, err := h.archiveRepo.GetCaptureCount(); err == nil {
		archive["captures"] = count
	}
	if count, err := h.archiveRepo.GetPendingDownloadCount(); err == nil {
		archive["pending_downloads"] = count
	}
	if count, err := h.archiveRepo.GetPendingExtractionCount(); err == nil {
		archive["pending_extractions"] = count
	}
	if count, err := h.archiveRepo.GetCollectableCount(); err == nil {
		archive["collectable"] = count
	}
	stats["archive"] = archive

	catalog := map[string]interface{}{}
	if count, err := h.catalogRepo.GetTextCount(); err == nil {
		catalog["texts"] = count
	}
	if count, err := h.catalogRepo.GetAnalysisCount(); err == nil {
		catalog["analyses"] = count
	}
	if count, err := h.catalogRepo.GetPendingAnalysisCount(); err == nil {
		catalog["pending_analyses"] = count
	}
	stats["catalog"] = catalog

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APIGetRecentArticles(c *gin.Context) {
	limit := parseLimit(c.Query("limit"))

	articles, err := h.catalogRepo.GetRecentArticles(limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_recent_articles", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"articles": articleList(articles),
		"total":    len(articles),
	})
}

func (h *Handler) APIGetArticles(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing symbol parameter"})
		return
	}

	limit := parseLimit(c.Query("limit"))

	articles, err := h.catalogRepo.GetArticlesBySymbol(symbol, limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_articles_by_symbol", "symbol", symbol, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"symbol":   symbol,
		"articles": articleList(articles),
		"total":    len(articles),
	})
}

func (h *Handler) APIFetchFeed(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing feed name parameter"})
		return
	}

	feedConfig, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Error("Feed configuration not found", "feed", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed configuration not found"})
		return
	}

	fetchTask := tasks.NewFetchFeedTask(name, feedConfig, h.httpClient, h.parser, h.archiveRepo, h.userAgent)
	if err := h.scheduler.EnqueueTask(fetchTask); err != nil {
		slog.Error("Error enqueueing fetch task", "feed", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue fetch task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Fetch task enqueued successfully",
		"feed": gin.H{
			"name": name,
			"url":  feedConfig.URL,
		},
		"task": gin.H{
			"id":   fetchTask.ID,
			"type": fetchTask.Type,
		},
	})
}

func (h *Handler) APICleanup(c *gin.Context) {
	cleanupTask := tasks.NewCleanupTask(h.archiveRepo)
	if err := h.scheduler.EnqueueTask(cleanupTask); err != nil {
		slog.Error("Error enqueueing cleanup task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue cleanup task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Cleanup task enqueued successfully",
		"task": gin.H{
			"id":   cleanupTask.ID,
			"type": cleanupTask.Type,
		},
	})
}

func articleList(articles []database.Article) []map[string]interface{} {
	list := make([]map[string]interface{}, 0, len(articles))

	for _, article := range articles {
		list = append(list, map[string]interface{}{
			"url":              article.URL,
			"date":             article.Date,
			"title":            article.Title,
			"description":      article.Description,
			"fulltext":         article.Fulltext,
			"symbols_verbatim": article.SymbolsVerbatim,
			"symbols_deduced":  article.SymbolsDeduced,
		})
	}

	return list
}

func parseLimit(raw string) int {
	if raw == "" {
		return defaultArticleLimit
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return defaultArticleLimit
	}

	return limit
}
