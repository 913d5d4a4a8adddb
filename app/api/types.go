package api

import (
	"net/http"

	"github.com/akarpov87/stockfeed/app/database"
	"github.com/akarpov87/stockfeed/app/feed"
	"github.com/akarpov87/stockfeed/app/tasks"
)

type Handler struct {
	archiveRepo database.ArchiveRepository
	catalogRepo database.CatalogRepository
	configCache *feed.ConfigCache
	scheduler   tasks.TaskSchedulerInterface
	httpClient  *http.Client
	parser      *feed.Parser
	userAgent   string
}
