package database

type ArchiveRepository interface {
	InsertItem(item Item) (bool, error)
	GetItemCount() (int, error)

	GetPendingDownloads(limit int) ([]Item, error)
	GetPendingDownloadCount() (int, error)
	StoreCapture(guid, link, destURL, html string) error
	GetCaptureCount() (int, error)

	GetPendingExtractions(limit int) ([]Capture, error)
	GetPendingExtractionCount() (int, error)
	MarkExtracted(guid, link string) error

	GetCollectableCount() (int, error)
	DeleteCollectable() (int, error)
}

type CatalogRepository interface {
	UpsertText(text Text) error
	GetTextCount() (int, error)

	GetPendingAnalyses(limit int) ([]Text, error)
	GetPendingAnalysisCount() (int, error)
	StoreAnalysis(analysis Analysis) error
	MarkAnalyzed(url, date string) error
	GetAnalysisCount() (int, error)

	GetRecentArticles(limit int) ([]Article, error)
	GetArticlesBySymbol(symbol string, limit int) ([]Article, error)
}
