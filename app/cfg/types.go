package cfg

type Cfg struct {
	// Database configuration
	ArchiveDBPath string
	CatalogDBPath string

	// Application configuration
	FeedsDir          string
	SymbolsFile       string
	Port              string
	WorkerCount       int
	SchedulerInterval int
	MaxItems          int
	APIAccessKey      string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
