package feed

// Item is a normalized RSS entry, carrying the raw feed values the archive
// stores verbatim.
type Item struct {
	GUID        string
	Link        string
	PubDate     string // raw pubDate string as published by the feed
	Title       string
	Description string
}

type Metadata struct {
	Title       string
	Link        string
	Description string
	Language    string
}

// Configuration types

type Config struct {
	Name     string         // Derived from filename (without .yml extension)
	URL      string         `yaml:"url"`
	Settings ConfigSettings `yaml:"settings"`
}

type ConfigSettings struct {
	Enabled         bool `yaml:"enabled"`
	RefreshInterval int  `yaml:"refresh_interval"` // seconds
	Timeout         int  `yaml:"timeout"`          // seconds
}
