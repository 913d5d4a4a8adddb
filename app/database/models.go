package database

// Item represents a row of the raw capture `items` table: one RSS feed
// entry keyed by (rss_guid, rss_link).
type Item struct {
	GUID        string
	Link        string
	PubDate     string
	Title       string
	Description string
}

// Capture represents a row of the raw capture `html` table joined with its
// originating `items` row. The RSS metadata travels along so the extraction
// step can build the catalog record without a second lookup.
type Capture struct {
	GUID        string
	Link        string
	DestURL     string
	HTML        string
	PubDate     string
	Title       string
	Description string
}

// Text represents a row of the catalog `texts` table: a canonicalized
// article record keyed by (url, date).
type Text struct {
	URL         string
	Date        string
	Title       string
	Description string
	Fulltext    string
}

// Analysis represents a row of the catalog `analysis` table. Symbol lists
// are stored as comma-joined, sorted strings.
type Analysis struct {
	URL             string
	Date            string
	SymbolsVerbatim string
	SymbolsDeduced  string
}

// Article is a catalog text joined with its analysis row, as served by the
// HTTP API.
type Article struct {
	URL             string
	Date            string
	Title           string
	Description     string
	Fulltext        string
	SymbolsVerbatim string
	SymbolsDeduced  string
}
