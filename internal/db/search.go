package db

// TextQuery is the input for a ranked full-text search.
type TextQuery struct {
	IndexName    string
	Query        string
	Offset       int
	Limit        int
	SortBy       string // empty means engine relevance order
	SortAsc      bool
	WithScores   bool
	Scorer       string
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
