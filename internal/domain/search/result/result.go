package result

import "time"

// Raw is one ranked row returned by a relevance engine.
type Raw struct {
	ID        string
	Title     string
	Filename  string
	FileSize  int64
	MimeType  string
	CreatedAt time.Time
	Score     float64
}

// Ranked is one page of raw rows plus the total match count before pagination.
type Ranked struct {
	Rows  []Raw
	Total int
}

// Enhanced is a display-ready search hit.
type Enhanced struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Filename           string    `json:"filename"`
	FileSize           int64     `json:"file_size"`
	MimeType           string    `json:"mime_type"`
	CreatedAt          time.Time `json:"created_at"`
	RelevanceScore     float64   `json:"relevance_score"`
	Snippet            string    `json:"snippet"`
	TitleHighlighted   string    `json:"title_highlighted"`
	FileSizeFormatted  string    `json:"file_size_formatted"`
	CreatedAtFormatted string    `json:"created_at_formatted"`
}

// Page is the cacheable part of a search response.
type Page struct {
	Data       []Enhanced `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// NewPage builds a page; nil data becomes an empty slice so it encodes as [].
func NewPage(data []Enhanced, page, perPage, total int) Page {
	if data == nil {
		data = []Enhanced{}
	}
	return Page{Data: data, Pagination: NewPagination(page, perPage, total)}
}

// Metadata describes how a response was produced. Never cached.
type Metadata struct {
	Query           string  `json:"query"`
	ExecutionTimeMS float64 `json:"execution_time_ms"`
	Page            int     `json:"page"`
	Limit           int     `json:"limit"`
	SortBy          string  `json:"sort_by"`
	SortOrder       string  `json:"sort_order"`
	SearchMode      string  `json:"search_mode"`
	Cached          bool    `json:"cached"`
}

// Response is a full search response.
type Response struct {
	Page
	Metadata Metadata `json:"metadata"`
}
