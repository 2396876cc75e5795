package cache

import (
	"time"

	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
)

// Entry is one cached result page.
type Entry struct {
	Key       string
	QueryText string
	Page      result.Page
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the entry is no longer servable at now.
func (e *Entry) Expired(now time.Time) bool { return !now.Before(e.ExpiresAt) }

// Meta is an entry without its payload, used for sweeps and statistics.
type Meta struct {
	Key       string
	QueryText string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the entry is no longer servable at now.
func (m *Meta) Expired(now time.Time) bool { return !now.Before(m.ExpiresAt) }

// Stats summarizes cache contents.
type Stats struct {
	TotalEntries   int        `json:"total_entries"`
	ActiveEntries  int        `json:"active_entries"`
	ExpiredEntries int        `json:"expired_entries"`
	OldestEntry    *time.Time `json:"oldest_entry"`
	NewestEntry    *time.Time `json:"newest_entry"`
}

// PopularQuery is a query text with the number of live cached pages for it.
type PopularQuery struct {
	QueryText   string `json:"query_text"`
	SearchCount int    `json:"search_count"`
}

// RecentQuery is the latest time a query text was cached.
type RecentQuery struct {
	QueryText string    `json:"query_text"`
	CreatedAt time.Time `json:"created_at"`
}

// WarmupReport tallies a warm-up run.
type WarmupReport struct {
	Warmed int      `json:"warmed"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors"`
}
