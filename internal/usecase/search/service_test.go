package search

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/docsearch/internal/domain/search/ordering"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
)

func TestSearch_PaginatesTwelveMatchesOfTwentyFive(t *testing.T) {
	engine := &fakeEngine{docs: corpus(25, "invoice")}
	svc, _ := newTestService(t, engine)
	ctx := context.Background()

	tests := []struct {
		page     int
		rows     int
		hasNext  bool
		hasPrev  bool
		nextPage *int
	}{
		{1, 5, true, false, ptr(2)},
		{2, 5, true, true, ptr(3)},
		{3, 2, false, true, nil},
		{4, 0, false, true, nil},
	}
	for _, tt := range tests {
		resp, err := svc.Search(ctx, mustQuery(t, "invoice", tt.page, 5))
		if err != nil {
			t.Fatalf("page %d: unexpected error: %v", tt.page, err)
		}
		p := resp.Pagination
		if len(resp.Data) != tt.rows {
			t.Errorf("page %d: expected %d rows, got %d", tt.page, tt.rows, len(resp.Data))
		}
		if p.Total != 12 || p.TotalPages != 3 || p.PerPage != 5 || p.CurrentPage != tt.page {
			t.Errorf("page %d: pagination = %+v", tt.page, p)
		}
		if p.HasNext != tt.hasNext || p.HasPrev != tt.hasPrev {
			t.Errorf("page %d: has_next=%v has_prev=%v", tt.page, p.HasNext, p.HasPrev)
		}
		if (p.NextPage == nil) != (tt.nextPage == nil) || (p.NextPage != nil && *p.NextPage != *tt.nextPage) {
			t.Errorf("page %d: next_page = %v", tt.page, p.NextPage)
		}
		for _, r := range resp.Data {
			if r.Snippet == "" {
				t.Errorf("page %d: row %s has no snippet", tt.page, r.ID)
			}
		}
	}
}

func TestSearch_RepeatedSearchHitsCache(t *testing.T) {
	engine := &fakeEngine{docs: corpus(25, "invoice")}
	svc, _ := newTestService(t, engine)
	ctx := context.Background()
	q := mustQuery(t, "invoice", 1, 10)

	first, err := svc.Search(ctx, q)
	if err != nil {
		t.Fatalf("first search: %v", err)
	}
	second, err := svc.Search(ctx, q)
	if err != nil {
		t.Fatalf("second search: %v", err)
	}

	if engine.engineCalls() != 1 {
		t.Errorf("expected 1 engine call, got %d", engine.engineCalls())
	}
	if first.Metadata.Cached || !second.Metadata.Cached {
		t.Errorf("cached flags: first=%v second=%v", first.Metadata.Cached, second.Metadata.Cached)
	}

	a, _ := json.Marshal(first.Page)
	b, _ := json.Marshal(second.Page)
	if string(a) != string(b) {
		t.Errorf("cached page differs:\n%s\n%s", a, b)
	}
}

func TestSearch_Metadata(t *testing.T) {
	engine := &fakeEngine{docs: corpus(5, "invoice")}
	svc, _ := newTestService(t, engine)
	svc.since = func(time.Time) time.Duration { return 1234567 * time.Nanosecond }

	q, err := query.New("invoice", 1, 20, ordering.CreatedAt, ordering.Asc, mode.Boolean)
	if err != nil {
		t.Fatalf("query.New: %v", err)
	}
	resp, err := svc.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := resp.Metadata
	if m.Query != "invoice" || m.Page != 1 || m.Limit != 20 {
		t.Errorf("metadata = %+v", m)
	}
	if m.SortBy != "created_at" || m.SortOrder != "ASC" || m.SearchMode != "boolean" {
		t.Errorf("metadata = %+v", m)
	}
	if m.ExecutionTimeMS != 1.23 {
		t.Errorf("execution_time_ms = %v, want 1.23", m.ExecutionTimeMS)
	}
	if engine.last.Operator != query.OperatorBoolean {
		t.Errorf("engine operator = %s", engine.last.Operator)
	}
}

func TestSearch_WildcardReachesEngine(t *testing.T) {
	engine := &fakeEngine{docs: corpus(3, "invoice")}
	svc, _ := newTestService(t, engine)

	q, _ := query.New("inv tot", 1, 10, "", "", mode.Wildcard)
	if _, err := svc.Search(context.Background(), q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if engine.last.Text != "+inv* +tot*" {
		t.Errorf("engine text = %q", engine.last.Text)
	}
}

func TestSearch_EngineErrorNotCached(t *testing.T) {
	engine := &fakeEngine{docs: corpus(5, "invoice"), err: errors.New("index offline")}
	svc, c := newTestService(t, engine)
	ctx := context.Background()
	q := mustQuery(t, "invoice", 1, 10)

	_, err := svc.Search(ctx, q)
	if !errors.Is(err, domain.ErrEngine) {
		t.Fatalf("expected ErrEngine, got %v", err)
	}
	if _, ok := c.Get(ctx, q.Key()); ok {
		t.Fatal("failed search must not be cached")
	}

	engine.err = nil
	resp, err := svc.Search(ctx, q)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if resp.Metadata.Cached {
		t.Error("retry must run the engine")
	}
}

func TestSearch_InvalidQuerySurvivesWrapping(t *testing.T) {
	engine := &fakeEngine{err: domain.ErrInvalidQuery}
	svc, _ := newTestService(t, engine)

	_, err := svc.Search(context.Background(), mustQuery(t, `+"broken`, 1, 10))
	if !errors.Is(err, domain.ErrInvalidQuery) || !errors.Is(err, domain.ErrEngine) {
		t.Fatalf("expected ErrInvalidQuery wrapped in ErrEngine, got %v", err)
	}
}

func TestSearch_CancelledDuringEnhancement(t *testing.T) {
	engine := &fakeEngine{docs: corpus(5, "invoice")}
	svc, c := newTestService(t, engine)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	q := mustQuery(t, "invoice", 1, 10)

	if _, err := svc.Search(ctx, q); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, ok := c.Get(context.Background(), q.Key()); ok {
		t.Fatal("cancelled search must not be cached")
	}
}

func TestSearch_Metrics(t *testing.T) {
	hist := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "test_search_duration_seconds"}, []string{"mode", "outcome"})
	engine := &fakeEngine{docs: corpus(5, "invoice")}
	svc, _ := newTestService(t, engine)
	svc.WithMetrics(hist)
	q := mustQuery(t, "invoice", 1, 10)

	_, _ = svc.Search(context.Background(), q)
	_, _ = svc.Search(context.Background(), q)

	if n := testutil.CollectAndCount(hist); n != 2 {
		t.Errorf("expected 2 series (miss, hit), got %d", n)
	}
}

func TestSuggest(t *testing.T) {
	titles := &fakeTitles{titles: []string{"Annual Plan", "Annual Report"}}
	svc := New(&fakeEngine{}, &fakeTexts{}, titles, newTestCache(t), zap.NewNop())
	ctx := context.Background()

	got, err := svc.Suggest(ctx, "  annu ", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || titles.gotPrefix != "annu" || titles.gotLimit != DefaultSuggestLimit {
		t.Errorf("got %v (prefix %q, limit %d)", got, titles.gotPrefix, titles.gotLimit)
	}

	if _, err := svc.Suggest(ctx, "annu", 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if titles.gotLimit != MaxSuggestLimit {
		t.Errorf("limit not clamped: %d", titles.gotLimit)
	}

	got, err = svc.Suggest(ctx, "   ", 5)
	if err != nil || len(got) != 0 {
		t.Errorf("blank prefix: got %v, %v", got, err)
	}

	titles.err = errors.New("boom")
	if _, err := svc.Suggest(ctx, "annu", 5); err == nil {
		t.Error("expected error")
	}
}

func TestWarmup(t *testing.T) {
	engine := &fakeEngine{docs: corpus(10, "invoice")}
	svc, _ := newTestService(t, engine)
	ctx := context.Background()
	queries := []query.Query{mustQuery(t, "invoice", 1, 10), mustQuery(t, "material", 1, 10)}

	report := svc.Warmup(ctx, queries)
	if report.Warmed != 2 || report.Failed != 0 {
		t.Fatalf("report = %+v", report)
	}

	resp, err := svc.Search(ctx, queries[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Metadata.Cached || engine.engineCalls() != 2 {
		t.Errorf("expected warmed hit, cached=%v calls=%d", resp.Metadata.Cached, engine.engineCalls())
	}

	report = svc.Warmup(ctx, queries)
	if report.Warmed != 0 || engine.engineCalls() != 2 {
		t.Errorf("live entries must be skipped: %+v, calls=%d", report, engine.engineCalls())
	}
}

func ptr(i int) *int { return &i }
