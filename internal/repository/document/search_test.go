package document

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kailas-cloud/docsearch/internal/db"
	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/ordering"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		eq   query.EngineQuery
		want string
	}{
		{"natural single", query.EngineQuery{Text: "invoice", Operator: query.OperatorNatural}, "(invoice)"},
		{"natural many", query.EngineQuery{Text: "Unpaid invoice!", Operator: query.OperatorNatural}, "(unpaid | invoice)"},
		{"natural ignores operators", query.EngineQuery{Text: "-cat", Operator: query.OperatorNatural}, "(cat)"},
		{"wildcard", query.EngineQuery{Text: "+cat* +dog*", Operator: query.OperatorBoolean}, "cat* dog*"},
		{"short prefix stays a term", query.EngineQuery{Text: "+a*", Operator: query.OperatorBoolean}, "a"},
		{"required and optional", query.EngineQuery{Text: "+invoice march", Operator: query.OperatorBoolean}, "invoice ~march"},
		{"optional only", query.EngineQuery{Text: "invoice march -draft", Operator: query.OperatorBoolean}, "(invoice | march) -draft"},
		{"phrase", query.EngineQuery{Text: `+"annual report" -draft`, Operator: query.OperatorBoolean}, `"annual report" -draft`},
		{"negation only", query.EngineQuery{Text: "-draft", Operator: query.OperatorBoolean}, ""},
		{"empty", query.EngineQuery{Text: "  ", Operator: query.OperatorNatural}, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := translate(tc.eq); got != tc.want {
				t.Errorf("translate(%q) = %q, want %q", tc.eq.Text, got, tc.want)
			}
		})
	}
}

func TestSearchRanked_ByRelevance(t *testing.T) {
	var got *db.TextQuery
	s := &mockStore{
		searchTextFn: func(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
			got = q
			return &db.SearchResult{
				Total: 12,
				Entries: []db.SearchEntry{
					{Key: "docsearch:doc:d1", Score: 2.5, Fields: map[string]string{
						fieldTitle: "Invoice", fieldFileSize: "1024", fieldCreatedAt: "1736937000000",
					}},
				},
			}, nil
		},
	}

	eq := query.EngineQuery{Text: "invoice", Operator: query.OperatorNatural}
	ranked, err := newTestRepo(s).SearchRanked(context.Background(), eq, 2, 10, ordering.Relevance, ordering.Desc)
	if err != nil {
		t.Fatalf("SearchRanked: %v", err)
	}
	if ranked.Total != 12 || len(ranked.Rows) != 1 {
		t.Fatalf("ranked = %+v", ranked)
	}
	row := ranked.Rows[0]
	if row.ID != "d1" || row.Score != 2.5 || row.FileSize != 1024 || !row.CreatedAt.Equal(created) {
		t.Errorf("row = %+v", row)
	}

	if got.Query != "@title|content:((invoice))" {
		t.Errorf("Query = %q", got.Query)
	}
	if !got.WithScores || got.Scorer != scorer || got.SortBy != "" || got.Offset != 10 || got.Limit != 10 {
		t.Errorf("text query = %+v", got)
	}
}

func TestSearchRanked_ByField(t *testing.T) {
	var got *db.TextQuery
	s := &mockStore{
		searchTextFn: func(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
			got = q
			return &db.SearchResult{}, nil
		},
	}
	eq := query.EngineQuery{Text: "invoice", Operator: query.OperatorNatural}
	if _, err := newTestRepo(s).SearchRanked(context.Background(), eq, 1, 10, ordering.FileSize, ordering.Asc); err != nil {
		t.Fatalf("SearchRanked: %v", err)
	}
	if got.SortBy != "file_size" || !got.SortAsc {
		t.Errorf("SortBy=%q SortAsc=%v", got.SortBy, got.SortAsc)
	}
}

func TestSearchRanked_RelevanceAscMirrorsWindow(t *testing.T) {
	tests := []struct {
		name              string
		page, limit       int
		total             int
		wantOffset, wantN int
		wantQuery         bool
	}{
		{"first page", 1, 10, 25, 15, 10, true},
		{"last partial page", 3, 10, 25, 0, 5, true},
		{"beyond end", 4, 10, 25, 0, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got *db.TextQuery
			s := &mockStore{
				searchCountFn: func(_ context.Context, _, _ string) (int, error) { return tc.total, nil },
				searchTextFn: func(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
					got = q
					entries := make([]db.SearchEntry, q.Limit)
					for i := range entries {
						entries[i] = db.SearchEntry{
							Key:   fmt.Sprintf("docsearch:doc:d%d", q.Offset+i),
							Score: float64(100 - q.Offset - i),
						}
					}
					return &db.SearchResult{Total: tc.total, Entries: entries}, nil
				},
			}

			eq := query.EngineQuery{Text: "invoice", Operator: query.OperatorNatural}
			ranked, err := newTestRepo(s).SearchRanked(context.Background(), eq, tc.page, tc.limit, ordering.Relevance, ordering.Asc)
			if err != nil {
				t.Fatalf("SearchRanked: %v", err)
			}
			if ranked.Total != tc.total {
				t.Errorf("Total = %d", ranked.Total)
			}
			if !tc.wantQuery {
				if got != nil {
					t.Error("no search expected beyond the last page")
				}
				return
			}
			if got.Offset != tc.wantOffset || got.Limit != tc.wantN {
				t.Errorf("window = (%d, %d), want (%d, %d)", got.Offset, got.Limit, tc.wantOffset, tc.wantN)
			}
			for i := 1; i < len(ranked.Rows); i++ {
				if ranked.Rows[i-1].Score > ranked.Rows[i].Score {
					t.Fatalf("rows not ascending by score: %+v", ranked.Rows)
				}
			}
		})
	}
}

func TestSearchRanked_SyntaxError(t *testing.T) {
	s := &mockStore{
		searchTextFn: func(_ context.Context, _ *db.TextQuery) (*db.SearchResult, error) {
			return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("%w: near )", db.ErrQuerySyntax)}
		},
	}
	eq := query.EngineQuery{Text: "+invoice", Operator: query.OperatorBoolean}
	_, err := newTestRepo(s).SearchRanked(context.Background(), eq, 1, 10, ordering.Relevance, ordering.Desc)
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestSearchRanked_NegationOnlyMatchesNothing(t *testing.T) {
	s := &mockStore{
		searchTextFn: func(_ context.Context, _ *db.TextQuery) (*db.SearchResult, error) {
			t.Fatal("store must not be queried")
			return nil, nil
		},
	}
	eq := query.EngineQuery{Text: "-draft", Operator: query.OperatorBoolean}
	ranked, err := newTestRepo(s).SearchRanked(context.Background(), eq, 1, 10, ordering.Relevance, ordering.Desc)
	if err != nil {
		t.Fatalf("SearchRanked: %v", err)
	}
	if ranked.Total != 0 || len(ranked.Rows) != 0 {
		t.Errorf("ranked = %+v", ranked)
	}
}
