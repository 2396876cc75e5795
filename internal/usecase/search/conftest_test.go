package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/ordering"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	"github.com/kailas-cloud/docsearch/internal/repository/memcache"
	ucache "github.com/kailas-cloud/docsearch/internal/usecase/cache"
)

type corpusDoc struct {
	raw  result.Raw
	text string
}

// fakeEngine ranks an in-memory corpus by the summed occurrence count of positive clauses.
type fakeEngine struct {
	mu    sync.Mutex
	docs  []corpusDoc
	err   error
	calls int
	last  query.EngineQuery
}

func (f *fakeEngine) SearchRanked(
	_ context.Context, eq query.EngineQuery, page, limit int,
	_ ordering.Field, _ ordering.Direction,
) (result.Ranked, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = eq
	if f.err != nil {
		return result.Ranked{}, f.err
	}

	var matched []result.Raw
	for _, d := range f.docs {
		text := strings.ToLower(d.text)
		score := 0
		for _, c := range eq.Clauses() {
			if c.Occur != query.MustNot {
				score += strings.Count(text, c.Text)
			}
		}
		if score == 0 {
			continue
		}
		raw := d.raw
		raw.Score = float64(score) / 3
		matched = append(matched, raw)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Score != matched[j].Score {
			return matched[i].Score > matched[j].Score
		}
		return matched[i].ID < matched[j].ID
	})

	total := len(matched)
	from := min((page-1)*limit, total)
	to := min(from+limit, total)
	return result.Ranked{Rows: matched[from:to], Total: total}, nil
}

func (f *fakeEngine) FullText(_ context.Context, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.docs {
		if d.raw.ID == id {
			return d.text, nil
		}
	}
	return "", domain.ErrDocumentNotFound
}

func (f *fakeEngine) engineCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeTexts serves full text from a map; ids in errs fail.
type fakeTexts struct {
	texts map[string]string
	errs  map[string]error
}

func (f *fakeTexts) FullText(_ context.Context, id string) (string, error) {
	if err, ok := f.errs[id]; ok {
		return "", err
	}
	t, ok := f.texts[id]
	if !ok {
		return "", domain.ErrDocumentNotFound
	}
	return t, nil
}

type fakeTitles struct {
	titles    []string
	err       error
	gotPrefix string
	gotLimit  int
}

func (f *fakeTitles) SuggestTitles(_ context.Context, prefix string, limit int) ([]string, error) {
	f.gotPrefix, f.gotLimit = prefix, limit
	if f.err != nil {
		return nil, f.err
	}
	if len(f.titles) > limit {
		return f.titles[:limit], nil
	}
	return f.titles, nil
}

// corpus builds n documents; the odd-numbered ones mention term.
func corpus(n int, term string) []corpusDoc {
	created := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	docs := make([]corpusDoc, 0, n)
	for i := range n {
		text := fmt.Sprintf("Document number %d covers unrelated material.", i)
		if i%2 == 1 {
			text = fmt.Sprintf("Document number %d lists the %s totals for the quarter.", i, term)
		}
		docs = append(docs, corpusDoc{
			raw: result.Raw{
				ID:        fmt.Sprintf("doc-%02d", i),
				Title:     fmt.Sprintf("Report %02d", i),
				Filename:  fmt.Sprintf("report_%02d.txt", i),
				FileSize:  int64(1024 + i),
				MimeType:  "text/plain",
				CreatedAt: created.Add(time.Duration(i) * time.Hour),
			},
			text: text,
		})
	}
	return docs
}

func newTestCache(t *testing.T) *ucache.Service {
	t.Helper()
	backend, err := memcache.New(100)
	if err != nil {
		t.Fatalf("memcache.New: %v", err)
	}
	return ucache.New(backend, time.Hour, zap.NewNop())
}

func newTestService(t *testing.T, engine *fakeEngine) (*Service, *ucache.Service) {
	t.Helper()
	c := newTestCache(t)
	return New(engine, engine, &fakeTitles{}, c, zap.NewNop()), c
}

func mustQuery(t *testing.T, text string, page, limit int) query.Query {
	t.Helper()
	q, err := query.New(text, page, limit, "", "", "")
	if err != nil {
		t.Fatalf("query.New: %v", err)
	}
	return q
}
