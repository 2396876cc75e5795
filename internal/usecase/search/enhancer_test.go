package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
)

func TestEnhancer_Enhance(t *testing.T) {
	texts := &fakeTexts{texts: map[string]string{
		"d1": "The <b>annual</b> report covers revenue.",
	}}
	e := NewEnhancer(texts, zap.NewNop())
	rows := []result.Raw{{
		ID:        "d1",
		Title:     "Annual Report",
		Filename:  "annual_report.txt",
		FileSize:  1536,
		MimeType:  "text/plain",
		CreatedAt: time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC),
		Score:     1.234567,
	}}

	got, err := e.Enhance(context.Background(), rows, []string{"annual"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	r := got[0]
	if r.Snippet != "The <mark>annual</mark> report covers revenue." {
		t.Errorf("snippet = %q", r.Snippet)
	}
	if r.TitleHighlighted != "<mark>Annual</mark> Report" {
		t.Errorf("title_highlighted = %q", r.TitleHighlighted)
	}
	if r.Title != "Annual Report" {
		t.Errorf("title must stay plain, got %q", r.Title)
	}
	if r.RelevanceScore != 1.2346 {
		t.Errorf("relevance_score = %v", r.RelevanceScore)
	}
	if r.FileSizeFormatted != "1.5 KB" {
		t.Errorf("file_size_formatted = %q", r.FileSizeFormatted)
	}
	if r.CreatedAtFormatted != "Jan 7, 2025" {
		t.Errorf("created_at_formatted = %q", r.CreatedAtFormatted)
	}
}

func TestEnhancer_MissingTextDegrades(t *testing.T) {
	texts := &fakeTexts{
		texts: map[string]string{"ok": "annual numbers"},
		errs:  map[string]error{"broken": errors.New("connection reset")},
	}
	e := NewEnhancer(texts, zap.NewNop())
	rows := []result.Raw{
		{ID: "broken", Title: "Annual Plan"},
		{ID: "gone", Title: "Annual Budget"},
		{ID: "ok", Title: "Annual Numbers"},
	}

	got, err := e.Enhance(context.Background(), rows, []string{"annual"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("every row must be returned, got %d", len(got))
	}
	for _, r := range got[:2] {
		if r.Snippet != "" || r.TitleHighlighted != r.Title {
			t.Errorf("row %s: expected plain row, got snippet=%q title=%q", r.ID, r.Snippet, r.TitleHighlighted)
		}
	}
	if got[2].TitleHighlighted != "<mark>Annual</mark> Numbers" {
		t.Errorf("row ok: title_highlighted = %q", got[2].TitleHighlighted)
	}
}

func TestEnhancer_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewEnhancer(&fakeTexts{}, zap.NewNop())
	_, err := e.Enhance(ctx, []result.Raw{{ID: "d1"}}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEnhancer_WithWindow(t *testing.T) {
	texts := &fakeTexts{texts: map[string]string{"d1": "alpha beta gamma delta epsilon zeta"}}
	e := NewEnhancer(texts, zap.NewNop()).WithWindow(12, 4)

	got, err := e.Enhance(context.Background(), []result.Raw{{ID: "d1", Title: "t"}}, []string{"delta"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Snippet == "" || len([]rune(got[0].Snippet)) > 12+len("<mark></mark>")+6 {
		t.Errorf("snippet not bounded by window: %q", got[0].Snippet)
	}
}

func TestEnhancer_TitleIsEscaped(t *testing.T) {
	texts := &fakeTexts{texts: map[string]string{"d1": "plan details"}}
	e := NewEnhancer(texts, zap.NewNop())
	rows := []result.Raw{
		{ID: "d1", Title: "R&D <Plan>"},
		{ID: "missing", Title: "<script>x</script>"},
	}

	got, err := e.Enhance(context.Background(), rows, []string{"plan"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "R&amp;D &lt;<mark>Plan</mark>&gt;"; got[0].TitleHighlighted != want {
		t.Errorf("title_highlighted = %q, want %q", got[0].TitleHighlighted, want)
	}
	if want := "&lt;script&gt;x&lt;/script&gt;"; got[1].TitleHighlighted != want {
		t.Errorf("fallback title_highlighted = %q, want %q", got[1].TitleHighlighted, want)
	}
	if got[1].Title != "<script>x</script>" {
		t.Errorf("title must stay raw, got %q", got[1].Title)
	}
}
