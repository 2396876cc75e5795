package search

import (
	"slices"
	"testing"

	"github.com/kailas-cloud/docsearch/internal/domain/search/mode"
)

func TestTerms(t *testing.T) {
	tests := []struct {
		name string
		text string
		mode mode.Mode
		want []string
	}{
		{"natural", "Annual  Report annual", mode.Natural, []string{"annual", "report"}},
		{"natural drops short", "a report x", mode.Natural, []string{"report"}},
		{"boolean strips operators", `+annual -(draft) "sales report*"`, mode.Boolean,
			[]string{"annual", "draft", "sales", "report"}},
		{"wildcard strips stars", "rep* an*", mode.Wildcard, []string{"rep", "an"}},
		{"empty", "   ", mode.Natural, []string{}},
		{"unicode length", "é éa", mode.Natural, []string{"éa"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Terms(tt.text, tt.mode); !slices.Equal(got, tt.want) {
				t.Errorf("Terms(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
