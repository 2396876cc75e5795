package search

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const (
	markOpen  = "<mark>"
	markClose = "</mark>"
)

// Highlight wraps whole-word, case-insensitive occurrences of terms in <mark> tags.
// At each position the longest term that forms a whole word wins, so markers
// never nest. With no usable terms the text is returned unchanged.
func Highlight(text string, terms []string) string {
	return highlight(text, terms, nil)
}

// HighlightHTML is Highlight for plain text rendered as HTML: everything
// outside the inserted markers is escaped.
func HighlightHTML(text string, terms []string) string {
	return highlight(text, terms, html.EscapeString)
}

func highlight(text string, terms []string, escape func(string) string) string {
	if escape == nil {
		escape = func(s string) string { return s }
	}
	tp := compileTerms(terms)
	if tp == nil || text == "" {
		return escape(text)
	}

	var b strings.Builder
	last, pos := 0, 0
	for pos < len(text) {
		loc := tp.any.FindStringIndex(text[pos:])
		if loc == nil || loc[0] == loc[1] {
			break
		}
		start := pos + loc[0]
		end, ok := tp.wordAt(text, start)
		if !ok {
			_, size := utf8.DecodeRuneInString(text[start:])
			pos = start + size
			continue
		}
		b.WriteString(escape(text[last:start]))
		b.WriteString(markOpen)
		b.WriteString(escape(text[start:end]))
		b.WriteString(markClose)
		last, pos = end, end
	}
	if last == 0 {
		return escape(text)
	}
	b.WriteString(escape(text[last:]))
	return b.String()
}

// termPatterns finds candidate positions with one alternation and then
// tries each term, longest first, anchored at that position.
type termPatterns struct {
	any      *regexp.Regexp
	anchored []*regexp.Regexp
}

func compileTerms(terms []string) *termPatterns {
	usable := make([]string, 0, len(terms))
	for _, t := range terms {
		if utf8.RuneCountInString(t) >= minTermLen {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return nil
	}
	sort.SliceStable(usable, func(i, j int) bool {
		return utf8.RuneCountInString(usable[i]) > utf8.RuneCountInString(usable[j])
	})

	tp := &termPatterns{anchored: make([]*regexp.Regexp, len(usable))}
	quoted := make([]string, len(usable))
	for i, t := range usable {
		quoted[i] = regexp.QuoteMeta(t)
		tp.anchored[i] = regexp.MustCompile(`^(?i:` + quoted[i] + `)`)
	}
	tp.any = regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)`)
	return tp
}

// wordAt returns the end of the longest term starting at start that is a whole word.
func (tp *termPatterns) wordAt(text string, start int) (int, bool) {
	rest := text[start:]
	for _, re := range tp.anchored {
		loc := re.FindStringIndex(rest)
		if loc == nil || loc[1] == 0 {
			continue
		}
		if end := start + loc[1]; wordBoundary(text, start, end) {
			return end, true
		}
	}
	return 0, false
}

func wordBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
