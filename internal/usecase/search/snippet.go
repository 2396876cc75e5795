package search

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// Snippet window defaults, in characters.
const (
	DefaultSnippetLength = 200
	DefaultSnippetStep   = 50
)

const ellipsis = "..."

// Snippet returns the length-character window of text with the highest
// term density, trimmed to whole words, HTML-escaped and highlighted. Windows start every
// step characters; the window aligned to the end of the text is always a
// candidate. Ties go to the earliest window.
func Snippet(text string, terms []string, length, step int) string {
	if length <= 0 {
		length = DefaultSnippetLength
	}
	if step <= 0 {
		step = DefaultSnippetStep
	}

	plain := []rune(StripMarkup(text))
	n := len(plain)
	if n <= length {
		return HighlightHTML(string(plain), terms)
	}

	lower := make([]rune, n)
	for i, r := range plain {
		lower[i] = unicode.ToLower(r)
	}

	best, bestScore := 0, 0
	for _, start := range windowStarts(n, length, step) {
		score := windowScore(string(lower[start:start+length]), terms)
		if score > bestScore {
			best, bestScore = start, score
		}
	}

	window := plain[best : best+length]
	cutHead := best > 0 && !unicode.IsSpace(plain[best-1]) && !unicode.IsSpace(window[0])
	cutTail := best+length < n && !unicode.IsSpace(plain[best+length]) && !unicode.IsSpace(window[len(window)-1])

	if cutHead {
		if i := indexSpace(window); i >= 0 {
			window = window[i+1:]
		}
	}
	if cutTail {
		if i := lastIndexSpace(window); i >= 0 {
			window = window[:i]
		}
	}

	out := HighlightHTML(strings.TrimSpace(string(window)), terms)
	if best > 0 {
		out = ellipsis + out
	}
	if best+length < n {
		out += ellipsis
	}
	return out
}

// StripMarkup drops HTML tags, script and style bodies, and collapses whitespace.
func StripMarkup(text string) string {
	if !strings.ContainsAny(text, "<&") {
		return collapseSpace(text)
	}

	z := html.NewTokenizer(strings.NewReader(text))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return collapseSpace(b.String())
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken:
			if isRawTextTag(z) {
				skip++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			if isRawTextTag(z) && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		}
	}
}

func isRawTextTag(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "script", "style":
		return true
	}
	return false
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func windowStarts(n, length, step int) []int {
	starts := make([]int, 0, n/step+2)
	for s := 0; s+length < n; s += step {
		starts = append(starts, s)
	}
	return append(starts, n-length)
}

// windowScore sums occurrences(term) * len(term) over terms. window must be lowercased.
func windowScore(window string, terms []string) int {
	score := 0
	for _, t := range terms {
		if t == "" {
			continue
		}
		score += strings.Count(window, t) * utf8.RuneCountInString(t)
	}
	return score
}

func indexSpace(rs []rune) int {
	for i, r := range rs {
		if unicode.IsSpace(r) {
			return i
		}
	}
	return -1
}

func lastIndexSpace(rs []rune) int {
	for i := len(rs) - 1; i >= 0; i-- {
		if unicode.IsSpace(rs[i]) {
			return i
		}
	}
	return -1
}
