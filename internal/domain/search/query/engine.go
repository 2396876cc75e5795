package query

import (
	"strings"
	"unicode"
)

// Operator selects how the relevance engine interprets EngineQuery.Text.
type Operator string

// Engine operators.
const (
	OperatorNatural Operator = "natural"
	OperatorBoolean Operator = "boolean"
)

// EngineQuery is the mode-specific text handed to a relevance engine.
type EngineQuery struct {
	Text     string
	Operator Operator
}

// Occur is a clause's boolean role.
type Occur int

// Clause roles.
const (
	Should Occur = iota
	Must
	MustNot
)

// Clause is one term or phrase of a parsed engine query.
type Clause struct {
	Text   string // lowercased; words joined by a single space for phrases
	Phrase bool
	Prefix bool
	Occur  Occur
}

// Clauses parses the engine query into terms and phrases.
// Natural queries yield one optional clause per word; boolean queries honor
// +, -, quotes, parentheses (flattened) and a trailing *.
func (q EngineQuery) Clauses() []Clause {
	if q.Operator != OperatorBoolean {
		words := splitWords(q.Text)
		out := make([]Clause, 0, len(words))
		for _, w := range words {
			out = append(out, Clause{Text: w, Occur: Should})
		}
		return out
	}
	return parseBoolean(q.Text)
}

// HasPositive reports whether any clause can produce a match on its own.
func HasPositive(clauses []Clause) bool {
	for _, c := range clauses {
		if c.Occur != MustNot {
			return true
		}
	}
	return false
}

func parseBoolean(text string) []Clause {
	rs := []rune(text)
	var out []Clause
	var groups []Occur

	for i := 0; i < len(rs); {
		r := rs[i]
		if unicode.IsSpace(r) {
			i++
			continue
		}
		if r == ')' {
			if len(groups) > 0 {
				groups = groups[:len(groups)-1]
			}
			i++
			continue
		}

		occ := Should
		if len(groups) > 0 {
			occ = groups[len(groups)-1]
		}
		if r == '+' || r == '-' {
			if r == '+' {
				occ = Must
			} else {
				occ = MustNot
			}
			i++
			if i >= len(rs) {
				break
			}
		}

		switch rs[i] {
		case '(':
			groups = append(groups, occ)
			i++
		case '"':
			end := i + 1
			for end < len(rs) && rs[end] != '"' {
				end++
			}
			words := splitWords(string(rs[i+1 : end]))
			if len(words) == 1 {
				out = append(out, Clause{Text: words[0], Occur: occ})
			} else if len(words) > 1 {
				out = append(out, Clause{Text: strings.Join(words, " "), Phrase: true, Occur: occ})
			}
			i = end + 1
		default:
			end := i
			for end < len(rs) && !unicode.IsSpace(rs[end]) && !strings.ContainsRune(`()"`, rs[end]) {
				end++
			}
			if end == i {
				// dangling operator
				continue
			}
			tok := string(rs[i:end])
			i = end
			words := splitWords(tok)
			prefix := strings.HasSuffix(tok, "*")
			for k, w := range words {
				out = append(out, Clause{Text: w, Prefix: prefix && k == len(words)-1, Occur: occ})
			}
		}
	}
	return out
}

// splitWords lowercases s and splits it on anything but letters and digits.
func splitWords(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
