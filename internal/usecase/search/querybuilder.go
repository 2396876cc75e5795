package search

import (
	"strings"

	"github.com/kailas-cloud/docsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
)

// Build turns raw query text into the engine query for mode m.
// Unknown modes fall back to natural. Syntax is not validated here.
func Build(text string, m mode.Mode) query.EngineQuery {
	switch m {
	case mode.Boolean:
		return query.EngineQuery{Text: text, Operator: query.OperatorBoolean}
	case mode.Wildcard:
		return query.EngineQuery{Text: wildcardExpr(text), Operator: query.OperatorBoolean}
	default:
		return query.EngineQuery{Text: text, Operator: query.OperatorNatural}
	}
}

// wildcardExpr makes every whitespace-separated term a required prefix: "cat dog" -> "+cat* +dog*".
func wildcardExpr(text string) string {
	fields := strings.Fields(text)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimRight(f, "*")
		if f == "" {
			continue
		}
		terms = append(terms, "+"+f+"*")
	}
	return strings.Join(terms, " ")
}
