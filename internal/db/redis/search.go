package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/docsearch/internal/db"
)

// SearchText runs a ranked full-text query via FT.SEARCH.
func (s *Store) SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	args, err := buildSearchArgs(q)
	if err != nil {
		return nil, err
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, searchError(err)
	}

	return parseReply(raw, q.WithScores)
}

// SearchCount returns the match count via FT.SEARCH with LIMIT 0 0.
func (s *Store) SearchCount(ctx context.Context, index, query string) (int, error) {
	cmd := s.b().Arbitrary("FT.SEARCH").Args(index, query, "LIMIT", "0", "0", "DIALECT", "2").Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return 0, searchError(err)
	}
	res, err := parseReply(raw, false)
	if err != nil {
		return 0, err
	}
	return res.Total, nil
}

func buildSearchArgs(q *db.TextQuery) ([]string, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if q.Limit < 0 || q.Offset < 0 {
		return nil, fmt.Errorf("offset and limit must not be negative")
	}

	args := []string{q.IndexName, q.Query}

	if q.WithScores {
		args = append(args, "WITHSCORES")
	}
	if q.Scorer != "" {
		args = append(args, "SCORER", q.Scorer)
	}

	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)))
		args = append(args, q.ReturnFields...)
	}

	if q.SortBy != "" {
		dir := "DESC"
		if q.SortAsc {
			dir = "ASC"
		}
		args = append(args, "SORTBY", q.SortBy, dir)
	}

	args = append(args,
		"LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit),
		"DIALECT", "2",
	)
	return args, nil
}

// searchError maps engine replies onto db sentinels, keeping the server text.
func searchError(err error) error {
	switch {
	case isRedisErr(err, "syntax error"):
		err = fmt.Errorf("%w: %s", db.ErrQuerySyntax, err.Error())
	case isUnknownIndex(err):
		err = fmt.Errorf("%w: %s", db.ErrIndexNotFound, err.Error())
	}
	return &db.Error{Op: db.OpSearch, Err: err}
}

// parseReply decodes an FT.SEARCH reply: the total, then per hit the key,
// the score when WITHSCORES was sent, and the field/value list.
// Malformed hits are skipped.
func parseReply(raw []rueidis.RedisMessage, withScores bool) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}
	n, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	res := &db.SearchResult{Total: int(n)}

	stride := 2
	if withScores {
		stride = 3
	}
	hits := raw[1:]
	res.Entries = make([]db.SearchEntry, 0, len(hits)/stride)

	for ; len(hits) >= stride; hits = hits[stride:] {
		entry, ok := parseHit(hits[:stride], withScores)
		if ok {
			res.Entries = append(res.Entries, entry)
		}
	}
	return res, nil
}

func parseHit(hit []rueidis.RedisMessage, withScores bool) (db.SearchEntry, bool) {
	var e db.SearchEntry
	key, err := hit[0].ToString()
	if err != nil {
		return e, false
	}
	e.Key = key

	rest := hit[1:]
	if withScores {
		raw, err := rest[0].ToString()
		if err != nil {
			return e, false
		}
		if e.Score, err = strconv.ParseFloat(raw, 64); err != nil {
			return e, false
		}
		rest = rest[1:]
	}

	pairs, err := rest[0].AsStrMap()
	if err != nil {
		return e, false
	}
	e.Fields = pairs
	return e, true
}
