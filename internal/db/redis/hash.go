package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/docsearch/internal/db"
)

// delIfFieldAtMost deletes KEYS[1] only when its numeric hash field ARGV[1] is <= ARGV[2].
// Runs server-side so a concurrent rewrite of the key cannot be lost.
var delIfFieldAtMost = rueidis.NewLuaScript(`
local v = redis.call('HGET', KEYS[1], ARGV[1])
if v and tonumber(v) and tonumber(v) <= tonumber(ARGV[2]) then
  return redis.call('DEL', KEYS[1])
end
return 0
`)

// HSet sets hash fields.
func (s *Store) HSet(ctx context.Context, key string, fields map[string]string) error {
	if err := s.do(ctx, s.hsetCmd(key, fields)).Error(); err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}

// HSetWithTTL sets hash fields and a millisecond expiry in a single DoMulti round-trip.
func (s *Store) HSetWithTTL(ctx context.Context, key string, fields map[string]string, ttl time.Duration) error {
	if ttl <= 0 {
		return s.HSet(ctx, key, fields)
	}

	results := s.client.DoMulti(ctx,
		s.hsetCmd(key, fields),
		s.b().Pexpire().Key(key).Milliseconds(ttl.Milliseconds()).Build(),
	)
	if err := results[0].Error(); err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	if err := results[1].Error(); err != nil {
		return &db.Error{Op: db.OpPExpire, Err: err}
	}
	return nil
}

func (s *Store) hsetCmd(key string, fields map[string]string) rueidis.Completed {
	cmd := s.b().Hset().Key(key).FieldValue()
	for k, v := range fields {
		cmd = cmd.FieldValue(k, v)
	}
	return cmd.Build()
}

// HGet returns a single hash field. Missing key or field yields db.ErrKeyNotFound.
func (s *Store) HGet(ctx context.Context, key, field string) (string, error) {
	cmd := s.b().Hget().Key(key).Field(field).Build()
	v, err := s.do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return "", db.ErrKeyNotFound
		}
		return "", &db.Error{Op: db.OpHGet, Err: err}
	}
	return v, nil
}

// HGetAll returns all fields of a hash. A missing key yields an empty map.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	cmd := s.b().Hgetall().Key(key).Build()
	m, err := s.do(ctx, cmd).AsStrMap()
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	return m, nil
}

// HMGetMulti fetches the named fields of many hashes in a single DoMulti round-trip.
// Absent fields are omitted from the per-key map; a vanished key yields an empty map.
func (s *Store) HMGetMulti(ctx context.Context, keys []string, fields ...string) ([]map[string]string, error) {
	if len(keys) == 0 || len(fields) == 0 {
		return nil, nil
	}

	cmds := make([]rueidis.Completed, len(keys))
	for i, key := range keys {
		cmds[i] = s.b().Hmget().Key(key).Field(fields...).Build()
	}

	results := s.client.DoMulti(ctx, cmds...)
	out := make([]map[string]string, len(results))

	for i, res := range results {
		values, err := res.ToArray()
		if err != nil {
			return nil, &db.Error{Op: db.OpHMGet, Err: fmt.Errorf("key %s: %w", keys[i], err)}
		}
		m := make(map[string]string, len(fields))
		for j := range values {
			if j >= len(fields) || values[j].IsNil() {
				continue
			}
			if v, err := values[j].ToString(); err == nil {
				m[fields[j]] = v
			}
		}
		out[i] = m
	}

	return out, nil
}

// Del deletes a key.
func (s *Store) Del(ctx context.Context, key string) error {
	cmd := s.b().Del().Key(key).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// DelIfFieldAtMost atomically deletes key when its numeric field is <= limit.
// Reports whether the key was deleted.
func (s *Store) DelIfFieldAtMost(ctx context.Context, key, field string, limit int64) (bool, error) {
	n, err := delIfFieldAtMost.Exec(ctx, s.client,
		[]string{key}, []string{field, strconv.FormatInt(limit, 10)},
	).AsInt64()
	if err != nil {
		return false, &db.Error{Op: db.OpEval, Err: err}
	}
	return n > 0, nil
}

// Exists checks if a key exists.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	cmd := s.b().Exists().Key(key).Build()
	count, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
	return count > 0, nil
}

// Scan iterates keys matching a pattern.
func (s *Store) Scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64

	for {
		cmd := s.b().Scan().Cursor(cursor).Match(pattern).Count(100).Build()
		res, err := s.do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		keys = append(keys, res.Elements...)
		cursor = res.Cursor
		if cursor == 0 {
			break
		}
	}

	return keys, nil
}
