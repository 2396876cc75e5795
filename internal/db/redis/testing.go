package redis

import "github.com/redis/rueidis"

// NewStoreForTest wraps an existing client (typically rueidis/mock) in a Store.
func NewStoreForTest(c rueidis.Client) *Store {
	return &Store{client: c}
}
