package db

import "errors"

var (
	// ErrKeyNotFound means the hash or field does not exist.
	ErrKeyNotFound = errors.New("db: key not found")
	// ErrIndexNotFound is returned by DropIndex for an unknown index.
	ErrIndexNotFound = errors.New("db: index not found")
	// ErrIndexExists is returned by CreateIndex when the name is taken.
	ErrIndexExists = errors.New("db: index already exists")
	// ErrQuerySyntax means the engine rejected the query expression.
	ErrQuerySyntax = errors.New("db: query syntax error")
)

// Command names recorded in Error.Op.
const (
	OpPing        = "PING"
	OpCreateIndex = "FT.CREATE"
	OpDropIndex   = "FT.DROPINDEX"
	OpIndexInfo   = "FT.INFO"
	OpSearch      = "FT.SEARCH"
	OpDel         = "DEL"
	OpHGet        = "HGET"
	OpHGetAll     = "HGETALL"
	OpHMGet       = "HMGET"
	OpHSet        = "HSET"
	OpExists      = "EXISTS"
	OpScan        = "SCAN"
	OpPExpire     = "PEXPIRE"
	OpEval        = "EVALSHA"
)

// Error tags a backend failure with the command that produced it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }
