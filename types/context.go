// nolint
package types

import (
	"context"
	"time"

	"github.com/tendermint/tendermint/libs/log"
)

/*
Context carries everything an operation needs beyond its arguments:
store access, the caller-observed time every window comparison is made
against, and a logger. It is a value that is cloned cheaply with the
With* methods and passed forward, never mutated in place.
*/
type Context struct {
	context.Context
	ms        MultiStore
	blockTime time.Time
	logger    log.Logger
}

// NewContext creates a root context over a multistore.
func NewContext(ms MultiStore, blockTime time.Time, logger log.Logger) Context {
	return Context{
		Context:   context.Background(),
		ms:        ms,
		blockTime: blockTime,
		logger:    logger,
	}
}

// KVStore fetches the mounted store for the given key.
func (c Context) KVStore(key StoreKey) KVStore {
	return c.ms.GetKVStore(key)
}

func (c Context) MultiStore() MultiStore { return c.ms }

// BlockTime is the instant the current operation observes. Window
// boundaries are enforced purely by comparing against it.
func (c Context) BlockTime() time.Time { return c.blockTime }

func (c Context) Logger() log.Logger { return c.logger }

func (c Context) WithMultiStore(ms MultiStore) Context {
	c.ms = ms
	return c
}

func (c Context) WithBlockTime(t time.Time) Context {
	c.blockTime = t
	return c
}

func (c Context) WithLogger(logger log.Logger) Context {
	c.logger = logger
	return c
}

func (c Context) WithValue(key, value interface{}) Context {
	c.Context = context.WithValue(c.Context, key, value)
	return c
}
