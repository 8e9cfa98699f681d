package core

import (
	"context"
	"time"
)

type Searcher interface {
	Search(ctx context.Context, q Query) (SearchResult, error)
	Ping(ctx context.Context) (string, error)
}

type Cache interface {
	Get(key string) (SearchResult, bool)
	Add(key string, res SearchResult)
	Purge()
}

type Limiter interface {
	Wait(ctx context.Context) error
}

type Clock func() time.Time
