package events

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nats-io/nats.go"
)

const SubjectDBUpdated = "xkcd.db.updated"

// Store is the part of the result cache the invalidator needs.
type Store interface {
	Purge()
	Len() int
}

// Invalidator drops cached search results whenever the backend
// announces that its comic database changed.
type Invalidator struct {
	log   *slog.Logger
	cache Store
	nc    *nats.Conn

	cancel context.CancelFunc
	done   chan struct{}
}

func Connect(log *slog.Logger, addr string) (*nats.Conn, error) {
	nc, err := nats.Connect(addr, nats.Name("comicsearch"))
	if err != nil {
		log.Error("failed to connect to nats", "address", addr, "error", err)
		return nil, err
	}
	return nc, nil
}

func NewInvalidator(log *slog.Logger, cache Store, nc *nats.Conn) *Invalidator {
	return &Invalidator{log: log, cache: cache, nc: nc}
}

func (i *Invalidator) Start(ctx context.Context) error {
	if i.cache == nil || i.nc == nil {
		return errors.New("invalidator: nil dependency")
	}

	ch := make(chan *nats.Msg, 16)
	sub, err := i.nc.ChanSubscribe(SubjectDBUpdated, ch)
	if err != nil {
		return err
	}
	if err := i.nc.Flush(); err != nil {
		i.log.Warn("failed to flush nats connection", "error", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	i.cancel = cancel
	i.done = make(chan struct{})

	go func() {
		defer close(i.done)
		defer func() {
			if err := sub.Unsubscribe(); err != nil {
				i.log.Error("failed to unsubscribe from nats", "error", err)
			}
			i.log.Info("cache invalidator stopped")
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				n := i.cache.Len()
				i.cache.Purge()
				i.log.Info("search cache purged after db update", "entries", n)
			}
		}
	}()

	return nil
}

func (i *Invalidator) Stop() {
	if i.cancel != nil {
		i.cancel()
		<-i.done
	}
}
