package core

import (
	"context"
	"errors"
	"log/slog"
	"slices"
)

var ErrNilDependency = errors.New("query service: nil dependency")

type Option func(*Service)

func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

func WithLimiter(l Limiter) Option {
	return func(s *Service) { s.limiter = l }
}

type Service struct {
	log      *slog.Logger
	norm     *Normalizer
	searcher Searcher
	cache    Cache
	limiter  Limiter
}

func NewService(log *slog.Logger, norm *Normalizer, searcher Searcher, opts ...Option) (*Service, error) {
	if log == nil || norm == nil || searcher == nil {
		return nil, ErrNilDependency
	}
	s := &Service{
		log:      log,
		norm:     norm,
		searcher: searcher,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Search returns nil without error for an empty query and when ctx is
// cancelled before the backend answers.
func (s *Service) Search(ctx context.Context, raw string, page int) (*SearchResult, error) {
	q, err := s.norm.Normalize(raw, page)
	if errors.Is(err, ErrEmptyQuery) {
		return nil, nil
	}
	if err != nil {
		s.log.Debug("query rejected", "query", raw, "error", err)
		return nil, err
	}

	key := q.Encode()
	if s.cache != nil {
		if res, ok := s.cache.Get(key); ok {
			s.log.Debug("cache hit", "query", q.Text, "page", q.Page)
			res.Comics = slices.Clone(res.Comics)
			return &res, nil
		}
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			if cancelled(err) {
				s.log.Debug("search cancelled while throttled", "query", q.Text)
				return nil, nil
			}
			return nil, &Error{Kind: KindTransport, Msg: "rate limiter", Err: err}
		}
	}

	res, err := s.searcher.Search(ctx, q)
	if err != nil {
		if cancelled(err) {
			s.log.Debug("search cancelled", "query", q.Text)
			return nil, nil
		}
		if KindOf(err) == KindUnknown {
			err = &Error{Kind: KindTransport, Err: err}
		}
		if KindOf(err) == KindInvalidQuery {
			s.log.Debug("backend rejected query", "query", q.Text, "error", err)
		} else {
			s.log.Error("search failed", "query", q.Text, "error", err)
		}
		return nil, err
	}

	if s.cache != nil {
		cached := res
		cached.Comics = slices.Clone(res.Comics)
		s.cache.Add(key, cached)
	}
	return &res, nil
}

func (s *Service) Ping(ctx context.Context) (string, error) {
	return s.searcher.Ping(ctx)
}

// cancelled reports whether the call itself was cut short. An answer that
// arrived before the cancel is still returned to the caller.
func cancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
