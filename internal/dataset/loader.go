package dataset

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	"bizverify/pkg/platform/sentinel"
)

var tracer = otel.Tracer("bizverify/internal/dataset")

// Cache stores raw export bodies keyed by source name. Entries expire after
// the TTL the implementation was built with; Find returns
// sentinel.ErrNotFound on a miss or an expired entry.
type Cache interface {
	Find(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, body []byte) error
	Delete(ctx context.Context, key string) error
}

// Load is the outcome of one Loader.Load call.
type Load struct {
	Export   *Export
	CacheHit bool
	Duration time.Duration
}

// DefaultFetchTimeout bounds a shared fetch when no timeout is configured.
const DefaultFetchTimeout = 2 * time.Minute

// Loader composes a Source and a Cache. Concurrent loads of the same source
// share one fetch.
type Loader struct {
	source       Source
	cache        Cache
	group        singleflight.Group
	fetchTimeout time.Duration
	logger       *slog.Logger
}

type LoaderOption func(l *Loader)

// WithFetchTimeout bounds the shared fetch. The fetch outlives the caller
// that started it, so this is its only deadline.
func WithFetchTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) {
		if d > 0 {
			l.fetchTimeout = d
		}
	}
}

func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader constructs a Loader. A nil cache disables caching.
func NewLoader(source Source, cache Cache, opts ...LoaderOption) *Loader {
	l := &Loader{
		source:       source,
		cache:        cache,
		fetchTimeout: DefaultFetchTimeout,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Source returns the source name, which is also the cache key.
func (l *Loader) Source() string {
	return l.source.Name()
}

// Load returns the decoded export, from cache when a fresh entry exists.
// Only bodies that decode cleanly are cached. A caller whose ctx ends stops
// waiting with ctx.Err(); the shared fetch keeps running for the others.
func (l *Loader) Load(ctx context.Context) (*Load, error) {
	start := time.Now()
	key := l.source.Name()

	if body, ok := l.cached(ctx, key); ok {
		export, err := Decode(key, body)
		if err == nil {
			return &Load{Export: export, CacheHit: true, Duration: time.Since(start)}, nil
		}
		l.logger.WarnContext(ctx, "discarding undecodable cache entry", "source", key, "error", err)
		l.dropCached(ctx, key)
	}

	results := l.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.fetchTimeout)
		defer cancel()
		return l.fetch(fetchCtx, key)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-results:
		if res.Err != nil {
			return nil, res.Err
		}
		return &Load{Export: res.Val.(*Export), Duration: time.Since(start)}, nil
	}
}

// Invalidate drops the cached export so the next Load fetches again.
func (l *Loader) Invalidate(ctx context.Context) error {
	if l.cache == nil {
		return nil
	}
	return l.cache.Delete(ctx, l.source.Name())
}

func (l *Loader) fetch(ctx context.Context, key string) (*Export, error) {
	ctx, span := tracer.Start(ctx, "dataset.fetch")
	defer span.End()
	span.SetAttributes(attribute.String("source", key))

	body, err := l.source.Fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, err
	}
	export, err := Decode(key, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("records", len(export.Records)))

	if l.cache != nil {
		if err := l.cache.Save(ctx, key, body); err != nil {
			l.logger.WarnContext(ctx, "failed to cache export", "source", key, "error", err)
		}
	}
	return export, nil
}

func (l *Loader) cached(ctx context.Context, key string) ([]byte, bool) {
	if l.cache == nil {
		return nil, false
	}
	body, err := l.cache.Find(ctx, key)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			l.logger.WarnContext(ctx, "export cache lookup failed", "source", key, "error", err)
		}
		return nil, false
	}
	return body, true
}

func (l *Loader) dropCached(ctx context.Context, key string) {
	if err := l.cache.Delete(ctx, key); err != nil {
		l.logger.WarnContext(ctx, "failed to drop cache entry", "source", key, "error", err)
	}
}
