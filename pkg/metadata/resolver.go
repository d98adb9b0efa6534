package metadata

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"bookventory/pkg/domain"
)

const defaultLookupTimeout = 5 * time.Second

// Resolver walks an ordered chain of bibliographic sources and returns the
// first usable match. Transient source failures are never surfaced to the
// caller; an exhausted chain is reported as a plain miss.
type Resolver struct {
	sources []Source
	cache   Cache
	timeout time.Duration
	group   singleflight.Group
}

// NewResolver wires sources in priority order. A nil cache gets an
// in-process one.
func NewResolver(sources []Source, cache Cache, timeout time.Duration) *Resolver {
	if cache == nil {
		cache = NewMemoryCache()
	}
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	return &Resolver{sources: sources, cache: cache, timeout: timeout}
}

// Resolve normalizes the ISBN and resolves metadata for it. The second
// return reports whether any source had a match.
func (r *Resolver) Resolve(ctx context.Context, isbn string) (Metadata, bool) {
	normalized := domain.NormalizeISBN(isbn)
	if len(normalized) < 10 {
		return Metadata{}, false
	}

	if res, ok, err := r.cache.Get(ctx, normalized); err == nil && ok {
		return res.Metadata, res.Found
	} else if err != nil {
		slog.Debug("metadata cache read failed", "isbn", normalized, "err", err)
	}

	value, _, _ := r.group.Do(normalized, func() (any, error) {
		res := r.lookup(ctx, normalized)
		if err := r.cache.Set(ctx, normalized, res); err != nil {
			slog.Debug("metadata cache write failed", "isbn", normalized, "err", err)
		}
		return res, nil
	})
	res := value.(Result)
	return res.Metadata, res.Found
}

func (r *Resolver) lookup(ctx context.Context, isbn string) Result {
	for _, source := range r.sources {
		lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
		meta, ok, err := source.Lookup(lookupCtx, isbn)
		cancel()
		if err != nil {
			slog.Debug("metadata source failed", "source", source.Name(), "isbn", isbn, "err", err)
			continue
		}
		if !ok {
			continue
		}
		return Result{Metadata: meta, Found: true}
	}
	return Result{}
}
