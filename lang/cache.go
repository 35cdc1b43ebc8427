package lang

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// parseCache stores parsed programs keyed by source and option hash.
// Cached trees are shared; evaluation never modifies a tree.
var parseCache sync.Map

// entry parses its source at most once.
type entry struct {
	once sync.Once
	prog *Program
	err  error
}

// cacheKey combines the source hash with the options that change the parse
// result.
func cacheKey(source string, o options) string {
	h := xxh3.HashString(source)
	if o.recovery {
		h ^= xxh3.HashString("recovery")
	}

	key := strconv.FormatUint(h, 36)
	if o.maxDepth != DefaultMaxDepth {
		key += "/" + strconv.Itoa(o.maxDepth)
	}

	return key
}

// ParseReader reads a program from r and parses it. Unless caching is
// disabled with WithCache(false), identical sources parse only once.
func ParseReader(ctx context.Context, r io.Reader, opts ...Option) (*Program, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	o := makeOptions(append([]Option{WithCache(true)}, opts...)...)

	o.logger.TraceContext(ctx, "read input",
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true),
	)

	if !o.cache {
		return Parse(ctx, string(data), opts...)
	}

	return ParseCached(ctx, string(data), opts...)
}

// ParseCached parses source, reusing the tree from an earlier call with the
// same source and options. Failed parses are cached too.
func ParseCached(ctx context.Context, source string, opts ...Option) (*Program, error) {
	o := makeOptions(opts...)
	key := cacheKey(source, o)

	value, hit := parseCache.LoadOrStore(key, new(entry))

	e, ok := value.(*entry)
	if !ok {
		return nil, ErrReadInput.With(slog.String("issue", "invalid cache entry"))
	}

	o.logger.TraceContext(ctx, "cache lookup",
		slog.String("key", key),
		slog.Bool("cache_hit", hit),
	)

	e.once.Do(func() {
		e.prog, e.err = Parse(ctx, source, opts...)
	})

	return e.prog, e.err
}

// ClearCache removes all cached programs.
func ClearCache() {
	parseCache.Clear()
}
