package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finboard/internal/core"
	"finboard/internal/provider"
)

// Options selects and sizes the result caches. An empty RedisURL keeps
// the caches in process.
type Options struct {
	RedisURL string
	Size     int
	TTL      time.Duration
	// Prefix namespaces Redis keys; defaults to "finboard:".
	Prefix string
}

// NewCachedReader wraps src with the caches described by opts. The
// returned function releases the Redis client or stops the LRU sweeper.
func NewCachedReader(ctx context.Context, src provider.Reader, opts Options) (*Reader, func() error, error) {
	if opts.RedisURL != "" {
		client, err := NewRedisClient(ctx, opts.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		prefix := opts.Prefix
		if prefix == "" {
			prefix = "finboard:"
		}
		r := NewReader(src,
			NewRedisCache[core.ChartDataset](client, prefix+"chart:", opts.TTL),
			NewRedisCache[core.StatsSummary](client, prefix+"stats:", opts.TTL),
			NewRedisCache[Breakdowns](client, prefix+"breakdowns:", opts.TTL))
		slog.InfoContext(ctx, "Using Redis result cache", "ttl", opts.TTL, "prefix", prefix)
		return r, client.Close, nil
	}

	charts := NewLRUCache[core.ChartDataset](opts.Size, opts.TTL)
	stats := NewLRUCache[core.StatsSummary](opts.Size, opts.TTL)
	breakdowns := NewLRUCache[Breakdowns](opts.Size, opts.TTL)

	m := NewManager(func(removed int) {
		slog.Debug("Cache cleanup completed", "entries_removed", removed)
	})
	m.Register(charts)
	m.Register(stats)
	m.Register(breakdowns)
	interval := opts.TTL
	if interval < time.Minute {
		interval = time.Minute
	}
	m.StartCleanup(interval)

	slog.InfoContext(ctx, "Using in-process LRU result cache", "size", opts.Size, "ttl", opts.TTL)
	return NewReader(src, charts, stats, breakdowns), func() error {
		m.Stop()
		return nil
	}, nil
}

// Describe is a short label for logs.
func (o Options) Describe() string {
	if o.RedisURL != "" {
		return "redis"
	}
	return fmt.Sprintf("lru(%d)", o.Size)
}
