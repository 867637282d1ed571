package alloc

import (
	"log/slog"
	"os"
)

// Runtime debug flag for allocation logging - controlled by HEAP_LOG_ALLOC env var.
var logAlloc = os.Getenv("HEAP_LOG_ALLOC") != ""

// discardLogger is shared by every allocator configured without a logger.
var discardLogger = slog.New(slog.DiscardHandler)

// Option configures an allocator.
type Option func(*config)

type config struct {
	logger   *slog.Logger
	split    bool
	coalesce bool
}

func newConfig(opts []Option) config {
	cfg := config{
		split:    true,
		coalesce: true,
	}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = defaultLogger()
	}
	return cfg
}

func defaultLogger() *slog.Logger {
	if logAlloc {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return discardLogger
}

// WithLogger sets the structured logger used for allocator diagnostics.
// A nil logger discards output (unless HEAP_LOG_ALLOC is set).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithSplit controls whether the free-list allocator returns the unused head
// and tail of a matched block to the free list. When disabled the whole
// matched block is consumed by the allocation. Ignored by BumpAllocator.
func WithSplit(enabled bool) Option {
	return func(c *config) { c.split = enabled }
}

// WithCoalesce controls whether Free merges a block with adjacent free
// blocks. Ignored by BumpAllocator.
func WithCoalesce(enabled bool) Option {
	return func(c *config) { c.coalesce = enabled }
}
