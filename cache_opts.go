package tablecache

import "log/slog"

// Option configures a ProjectCache.
type Option func(*ProjectCache) error

// WithCaching enables or disables on-disk persistence. Defaults to enabled.
//
// When disabled, no files are created under the cache root and every
// accessor call re-invokes the fetch API.
func WithCaching(enabled bool) Option {
	return func(c *ProjectCache) error {
		c.enabled = enabled
		return nil
	}
}

// WithLogger sets the logger that receives the cache protocol events.
// If nil, a discard logger is used (default behavior).
func WithLogger(logger *slog.Logger) Option {
	return func(c *ProjectCache) error {
		c.logger = logger
		return nil
	}
}
