package menutree

import "go.uber.org/zap"

// Option configures a Tree.
type Option func(*options)

type options struct {
	logger        *zap.Logger
	requireLogo   bool
	linkMinLength int
	newID         func() string
}

// WithLogger receives load warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRequireLogo rejects items without a logo.
func WithRequireLogo(require bool) Option {
	return func(o *options) { o.requireLogo = require }
}

// WithLinkMinLength sets the minimum rune count of a link (at least 1).
func WithLinkMinLength(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.linkMinLength = n
		}
	}
}

// WithIDGenerator replaces the UUID generator used for new items.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.newID = fn
		}
	}
}
