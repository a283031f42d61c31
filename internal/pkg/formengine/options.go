package formengine

import "go.uber.org/zap"

// Option configures Compile and NewForm.
type Option func(*options)

type options struct {
	logger       *zap.Logger
	keepOneEntry bool
}

// WithLogger routes schema warnings to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithKeepOneEntry makes every repeatable group hold at least one entry:
// empty groups start with one blank entry and the last entry cannot be removed.
func WithKeepOneEntry(keep bool) Option {
	return func(o *options) { o.keepOneEntry = keep }
}

func applyOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
