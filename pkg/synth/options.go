// ABOUTME: Functional options shared by the generators
// ABOUTME: Currently carries the structured logger
package synth

import "go.uber.org/zap"

type options struct {
	logger *zap.Logger
}

// Option configures a generator
type Option func(*options)

// WithLogger sets the logger used for warnings and peak reports
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
