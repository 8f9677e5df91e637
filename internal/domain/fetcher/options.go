package fetcher

import (
	"github.com/okian/landpower/pkg/logger"
)

// Option applies a configuration option to the Fetcher.
type Option func(*Fetcher)

// WithBatchSize caps the addresses placed in one filter.
func WithBatchSize(size int) Option {
	return func(f *Fetcher) {
		if size > 0 {
			f.batchSize = size
		}
	}
}

// WithPageSize sets the `first` argument of every page.
func WithPageSize(size int) Option {
	return func(f *Fetcher) {
		if size > 0 {
			f.pageSize = size
		}
	}
}

// WithConcurrency bounds how many batches are queried at once.
func WithConcurrency(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

// WithLogger sets a custom logger for the fetcher.
func WithLogger(l logger.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}
