package projtree

import (
	"fmt"

	"github.com/mwantia/projtree/cache"
	"github.com/mwantia/projtree/log"
	"github.com/mwantia/projtree/query"
)

type ProjectOptions struct {
	Logger       *log.Logger
	CacheOptions []cache.Option
	QueryOptions []query.EngineOption
}

type ProjectOption func(*ProjectOptions) error

func newDefaultProjectOptions() *ProjectOptions {
	return &ProjectOptions{
		Logger: log.Discard(),
	}
}

func WithLogger(logger *log.Logger) ProjectOption {
	return func(opts *ProjectOptions) error {
		if logger == nil {
			return fmt.Errorf("logger must not be nil")
		}
		opts.Logger = logger
		return nil
	}
}

// WithCacheOptions passes options through to the cache manager.
func WithCacheOptions(options ...cache.Option) ProjectOption {
	return func(opts *ProjectOptions) error {
		opts.CacheOptions = append(opts.CacheOptions, options...)
		return nil
	}
}

// WithQueryOptions passes options through to the query engine.
func WithQueryOptions(options ...query.EngineOption) ProjectOption {
	return func(opts *ProjectOptions) error {
		opts.QueryOptions = append(opts.QueryOptions, options...)
		return nil
	}
}
