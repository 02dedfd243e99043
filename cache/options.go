package cache

import (
	"fmt"

	"github.com/mwantia/projtree/log"
)

const (
	DefaultSolidsFolder = "Solids"
	DefaultRegexLimit   = 100000
)

type Options struct {
	Logger       *log.Logger
	SolidsFolder string
	RegexLimit   int
}

type Option func(*Options) error

func newDefaultOptions() *Options {
	return &Options{
		Logger:       log.Discard(),
		SolidsFolder: DefaultSolidsFolder,
		RegexLimit:   DefaultRegexLimit,
	}
}

func applyOptions(opts []Option) (*Options, error) {
	options := newDefaultOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

func WithLogger(logger *log.Logger) Option {
	return func(opts *Options) error {
		if logger == nil {
			return fmt.Errorf("logger must not be nil")
		}
		opts.Logger = logger
		return nil
	}
}

// WithSolidsFolder sets the name of the reserved top-level folder whose
// contents are only indexed on demand.
func WithSolidsFolder(name string) Option {
	return func(opts *Options) error {
		if name == "" {
			return fmt.Errorf("solids folder name must not be empty")
		}
		opts.SolidsFolder = name
		return nil
	}
}

// WithRegexLimit caps the number of match iterations of a single regular
// expression lookup.
func WithRegexLimit(limit int) Option {
	return func(opts *Options) error {
		if limit <= 0 {
			return fmt.Errorf("regex limit must be positive, got %d", limit)
		}
		opts.RegexLimit = limit
		return nil
	}
}
