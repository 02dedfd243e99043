package query

import (
	"fmt"

	"github.com/mwantia/projtree/cache"
	"github.com/mwantia/projtree/data"
	"github.com/mwantia/projtree/log"
)

const DefaultPatternCacheSize = 256

type EngineOptions struct {
	Logger           *log.Logger
	PatternCacheSize int
}

type EngineOption func(*EngineOptions) error

func newDefaultEngineOptions() *EngineOptions {
	return &EngineOptions{
		Logger:           log.Discard(),
		PatternCacheSize: DefaultPatternCacheSize,
	}
}

func WithLogger(logger *log.Logger) EngineOption {
	return func(opts *EngineOptions) error {
		if logger == nil {
			return fmt.Errorf("logger must not be nil")
		}
		opts.Logger = logger
		return nil
	}
}

// WithPatternCacheSize sets how many derived patterns stay compiled.
func WithPatternCacheSize(size int) EngineOption {
	return func(opts *EngineOptions) error {
		if size <= 0 {
			return fmt.Errorf("pattern cache size must be positive, got %d", size)
		}
		opts.PatternCacheSize = size
		return nil
	}
}

// Engine answers queries from the stores of a cache manager.
type Engine struct {
	manager  *cache.Manager
	logger   *log.Logger
	patterns *patterns
}

func NewEngine(manager *cache.Manager, opts ...EngineOption) (*Engine, error) {
	options := newDefaultEngineOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	patterns, err := newPatterns(options.PatternCacheSize)
	if err != nil {
		return nil, err
	}

	return &Engine{
		manager:  manager,
		logger:   options.Logger,
		patterns: patterns,
	}, nil
}

// Find returns every item of category matching q, see Normalize for the
// accepted query values. An empty result is not an error.
func (e *Engine) Find(category data.Category, q any) ([]data.Item, error) {
	opts, err := Normalize(q)
	if err != nil {
		return nil, err
	}

	f, err := e.compileFilter(opts)
	if err != nil {
		return nil, err
	}

	candidates, err := e.lookup(category, opts)
	if err != nil {
		return nil, err
	}

	result := make([]data.Item, 0, len(candidates))
	seen := make(map[int64]struct{}, len(candidates))
	for _, item := range candidates {
		if _, ok := seen[item.ID()]; ok {
			continue
		}
		seen[item.ID()] = struct{}{}

		if !f.match(item) {
			continue
		}
		if opts.Callback != nil {
			opts.Callback(item)
		}
		result = append(result, item)
	}

	e.logger.Debug("query over %s: %d candidates, %d results", category, len(candidates), len(result))
	return result, nil
}

// First returns the first item of category matching q.
func (e *Engine) First(category data.Category, q any) (data.Item, bool, error) {
	items, err := e.Find(category, q)
	if err != nil || len(items) == 0 {
		return nil, false, err
	}
	return items[0], true, nil
}

// lookup picks the cheapest index able to produce a superset of the result:
// ids, then path, then name, then regex, then fuzzy, then every item.
func (e *Engine) lookup(category data.Category, opts *Options) ([]data.Item, error) {
	store := e.manager.Store(category)

	switch {
	case len(opts.IDs) > 0:
		items := make([]data.Item, 0, len(opts.IDs))
		for _, id := range opts.IDs {
			if item, ok := store.GetByID(id); ok {
				items = append(items, item)
			}
		}
		return items, nil

	case opts.Path != "" && !opts.CaseInsensitive:
		if item, ok := store.GetByPath(data.Normalize(opts.Path)); ok {
			return []data.Item{item}, nil
		}
		return nil, nil

	case opts.Name != "":
		if !opts.CaseInsensitive {
			return store.GetByName(opts.Name), nil
		}
		re, err := e.patterns.exactName(opts.Name, true)
		if err != nil {
			return nil, err
		}
		return store.GetByRegExp(re), nil

	case opts.Regex != nil:
		re, err := e.patterns.derive(opts.Regex, "", "", opts.CaseInsensitive)
		if err != nil {
			return nil, err
		}
		return store.GetByRegExp(re), nil

	case opts.Fuzzy != "":
		return store.GetByFuzzy(opts.Fuzzy), nil

	default:
		return store.GetAll(), nil
	}
}

func (e *Engine) Items(q any) ([]data.Item, error) {
	return e.Find(data.CategoryAll, q)
}

func (e *Engine) Folders(q any) ([]data.Item, error) {
	return e.Find(data.CategoryFolders, q)
}

func (e *Engine) Compositions(q any) ([]data.Item, error) {
	return e.Find(data.CategoryCompositions, q)
}

func (e *Engine) Footage(q any) ([]data.Item, error) {
	return e.Find(data.CategoryFootage, q)
}

func (e *Engine) Images(q any) ([]data.Item, error) {
	return e.Find(data.CategoryImages, q)
}

func (e *Engine) Audio(q any) ([]data.Item, error) {
	return e.Find(data.CategoryAudio, q)
}

func (e *Engine) Videos(q any) ([]data.Item, error) {
	return e.Find(data.CategoryVideos, q)
}

func (e *Engine) Solids(q any) ([]data.Item, error) {
	return e.Find(data.CategorySolids, q)
}
