package projtree

import (
	"context"
	"errors"
	"fmt"

	"github.com/mwantia/projtree/cache"
	"github.com/mwantia/projtree/config"
	"github.com/mwantia/projtree/data"
	"github.com/mwantia/projtree/log"
	"github.com/mwantia/projtree/query"
	"github.com/mwantia/projtree/tree"
	"github.com/mwantia/projtree/tree/consul"
	"github.com/mwantia/projtree/tree/postgres"
	"github.com/mwantia/projtree/tree/s3"
	"github.com/mwantia/projtree/tree/sqlite"
)

// Project ties a mutable project tree to its lookup cache. Every mutation
// made through Project keeps the cache current; mutations made on the tree
// directly need a call to the matching cache method.
type Project struct {
	tree   data.MutableTree
	cache  *cache.Manager
	query  *query.Engine
	logger *log.Logger

	closer func(ctx context.Context) error
}

func NewProject(t data.MutableTree, opts ...ProjectOption) (*Project, error) {
	options := newDefaultProjectOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	cacheOptions := append([]cache.Option{cache.WithLogger(options.Logger.Named("cache"))}, options.CacheOptions...)
	manager, err := cache.NewManager(t, cacheOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	queryOptions := append([]query.EngineOption{query.WithLogger(options.Logger.Named("query"))}, options.QueryOptions...)
	engine, err := query.NewEngine(manager, queryOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create query engine: %w", err)
	}

	return &Project{
		tree:   t,
		cache:  manager,
		query:  engine,
		logger: options.Logger,
	}, nil
}

// Open creates the tree, logger and project described by cfg.
func Open(ctx context.Context, cfg *config.Config) (*Project, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := cfg.Log.Logger("projtree")
	if err != nil {
		return nil, err
	}

	var t data.MutableTree
	var closer func(ctx context.Context) error

	switch cfg.Tree.Driver {
	case config.DriverMemory:
		t = tree.NewGraph()
	case config.DriverSQLite:
		dsn := cfg.Tree.DSN
		if dsn == "" {
			dsn = ":memory:"
		}
		persistent, err := sqlite.Open(ctx, dsn)
		if err != nil {
			return nil, err
		}
		t, closer = persistent, persistent.Close
	case config.DriverPostgres:
		persistent, err := postgres.Open(ctx, cfg.Tree.DSN)
		if err != nil {
			return nil, err
		}
		t, closer = persistent, persistent.Close
	case config.DriverConsul:
		persistent, err := consul.Open(ctx, &consul.Config{
			Address:    cfg.Tree.Consul.Address,
			Token:      cfg.Tree.Consul.Token,
			Datacenter: cfg.Tree.Consul.Datacenter,
			Prefix:     cfg.Tree.Consul.Prefix,
		})
		if err != nil {
			return nil, err
		}
		t, closer = persistent, persistent.Close
	case config.DriverS3:
		persistent, err := s3.Open(ctx, &s3.Config{
			Endpoint:  cfg.Tree.S3.Endpoint,
			Bucket:    cfg.Tree.S3.Bucket,
			AccessKey: cfg.Tree.S3.AccessKey,
			SecretKey: cfg.Tree.S3.SecretKey,
			UseSSL:    cfg.Tree.S3.UseSSL,
			Prefix:    cfg.Tree.S3.Prefix,
		})
		if err != nil {
			return nil, err
		}
		t, closer = persistent, persistent.Close
	}

	p, err := NewProject(t,
		WithLogger(logger),
		WithCacheOptions(cfg.CacheOptions(logger.Named("cache"))...),
		WithQueryOptions(cfg.QueryOptions(logger.Named("query"))...),
	)
	if err != nil {
		if closer != nil {
			closer(ctx)
		}
		logger.Close()
		return nil, err
	}

	p.closer = func(ctx context.Context) error {
		var err error
		if closer != nil {
			err = closer(ctx)
		}
		return errors.Join(err, logger.Close())
	}
	logger.Info("opened %s project tree with %d items", cfg.Tree.Driver, t.Count())
	return p, nil
}

func (p *Project) Tree() data.MutableTree {
	return p.tree
}

func (p *Project) Cache() *cache.Manager {
	return p.cache
}

func (p *Project) Query() *query.Engine {
	return p.query
}

// Close releases the storage of the tree and the log file opened by Open.
func (p *Project) Close(ctx context.Context) error {
	p.cache.Clear()
	if p.closer == nil {
		return nil
	}
	return p.closer(ctx)
}

// Resolve returns the item at path, walking the live tree.
func (p *Project) Resolve(path string) data.Item {
	return data.Resolve(p.tree, p.tree.Root(), path)
}

func (p *Project) Items(q any) ([]data.Item, error) {
	return p.query.Items(q)
}

func (p *Project) Folders(q any) ([]data.Item, error) {
	return p.query.Folders(q)
}

func (p *Project) Compositions(q any) ([]data.Item, error) {
	return p.query.Compositions(q)
}

func (p *Project) Footage(q any) ([]data.Item, error) {
	return p.query.Footage(q)
}

func (p *Project) Images(q any) ([]data.Item, error) {
	return p.query.Images(q)
}

func (p *Project) Audio(q any) ([]data.Item, error) {
	return p.query.Audio(q)
}

func (p *Project) Videos(q any) ([]data.Item, error) {
	return p.query.Videos(q)
}

func (p *Project) Solids(q any) ([]data.Item, error) {
	return p.query.Solids(q)
}
