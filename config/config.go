package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mwantia/projtree/cache"
	"github.com/mwantia/projtree/log"
	"github.com/mwantia/projtree/query"
	"github.com/spf13/viper"
)

// Driver names the storage a project tree lives in.
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverConsul   Driver = "consul"
	DriverS3       Driver = "s3"
)

// EnvPrefix prefixes every environment override, e.g. PROJTREE_LOG_LEVEL.
const EnvPrefix = "PROJTREE"

type Config struct {
	Cache CacheConfig `mapstructure:"cache"`
	Query QueryConfig `mapstructure:"query"`
	Log   LogConfig   `mapstructure:"log"`
	Tree  TreeConfig  `mapstructure:"tree"`
}

type CacheConfig struct {
	SolidsFolder string `mapstructure:"solids_folder"`
	RegexLimit   int    `mapstructure:"regex_limit"`
}

type QueryConfig struct {
	PatternCacheSize int `mapstructure:"pattern_cache_size"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	JSON       bool   `mapstructure:"json"`
	NoTerminal bool   `mapstructure:"no_terminal"`
	NoColor    bool   `mapstructure:"no_color"`
}

type TreeConfig struct {
	Driver Driver `mapstructure:"driver"`
	// DSN is the database file for sqlite or the connection string for postgres.
	DSN string `mapstructure:"dsn"`

	Consul ConsulConfig `mapstructure:"consul"`
	S3     S3Config     `mapstructure:"s3"`
}

type ConsulConfig struct {
	Address    string `mapstructure:"address"`
	Token      string `mapstructure:"token"`
	Datacenter string `mapstructure:"datacenter"`
	Prefix     string `mapstructure:"prefix"`
}

type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Prefix    string `mapstructure:"prefix"`
}

func DefaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			SolidsFolder: cache.DefaultSolidsFolder,
			RegexLimit:   cache.DefaultRegexLimit,
		},
		Query: QueryConfig{
			PatternCacheSize: query.DefaultPatternCacheSize,
		},
		Log: LogConfig{
			Level: "INFO",
		},
		Tree: TreeConfig{
			Driver: DriverMemory,
			Consul: ConsulConfig{
				Address: "127.0.0.1:8500",
				Prefix:  "projtree",
			},
		},
	}
}

// Load reads the configuration file at path and applies environment
// overrides. An empty path looks for "projtree.yaml" in the working
// directory; a missing file leaves the defaults in place.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("projtree")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so that environment overrides reach
// Unmarshal even without a config file.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("cache.solids_folder", cfg.Cache.SolidsFolder)
	v.SetDefault("cache.regex_limit", cfg.Cache.RegexLimit)
	v.SetDefault("query.pattern_cache_size", cfg.Query.PatternCacheSize)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.json", cfg.Log.JSON)
	v.SetDefault("log.no_terminal", cfg.Log.NoTerminal)
	v.SetDefault("log.no_color", cfg.Log.NoColor)
	v.SetDefault("tree.driver", string(cfg.Tree.Driver))
	v.SetDefault("tree.dsn", cfg.Tree.DSN)
	v.SetDefault("tree.consul.address", cfg.Tree.Consul.Address)
	v.SetDefault("tree.consul.token", cfg.Tree.Consul.Token)
	v.SetDefault("tree.consul.datacenter", cfg.Tree.Consul.Datacenter)
	v.SetDefault("tree.consul.prefix", cfg.Tree.Consul.Prefix)
	v.SetDefault("tree.s3.endpoint", cfg.Tree.S3.Endpoint)
	v.SetDefault("tree.s3.bucket", cfg.Tree.S3.Bucket)
	v.SetDefault("tree.s3.access_key", cfg.Tree.S3.AccessKey)
	v.SetDefault("tree.s3.secret_key", cfg.Tree.S3.SecretKey)
	v.SetDefault("tree.s3.use_ssl", cfg.Tree.S3.UseSSL)
	v.SetDefault("tree.s3.prefix", cfg.Tree.S3.Prefix)
}

func (c *Config) Validate() error {
	switch c.Tree.Driver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if c.Tree.DSN == "" {
			return fmt.Errorf("tree driver '%s' requires a dsn", c.Tree.Driver)
		}
	case DriverConsul:
		if c.Tree.Consul.Address == "" {
			return fmt.Errorf("tree driver '%s' requires an address", c.Tree.Driver)
		}
	case DriverS3:
		if c.Tree.S3.Endpoint == "" || c.Tree.S3.Bucket == "" {
			return fmt.Errorf("tree driver '%s' requires an endpoint and a bucket", c.Tree.Driver)
		}
	default:
		return fmt.Errorf("unknown tree driver '%s'", c.Tree.Driver)
	}

	if c.Cache.SolidsFolder == "" {
		return fmt.Errorf("cache solids folder must not be empty")
	}
	if c.Cache.RegexLimit <= 0 {
		return fmt.Errorf("cache regex limit must be positive, got %d", c.Cache.RegexLimit)
	}
	if c.Query.PatternCacheSize <= 0 {
		return fmt.Errorf("query pattern cache size must be positive, got %d", c.Query.PatternCacheSize)
	}

	if _, err := log.Parse(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// Logger creates the logger described by the log section.
func (c LogConfig) Logger(name string) (*log.Logger, error) {
	level, err := log.Parse(c.Level)
	if err != nil {
		return nil, err
	}

	l := log.NewLogger(name, level, c.File, c.NoTerminal)
	l.JSON = c.JSON
	l.NoColor = c.NoColor
	return l, nil
}

// CacheOptions translates the cache section into manager options.
func (c *Config) CacheOptions(logger *log.Logger) []cache.Option {
	return []cache.Option{
		cache.WithLogger(logger),
		cache.WithSolidsFolder(c.Cache.SolidsFolder),
		cache.WithRegexLimit(c.Cache.RegexLimit),
	}
}

// QueryOptions translates the query section into engine options.
func (c *Config) QueryOptions(logger *log.Logger) []query.EngineOption {
	return []query.EngineOption{
		query.WithLogger(logger),
		query.WithPatternCacheSize(c.Query.PatternCacheSize),
	}
}
