package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/simple-media/pkg/simplemedia"
	"github.com/tendant/simple-media/pkg/simplemedia/eventsink/sqs"
	"github.com/tendant/simple-media/pkg/simplemedia/repo/memory"
	repopg "github.com/tendant/simple-media/pkg/simplemedia/repo/postgres"
	fsstorage "github.com/tendant/simple-media/pkg/simplemedia/storage/fs"
	memorystorage "github.com/tendant/simple-media/pkg/simplemedia/storage/memory"
	s3storage "github.com/tendant/simple-media/pkg/simplemedia/storage/s3"
	"github.com/tendant/simple-media/pkg/simplemedia/urlstrategy"
)

const (
	DatabaseMemory   = "memory"
	DatabasePostgres = "postgres"

	StorageMemory = "memory"
	StorageFS     = "fs"
	StorageS3     = "s3"

	EnvironmentProduction = "production"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:          "8080",
		Environment:   "development",
		DatabaseType:  DatabaseMemory,
		Storage:       StorageConfig{Type: StorageMemory},
		PublicBaseURL: "http://localhost:8080/media",
		URLStrategy:   string(urlstrategy.StrategyTypeTransform),
	}
}

// ServerConfig represents server configuration for the simple-media service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"

	// Media storage
	Storage       StorageConfig
	PublicBaseURL string // URL prefix stored objects are served under

	// Rendition URLs; disabled when RenditionBaseURL is empty
	URLStrategy      string // "cdn", "transform"
	RenditionBaseURL string

	// Post-commit events; logged only when EventQueueURL is empty
	EventQueueURL      string
	EventQueueEndpoint string
	EventQueueRegion   string

	JWTSecret string

	// Timezone the dashboard buckets days in, e.g. "America/New_York"
	Timezone string
}

// StorageConfig selects and configures the media gateway
type StorageConfig struct {
	Type string // "memory", "fs", "s3"

	// fs
	BaseDir string

	// s3
	Bucket          string
	Region          string
	Endpoint        string
	UsePathStyle    bool
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
	CreateBucket    bool
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != DatabaseMemory && c.DatabaseType != DatabasePostgres {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == DatabasePostgres && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	switch c.Storage.Type {
	case StorageMemory:
	case StorageFS:
		if c.Storage.BaseDir == "" {
			return errors.New("storage base_dir is required for fs storage")
		}
	case StorageS3:
		if c.Storage.Bucket == "" {
			return errors.New("storage bucket is required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}

	switch urlstrategy.StrategyType(c.URLStrategy) {
	case urlstrategy.StrategyTypeCDN, urlstrategy.StrategyTypeTransform, "":
	default:
		return fmt.Errorf("unknown URL strategy type: %s", c.URLStrategy)
	}

	if _, err := c.location(); err != nil {
		return err
	}

	if c.Environment == EnvironmentProduction && c.JWTSecret == "" {
		return errors.New("jwt_secret is required in production")
	}

	return nil
}

func (c *ServerConfig) location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// BuildService creates a Service from the server configuration. Extra options
// are applied after the configured ones. The returned cleanup releases the
// database pool and must be called once the service is no longer used.
func (c *ServerConfig) BuildService(ctx context.Context, extra ...simplemedia.Option) (simplemedia.Service, func(), error) {
	logger := slog.Default()
	cleanup := func() {}

	repo, closeRepo, err := c.buildRepository(ctx)
	if err != nil {
		return nil, cleanup, fmt.Errorf("failed to build repository: %w", err)
	}
	cleanup = closeRepo

	gateway, err := c.buildGateway()
	if err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("failed to build gateway: %w", err)
	}

	sink, err := c.buildEventSink(ctx, logger)
	if err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("failed to build event sink: %w", err)
	}

	loc, err := c.location()
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}

	options := []simplemedia.Option{
		simplemedia.WithRepository(repo),
		simplemedia.WithGateway(gateway),
		simplemedia.WithEventSink(sink),
		simplemedia.WithLocation(loc),
		simplemedia.WithLogger(logger),
	}

	if c.RenditionBaseURL != "" {
		strategy, err := urlstrategy.New(urlstrategy.Config{
			Type:    urlstrategy.StrategyType(c.URLStrategy),
			BaseURL: c.RenditionBaseURL,
		})
		if err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("failed to build URL strategy: %w", err)
		}
		options = append(options, simplemedia.WithURLStrategy(strategy))
	}

	svc, err := simplemedia.New(append(options, extra...)...)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return svc, cleanup, nil
}

// buildRepository creates a Repository based on the configuration
func (c *ServerConfig) buildRepository(ctx context.Context) (simplemedia.Repository, func(), error) {
	switch c.DatabaseType {
	case DatabaseMemory:
		return memory.New(), func() {}, nil
	case DatabasePostgres:
		pool, err := OpenPostgres(ctx, c.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return repopg.NewWithPool(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// OpenPostgres creates a pgx pool for databaseURL
func OpenPostgres(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, errors.New("database_url is required for postgres")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	return pool, nil
}

// PingPostgres verifies connectivity to Postgres
func PingPostgres(ctx context.Context, databaseURL string) error {
	pool, err := OpenPostgres(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// buildGateway creates the media Gateway based on the storage configuration
func (c *ServerConfig) buildGateway() (simplemedia.Gateway, error) {
	switch c.Storage.Type {
	case StorageMemory:
		return memorystorage.New(c.PublicBaseURL), nil

	case StorageFS:
		return fsstorage.New(fsstorage.Config{
			BaseDir:       c.Storage.BaseDir,
			PublicBaseURL: c.PublicBaseURL,
		})

	case StorageS3:
		return s3storage.New(s3storage.Config{
			Region:                 c.Storage.Region,
			Bucket:                 c.Storage.Bucket,
			AccessKeyID:            c.Storage.AccessKeyID,
			SecretAccessKey:        c.Storage.SecretAccessKey,
			Endpoint:               c.Storage.Endpoint,
			UsePathStyle:           c.Storage.UsePathStyle,
			Prefix:                 c.Storage.Prefix,
			PublicBaseURL:          c.PublicBaseURL,
			CreateBucketIfNotExist: c.Storage.CreateBucket,
		})

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
}

func (c *ServerConfig) buildEventSink(ctx context.Context, logger *slog.Logger) (simplemedia.EventSink, error) {
	if c.EventQueueURL == "" {
		return simplemedia.NewLogEventSink(logger), nil
	}
	return sqs.New(ctx, sqs.Config{
		QueueURL: c.EventQueueURL,
		Region:   c.EventQueueRegion,
		Endpoint: c.EventQueueEndpoint,
	})
}
