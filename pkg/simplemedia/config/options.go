package config

import (
	"errors"
	"fmt"
	"io/fs"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithDatabase configures the database backend
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		if dbType != DatabaseMemory && dbType != DatabasePostgres {
			return fmt.Errorf("database type must be 'memory' or 'postgres', got: %s", dbType)
		}
		if dbType == DatabasePostgres && url == "" {
			return fmt.Errorf("database URL is required for postgres")
		}
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithStorage replaces the storage configuration
func WithStorage(storage StorageConfig) Option {
	return func(c *ServerConfig) error {
		c.Storage = storage
		return nil
	}
}

// WithStorageURL configures storage from a connection string, see ParseStorageURL
func WithStorageURL(raw string) Option {
	return func(c *ServerConfig) error {
		storage, err := ParseStorageURL(raw)
		if err != nil {
			return err
		}
		c.Storage = storage
		return nil
	}
}

// WithPublicBaseURL sets the prefix stored objects are served under
func WithPublicBaseURL(baseURL string) Option {
	return func(c *ServerConfig) error {
		c.PublicBaseURL = baseURL
		return nil
	}
}

// WithURLStrategy enables rendition URL derivation
func WithURLStrategy(strategyType, baseURL string) Option {
	return func(c *ServerConfig) error {
		if baseURL == "" {
			return fmt.Errorf("rendition base URL cannot be empty")
		}
		c.URLStrategy = strategyType
		c.RenditionBaseURL = baseURL
		return nil
	}
}

// WithEventQueue publishes post-commit events to an SQS queue
func WithEventQueue(queueURL, endpoint string) Option {
	return func(c *ServerConfig) error {
		c.EventQueueURL = queueURL
		c.EventQueueEndpoint = endpoint
		return nil
	}
}

// WithJWTSecret sets the HS256 secret bearer tokens are verified with
func WithJWTSecret(secret string) Option {
	return func(c *ServerConfig) error {
		c.JWTSecret = secret
		return nil
	}
}

// WithTimezone sets the zone dashboard days are bucketed in
func WithTimezone(name string) Option {
	return func(c *ServerConfig) error {
		c.Timezone = name
		return nil
	}
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
