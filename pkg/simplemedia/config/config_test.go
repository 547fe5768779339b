package config

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-media/pkg/simplemedia"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DatabaseMemory, cfg.DatabaseType)
	assert.Equal(t, StorageMemory, cfg.Storage.Type)
	assert.Empty(t, cfg.RenditionBaseURL)
	assert.Empty(t, cfg.EventQueueURL)
}

func TestOptions(t *testing.T) {
	cfg, err := Load(
		WithPort("9000"),
		WithEnvironment("testing"),
		WithDatabase(DatabasePostgres, "postgres://localhost/media"),
		WithStorageURL("s3://clips?region=us-west-2&create_bucket=true"),
		WithPublicBaseURL("https://media.example.com"),
		WithURLStrategy("cdn", "https://cdn.example.com"),
		WithEventQueue("http://localhost:4566/000000000000/media", "http://localhost:4566"),
		WithJWTSecret("secret"),
		WithTimezone("Europe/Berlin"),
	)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "testing", cfg.Environment)
	assert.Equal(t, DatabasePostgres, cfg.DatabaseType)
	assert.Equal(t, "postgres://localhost/media", cfg.DatabaseURL)
	assert.Equal(t, StorageConfig{Type: StorageS3, Bucket: "clips", Region: "us-west-2", CreateBucket: true}, cfg.Storage)
	assert.Equal(t, "https://media.example.com", cfg.PublicBaseURL)
	assert.Equal(t, "cdn", cfg.URLStrategy)
	assert.Equal(t, "https://cdn.example.com", cfg.RenditionBaseURL)
	assert.Equal(t, "http://localhost:4566", cfg.EventQueueEndpoint)
	assert.Equal(t, "secret", cfg.JWTSecret)
	assert.Equal(t, "Europe/Berlin", cfg.Timezone)
}

func TestOptionErrors(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"empty port", WithPort("")},
		{"empty environment", WithEnvironment("")},
		{"unknown database", WithDatabase("mysql", "")},
		{"postgres without URL", WithDatabase(DatabasePostgres, "")},
		{"bad storage URL", WithStorageURL("ftp://host")},
		{"strategy without base", WithURLStrategy("cdn", "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.opt)
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ServerConfig)
	}{
		{"missing port", func(c *ServerConfig) { c.Port = "" }},
		{"unknown database", func(c *ServerConfig) { c.DatabaseType = "sqlite" }},
		{"postgres without URL", func(c *ServerConfig) { c.DatabaseType = DatabasePostgres }},
		{"fs without dir", func(c *ServerConfig) { c.Storage = StorageConfig{Type: StorageFS} }},
		{"s3 without bucket", func(c *ServerConfig) { c.Storage = StorageConfig{Type: StorageS3} }},
		{"unknown storage", func(c *ServerConfig) { c.Storage = StorageConfig{Type: "gcs"} }},
		{"unknown strategy", func(c *ServerConfig) { c.URLStrategy = "imgix" }},
		{"bad timezone", func(c *ServerConfig) { c.Timezone = "Mars/Olympus" }},
		{"production without secret", func(c *ServerConfig) { c.Environment = EnvironmentProduction }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestParseStorageURL(t *testing.T) {
	s, err := ParseStorageURL("file://relative/dir")
	require.NoError(t, err)
	assert.Equal(t, StorageConfig{Type: StorageFS, BaseDir: "relative/dir"}, s)

	_, err = ParseStorageURL("file://")
	assert.Error(t, err)

	_, err = ParseStorageURL("s3://bucket?create_bucket=nope")
	assert.Error(t, err)
}

func TestBuildServiceMemory(t *testing.T) {
	cfg, err := Load(
		WithURLStrategy("transform", "https://renditions.example.com"),
		WithTimezone("UTC"),
	)
	require.NoError(t, err)

	svc, cleanup, err := cfg.BuildService(context.Background())
	require.NoError(t, err)
	defer cleanup()

	page, err := svc.ListVideos(context.Background(), simplemedia.ListVideosRequest{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	summary, err := svc.DashboardSummary(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, summary.Trends.Labels, simplemedia.DefaultDashboardDays)
}

func TestBuildServiceFilesystem(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(WithStorage(StorageConfig{Type: StorageFS, BaseDir: dir}))
	require.NoError(t, err)

	svc, cleanup, err := cfg.BuildService(context.Background())
	require.NoError(t, err)
	defer cleanup()

	_, err = svc.GetVideo(context.Background(), uuid.New(), true)
	assert.ErrorIs(t, err, simplemedia.ErrVideoNotFound)
}
