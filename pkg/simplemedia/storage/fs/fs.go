package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/tendant/simple-media/pkg/simplemedia"
	"github.com/tendant/simple-media/pkg/simplemedia/objectkey"
)

// Gateway is a filesystem implementation of the simplemedia.Gateway interface
type Gateway struct {
	baseDir   string
	baseURL   string
	generator objectkey.Generator
}

// Config options for the filesystem gateway
type Config struct {
	BaseDir       string              // Base directory for storing files
	PublicBaseURL string              // URL prefix the files are served under
	Generator     objectkey.Generator // Optional, defaults to the sharded layout
}

// New creates a new filesystem gateway
func New(config Config) (*Gateway, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	generator := config.Generator
	if generator == nil {
		generator = objectkey.NewRecommendedGenerator("")
	}

	return &Gateway{
		baseDir:   config.BaseDir,
		baseURL:   config.PublicBaseURL,
		generator: generator,
	}, nil
}

// Upload writes data to a new file under the base directory
func (g *Gateway) Upload(ctx context.Context, data []byte, kind simplemedia.AssetKind) (*simplemedia.UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := g.generator.GenerateKey(uuid.New(), kind)
	filePath, err := g.path(key)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &simplemedia.UploadResult{
		ExternalID: key,
		URL:        objectkey.PublicURL(g.baseURL, key),
	}, nil
}

// Delete removes a stored file
func (g *Gateway) Delete(ctx context.Context, externalID string, kind simplemedia.AssetKind) error {
	filePath, err := g.path(externalID)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return errors.New("object not found")
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// path resolves a key inside the base directory
func (g *Gateway) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object key: %q", key)
	}
	return filepath.Join(g.baseDir, clean), nil
}
