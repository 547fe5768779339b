package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/tendant/simple-media/pkg/simplemedia"
	"github.com/tendant/simple-media/pkg/simplemedia/objectkey"
)

// ErrObjectNotFound is returned when deleting a key that was never stored
var ErrObjectNotFound = errors.New("object not found")

// Gateway is an in-memory implementation of the simplemedia.Gateway interface
type Gateway struct {
	mu        sync.RWMutex
	objects   map[string][]byte
	baseURL   string
	generator objectkey.Generator
}

// New creates a new in-memory gateway. Stored objects are addressed as
// {baseURL}/{key}.
func New(baseURL string) *Gateway {
	return &Gateway{
		objects:   make(map[string][]byte),
		baseURL:   baseURL,
		generator: objectkey.NewFlatGenerator(""),
	}
}

// Upload stores a copy of data
func (g *Gateway) Upload(ctx context.Context, data []byte, kind simplemedia.AssetKind) (*simplemedia.UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := g.generator.GenerateKey(uuid.New(), kind)
	stored := make([]byte, len(data))
	copy(stored, data)

	g.mu.Lock()
	defer g.mu.Unlock()

	g.objects[key] = stored
	return &simplemedia.UploadResult{
		ExternalID: key,
		URL:        objectkey.PublicURL(g.baseURL, key),
	}, nil
}

// Delete removes an object
func (g *Gateway) Delete(ctx context.Context, externalID string, kind simplemedia.AssetKind) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.objects[externalID]; !exists {
		return ErrObjectNotFound
	}
	delete(g.objects, externalID)
	return nil
}

// Has reports whether key is stored
func (g *Gateway) Has(key string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, ok := g.objects[key]
	return ok
}

// Len returns the number of stored objects
func (g *Gateway) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.objects)
}
