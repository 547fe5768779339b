package objectkey

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tendant/simple-media/pkg/simplemedia"
)

// Generator defines the interface for object key generation strategies
type Generator interface {
	// GenerateKey creates the storage key for a new object of the given kind
	GenerateKey(objectID uuid.UUID, kind simplemedia.AssetKind) string
}

// Folder returns the top-level folder an asset kind is stored under
func Folder(kind simplemedia.AssetKind) string {
	switch kind {
	case simplemedia.AssetImage:
		return "thumbnails"
	case simplemedia.AssetVideo:
		return "videos"
	default:
		return sanitizePathComponent(string(kind))
	}
}

// FlatGenerator lays objects out as {prefix}/{folder}/{id}
type FlatGenerator struct {
	Prefix string
}

func NewFlatGenerator(prefix string) *FlatGenerator {
	return &FlatGenerator{Prefix: cleanPrefix(prefix)}
}

func (g *FlatGenerator) GenerateKey(objectID uuid.UUID, kind simplemedia.AssetKind) string {
	return join(g.Prefix, Folder(kind), objectID.String())
}

// ShardedGenerator provides Git-style sharding below the kind folder
// Video:     {prefix}/videos/ab/cd1234ef5678...
// Thumbnail: {prefix}/thumbnails/ab/cd1234ef5678...
type ShardedGenerator struct {
	Prefix string

	// ShardLength controls how many characters to use for sharding (default: 2)
	ShardLength int
}

func NewShardedGenerator(prefix string) *ShardedGenerator {
	return &ShardedGenerator{
		Prefix:      cleanPrefix(prefix),
		ShardLength: 2,
	}
}

func (g *ShardedGenerator) GenerateKey(objectID uuid.UUID, kind simplemedia.AssetKind) string {
	idStr := strings.ReplaceAll(objectID.String(), "-", "")

	shard := g.ShardLength
	if shard <= 0 || shard >= len(idStr) {
		shard = 2
	}

	return join(g.Prefix, Folder(kind), idStr[:shard], idStr[shard:])
}

// CustomFuncGenerator allows users to provide their own key generation function
type CustomFuncGenerator struct {
	GenerateFunc func(objectID uuid.UUID, kind simplemedia.AssetKind) string
}

func NewCustomFuncGenerator(fn func(objectID uuid.UUID, kind simplemedia.AssetKind) string) *CustomFuncGenerator {
	return &CustomFuncGenerator{GenerateFunc: fn}
}

func (g *CustomFuncGenerator) GenerateKey(objectID uuid.UUID, kind simplemedia.AssetKind) string {
	return g.GenerateFunc(objectID, kind)
}

// NewRecommendedGenerator returns the recommended generator for new installations
func NewRecommendedGenerator(prefix string) Generator {
	return NewShardedGenerator(prefix)
}

func join(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "/")
}

// cleanPrefix sanitizes each segment of a slash separated prefix
func cleanPrefix(prefix string) string {
	var segments []string
	for _, seg := range strings.Split(prefix, "/") {
		seg = strings.TrimSpace(seg)
		if seg == "" || seg == "." || seg == ".." {
			continue
		}
		segments = append(segments, sanitizePathComponent(seg))
	}
	return strings.Join(segments, "/")
}

func sanitizePathComponent(component string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	return strings.ToLower(replacer.Replace(component))
}

// String describes a generator for logs
func String(g Generator) string {
	switch v := g.(type) {
	case *FlatGenerator:
		return fmt.Sprintf("flat(%s)", v.Prefix)
	case *ShardedGenerator:
		return fmt.Sprintf("sharded(%s,%d)", v.Prefix, v.ShardLength)
	default:
		return "custom"
	}
}

// PublicURL joins a public base URL and an object key
func PublicURL(baseURL, key string) string {
	baseURL = strings.TrimSuffix(baseURL, "/")
	key = strings.TrimPrefix(key, "/")
	if baseURL == "" {
		return "/" + key
	}
	return baseURL + "/" + key
}
