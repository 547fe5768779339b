package urlstrategy

import (
	"fmt"
	"strings"
)

// StrategyType names a URL derivation scheme
type StrategyType string

const (
	// StrategyTypeCDN serves fixed rendition files laid out per video on a CDN
	StrategyTypeCDN StrategyType = "cdn"

	// StrategyTypeTransform asks an on-the-fly transformation endpoint for renditions
	StrategyTypeTransform StrategyType = "transform"
)

// Config holds configuration for URL strategy creation
type Config struct {
	Type    StrategyType
	BaseURL string
}

// Strategy derives rendition URLs from a primary external identifier.
// It satisfies simplemedia.URLStrategy.
type Strategy interface {
	ThumbnailURL(externalID string) (string, bool)
	StreamingURL(externalID string) (string, bool)
}

// New creates a URL strategy based on the configuration
func New(config Config) (Strategy, error) {
	base := strings.TrimSuffix(strings.TrimSpace(config.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("base URL is required for %q strategy", config.Type)
	}

	switch config.Type {
	case StrategyTypeCDN:
		return NewCDNStrategy(base), nil
	case StrategyTypeTransform, "":
		return NewTransformStrategy(base), nil
	default:
		return nil, fmt.Errorf("unknown URL strategy type: %s", config.Type)
	}
}

// trimID strips separators so ids cannot escape their path segment
func trimID(externalID string) string {
	return strings.Trim(strings.TrimSpace(externalID), "/")
}
