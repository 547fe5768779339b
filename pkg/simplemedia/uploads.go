package simplemedia

import (
	"context"
	"errors"
	"log/slog"
	"math"
)

// CleanupResult reports the outcome of a best-effort remote deletion
type CleanupResult struct {
	ExternalID string
	Attempted  bool
	Err        error
}

// OK reports whether nothing needed doing or the delete succeeded
func (r CleanupResult) OK() bool {
	return r.Err == nil
}

// MediaOrchestrator wraps the storage gateway with the rules of the
// publishing pipeline: strict primary uploads, lenient thumbnails,
// best-effort cleanup and derived rendition URLs.
type MediaOrchestrator struct {
	gateway  Gateway
	strategy URLStrategy
	logger   *slog.Logger
	metrics  *Metrics
}

// NewMediaOrchestrator creates an orchestrator. A nil strategy derives no URLs.
func NewMediaOrchestrator(gateway Gateway, strategy URLStrategy, logger *slog.Logger, metrics *Metrics) *MediaOrchestrator {
	if strategy == nil {
		strategy = noopURLStrategy{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MediaOrchestrator{
		gateway:  gateway,
		strategy: strategy,
		logger:   logger,
		metrics:  metrics,
	}
}

// UploadPrimary stores the primary video buffer. Any gateway failure or an
// unusable result is returned as an *UploadError.
func (m *MediaOrchestrator) UploadPrimary(ctx context.Context, data []byte) (*UploadResult, error) {
	return m.upload(ctx, data, AssetVideo)
}

// UploadThumbnail stores a thumbnail image. Callers decide whether a
// failure matters.
func (m *MediaOrchestrator) UploadThumbnail(ctx context.Context, data []byte) (*UploadResult, error) {
	return m.upload(ctx, data, AssetImage)
}

func (m *MediaOrchestrator) upload(ctx context.Context, data []byte, kind AssetKind) (*UploadResult, error) {
	if len(data) == 0 {
		err := &UploadError{Kind: kind, Err: errors.New("empty buffer")}
		m.metrics.upload(kind, err)
		return nil, err
	}

	result, err := m.gateway.Upload(ctx, data, kind)
	if err == nil && result == nil {
		err = errors.New("gateway returned no result")
	}
	if err == nil && (result.ExternalID == "" || result.URL == "") {
		err = errors.New("gateway returned an empty identifier or URL")
	}
	m.metrics.upload(kind, err)
	if err != nil {
		var uploadErr *UploadError
		if errors.As(err, &uploadErr) {
			return nil, err
		}
		return nil, &UploadError{Kind: kind, Err: err}
	}
	return result, nil
}

// DeriveThumbnailURL computes a thumbnail URL for a primary external id
func (m *MediaOrchestrator) DeriveThumbnailURL(externalID string) *string {
	if externalID == "" {
		return nil
	}
	url, ok := m.strategy.ThumbnailURL(externalID)
	if !ok || url == "" {
		return nil
	}
	return &url
}

// DeriveStreamingURL computes an adaptive streaming URL for a primary external id
func (m *MediaOrchestrator) DeriveStreamingURL(externalID string) *string {
	if externalID == "" {
		return nil
	}
	url, ok := m.strategy.StreamingURL(externalID)
	if !ok || url == "" {
		return nil
	}
	return &url
}

// DeleteRemote removes a primary video object. Failures are logged and
// counted, and only reported through the result.
func (m *MediaOrchestrator) DeleteRemote(ctx context.Context, externalID string) CleanupResult {
	result := CleanupResult{ExternalID: externalID}
	if externalID == "" {
		return result
	}

	result.Attempted = true
	if err := m.gateway.Delete(ctx, externalID, AssetVideo); err != nil {
		result.Err = err
		m.metrics.cleanupFailed()
		m.logger.WarnContext(ctx, "Remote media cleanup failed", "external_id", externalID, "error", err)
		return result
	}
	m.logger.DebugContext(ctx, "Remote media deleted", "external_id", externalID)
	return result
}

// durationSeconds rounds a provider duration to whole seconds
func durationSeconds(d *float64) *int {
	if d == nil || math.IsNaN(*d) || math.IsInf(*d, 0) || *d < 0 {
		return nil
	}
	secs := int(math.Round(*d))
	return &secs
}
