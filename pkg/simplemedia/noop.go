package simplemedia

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// NoopEventSink is a no-operation implementation of EventSink
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

func (n *NoopEventSink) VideoPublished(ctx context.Context, video *Video) error { return nil }

func (n *NoopEventSink) VideoUpdated(ctx context.Context, video *Video) error { return nil }

func (n *NoopEventSink) VideoDeleted(ctx context.Context, videoID uuid.UUID) error { return nil }

// LogEventSink writes every event to a structured logger
type LogEventSink struct {
	logger *slog.Logger
}

// NewLogEventSink creates an event sink that logs through logger,
// or slog.Default() when logger is nil
func NewLogEventSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogEventSink{logger: logger}
}

func (l *LogEventSink) VideoPublished(ctx context.Context, video *Video) error {
	l.logger.InfoContext(ctx, "Video published", "video_id", video.ID, "title", video.Title)
	return nil
}

func (l *LogEventSink) VideoUpdated(ctx context.Context, video *Video) error {
	l.logger.InfoContext(ctx, "Video updated", "video_id", video.ID, "title", video.Title)
	return nil
}

func (l *LogEventSink) VideoDeleted(ctx context.Context, videoID uuid.UUID) error {
	l.logger.InfoContext(ctx, "Video deleted", "video_id", videoID)
	return nil
}

// noopURLStrategy derives nothing
type noopURLStrategy struct{}

func (noopURLStrategy) ThumbnailURL(string) (string, bool) { return "", false }

func (noopURLStrategy) StreamingURL(string) (string, bool) { return "", false }
