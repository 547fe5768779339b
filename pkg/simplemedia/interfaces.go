package simplemedia

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Gateway is the remote object storage provider
type Gateway interface {
	// Upload stores data and returns a stable identifier and a resolvable URL
	Upload(ctx context.Context, data []byte, kind AssetKind) (*UploadResult, error)

	// Delete removes a stored object
	Delete(ctx context.Context, externalID string, kind AssetKind) error
}

// URLStrategy derives rendition URLs from a primary external identifier.
// Both methods return false when no URL can be produced.
type URLStrategy interface {
	ThumbnailURL(externalID string) (string, bool)
	StreamingURL(externalID string) (string, bool)
}

// Tx is the transactional handle a unit of work runs against.
// Everything written through one Tx commits or rolls back together.
type Tx interface {
	// LockVideo loads a video and holds a row lock on it until the
	// transaction ends. Returns ErrVideoNotFound when absent.
	LockVideo(ctx context.Context, id uuid.UUID) (*Video, error)
	CategoryExists(ctx context.Context, id uuid.UUID) (bool, error)

	CreateVideo(ctx context.Context, video *Video) error
	UpdateVideo(ctx context.Context, video *Video) error
	DeleteVideo(ctx context.Context, id uuid.UUID) error

	// Text sections
	InsertTextSections(ctx context.Context, sections []TextSection) error
	DeleteTextSections(ctx context.Context, videoID uuid.UUID) error
	MaxSectionPosition(ctx context.Context, videoID uuid.UUID) (int, error)

	// Notification fan-out
	ListUserIDs(ctx context.Context) ([]uuid.UUID, error)
	InsertNotifications(ctx context.Context, notifications []Notification) error
}

// StatsReader holds the read-only aggregates behind the dashboard
type StatsReader interface {
	CountVideos(ctx context.Context) (int64, error)
	CountUsers(ctx context.Context) (int64, error)
	CountActiveComments(ctx context.Context) (int64, error)
	CountShares(ctx context.Context, videoID *uuid.UUID) (int64, error)
	CountDownloads(ctx context.Context, videoID *uuid.UUID) (int64, error)
	CountLikes(ctx context.Context) (int64, error)
	CountUnreadNotifications(ctx context.Context) (int64, error)

	// DailyCounts groups events created at or after since by calendar day.
	// Days without events are absent from the result.
	DailyCounts(ctx context.Context, kind EventKind, since time.Time) ([]DayCount, error)

	// CategoryDistribution returns every category with its video count,
	// ordered by name.
	CategoryDistribution(ctx context.Context) ([]CategoryCount, error)
}

// Repository defines the interface for video, event and notification persistence
type Repository interface {
	StatsReader

	// WithTx runs fn inside one transaction. A non-nil error from fn rolls
	// everything back; nil commits.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	CategoryExists(ctx context.Context, id uuid.UUID) (bool, error)

	// Video reads
	GetVideo(ctx context.Context, id uuid.UUID) (*Video, error)
	ListVideos(ctx context.Context, params ListVideosParams) ([]*Video, int64, error)
	IncrementViews(ctx context.Context, id uuid.UUID) (*Video, error)
	EngagementCounts(ctx context.Context, videoIDs []uuid.UUID) (map[uuid.UUID]EngagementCounts, error)

	// Text sections
	ListTextSections(ctx context.Context, videoID uuid.UUID) ([]TextSection, error)
	GetTextSection(ctx context.Context, id uuid.UUID) (*TextSection, error)
	UpdateTextSection(ctx context.Context, section *TextSection) error
	DeleteTextSection(ctx context.Context, id uuid.UUID) error

	// Events
	CreateShareEvent(ctx context.Context, event *ShareEvent) error
	CreateDownloadEvent(ctx context.Context, event *DownloadEvent) error
	ListUserDownloads(ctx context.Context, userID uuid.UUID) ([]UserDownload, error)
	GetLike(ctx context.Context, userID, videoID uuid.UUID) (*Like, error)
	CreateLike(ctx context.Context, like *Like) error
	DeleteLike(ctx context.Context, userID, videoID uuid.UUID) error

	// Notifications
	ListNotifications(ctx context.Context, userID uuid.UUID) ([]Notification, error)
	GetNotification(ctx context.Context, id uuid.UUID) (*Notification, error)
	MarkNotificationRead(ctx context.Context, id uuid.UUID) (*Notification, error)
}

// EventSink receives publishing events after the database commit
type EventSink interface {
	// VideoPublished is fired after a video is created
	VideoPublished(ctx context.Context, video *Video) error

	// VideoUpdated is fired after a video is updated
	VideoUpdated(ctx context.Context, video *Video) error

	// VideoDeleted is fired after a video row is deleted
	VideoDeleted(ctx context.Context, videoID uuid.UUID) error
}

// ListVideosParams filters and pages a video listing
type ListVideosParams struct {
	Offset             int
	Limit              int
	CategoryID         *uuid.UUID
	CategorySlug       string
	Search             string
	IncludeUnpublished bool
	LikedBy            *uuid.UUID
}
