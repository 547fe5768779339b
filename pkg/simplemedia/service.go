package simplemedia

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the main interface for the simple-media library
type Service interface {
	// Publishing pipeline
	CreateVideo(ctx context.Context, req CreateVideoRequest) (*Video, error)
	UpdateVideo(ctx context.Context, req UpdateVideoRequest) (*Video, error)
	DeleteVideo(ctx context.Context, id uuid.UUID) (*Video, error)

	// Video reads
	GetVideo(ctx context.Context, id uuid.UUID, includeUnpublished bool) (*Video, error)
	ListVideos(ctx context.Context, req ListVideosRequest) (*Page, error)
	ListLikedVideos(ctx context.Context, userID uuid.UUID, page, limit int) (*Page, error)
	IncrementViews(ctx context.Context, id uuid.UUID) (*Video, error)

	// Text sections
	ListTextSections(ctx context.Context, videoID uuid.UUID) ([]TextSection, error)
	AddTextSection(ctx context.Context, req AddTextSectionRequest) (*TextSection, error)
	UpdateTextSection(ctx context.Context, req UpdateTextSectionRequest) (*TextSection, error)
	DeleteTextSection(ctx context.Context, videoID, sectionID uuid.UUID) (*TextSection, error)

	// Engagement events
	ShareVideo(ctx context.Context, req ShareVideoRequest) (*ShareEvent, error)
	CountShares(ctx context.Context, videoID *uuid.UUID) (int64, error)
	RecordDownload(ctx context.Context, videoID, userID uuid.UUID) (*DownloadReceipt, error)
	CountDownloads(ctx context.Context, videoID *uuid.UUID) (int64, error)
	ListUserDownloads(ctx context.Context, userID uuid.UUID) ([]UserDownload, error)
	LikeVideo(ctx context.Context, videoID, userID uuid.UUID) (*Like, error)
	UnlikeVideo(ctx context.Context, videoID, userID uuid.UUID) error
	IsLiked(ctx context.Context, videoID, userID uuid.UUID) (bool, error)

	// Notifications
	ListNotifications(ctx context.Context, userID uuid.UUID) ([]Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID uuid.UUID) (*Notification, error)

	// Analytics
	DashboardSummary(ctx context.Context, days int) (*DashboardSummary, error)
}
