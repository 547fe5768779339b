package simplemedia

import (
	"time"

	"github.com/google/uuid"
)

// AssetKind tags an upload so the gateway can place and serve it correctly.
type AssetKind string

const (
	AssetVideo AssetKind = "video"
	AssetImage AssetKind = "image"
)

// NotificationType is the kind of publishing event a notification announces.
type NotificationType string

const (
	NotificationVideoCreated NotificationType = "video_created"
	NotificationVideoUpdated NotificationType = "video_updated"
)

// Category groups videos. Category CRUD lives outside this package.
type Category struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// Video is a published media asset.
//
// ExternalID and VideoURL are either both set or both empty. StreamingURL and
// Counts are computed on read and never persisted.
type Video struct {
	ID              uuid.UUID     `json:"id"`
	Title           string        `json:"title"`
	Description     *string       `json:"description,omitempty"`
	CategoryID      uuid.UUID     `json:"category_id"`
	ExternalID      string        `json:"external_id"`
	VideoURL        string        `json:"video_url"`
	ThumbnailURL    *string       `json:"thumbnail_url,omitempty"`
	DurationSeconds *int          `json:"duration_seconds,omitempty"`
	IsPublished     bool          `json:"is_published"`
	ViewsCount      int64         `json:"views_count"`
	CreatedBy       uuid.UUID     `json:"created_by"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	TextSections    []TextSection `json:"text_sections"`

	CategoryName string           `json:"category_name,omitempty"`
	StreamingURL *string          `json:"streaming_url,omitempty"`
	Counts       EngagementCounts `json:"counts"`
}

// TextSection is an ordered block of text attached to a video.
type TextSection struct {
	ID        uuid.UUID `json:"id"`
	VideoID   uuid.UUID `json:"video_id"`
	Position  int       `json:"position"`
	Heading   *string   `json:"heading,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EngagementCounts is the typed per-video projection of the event tables.
type EngagementCounts struct {
	Likes     int64 `json:"likes"`
	Shares    int64 `json:"shares"`
	Downloads int64 `json:"downloads"`
}

// ShareEvent records that a user shared a video.
type ShareEvent struct {
	ID        uuid.UUID `json:"id"`
	VideoID   uuid.UUID `json:"video_id"`
	UserID    uuid.UUID `json:"user_id"`
	Channel   *string   `json:"channel,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DownloadEvent records that a user downloaded a video.
type DownloadEvent struct {
	ID        uuid.UUID `json:"id"`
	VideoID   uuid.UUID `json:"video_id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Like is unique per (user, video).
type Like struct {
	ID        uuid.UUID `json:"id"`
	VideoID   uuid.UUID `json:"video_id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Notification is a per-user announcement produced by the fan-out.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	VideoID   *uuid.UUID       `json:"video_id,omitempty"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Body      *string          `json:"body,omitempty"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

// UserDownload is one entry of a user's download history.
type UserDownload struct {
	EventID      uuid.UUID `json:"id"`
	DownloadedAt time.Time `json:"downloaded_at"`
	VideoID      uuid.UUID `json:"video_id"`
	Title        string    `json:"title"`
	Description  *string   `json:"description,omitempty"`
	ThumbnailURL *string   `json:"thumbnail_url,omitempty"`
}

// UploadResult is what the gateway returns for a stored buffer.
type UploadResult struct {
	ExternalID      string
	URL             string
	DurationSeconds *float64
}

// EventKind selects an event table for aggregation.
type EventKind string

const (
	EventShare    EventKind = "share"
	EventDownload EventKind = "download"
)

// DayCount is one sparse row of a per-day grouping query. Day carries the
// calendar date in its own Year/Month/Day fields.
type DayCount struct {
	Day   time.Time
	Count int64
}

// CategoryCount is one row of the category distribution.
type CategoryCount struct {
	Name  string
	Count int64
}

// DashboardSummary is the dashboard document. It is recomputed on every call.
type DashboardSummary struct {
	Totals     DashboardTotals     `json:"totals"`
	Trends     DashboardTrends     `json:"trends"`
	Categories []CategoryPoint     `json:"categories"`
	Engagement DashboardEngagement `json:"engagement"`
}

type DashboardTotals struct {
	Uploads   int64 `json:"uploads"`
	Users     int64 `json:"users"`
	Comments  int64 `json:"comments"`
	Shares    int64 `json:"shares"`
	Downloads int64 `json:"downloads"`
	Alerts    int64 `json:"alerts"`
}

// DashboardTrends holds index-aligned, oldest-first series.
type DashboardTrends struct {
	Labels    []string `json:"labels"`
	Shares    []int64  `json:"shares"`
	Downloads []int64  `json:"downloads"`
}

type CategoryPoint struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

type DashboardEngagement struct {
	Likes     int64 `json:"likes"`
	Shares    int64 `json:"shares"`
	Comments  int64 `json:"comments"`
	Downloads int64 `json:"downloads"`
}
