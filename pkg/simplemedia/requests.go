package simplemedia

import (
	"github.com/google/uuid"
)

// TextSectionInput is one entry of a submitted section list. A nil Position
// is assigned from the entry's place in the list.
type TextSectionInput struct {
	Position *int    `json:"position,omitempty" validate:"omitempty,gt=0"`
	Heading  *string `json:"heading,omitempty"`
	Body     string  `json:"body" validate:"required"`
}

// CreateVideoRequest contains parameters for publishing a video
type CreateVideoRequest struct {
	Title        string             `validate:"required"`
	Description  *string
	CategoryID   uuid.UUID          `validate:"required"`
	IsPublished  *bool
	CreatedBy    uuid.UUID          `validate:"required"`
	VideoFile    []byte             `validate:"required"`
	Thumbnail    []byte
	TextSections []TextSectionInput `validate:"omitempty,dive"`
}

// UpdateVideoRequest contains parameters for a partial video update.
// Nil fields are left untouched. A non-nil TextSections replaces every
// existing section of the video; ReplaceSections with an empty list clears them.
type UpdateVideoRequest struct {
	ID              uuid.UUID `validate:"required"`
	Title           *string
	Description     *string
	CategoryID      *uuid.UUID
	IsPublished     *bool
	VideoFile       []byte
	Thumbnail       []byte
	ReplaceSections bool
	TextSections    []TextSectionInput `validate:"omitempty,dive"`
}

// ListVideosRequest contains parameters for listing videos
type ListVideosRequest struct {
	Page               int
	Limit              int
	CategoryID         *uuid.UUID
	CategorySlug       string
	Search             string
	IncludeUnpublished bool
}

// AddTextSectionRequest contains parameters for appending a section
type AddTextSectionRequest struct {
	VideoID  uuid.UUID `validate:"required"`
	Position *int      `validate:"omitempty,gt=0"`
	Heading  *string
	Body     string `validate:"required"`
}

// UpdateTextSectionRequest contains parameters for a partial section update
type UpdateTextSectionRequest struct {
	VideoID   uuid.UUID `validate:"required"`
	SectionID uuid.UUID `validate:"required"`
	Position  *int      `validate:"omitempty,gt=0"`
	Heading   *string
	Body      *string
}

// ShareVideoRequest contains parameters for recording a share
type ShareVideoRequest struct {
	VideoID uuid.UUID `validate:"required"`
	UserID  uuid.UUID `validate:"required"`
	Channel *string
}

// Page is a slice of videos with its total count
type Page struct {
	Items []*Video `json:"items"`
	Total int64    `json:"total"`
	Page  int      `json:"page"`
	Limit int      `json:"limit"`
}

// DownloadReceipt is returned when a download is recorded
type DownloadReceipt struct {
	Event    *DownloadEvent `json:"event"`
	VideoURL string         `json:"video_url"`
}
