package simplemedia

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Publishing pipeline

func (s *service) CreateVideo(ctx context.Context, req CreateVideoRequest) (*Video, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if len(req.VideoFile) == 0 {
		return nil, invalid("video_file", "is required")
	}
	sections, err := normalizeSections(req.TextSections)
	if err != nil {
		return nil, err
	}

	// Checked again inside the transaction; this one avoids a wasted upload.
	ok, err := s.repository.CategoryExists(ctx, req.CategoryID)
	if err != nil {
		return nil, &VideoError{Op: "create", Err: err}
	}
	if !ok {
		return nil, &VideoError{Op: "create", Err: ErrCategoryNotFound}
	}

	// Nothing touches the database until the primary media is stored.
	primary, err := s.media.UploadPrimary(ctx, req.VideoFile)
	if err != nil {
		return nil, &VideoError{Op: "create", Err: err}
	}

	thumbnailURL := s.uploadThumbnail(ctx, req.Thumbnail)
	if thumbnailURL == nil {
		thumbnailURL = s.media.DeriveThumbnailURL(primary.ExternalID)
	}

	published := true
	if req.IsPublished != nil {
		published = *req.IsPublished
	}

	now := s.timestamp()
	video := &Video{
		ID:              uuid.New(),
		Title:           req.Title,
		Description:     trimmedOrNil(req.Description),
		CategoryID:      req.CategoryID,
		ExternalID:      primary.ExternalID,
		VideoURL:        primary.URL,
		ThumbnailURL:    thumbnailURL,
		DurationSeconds: durationSeconds(primary.DurationSeconds),
		IsPublished:     published,
		CreatedBy:       req.CreatedBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	stampSections(sections, video.ID, now)

	var notified int
	err = s.repository.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		if err := requireCategory(ctx, tx, video.CategoryID); err != nil {
			return err
		}
		if err := tx.CreateVideo(ctx, video); err != nil {
			return err
		}
		if len(sections) > 0 {
			if err := tx.InsertTextSections(ctx, sections); err != nil {
				return err
			}
		}
		n, err := fanOutNotifications(ctx, tx, video, NotificationVideoCreated, now)
		if err != nil {
			return err
		}
		notified = n
		return nil
	})
	if err != nil {
		// The uploaded media stays behind as an orphan.
		s.logger.ErrorContext(ctx, "Video create rolled back", "video_id", video.ID, "external_id", primary.ExternalID, "error", err)
		return nil, &VideoError{VideoID: video.ID, Op: "create", Err: err}
	}

	s.metrics.publish("create")
	s.metrics.notifications(notified)
	s.logger.InfoContext(ctx, "Video created", "video_id", video.ID, "notifications", notified)

	video.TextSections = sortedSections(sections)
	result := s.reload(ctx, video)
	if err := s.eventSink.VideoPublished(ctx, result); err != nil {
		s.logger.WarnContext(ctx, "Event sink failed", "event", "video_published", "video_id", video.ID, "error", err)
	}
	return result, nil
}

func (s *service) UpdateVideo(ctx context.Context, req UpdateVideoRequest) (*Video, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	var title *string
	if req.Title != nil {
		t := strings.TrimSpace(*req.Title)
		if t == "" {
			return nil, invalid("title", "must not be empty")
		}
		title = &t
	}
	// A supplied list always replaces; the flag alone clears.
	replace := req.ReplaceSections || req.TextSections != nil
	var sections []TextSection
	if replace {
		inputs := req.TextSections
		if inputs == nil {
			inputs = []TextSectionInput{}
		}
		var err error
		if sections, err = normalizeSections(inputs); err != nil {
			return nil, err
		}
	}

	// Fail on a missing video before spending an upload.
	if _, err := s.loadVideo(ctx, req.ID, "update"); err != nil {
		return nil, err
	}

	var primary *UploadResult
	if len(req.VideoFile) > 0 {
		var err error
		if primary, err = s.media.UploadPrimary(ctx, req.VideoFile); err != nil {
			return nil, &VideoError{VideoID: req.ID, Op: "update", Err: err}
		}
	}
	thumbnailURL := s.uploadThumbnail(ctx, req.Thumbnail)

	now := s.timestamp()
	var (
		updated          *Video
		previousExternal string
		notified         int
	)
	err := s.repository.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		current, err := tx.LockVideo(ctx, req.ID)
		if err != nil {
			return err
		}

		if title != nil {
			current.Title = *title
		}
		if req.Description != nil {
			current.Description = trimmedOrNil(req.Description)
		}
		if req.CategoryID != nil {
			if err := requireCategory(ctx, tx, *req.CategoryID); err != nil {
				return err
			}
			current.CategoryID = *req.CategoryID
		}
		if req.IsPublished != nil {
			current.IsPublished = *req.IsPublished
		}
		if primary != nil {
			previousExternal = current.ExternalID
			if thumbnailURL == nil && s.isDerivedThumbnail(current) {
				current.ThumbnailURL = s.media.DeriveThumbnailURL(primary.ExternalID)
			}
			current.ExternalID = primary.ExternalID
			current.VideoURL = primary.URL
			if primary.DurationSeconds != nil {
				current.DurationSeconds = durationSeconds(primary.DurationSeconds)
			}
		}
		if thumbnailURL != nil {
			current.ThumbnailURL = thumbnailURL
		}
		current.UpdatedAt = now

		if err := tx.UpdateVideo(ctx, current); err != nil {
			return err
		}

		if replace {
			if err := tx.DeleteTextSections(ctx, current.ID); err != nil {
				return err
			}
			stampSections(sections, current.ID, now)
			if len(sections) > 0 {
				if err := tx.InsertTextSections(ctx, sections); err != nil {
					return err
				}
			}
		}

		n, err := fanOutNotifications(ctx, tx, current, NotificationVideoUpdated, now)
		if err != nil {
			return err
		}
		notified = n
		updated = current
		return nil
	})
	if err != nil {
		if primary != nil {
			s.logger.ErrorContext(ctx, "Video update rolled back", "video_id", req.ID, "external_id", primary.ExternalID, "error", err)
		}
		return nil, &VideoError{VideoID: req.ID, Op: "update", Err: err}
	}

	s.metrics.publish("update")
	s.metrics.notifications(notified)
	s.logger.InfoContext(ctx, "Video updated", "video_id", updated.ID, "notifications", notified)

	// The old object is no longer referenced once the commit has landed.
	if primary != nil && previousExternal != primary.ExternalID {
		s.media.DeleteRemote(ctx, previousExternal)
	}

	if replace {
		updated.TextSections = sortedSections(sections)
	}
	result := s.reload(ctx, updated)
	if err := s.eventSink.VideoUpdated(ctx, result); err != nil {
		s.logger.WarnContext(ctx, "Event sink failed", "event", "video_updated", "video_id", updated.ID, "error", err)
	}
	return result, nil
}

func (s *service) DeleteVideo(ctx context.Context, id uuid.UUID) (*Video, error) {
	if _, err := s.loadVideo(ctx, id, "delete"); err != nil {
		return nil, err
	}

	var deleted *Video
	err := s.repository.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		current, err := tx.LockVideo(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.DeleteVideo(ctx, id); err != nil {
			return err
		}
		deleted = current
		return nil
	})
	if err != nil {
		return nil, &VideoError{VideoID: id, Op: "delete", Err: err}
	}

	s.metrics.publish("delete")
	cleanup := s.media.DeleteRemote(ctx, deleted.ExternalID)
	s.logger.InfoContext(ctx, "Video deleted", "video_id", id, "remote_cleanup_ok", cleanup.OK())

	if err := s.eventSink.VideoDeleted(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "Event sink failed", "event", "video_deleted", "video_id", id, "error", err)
	}
	return deleted, nil
}

// uploadThumbnail stores an optional thumbnail. A failed upload is logged
// and yields nil.
func (s *service) uploadThumbnail(ctx context.Context, data []byte) *string {
	if len(data) == 0 {
		return nil
	}
	result, err := s.media.UploadThumbnail(ctx, data)
	if err != nil {
		s.logger.WarnContext(ctx, "Thumbnail upload failed, continuing without it", "error", err)
		return nil
	}
	url := result.URL
	return &url
}

// isDerivedThumbnail reports whether the video's thumbnail is absent or was
// computed from its current media rather than uploaded.
func (s *service) isDerivedThumbnail(v *Video) bool {
	if v.ThumbnailURL == nil {
		return true
	}
	derived := s.media.DeriveThumbnailURL(v.ExternalID)
	return derived != nil && *derived == *v.ThumbnailURL
}

// reload reads the committed video back with its category and sections.
// A failed read falls back to the in-memory copy.
func (s *service) reload(ctx context.Context, video *Video) *Video {
	fresh, err := s.repository.GetVideo(ctx, video.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to reload video after commit", "video_id", video.ID, "error", err)
		fresh = video
	}
	if err := s.decorate(ctx, fresh); err != nil {
		s.logger.WarnContext(ctx, "Failed to decorate video", "video_id", video.ID, "error", err)
		fresh.StreamingURL = s.media.DeriveStreamingURL(fresh.ExternalID)
	}
	return fresh
}

func requireCategory(ctx context.Context, tx Tx, id uuid.UUID) error {
	ok, err := tx.CategoryExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCategoryNotFound
	}
	return nil
}

func stampSections(sections []TextSection, videoID uuid.UUID, now time.Time) {
	for i := range sections {
		sections[i].ID = uuid.New()
		sections[i].VideoID = videoID
		sections[i].CreatedAt = now
		sections[i].UpdatedAt = now
	}
}

func sortedSections(sections []TextSection) []TextSection {
	out := make([]TextSection, len(sections))
	copy(out, sections)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Position < out[j].Position
	})
	return out
}
