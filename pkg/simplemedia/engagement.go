package simplemedia

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Engagement events

func (s *service) ShareVideo(ctx context.Context, req ShareVideoRequest) (*ShareEvent, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if _, err := s.loadVideo(ctx, req.VideoID, "share"); err != nil {
		return nil, err
	}

	event := &ShareEvent{
		ID:        uuid.New(),
		VideoID:   req.VideoID,
		UserID:    req.UserID,
		Channel:   trimmedOrNil(req.Channel),
		CreatedAt: s.timestamp(),
	}
	if err := s.repository.CreateShareEvent(ctx, event); err != nil {
		return nil, &VideoError{VideoID: req.VideoID, Op: "share", Err: err}
	}
	return event, nil
}

func (s *service) CountShares(ctx context.Context, videoID *uuid.UUID) (int64, error) {
	return s.repository.CountShares(ctx, videoID)
}

// RecordDownload logs a download of a published video and hands back the
// media URL to fetch.
func (s *service) RecordDownload(ctx context.Context, videoID, userID uuid.UUID) (*DownloadReceipt, error) {
	video, err := s.loadVideo(ctx, videoID, "download")
	if err != nil {
		return nil, err
	}
	if !video.IsPublished {
		return nil, &VideoError{VideoID: videoID, Op: "download", Err: ErrVideoNotFound}
	}

	event := &DownloadEvent{
		ID:        uuid.New(),
		VideoID:   videoID,
		UserID:    userID,
		CreatedAt: s.timestamp(),
	}
	if err := s.repository.CreateDownloadEvent(ctx, event); err != nil {
		return nil, &VideoError{VideoID: videoID, Op: "download", Err: err}
	}
	return &DownloadReceipt{Event: event, VideoURL: video.VideoURL}, nil
}

func (s *service) CountDownloads(ctx context.Context, videoID *uuid.UUID) (int64, error) {
	return s.repository.CountDownloads(ctx, videoID)
}

func (s *service) ListUserDownloads(ctx context.Context, userID uuid.UUID) ([]UserDownload, error) {
	downloads, err := s.repository.ListUserDownloads(ctx, userID)
	if err != nil {
		return nil, err
	}
	if downloads == nil {
		downloads = []UserDownload{}
	}
	return downloads, nil
}

func (s *service) LikeVideo(ctx context.Context, videoID, userID uuid.UUID) (*Like, error) {
	if _, err := s.loadVideo(ctx, videoID, "like"); err != nil {
		return nil, err
	}

	existing, err := s.repository.GetLike(ctx, userID, videoID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyLiked
	}

	like := &Like{
		ID:        uuid.New(),
		VideoID:   videoID,
		UserID:    userID,
		CreatedAt: s.timestamp(),
	}
	// The store still rejects a concurrent duplicate with ErrAlreadyLiked.
	if err := s.repository.CreateLike(ctx, like); err != nil {
		return nil, err
	}
	return like, nil
}

func (s *service) UnlikeVideo(ctx context.Context, videoID, userID uuid.UUID) error {
	if _, err := s.repository.GetLike(ctx, userID, videoID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrLikeNotFound
		}
		return err
	}
	return s.repository.DeleteLike(ctx, userID, videoID)
}

func (s *service) IsLiked(ctx context.Context, videoID, userID uuid.UUID) (bool, error) {
	if _, err := s.loadVideo(ctx, videoID, "is_liked"); err != nil {
		return false, err
	}
	_, err := s.repository.GetLike(ctx, userID, videoID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Notifications

func (s *service) ListNotifications(ctx context.Context, userID uuid.UUID) ([]Notification, error) {
	notifications, err := s.repository.ListNotifications(ctx, userID)
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []Notification{}
	}
	return notifications, nil
}

// MarkNotificationRead marks a notification owned by userID as read.
// Marking an already read notification is a no-op.
func (s *service) MarkNotificationRead(ctx context.Context, id, userID uuid.UUID) (*Notification, error) {
	existing, err := s.repository.GetNotification(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, ErrNotificationNotFound
	}
	if existing.IsRead {
		return existing, nil
	}
	return s.repository.MarkNotificationRead(ctx, id)
}
