package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/tendant/simple-media/pkg/simplemedia"
)

// Event operations

func (r *Repository) CreateShareEvent(ctx context.Context, event *simplemedia.ShareEvent) error {
	query := `
		INSERT INTO video_share_events (id, video_id, user_id, channel, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.Exec(ctx, query, event.ID, event.VideoID, event.UserID, event.Channel, event.CreatedAt); err != nil {
		return handlePostgresError("create share event", err)
	}
	return nil
}

func (r *Repository) CreateDownloadEvent(ctx context.Context, event *simplemedia.DownloadEvent) error {
	query := `
		INSERT INTO video_download_events (id, video_id, user_id, created_at)
		VALUES ($1, $2, $3, $4)`

	if _, err := r.db.Exec(ctx, query, event.ID, event.VideoID, event.UserID, event.CreatedAt); err != nil {
		return handlePostgresError("create download event", err)
	}
	return nil
}

// ListUserDownloads returns the latest download of each video, newest first
func (r *Repository) ListUserDownloads(ctx context.Context, userID uuid.UUID) ([]simplemedia.UserDownload, error) {
	query := `
		SELECT event_id, downloaded_at, video_id, title, description, thumbnail_url
		FROM (
			SELECT DISTINCT ON (d.video_id)
			       d.id AS event_id, d.created_at AS downloaded_at,
			       v.id AS video_id, v.title, v.description, v.thumbnail_url
			FROM video_download_events d
			JOIN videos v ON v.id = d.video_id
			WHERE d.user_id = $1
			ORDER BY d.video_id, d.created_at DESC
		) latest
		ORDER BY downloaded_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, handlePostgresError("list user downloads", err)
	}
	defer rows.Close()

	downloads := []simplemedia.UserDownload{}
	for rows.Next() {
		var d simplemedia.UserDownload
		if err := rows.Scan(&d.EventID, &d.DownloadedAt, &d.VideoID, &d.Title, &d.Description, &d.ThumbnailURL); err != nil {
			return nil, handlePostgresError("scan user download", err)
		}
		downloads = append(downloads, d)
	}
	return downloads, rows.Err()
}

func (r *Repository) GetLike(ctx context.Context, userID, videoID uuid.UUID) (*simplemedia.Like, error) {
	query := `SELECT id, video_id, user_id, created_at FROM video_likes WHERE user_id = $1 AND video_id = $2`

	var l simplemedia.Like
	err := r.db.QueryRow(ctx, query, userID, videoID).Scan(&l.ID, &l.VideoID, &l.UserID, &l.CreatedAt)
	if err != nil {
		return nil, notFound("get like", err, simplemedia.ErrLikeNotFound)
	}
	return &l, nil
}

func (r *Repository) CreateLike(ctx context.Context, like *simplemedia.Like) error {
	query := `INSERT INTO video_likes (id, video_id, user_id, created_at) VALUES ($1, $2, $3, $4)`

	if _, err := r.db.Exec(ctx, query, like.ID, like.VideoID, like.UserID, like.CreatedAt); err != nil {
		return handlePostgresError("create like", err)
	}
	return nil
}

func (r *Repository) DeleteLike(ctx context.Context, userID, videoID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM video_likes WHERE user_id = $1 AND video_id = $2`, userID, videoID)
	if err != nil {
		return handlePostgresError("delete like", err)
	}
	if tag.RowsAffected() == 0 {
		return simplemedia.ErrLikeNotFound
	}
	return nil
}

// Notification operations

const notificationColumns = `id, user_id, video_id, type, title, body, is_read, created_at`

func (r *Repository) ListNotifications(ctx context.Context, userID uuid.UUID) ([]simplemedia.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications
		WHERE user_id = $1 ORDER BY created_at DESC, id`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, handlePostgresError("list notifications", err)
	}
	defer rows.Close()

	notifications := []simplemedia.Notification{}
	for rows.Next() {
		var n simplemedia.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.VideoID, &n.Type, &n.Title, &n.Body, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, handlePostgresError("scan notification", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *Repository) GetNotification(ctx context.Context, id uuid.UUID) (*simplemedia.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`

	var n simplemedia.Notification
	err := r.db.QueryRow(ctx, query, id).Scan(&n.ID, &n.UserID, &n.VideoID, &n.Type, &n.Title, &n.Body, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return nil, notFound("get notification", err, simplemedia.ErrNotificationNotFound)
	}
	return &n, nil
}

func (r *Repository) MarkNotificationRead(ctx context.Context, id uuid.UUID) (*simplemedia.Notification, error) {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 RETURNING ` + notificationColumns

	var n simplemedia.Notification
	err := r.db.QueryRow(ctx, query, id).Scan(&n.ID, &n.UserID, &n.VideoID, &n.Type, &n.Title, &n.Body, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return nil, notFound("mark notification read", err, simplemedia.ErrNotificationNotFound)
	}
	return &n, nil
}
