package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tendant/simple-media/pkg/simplemedia"
)

// tx implements simplemedia.Tx against an open pgx transaction
type tx struct {
	db pgx.Tx
}

func (t *tx) LockVideo(ctx context.Context, id uuid.UUID) (*simplemedia.Video, error) {
	query := `
		SELECT id, title, description, category_id,
		       COALESCE(external_id, ''), COALESCE(video_url, ''), thumbnail_url,
		       duration_seconds, is_published, views_count, created_by,
		       created_at, updated_at
		FROM videos
		WHERE id = $1
		FOR UPDATE`

	var v simplemedia.Video
	err := t.db.QueryRow(ctx, query, id).Scan(
		&v.ID, &v.Title, &v.Description, &v.CategoryID,
		&v.ExternalID, &v.VideoURL, &v.ThumbnailURL,
		&v.DurationSeconds, &v.IsPublished, &v.ViewsCount, &v.CreatedBy,
		&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, notFound("lock video", err, simplemedia.ErrVideoNotFound)
	}
	return &v, nil
}

func (t *tx) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return categoryExists(ctx, t.db, id)
}

func (t *tx) CreateVideo(ctx context.Context, video *simplemedia.Video) error {
	query := `
		INSERT INTO videos (
			id, title, description, category_id, external_id, video_url,
			thumbnail_url, duration_seconds, is_published, views_count,
			created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := t.db.Exec(ctx, query,
		video.ID, video.Title, video.Description, video.CategoryID,
		nullIfEmpty(video.ExternalID), nullIfEmpty(video.VideoURL),
		video.ThumbnailURL, video.DurationSeconds, video.IsPublished, video.ViewsCount,
		video.CreatedBy, video.CreatedAt, video.UpdatedAt)
	if err != nil {
		return handlePostgresError("create video", err)
	}
	return nil
}

func (t *tx) UpdateVideo(ctx context.Context, video *simplemedia.Video) error {
	query := `
		UPDATE videos SET
			title = $2, description = $3, category_id = $4, external_id = $5,
			video_url = $6, thumbnail_url = $7, duration_seconds = $8,
			is_published = $9, updated_at = $10
		WHERE id = $1`

	tag, err := t.db.Exec(ctx, query,
		video.ID, video.Title, video.Description, video.CategoryID,
		nullIfEmpty(video.ExternalID), nullIfEmpty(video.VideoURL),
		video.ThumbnailURL, video.DurationSeconds, video.IsPublished, video.UpdatedAt)
	if err != nil {
		return handlePostgresError("update video", err)
	}
	if tag.RowsAffected() == 0 {
		return simplemedia.ErrVideoNotFound
	}
	return nil
}

// DeleteVideo removes the row; text sections follow via ON DELETE CASCADE
func (t *tx) DeleteVideo(ctx context.Context, id uuid.UUID) error {
	tag, err := t.db.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return handlePostgresError("delete video", err)
	}
	if tag.RowsAffected() == 0 {
		return simplemedia.ErrVideoNotFound
	}
	return nil
}

func (t *tx) InsertTextSections(ctx context.Context, sections []simplemedia.TextSection) error {
	if len(sections) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, s := range sections {
		batch.Queue(`
			INSERT INTO video_text_sections (id, video_id, position, heading, body, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			s.ID, s.VideoID, s.Position, s.Heading, s.Body, s.CreatedAt, s.UpdatedAt)
	}

	if err := t.db.SendBatch(ctx, batch).Close(); err != nil {
		return handlePostgresError("insert text sections", err)
	}
	return nil
}

func (t *tx) DeleteTextSections(ctx context.Context, videoID uuid.UUID) error {
	if _, err := t.db.Exec(ctx, `DELETE FROM video_text_sections WHERE video_id = $1`, videoID); err != nil {
		return handlePostgresError("delete text sections", err)
	}
	return nil
}

func (t *tx) MaxSectionPosition(ctx context.Context, videoID uuid.UUID) (int, error) {
	var last int
	err := t.db.QueryRow(ctx,
		`SELECT COALESCE(MAX(position), 0) FROM video_text_sections WHERE video_id = $1`,
		videoID).Scan(&last)
	if err != nil {
		return 0, handlePostgresError("max section position", err)
	}
	return last, nil
}

func (t *tx) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := t.db.Query(ctx, `SELECT id FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, handlePostgresError("list user ids", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, handlePostgresError("scan user ids", err)
	}
	return ids, nil
}

var notificationCopyColumns = []string{"id", "user_id", "video_id", "type", "title", "body", "is_read", "created_at"}

// InsertNotifications writes the whole fan-out with a single COPY
func (t *tx) InsertNotifications(ctx context.Context, notifications []simplemedia.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	_, err := t.db.CopyFrom(ctx,
		pgx.Identifier{"notifications"},
		notificationCopyColumns,
		pgx.CopyFromSlice(len(notifications), func(i int) ([]any, error) {
			n := notifications[i]
			return []any{n.ID, n.UserID, n.VideoID, string(n.Type), n.Title, n.Body, n.IsRead, n.CreatedAt}, nil
		}))
	if err != nil {
		return handlePostgresError("insert notifications", err)
	}
	return nil
}
