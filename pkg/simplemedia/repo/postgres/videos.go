package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tendant/simple-media/pkg/simplemedia"
)

const videoColumns = `
	v.id, v.title, v.description, v.category_id,
	COALESCE(v.external_id, ''), COALESCE(v.video_url, ''), v.thumbnail_url,
	v.duration_seconds, v.is_published, v.views_count, v.created_by,
	v.created_at, v.updated_at, COALESCE(c.name, '')`

const videoFrom = `
	FROM videos v
	LEFT JOIN categories c ON c.id = v.category_id`

func scanVideo(row pgx.Row) (*simplemedia.Video, error) {
	var v simplemedia.Video
	err := row.Scan(
		&v.ID, &v.Title, &v.Description, &v.CategoryID,
		&v.ExternalID, &v.VideoURL, &v.ThumbnailURL,
		&v.DurationSeconds, &v.IsPublished, &v.ViewsCount, &v.CreatedBy,
		&v.CreatedAt, &v.UpdatedAt, &v.CategoryName)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Video operations

func (r *Repository) GetVideo(ctx context.Context, id uuid.UUID) (*simplemedia.Video, error) {
	query := `SELECT ` + videoColumns + videoFrom + ` WHERE v.id = $1`

	video, err := scanVideo(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound("get video", err, simplemedia.ErrVideoNotFound)
	}

	sections, err := listTextSections(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	video.TextSections = sections
	return video, nil
}

func (r *Repository) ListVideos(ctx context.Context, params simplemedia.ListVideosParams) ([]*simplemedia.Video, int64, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !params.IncludeUnpublished {
		conds = append(conds, "v.is_published")
	}
	if params.CategoryID != nil {
		conds = append(conds, "v.category_id = "+arg(*params.CategoryID))
	}
	if params.CategorySlug != "" {
		conds = append(conds, "c.slug = "+arg(params.CategorySlug))
	}
	if params.Search != "" {
		p := arg(params.Search)
		conds = append(conds, fmt.Sprintf("(v.title ILIKE '%%' || %s || '%%' OR v.description ILIKE '%%' || %s || '%%')", p, p))
	}
	if params.LikedBy != nil {
		conds = append(conds, "EXISTS (SELECT 1 FROM video_likes l WHERE l.video_id = v.id AND l.user_id = "+arg(*params.LikedBy)+")")
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+videoFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, handlePostgresError("count videos", err)
	}

	query := `SELECT ` + videoColumns + videoFrom + where +
		` ORDER BY v.created_at DESC, v.id LIMIT ` + arg(params.Limit) + ` OFFSET ` + arg(params.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, handlePostgresError("list videos", err)
	}
	defer rows.Close()

	var videos []*simplemedia.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, 0, handlePostgresError("scan video", err)
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, handlePostgresError("list videos", err)
	}
	return videos, total, nil
}

func (r *Repository) IncrementViews(ctx context.Context, id uuid.UUID) (*simplemedia.Video, error) {
	tag, err := r.db.Exec(ctx, `UPDATE videos SET views_count = views_count + 1 WHERE id = $1`, id)
	if err != nil {
		return nil, handlePostgresError("increment views", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, simplemedia.ErrVideoNotFound
	}
	return r.GetVideo(ctx, id)
}

func (r *Repository) EngagementCounts(ctx context.Context, videoIDs []uuid.UUID) (map[uuid.UUID]simplemedia.EngagementCounts, error) {
	counts := make(map[uuid.UUID]simplemedia.EngagementCounts, len(videoIDs))
	if len(videoIDs) == 0 {
		return counts, nil
	}

	query := `
		SELECT ids.id,
		       (SELECT COUNT(*) FROM video_likes l WHERE l.video_id = ids.id),
		       (SELECT COUNT(*) FROM video_share_events s WHERE s.video_id = ids.id),
		       (SELECT COUNT(*) FROM video_download_events d WHERE d.video_id = ids.id)
		FROM unnest($1::uuid[]) AS ids(id)`

	rows, err := r.db.Query(ctx, query, videoIDs)
	if err != nil {
		return nil, handlePostgresError("engagement counts", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id uuid.UUID
			c  simplemedia.EngagementCounts
		)
		if err := rows.Scan(&id, &c.Likes, &c.Shares, &c.Downloads); err != nil {
			return nil, handlePostgresError("scan engagement counts", err)
		}
		counts[id] = c
	}
	return counts, rows.Err()
}

// Text section operations

const sectionColumns = `id, video_id, position, heading, body, created_at, updated_at`

func scanSection(row pgx.Row) (*simplemedia.TextSection, error) {
	var s simplemedia.TextSection
	if err := row.Scan(&s.ID, &s.VideoID, &s.Position, &s.Heading, &s.Body, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func listTextSections(ctx context.Context, db DBTX, videoID uuid.UUID) ([]simplemedia.TextSection, error) {
	query := `SELECT ` + sectionColumns + ` FROM video_text_sections
		WHERE video_id = $1 ORDER BY position ASC, created_at ASC`

	rows, err := db.Query(ctx, query, videoID)
	if err != nil {
		return nil, handlePostgresError("list text sections", err)
	}
	defer rows.Close()

	sections := []simplemedia.TextSection{}
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, handlePostgresError("scan text section", err)
		}
		sections = append(sections, *s)
	}
	return sections, rows.Err()
}

func (r *Repository) ListTextSections(ctx context.Context, videoID uuid.UUID) ([]simplemedia.TextSection, error) {
	return listTextSections(ctx, r.db, videoID)
}

func (r *Repository) GetTextSection(ctx context.Context, id uuid.UUID) (*simplemedia.TextSection, error) {
	query := `SELECT ` + sectionColumns + ` FROM video_text_sections WHERE id = $1`

	s, err := scanSection(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound("get text section", err, simplemedia.ErrSectionNotFound)
	}
	return s, nil
}

func (r *Repository) UpdateTextSection(ctx context.Context, section *simplemedia.TextSection) error {
	query := `
		UPDATE video_text_sections SET
			position = $2, heading = $3, body = $4, updated_at = $5
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, section.ID, section.Position, section.Heading, section.Body, section.UpdatedAt)
	if err != nil {
		return handlePostgresError("update text section", err)
	}
	if tag.RowsAffected() == 0 {
		return simplemedia.ErrSectionNotFound
	}
	return nil
}

func (r *Repository) DeleteTextSection(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM video_text_sections WHERE id = $1`, id)
	if err != nil {
		return handlePostgresError("delete text section", err)
	}
	if tag.RowsAffected() == 0 {
		return simplemedia.ErrSectionNotFound
	}
	return nil
}

func (r *Repository) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return categoryExists(ctx, r.db, id)
}

func categoryExists(ctx context.Context, db DBTX, id uuid.UUID) (bool, error) {
	var exists bool
	if err := db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, handlePostgresError("category exists", err)
	}
	return exists, nil
}
