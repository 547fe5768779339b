package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tendant/simple-media/pkg/simplemedia"
)

var eventTables = map[simplemedia.EventKind]string{
	simplemedia.EventShare:    "video_share_events",
	simplemedia.EventDownload: "video_download_events",
}

func (r *Repository) count(ctx context.Context, operation, query string, args ...interface{}) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, handlePostgresError(operation, err)
	}
	return n, nil
}

func (r *Repository) CountVideos(ctx context.Context) (int64, error) {
	return r.count(ctx, "count videos", `SELECT COUNT(*) FROM videos`)
}

func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	return r.count(ctx, "count users", `SELECT COUNT(*) FROM users`)
}

func (r *Repository) CountActiveComments(ctx context.Context) (int64, error) {
	return r.count(ctx, "count comments", `SELECT COUNT(*) FROM comments WHERE NOT is_deleted`)
}

func (r *Repository) CountShares(ctx context.Context, videoID *uuid.UUID) (int64, error) {
	return r.count(ctx, "count shares",
		`SELECT COUNT(*) FROM video_share_events WHERE $1::uuid IS NULL OR video_id = $1`, videoID)
}

func (r *Repository) CountDownloads(ctx context.Context, videoID *uuid.UUID) (int64, error) {
	return r.count(ctx, "count downloads",
		`SELECT COUNT(*) FROM video_download_events WHERE $1::uuid IS NULL OR video_id = $1`, videoID)
}

func (r *Repository) CountLikes(ctx context.Context) (int64, error) {
	return r.count(ctx, "count likes", `SELECT COUNT(*) FROM video_likes`)
}

func (r *Repository) CountUnreadNotifications(ctx context.Context) (int64, error) {
	return r.count(ctx, "count unread notifications", `SELECT COUNT(*) FROM notifications WHERE NOT is_read`)
}

// DailyCounts buckets by the database session's calendar day
func (r *Repository) DailyCounts(ctx context.Context, kind simplemedia.EventKind, since time.Time) ([]simplemedia.DayCount, error) {
	table, ok := eventTables[kind]
	if !ok {
		return nil, fmt.Errorf("daily counts: unknown event kind %q", kind)
	}

	query := fmt.Sprintf(`
		SELECT date_trunc('day', created_at)::date AS day, COUNT(*)
		FROM %s
		WHERE created_at >= $1
		GROUP BY day
		ORDER BY day`, table)

	rows, err := r.db.Query(ctx, query, since)
	if err != nil {
		return nil, handlePostgresError("daily counts", err)
	}
	defer rows.Close()

	var counts []simplemedia.DayCount
	for rows.Next() {
		var c simplemedia.DayCount
		if err := rows.Scan(&c.Day, &c.Count); err != nil {
			return nil, handlePostgresError("scan daily count", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *Repository) CategoryDistribution(ctx context.Context) ([]simplemedia.CategoryCount, error) {
	query := `
		SELECT c.name, COUNT(v.id)
		FROM categories c
		LEFT JOIN videos v ON v.category_id = c.id
		GROUP BY c.id, c.name
		ORDER BY c.name, c.id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, handlePostgresError("category distribution", err)
	}
	defer rows.Close()

	counts := []simplemedia.CategoryCount{}
	for rows.Next() {
		var c simplemedia.CategoryCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, handlePostgresError("scan category count", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

var _ simplemedia.Repository = (*Repository)(nil)
