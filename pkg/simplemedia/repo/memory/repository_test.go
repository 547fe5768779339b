package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-media/pkg/simplemedia"
	"github.com/tendant/simple-media/pkg/simplemedia/repo/memory"
)

func seedVideo(t *testing.T, repo *memory.Repository, category uuid.UUID, title string, published bool, created time.Time) *simplemedia.Video {
	t.Helper()
	v := &simplemedia.Video{
		ID:          uuid.New(),
		Title:       title,
		CategoryID:  category,
		ExternalID:  "videos/" + title,
		VideoURL:    "https://media.test/videos/" + title,
		IsPublished: published,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	err := repo.WithTx(context.Background(), func(ctx context.Context, tx simplemedia.Tx) error {
		return tx.CreateVideo(ctx, v)
	})
	require.NoError(t, err)
	return v
}

func TestWithTx_RollbackDiscardsEveryWrite(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	catID := uuid.New()
	repo.AddCategory(simplemedia.Category{ID: catID, Name: "News", Slug: "news"})
	repo.AddUser(uuid.New())

	videoID := uuid.New()
	boom := errors.New("boom")
	err := repo.WithTx(ctx, func(ctx context.Context, tx simplemedia.Tx) error {
		require.NoError(t, tx.CreateVideo(ctx, &simplemedia.Video{ID: videoID, Title: "t", CategoryID: catID}))
		require.NoError(t, tx.InsertTextSections(ctx, []simplemedia.TextSection{{ID: uuid.New(), VideoID: videoID, Position: 1, Body: "a"}}))
		require.NoError(t, tx.InsertNotifications(ctx, []simplemedia.Notification{{ID: uuid.New(), Title: "x"}}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repo.GetVideo(ctx, videoID)
	assert.ErrorIs(t, err, simplemedia.ErrNotFound)
	sections, err := repo.ListTextSections(ctx, videoID)
	require.NoError(t, err)
	assert.Empty(t, sections)
	unread, err := repo.CountUnreadNotifications(ctx)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestWithTx_WritesOutsideTxSurviveCommit(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	catID := uuid.New()
	repo.AddCategory(simplemedia.Category{ID: catID, Name: "News", Slug: "news"})
	v := seedVideo(t, repo, catID, "a", true, time.Now())

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error)
	go func() {
		done <- repo.WithTx(ctx, func(ctx context.Context, tx simplemedia.Tx) error {
			close(started)
			<-release
			_, err := tx.LockVideo(ctx, v.ID)
			return err
		})
	}()

	<-started
	shareDone := make(chan error)
	go func() {
		shareDone <- repo.CreateShareEvent(ctx, &simplemedia.ShareEvent{ID: uuid.New(), VideoID: v.ID, CreatedAt: time.Now()})
	}()
	close(release)
	require.NoError(t, <-done)
	require.NoError(t, <-shareDone)

	n, err := repo.CountShares(ctx, &v.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestDeleteVideo_CascadesSectionsButKeepsEvents(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	catID := uuid.New()
	repo.AddCategory(simplemedia.Category{ID: catID, Name: "News", Slug: "news"})
	v := seedVideo(t, repo, catID, "a", true, time.Now())

	require.NoError(t, repo.WithTx(ctx, func(ctx context.Context, tx simplemedia.Tx) error {
		return tx.InsertTextSections(ctx, []simplemedia.TextSection{{ID: uuid.New(), VideoID: v.ID, Position: 1, Body: "a"}})
	}))
	require.NoError(t, repo.CreateDownloadEvent(ctx, &simplemedia.DownloadEvent{ID: uuid.New(), VideoID: v.ID, CreatedAt: time.Now()}))

	require.NoError(t, repo.WithTx(ctx, func(ctx context.Context, tx simplemedia.Tx) error {
		return tx.DeleteVideo(ctx, v.ID)
	}))

	sections, err := repo.ListTextSections(ctx, v.ID)
	require.NoError(t, err)
	assert.Empty(t, sections)

	downloads, err := repo.CountDownloads(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), downloads)
}

func TestMaxSectionPosition(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	catID := uuid.New()
	repo.AddCategory(simplemedia.Category{ID: catID, Name: "News"})
	v := seedVideo(t, repo, catID, "a", true, time.Now())

	require.NoError(t, repo.WithTx(ctx, func(ctx context.Context, tx simplemedia.Tx) error {
		last, err := tx.MaxSectionPosition(ctx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, last)

		require.NoError(t, tx.InsertTextSections(ctx, []simplemedia.TextSection{
			{ID: uuid.New(), VideoID: v.ID, Position: 4, Body: "d"},
			{ID: uuid.New(), VideoID: v.ID, Position: 2, Body: "b"},
		}))
		last, err = tx.MaxSectionPosition(ctx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, last)
		return nil
	}))

	sections, err := repo.ListTextSections(ctx, v.ID)
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, 2, sections[0].Position)
	assert.Equal(t, 4, sections[1].Position)
}

func TestListVideos_FiltersAndPages(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	news, sports := uuid.New(), uuid.New()
	repo.AddCategory(simplemedia.Category{ID: news, Name: "News", Slug: "news"})
	repo.AddCategory(simplemedia.Category{ID: sports, Name: "Sports", Slug: "sports"})

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	oldest := seedVideo(t, repo, news, "morning-report", true, base)
	middle := seedVideo(t, repo, sports, "match", true, base.Add(time.Hour))
	seedVideo(t, repo, news, "draft", false, base.Add(2*time.Hour))

	items, total, err := repo.ListVideos(ctx, simplemedia.ListVideosParams{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)
	assert.Equal(t, middle.ID, items[0].ID)
	assert.Equal(t, "Sports", items[0].CategoryName)

	_, total, err = repo.ListVideos(ctx, simplemedia.ListVideosParams{Limit: 10, IncludeUnpublished: true})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	items, _, err = repo.ListVideos(ctx, simplemedia.ListVideosParams{Limit: 10, CategorySlug: "news"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, oldest.ID, items[0].ID)

	items, _, err = repo.ListVideos(ctx, simplemedia.ListVideosParams{Limit: 10, Search: "MATCH"})
	require.NoError(t, err)
	require.Len(t, items, 1)

	items, total, err = repo.ListVideos(ctx, simplemedia.ListVideosParams{Offset: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 1)
	assert.Equal(t, oldest.ID, items[0].ID)

	user := uuid.New()
	require.NoError(t, repo.CreateLike(ctx, &simplemedia.Like{ID: uuid.New(), UserID: user, VideoID: oldest.ID}))
	items, _, err = repo.ListVideos(ctx, simplemedia.ListVideosParams{Limit: 10, LikedBy: &user})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, oldest.ID, items[0].ID)
}

func TestLikes_AreUniquePerUserAndVideo(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	user, video := uuid.New(), uuid.New()

	require.NoError(t, repo.CreateLike(ctx, &simplemedia.Like{ID: uuid.New(), UserID: user, VideoID: video}))
	err := repo.CreateLike(ctx, &simplemedia.Like{ID: uuid.New(), UserID: user, VideoID: video})
	assert.ErrorIs(t, err, simplemedia.ErrAlreadyLiked)

	n, err := repo.CountLikes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, repo.DeleteLike(ctx, user, video))
	assert.ErrorIs(t, repo.DeleteLike(ctx, user, video), simplemedia.ErrNotFound)
}

func TestDailyCounts_BucketsByLocalDay(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	loc := time.FixedZone("UTC+9", 9*3600)
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, loc)

	stamps := []time.Time{
		time.Date(2026, 2, 28, 14, 59, 0, 0, time.UTC), // Feb 28 23:59 local, before the window
		time.Date(2026, 2, 28, 15, 0, 0, 0, time.UTC),  // Mar 1 00:00 local
		time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),   // Mar 1 19:00 local
		time.Date(2026, 3, 1, 16, 0, 0, 0, time.UTC),   // Mar 2 01:00 local
	}
	for _, ts := range stamps {
		require.NoError(t, repo.CreateShareEvent(ctx, &simplemedia.ShareEvent{ID: uuid.New(), CreatedAt: ts}))
	}

	rows, err := repo.DailyCounts(ctx, simplemedia.EventShare, since)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2026-03-01", rows[0].Day.Format("2006-01-02"))
	assert.Equal(t, int64(2), rows[0].Count)
	assert.Equal(t, "2026-03-02", rows[1].Day.Format("2006-01-02"))
	assert.Equal(t, int64(1), rows[1].Count)

	rows, err = repo.DailyCounts(ctx, simplemedia.EventDownload, since)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCategoryDistribution_OrderedByName(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	zeta, alpha, empty := uuid.New(), uuid.New(), uuid.New()
	repo.AddCategory(simplemedia.Category{ID: zeta, Name: "Zeta"})
	repo.AddCategory(simplemedia.Category{ID: alpha, Name: "Alpha"})
	repo.AddCategory(simplemedia.Category{ID: empty, Name: "Middle"})

	now := time.Now()
	seedVideo(t, repo, zeta, "z1", true, now)
	seedVideo(t, repo, zeta, "z2", false, now)
	seedVideo(t, repo, alpha, "a1", true, now)

	rows, err := repo.CategoryDistribution(ctx)
	require.NoError(t, err)
	assert.Equal(t, []simplemedia.CategoryCount{
		{Name: "Alpha", Count: 1},
		{Name: "Middle", Count: 0},
		{Name: "Zeta", Count: 2},
	}, rows)
}

func TestListUserDownloads_NewestPerVideo(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	catID := uuid.New()
	repo.AddCategory(simplemedia.Category{ID: catID, Name: "News"})
	now := time.Now()
	a := seedVideo(t, repo, catID, "a", true, now)
	b := seedVideo(t, repo, catID, "b", true, now)
	user := uuid.New()

	first := &simplemedia.DownloadEvent{ID: uuid.New(), VideoID: a.ID, UserID: user, CreatedAt: now.Add(-3 * time.Hour)}
	second := &simplemedia.DownloadEvent{ID: uuid.New(), VideoID: b.ID, UserID: user, CreatedAt: now.Add(-2 * time.Hour)}
	third := &simplemedia.DownloadEvent{ID: uuid.New(), VideoID: a.ID, UserID: user, CreatedAt: now.Add(-time.Hour)}
	other := &simplemedia.DownloadEvent{ID: uuid.New(), VideoID: b.ID, UserID: uuid.New(), CreatedAt: now}
	for _, e := range []*simplemedia.DownloadEvent{first, second, third, other} {
		require.NoError(t, repo.CreateDownloadEvent(ctx, e))
	}

	downloads, err := repo.ListUserDownloads(ctx, user)
	require.NoError(t, err)
	require.Len(t, downloads, 2)
	assert.Equal(t, third.ID, downloads[0].EventID)
	assert.Equal(t, a.ID, downloads[0].VideoID)
	assert.Equal(t, second.ID, downloads[1].EventID)
}

func TestNotifications(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	user := uuid.New()
	older := simplemedia.Notification{ID: uuid.New(), UserID: user, Title: "older", CreatedAt: time.Now().Add(-time.Minute)}
	newer := simplemedia.Notification{ID: uuid.New(), UserID: user, Title: "newer", CreatedAt: time.Now()}

	require.NoError(t, repo.WithTx(ctx, func(ctx context.Context, tx simplemedia.Tx) error {
		return tx.InsertNotifications(ctx, []simplemedia.Notification{older, newer})
	}))

	list, err := repo.ListNotifications(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "newer", list[0].Title)

	marked, err := repo.MarkNotificationRead(ctx, older.ID)
	require.NoError(t, err)
	assert.True(t, marked.IsRead)

	unread, err := repo.CountUnreadNotifications(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	_, err = repo.MarkNotificationRead(ctx, uuid.New())
	assert.ErrorIs(t, err, simplemedia.ErrNotFound)
}
