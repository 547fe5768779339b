package simplemedia_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-media/pkg/simplemedia"
)

func day(d, hour int) time.Time {
	return time.Date(2024, 3, d, hour, 0, 0, 0, time.UTC)
}

func TestDashboardSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.repo.AddCategory(simplemedia.Category{ID: uuid.New(), Name: "Zeta", Slug: "zeta"})
	alpha := uuid.New()
	f.repo.AddCategory(simplemedia.Category{ID: alpha, Name: "Alpha", Slug: "alpha"})
	users := []uuid.UUID{uuid.New(), uuid.New()}
	for _, u := range users {
		f.repo.AddUser(u)
	}

	f.clock.Set(day(1, 9))
	video := f.createVideo(t, "Tracked")
	_, err := f.svc.CreateVideo(ctx, simplemedia.CreateVideoRequest{
		Title: "Alpha one", CategoryID: alpha, CreatedBy: f.author, VideoFile: []byte("a"),
	})
	require.NoError(t, err)

	f.repo.AddComment(video.ID, false)
	f.repo.AddComment(video.ID, false)
	f.repo.AddComment(video.ID, true)

	share := func(at time.Time, n int) {
		f.clock.Set(at)
		for i := 0; i < n; i++ {
			_, err := f.svc.ShareVideo(ctx, simplemedia.ShareVideoRequest{VideoID: video.ID, UserID: users[0]})
			require.NoError(t, err)
		}
	}
	share(day(1, 10), 4) // before the window
	share(day(7, 0), 3)
	share(day(7, 23), 2)
	share(day(9, 15), 2)

	f.clock.Set(day(10, 8))
	_, err = f.svc.RecordDownload(ctx, video.ID, users[1])
	require.NoError(t, err)
	_, err = f.svc.LikeVideo(ctx, video.ID, users[1])
	require.NoError(t, err)

	notes, err := f.svc.ListNotifications(ctx, users[0])
	require.NoError(t, err)
	_, err = f.svc.MarkNotificationRead(ctx, notes[0].ID, users[0])
	require.NoError(t, err)

	f.clock.Set(day(10, 12))
	summary, err := f.svc.DashboardSummary(ctx, 5)
	require.NoError(t, err)

	assert.Equal(t, simplemedia.DashboardTotals{
		Uploads:   2,
		Users:     2,
		Comments:  2,
		Shares:    11,
		Downloads: 1,
		Alerts:    3,
	}, summary.Totals)

	assert.Equal(t, []string{"Mar 6", "Mar 7", "Mar 8", "Mar 9", "Mar 10"}, summary.Trends.Labels)
	assert.Equal(t, []int64{0, 5, 0, 2, 0}, summary.Trends.Shares)
	assert.Equal(t, []int64{0, 0, 0, 0, 1}, summary.Trends.Downloads)

	assert.Equal(t, []simplemedia.CategoryPoint{
		{Label: "Alpha", Value: 1},
		{Label: "Music", Value: 1},
		{Label: "Zeta", Value: 0},
	}, summary.Categories)

	assert.Equal(t, simplemedia.DashboardEngagement{
		Likes:     1,
		Shares:    11,
		Comments:  2,
		Downloads: 1,
	}, summary.Engagement)

	again, err := f.svc.DashboardSummary(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, summary, again)

}

func TestDashboardSummary_DefaultWindow(t *testing.T) {
	f := newFixture(t)

	for _, days := range []int{0, -4} {
		summary, err := f.svc.DashboardSummary(context.Background(), days)
		require.NoError(t, err)
		assert.Len(t, summary.Trends.Labels, simplemedia.DefaultDashboardDays)
		assert.Len(t, summary.Trends.Shares, simplemedia.DefaultDashboardDays)
		assert.Len(t, summary.Trends.Downloads, simplemedia.DefaultDashboardDays)
		assert.Equal(t, "Mar 10", summary.Trends.Labels[simplemedia.DefaultDashboardDays-1])
	}
}

func TestDashboardSummary_OversizedWindowIsCapped(t *testing.T) {
	f := newFixture(t)

	for _, days := range []int{simplemedia.MaxDashboardDays + 1, 1 << 45} {
		summary, err := f.svc.DashboardSummary(context.Background(), days)
		require.NoError(t, err)
		assert.Len(t, summary.Trends.Labels, simplemedia.MaxDashboardDays)
		assert.Len(t, summary.Trends.Shares, simplemedia.MaxDashboardDays)
		assert.Len(t, summary.Trends.Downloads, simplemedia.MaxDashboardDays)
		assert.Equal(t, "Mar 10", summary.Trends.Labels[simplemedia.MaxDashboardDays-1])
	}
}

func TestDashboardSummary_EmptyStore(t *testing.T) {
	f := newFixture(t)

	summary, err := f.svc.DashboardSummary(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, simplemedia.DashboardTotals{}, summary.Totals)
	assert.Equal(t, []int64{0, 0, 0}, summary.Trends.Shares)
	assert.Equal(t, []simplemedia.CategoryPoint{{Label: "Music", Value: 0}}, summary.Categories)
}

func TestDashboardSummary_AggregationFailure(t *testing.T) {
	f := newFixture(t)
	f.repo.failCountUsers = errInjected

	summary, err := f.svc.DashboardSummary(context.Background(), 5)
	require.Error(t, err)
	assert.Nil(t, summary)
	assert.ErrorIs(t, err, simplemedia.ErrAggregationFailed)
	assert.Contains(t, err.Error(), "users")
}

func TestDashboardSummary_LocalDays(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	f := newFixture(t)
	svc, err := simplemedia.New(
		simplemedia.WithRepository(f.repo),
		simplemedia.WithGateway(f.gateway),
		simplemedia.WithClock(f.clock.Now),
		simplemedia.WithLocation(tokyo),
	)
	require.NoError(t, err)

	video := f.createVideo(t, "Late night")
	// 20:00 UTC on Mar 9 is already Mar 10 in Tokyo.
	f.clock.Set(time.Date(2024, 3, 9, 20, 0, 0, 0, time.UTC))
	_, err = svc.ShareVideo(context.Background(), simplemedia.ShareVideoRequest{VideoID: video.ID, UserID: uuid.New()})
	require.NoError(t, err)

	summary, err := svc.DashboardSummary(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mar 9", "Mar 10"}, summary.Trends.Labels)
	assert.Equal(t, []int64{0, 1}, summary.Trends.Shares)
}
