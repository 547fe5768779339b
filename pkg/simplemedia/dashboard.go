package simplemedia

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// DashboardSummary computes the dashboard over a trailing window of days
// ending today. Every aggregate is read fresh; any failed query fails the
// whole summary.
func (s *service) DashboardSummary(ctx context.Context, days int) (*DashboardSummary, error) {
	started := time.Now()
	defer s.metrics.observeDashboard(started)

	days = NormalizeDays(days)
	start := windowStart(s.now(), s.location, days)

	var (
		totals     DashboardTotals
		likes      int64
		shareRows  []DayCount
		dlRows     []DayCount
		categories []CategoryCount
	)

	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int64, name string, fn func(context.Context) (int64, error)) {
		g.Go(func() error {
			n, err := fn(gctx)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*dst = n
			return nil
		})
	}

	count(&totals.Uploads, "videos", s.repository.CountVideos)
	count(&totals.Users, "users", s.repository.CountUsers)
	count(&totals.Comments, "comments", s.repository.CountActiveComments)
	count(&totals.Shares, "shares", func(ctx context.Context) (int64, error) {
		return s.repository.CountShares(ctx, nil)
	})
	count(&totals.Downloads, "downloads", func(ctx context.Context) (int64, error) {
		return s.repository.CountDownloads(ctx, nil)
	})
	count(&totals.Alerts, "unread notifications", s.repository.CountUnreadNotifications)
	count(&likes, "likes", s.repository.CountLikes)

	g.Go(func() error {
		rows, err := s.repository.DailyCounts(gctx, EventShare, start)
		if err != nil {
			return fmt.Errorf("share trend: %w", err)
		}
		shareRows = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.repository.DailyCounts(gctx, EventDownload, start)
		if err != nil {
			return fmt.Errorf("download trend: %w", err)
		}
		dlRows = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.repository.CategoryDistribution(gctx)
		if err != nil {
			return fmt.Errorf("categories: %w", err)
		}
		categories = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "Dashboard aggregation failed", "days", days, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrAggregationFailed, err)
	}

	window := dayWindow(start, days)
	summary := &DashboardSummary{
		Totals: totals,
		Trends: DashboardTrends{
			Labels:    dayLabels(window),
			Shares:    densify(window, shareRows),
			Downloads: densify(window, dlRows),
		},
		Categories: make([]CategoryPoint, 0, len(categories)),
		Engagement: DashboardEngagement{
			Likes:     likes,
			Shares:    totals.Shares,
			Comments:  totals.Comments,
			Downloads: totals.Downloads,
		},
	}
	for _, c := range categories {
		summary.Categories = append(summary.Categories, CategoryPoint{Label: c.Name, Value: c.Count})
	}
	return summary, nil
}
