package simplemedia

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 50
)

// service implements the Service interface
type service struct {
	repository Repository
	media      *MediaOrchestrator
	eventSink  EventSink
	logger     *slog.Logger
	metrics    *Metrics
	now        func() time.Time
	location   *time.Location

	gateway     Gateway
	urlStrategy URLStrategy
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithGateway sets the object storage gateway
func WithGateway(gateway Gateway) Option {
	return func(s *service) {
		s.gateway = gateway
	}
}

// WithURLStrategy sets how thumbnail and streaming URLs are derived
func WithURLStrategy(strategy URLStrategy) Option {
	return func(s *service) {
		s.urlStrategy = strategy
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// WithMetrics enables Prometheus instrumentation
func WithMetrics(metrics *Metrics) Option {
	return func(s *service) {
		s.metrics = metrics
	}
}

// WithClock overrides the time source. Dashboard windows and record
// timestamps are taken from it.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// WithLocation sets the time zone used to align dashboard days
func WithLocation(loc *time.Location) Option {
	return func(s *service) {
		s.location = loc
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		eventSink: NewNoopEventSink(),
		logger:    slog.Default(),
		now:       time.Now,
		location:  time.Local,
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.gateway == nil {
		return nil, fmt.Errorf("gateway is required")
	}

	s.media = NewMediaOrchestrator(s.gateway, s.urlStrategy, s.logger, s.metrics)
	return s, nil
}

// Video reads

func (s *service) GetVideo(ctx context.Context, id uuid.UUID, includeUnpublished bool) (*Video, error) {
	video, err := s.repository.GetVideo(ctx, id)
	if err != nil {
		return nil, err
	}
	if !includeUnpublished && !video.IsPublished {
		return nil, ErrVideoNotFound
	}
	if err := s.decorate(ctx, video); err != nil {
		return nil, err
	}
	return video, nil
}

func (s *service) ListVideos(ctx context.Context, req ListVideosRequest) (*Page, error) {
	page, limit := normalizePaging(req.Page, req.Limit)
	return s.listPage(ctx, page, limit, ListVideosParams{
		CategoryID:         req.CategoryID,
		CategorySlug:       strings.TrimSpace(req.CategorySlug),
		Search:             strings.TrimSpace(req.Search),
		IncludeUnpublished: req.IncludeUnpublished,
	})
}

func (s *service) ListLikedVideos(ctx context.Context, userID uuid.UUID, page, limit int) (*Page, error) {
	page, limit = normalizePaging(page, limit)
	return s.listPage(ctx, page, limit, ListVideosParams{LikedBy: &userID})
}

func (s *service) listPage(ctx context.Context, page, limit int, params ListVideosParams) (*Page, error) {
	params.Offset = (page - 1) * limit
	params.Limit = limit

	items, total, err := s.repository.ListVideos(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	if err := s.decorate(ctx, items...); err != nil {
		return nil, err
	}
	if items == nil {
		items = []*Video{}
	}
	return &Page{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *service) IncrementViews(ctx context.Context, id uuid.UUID) (*Video, error) {
	video, err := s.repository.IncrementViews(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.decorate(ctx, video); err != nil {
		return nil, err
	}
	return video, nil
}

// decorate fills the computed fields: streaming URL and engagement counts.
func (s *service) decorate(ctx context.Context, videos ...*Video) error {
	if len(videos) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(videos))
	for _, v := range videos {
		ids = append(ids, v.ID)
	}
	counts, err := s.repository.EngagementCounts(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load engagement counts: %w", err)
	}

	for _, v := range videos {
		v.StreamingURL = s.media.DeriveStreamingURL(v.ExternalID)
		v.Counts = counts[v.ID]
		if v.TextSections == nil {
			v.TextSections = []TextSection{}
		}
	}
	return nil
}

func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

// loadVideo returns the video or ErrVideoNotFound wrapped with the operation.
func (s *service) loadVideo(ctx context.Context, id uuid.UUID, op string) (*Video, error) {
	video, err := s.repository.GetVideo(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &VideoError{VideoID: id, Op: op, Err: ErrVideoNotFound}
		}
		return nil, &VideoError{VideoID: id, Op: op, Err: err}
	}
	return video, nil
}

func (s *service) timestamp() time.Time {
	return s.now().UTC()
}
