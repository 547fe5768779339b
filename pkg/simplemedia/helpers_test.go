package simplemedia_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-media/pkg/simplemedia"
	"github.com/tendant/simple-media/pkg/simplemedia/repo/memory"
	memorystorage "github.com/tendant/simple-media/pkg/simplemedia/storage/memory"
	"github.com/tendant/simple-media/pkg/simplemedia/urlstrategy"
)

const renditionBase = "https://renditions.example.com"

// mockGateway is a testify mock of simplemedia.Gateway
type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Upload(ctx context.Context, data []byte, kind simplemedia.AssetKind) (*simplemedia.UploadResult, error) {
	args := m.Called(ctx, data, kind)
	result, _ := args.Get(0).(*simplemedia.UploadResult)
	return result, args.Error(1)
}

func (m *mockGateway) Delete(ctx context.Context, externalID string, kind simplemedia.AssetKind) error {
	args := m.Called(ctx, externalID, kind)
	return args.Error(0)
}

func uploaded(id string) *simplemedia.UploadResult {
	return &simplemedia.UploadResult{ExternalID: id, URL: "https://media.example.com/" + id + ".mp4"}
}

// clock is a settable time source
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// faultyRepo wraps the memory repository and fails selected transactional steps
type faultyRepo struct {
	*memory.Repository
	failNotifications error
	failSections      error
	failCountUsers    error
	// categoryGoneInTx makes categories vanish once a transaction starts
	categoryGoneInTx bool
}

func (r *faultyRepo) WithTx(ctx context.Context, fn func(ctx context.Context, tx simplemedia.Tx) error) error {
	return r.Repository.WithTx(ctx, func(ctx context.Context, tx simplemedia.Tx) error {
		return fn(ctx, &faultyTx{Tx: tx, repo: r})
	})
}

func (r *faultyRepo) CountUsers(ctx context.Context) (int64, error) {
	if r.failCountUsers != nil {
		return 0, r.failCountUsers
	}
	return r.Repository.CountUsers(ctx)
}

type faultyTx struct {
	simplemedia.Tx
	repo *faultyRepo
}

func (t *faultyTx) InsertNotifications(ctx context.Context, n []simplemedia.Notification) error {
	if t.repo.failNotifications != nil {
		return t.repo.failNotifications
	}
	return t.Tx.InsertNotifications(ctx, n)
}

func (t *faultyTx) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	if t.repo.categoryGoneInTx {
		return false, nil
	}
	return t.Tx.CategoryExists(ctx, id)
}

func (t *faultyTx) InsertTextSections(ctx context.Context, s []simplemedia.TextSection) error {
	if t.repo.failSections != nil {
		return t.repo.failSections
	}
	return t.Tx.InsertTextSections(ctx, s)
}

var errInjected = errors.New("injected failure")

type fixture struct {
	svc      simplemedia.Service
	repo     *faultyRepo
	gateway  simplemedia.Gateway
	clock    *clock
	metrics  *simplemedia.Metrics
	category uuid.UUID
	author   uuid.UUID
	strategy urlstrategy.Strategy
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	gateway simplemedia.Gateway
	sink    simplemedia.EventSink
}

func withGateway(g simplemedia.Gateway) fixtureOption {
	return func(c *fixtureConfig) { c.gateway = g }
}

func withSink(s simplemedia.EventSink) fixtureOption {
	return func(c *fixtureConfig) { c.sink = s }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	cfg := &fixtureConfig{
		gateway: memorystorage.New("https://media.example.com"),
		sink:    simplemedia.NewNoopEventSink(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	repo := &faultyRepo{Repository: memory.New()}
	category := uuid.New()
	repo.AddCategory(simplemedia.Category{ID: category, Name: "Music", Slug: "music"})

	clk := &clock{now: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}
	metrics := simplemedia.NewMetrics(prometheus.NewRegistry())
	strategy := urlstrategy.NewTransformStrategy(renditionBase)

	svc, err := simplemedia.New(
		simplemedia.WithRepository(repo),
		simplemedia.WithGateway(cfg.gateway),
		simplemedia.WithURLStrategy(strategy),
		simplemedia.WithEventSink(cfg.sink),
		simplemedia.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		simplemedia.WithMetrics(metrics),
		simplemedia.WithClock(clk.Now),
		simplemedia.WithLocation(time.UTC),
	)
	require.NoError(t, err)

	return &fixture{
		svc:      svc,
		repo:     repo,
		gateway:  cfg.gateway,
		clock:    clk,
		metrics:  metrics,
		category: category,
		author:   uuid.New(),
		strategy: strategy,
	}
}

func (f *fixture) createVideo(t *testing.T, title string, sections ...string) *simplemedia.Video {
	t.Helper()

	inputs := make([]simplemedia.TextSectionInput, 0, len(sections))
	for _, body := range sections {
		inputs = append(inputs, simplemedia.TextSectionInput{Body: body})
	}
	video, err := f.svc.CreateVideo(context.Background(), simplemedia.CreateVideoRequest{
		Title:        title,
		CategoryID:   f.category,
		CreatedBy:    f.author,
		VideoFile:    []byte("video-bytes-" + title),
		TextSections: inputs,
	})
	require.NoError(t, err)
	return video
}

func (f *fixture) count(t *testing.T, fn func(context.Context) (int64, error)) int64 {
	t.Helper()
	n, err := fn(context.Background())
	require.NoError(t, err)
	return n
}

func ptr[T any](v T) *T {
	return &v
}
