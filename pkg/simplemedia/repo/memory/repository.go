package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tendant/simple-media/pkg/simplemedia"
)

type comment struct {
	id      uuid.UUID
	videoID uuid.UUID
	deleted bool
}

// state is one consistent copy of every table
type state struct {
	categories    map[uuid.UUID]simplemedia.Category
	users         []uuid.UUID
	comments      []comment
	videos        map[uuid.UUID]simplemedia.Video
	sections      []simplemedia.TextSection
	shares        []simplemedia.ShareEvent
	downloads     []simplemedia.DownloadEvent
	likes         []simplemedia.Like
	notifications []simplemedia.Notification
}

func newState() *state {
	return &state{
		categories: make(map[uuid.UUID]simplemedia.Category),
		videos:     make(map[uuid.UUID]simplemedia.Video),
	}
}

func (s *state) clone() *state {
	c := &state{
		categories:    make(map[uuid.UUID]simplemedia.Category, len(s.categories)),
		users:         append([]uuid.UUID(nil), s.users...),
		comments:      append([]comment(nil), s.comments...),
		videos:        make(map[uuid.UUID]simplemedia.Video, len(s.videos)),
		sections:      append([]simplemedia.TextSection(nil), s.sections...),
		shares:        append([]simplemedia.ShareEvent(nil), s.shares...),
		downloads:     append([]simplemedia.DownloadEvent(nil), s.downloads...),
		likes:         append([]simplemedia.Like(nil), s.likes...),
		notifications: append([]simplemedia.Notification(nil), s.notifications...),
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.videos {
		c.videos[k] = v
	}
	return c
}

// Repository implements simplemedia.Repository using in-memory storage.
//
// Transactions run one at a time against a private copy of the state that
// replaces the shared state on commit. Writes outside a transaction queue
// behind the running transaction so a commit never drops them.
type Repository struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	st      *state
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{st: newState()}
}

// Seeding helpers for the collaborator-owned tables

// AddCategory stores a category
func (r *Repository) AddCategory(category simplemedia.Category) {
	r.write(func(st *state) error {
		st.categories[category.ID] = category
		return nil
	})
}

// AddUser registers a user id as a notification recipient
func (r *Repository) AddUser(id uuid.UUID) {
	r.write(func(st *state) error {
		for _, existing := range st.users {
			if existing == id {
				return nil
			}
		}
		st.users = append(st.users, id)
		return nil
	})
}

// AddComment stores a comment on a video and returns its id
func (r *Repository) AddComment(videoID uuid.UUID, deleted bool) uuid.UUID {
	id := uuid.New()
	r.write(func(st *state) error {
		st.comments = append(st.comments, comment{id: id, videoID: videoID, deleted: deleted})
		return nil
	})
	return id
}

// write applies fn to the shared state outside of any transaction
func (r *Repository) write(fn func(st *state) error) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()

	return fn(r.st)
}

// WithTx runs fn against a private copy and publishes it if fn succeeds
func (r *Repository) WithTx(ctx context.Context, fn func(ctx context.Context, tx simplemedia.Tx) error) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	r.mu.RLock()
	work := r.st.clone()
	r.mu.RUnlock()

	if err := fn(ctx, &tx{st: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	r.st = work
	r.mu.Unlock()
	return nil
}

// Video operations

func (r *Repository) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.st.categories[id]
	return ok, nil
}

func (r *Repository) GetVideo(ctx context.Context, id uuid.UUID) (*simplemedia.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.st.videos[id]
	if !ok {
		return nil, simplemedia.ErrVideoNotFound
	}
	return r.st.project(v, true), nil
}

func (r *Repository) ListVideos(ctx context.Context, params simplemedia.ListVideosParams) ([]*simplemedia.Video, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st := r.st
	search := strings.ToLower(params.Search)

	var matched []simplemedia.Video
	for _, v := range st.videos {
		if !params.IncludeUnpublished && !v.IsPublished {
			continue
		}
		if params.CategoryID != nil && v.CategoryID != *params.CategoryID {
			continue
		}
		if params.CategorySlug != "" && st.categories[v.CategoryID].Slug != params.CategorySlug {
			continue
		}
		if search != "" && !matchesSearch(v, search) {
			continue
		}
		if params.LikedBy != nil && !st.hasLike(*params.LikedBy, v.ID) {
			continue
		}
		matched = append(matched, v)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.String() < matched[j].ID.String()
	})

	total := int64(len(matched))
	start := params.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if params.Limit > 0 && start+params.Limit < end {
		end = start + params.Limit
	}

	items := make([]*simplemedia.Video, 0, end-start)
	for _, v := range matched[start:end] {
		items = append(items, st.project(v, false))
	}
	return items, total, nil
}

func (r *Repository) IncrementViews(ctx context.Context, id uuid.UUID) (*simplemedia.Video, error) {
	var out *simplemedia.Video
	err := r.write(func(st *state) error {
		v, ok := st.videos[id]
		if !ok {
			return simplemedia.ErrVideoNotFound
		}
		v.ViewsCount++
		st.videos[id] = v
		out = st.project(v, true)
		return nil
	})
	return out, err
}

func (r *Repository) EngagementCounts(ctx context.Context, videoIDs []uuid.UUID) (map[uuid.UUID]simplemedia.EngagementCounts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st := r.st
	wanted := make(map[uuid.UUID]bool, len(videoIDs))
	for _, id := range videoIDs {
		wanted[id] = true
	}

	counts := make(map[uuid.UUID]simplemedia.EngagementCounts, len(videoIDs))
	for _, l := range st.likes {
		if wanted[l.VideoID] {
			c := counts[l.VideoID]
			c.Likes++
			counts[l.VideoID] = c
		}
	}
	for _, e := range st.shares {
		if wanted[e.VideoID] {
			c := counts[e.VideoID]
			c.Shares++
			counts[e.VideoID] = c
		}
	}
	for _, e := range st.downloads {
		if wanted[e.VideoID] {
			c := counts[e.VideoID]
			c.Downloads++
			counts[e.VideoID] = c
		}
	}
	return counts, nil
}

// project copies a stored video and joins its category name and, when
// withSections is set, its ordered sections
func (s *state) project(v simplemedia.Video, withSections bool) *simplemedia.Video {
	out := v
	out.CategoryName = s.categories[v.CategoryID].Name
	out.TextSections = nil
	if withSections {
		out.TextSections = s.sectionsOf(v.ID)
	}
	return &out
}

func (s *state) sectionsOf(videoID uuid.UUID) []simplemedia.TextSection {
	out := []simplemedia.TextSection{}
	for _, sec := range s.sections {
		if sec.VideoID == videoID {
			out = append(out, sec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Position < out[j].Position
	})
	return out
}

func (s *state) hasLike(userID, videoID uuid.UUID) bool {
	for _, l := range s.likes {
		if l.UserID == userID && l.VideoID == videoID {
			return true
		}
	}
	return false
}

func matchesSearch(v simplemedia.Video, search string) bool {
	if strings.Contains(strings.ToLower(v.Title), search) {
		return true
	}
	return v.Description != nil && strings.Contains(strings.ToLower(*v.Description), search)
}

// Text section operations

func (r *Repository) ListTextSections(ctx context.Context, videoID uuid.UUID) ([]simplemedia.TextSection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.st.sectionsOf(videoID), nil
}

func (r *Repository) GetTextSection(ctx context.Context, id uuid.UUID) (*simplemedia.TextSection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, sec := range r.st.sections {
		if sec.ID == id {
			out := sec
			return &out, nil
		}
	}
	return nil, simplemedia.ErrSectionNotFound
}

func (r *Repository) UpdateTextSection(ctx context.Context, section *simplemedia.TextSection) error {
	return r.write(func(st *state) error {
		for i, sec := range st.sections {
			if sec.ID == section.ID {
				st.sections[i] = *section
				return nil
			}
		}
		return simplemedia.ErrSectionNotFound
	})
}

func (r *Repository) DeleteTextSection(ctx context.Context, id uuid.UUID) error {
	return r.write(func(st *state) error {
		for i, sec := range st.sections {
			if sec.ID == id {
				st.sections = append(st.sections[:i:i], st.sections[i+1:]...)
				return nil
			}
		}
		return simplemedia.ErrSectionNotFound
	})
}

// Event operations

func (r *Repository) CreateShareEvent(ctx context.Context, event *simplemedia.ShareEvent) error {
	return r.write(func(st *state) error {
		st.shares = append(st.shares, *event)
		return nil
	})
}

func (r *Repository) CreateDownloadEvent(ctx context.Context, event *simplemedia.DownloadEvent) error {
	return r.write(func(st *state) error {
		st.downloads = append(st.downloads, *event)
		return nil
	})
}

func (r *Repository) ListUserDownloads(ctx context.Context, userID uuid.UUID) ([]simplemedia.UserDownload, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]simplemedia.DownloadEvent, 0)
	for _, e := range r.st.downloads {
		if e.UserID == userID {
			events = append(events, e)
		}
	}
	// Newest first; ties keep the later insert first.
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})

	seen := make(map[uuid.UUID]bool)
	out := []simplemedia.UserDownload{}
	for _, e := range events {
		if seen[e.VideoID] {
			continue
		}
		seen[e.VideoID] = true
		v, ok := r.st.videos[e.VideoID]
		if !ok {
			continue
		}
		out = append(out, simplemedia.UserDownload{
			EventID:      e.ID,
			DownloadedAt: e.CreatedAt,
			VideoID:      v.ID,
			Title:        v.Title,
			Description:  v.Description,
			ThumbnailURL: v.ThumbnailURL,
		})
	}
	return out, nil
}

func (r *Repository) GetLike(ctx context.Context, userID, videoID uuid.UUID) (*simplemedia.Like, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, l := range r.st.likes {
		if l.UserID == userID && l.VideoID == videoID {
			out := l
			return &out, nil
		}
	}
	return nil, simplemedia.ErrLikeNotFound
}

func (r *Repository) CreateLike(ctx context.Context, like *simplemedia.Like) error {
	return r.write(func(st *state) error {
		if st.hasLike(like.UserID, like.VideoID) {
			return simplemedia.ErrAlreadyLiked
		}
		st.likes = append(st.likes, *like)
		return nil
	})
}

func (r *Repository) DeleteLike(ctx context.Context, userID, videoID uuid.UUID) error {
	return r.write(func(st *state) error {
		for i, l := range st.likes {
			if l.UserID == userID && l.VideoID == videoID {
				st.likes = append(st.likes[:i:i], st.likes[i+1:]...)
				return nil
			}
		}
		return simplemedia.ErrLikeNotFound
	})
}

// Notification operations

func (r *Repository) ListNotifications(ctx context.Context, userID uuid.UUID) ([]simplemedia.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []simplemedia.Notification{}
	for i := len(r.st.notifications) - 1; i >= 0; i-- {
		if n := r.st.notifications[i]; n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *Repository) GetNotification(ctx context.Context, id uuid.UUID) (*simplemedia.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, n := range r.st.notifications {
		if n.ID == id {
			out := n
			return &out, nil
		}
	}
	return nil, simplemedia.ErrNotificationNotFound
}

func (r *Repository) MarkNotificationRead(ctx context.Context, id uuid.UUID) (*simplemedia.Notification, error) {
	var out *simplemedia.Notification
	err := r.write(func(st *state) error {
		for i := range st.notifications {
			if st.notifications[i].ID == id {
				st.notifications[i].IsRead = true
				n := st.notifications[i]
				out = &n
				return nil
			}
		}
		return simplemedia.ErrNotificationNotFound
	})
	return out, err
}

// Aggregates

func (r *Repository) CountVideos(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.st.videos)), nil
}

func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.st.users)), nil
}

func (r *Repository) CountActiveComments(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, c := range r.st.comments {
		if !c.deleted {
			n++
		}
	}
	return n, nil
}

func (r *Repository) CountShares(ctx context.Context, videoID *uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, e := range r.st.shares {
		if videoID == nil || e.VideoID == *videoID {
			n++
		}
	}
	return n, nil
}

func (r *Repository) CountDownloads(ctx context.Context, videoID *uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, e := range r.st.downloads {
		if videoID == nil || e.VideoID == *videoID {
			n++
		}
	}
	return n, nil
}

func (r *Repository) CountLikes(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.st.likes)), nil
}

func (r *Repository) CountUnreadNotifications(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, notification := range r.st.notifications {
		if !notification.IsRead {
			n++
		}
	}
	return n, nil
}

// DailyCounts buckets events by calendar day in the location of since
func (r *Repository) DailyCounts(ctx context.Context, kind simplemedia.EventKind, since time.Time) ([]simplemedia.DayCount, error) {
	r.mu.RLock()
	var stamps []time.Time
	switch kind {
	case simplemedia.EventShare:
		for _, e := range r.st.shares {
			stamps = append(stamps, e.CreatedAt)
		}
	case simplemedia.EventDownload:
		for _, e := range r.st.downloads {
			stamps = append(stamps, e.CreatedAt)
		}
	}
	r.mu.RUnlock()

	loc := since.Location()
	byDay := make(map[time.Time]int64)
	for _, ts := range stamps {
		if ts.Before(since) {
			continue
		}
		local := ts.In(loc)
		byDay[time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)]++
	}

	out := make([]simplemedia.DayCount, 0, len(byDay))
	for day, count := range byDay {
		out = append(out, simplemedia.DayCount{Day: day, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

func (r *Repository) CategoryDistribution(ctx context.Context) ([]simplemedia.CategoryCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	perCategory := make(map[uuid.UUID]int64)
	for _, v := range r.st.videos {
		perCategory[v.CategoryID]++
	}

	cats := make([]simplemedia.Category, 0, len(r.st.categories))
	for _, c := range r.st.categories {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].Name != cats[j].Name {
			return cats[i].Name < cats[j].Name
		}
		return cats[i].ID.String() < cats[j].ID.String()
	})

	out := make([]simplemedia.CategoryCount, 0, len(cats))
	for _, c := range cats {
		out = append(out, simplemedia.CategoryCount{Name: c.Name, Count: perCategory[c.ID]})
	}
	return out, nil
}
