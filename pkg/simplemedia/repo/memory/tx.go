package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/tendant/simple-media/pkg/simplemedia"
)

// tx works on the private state copy of one WithTx call
type tx struct {
	st *state
}

func (t *tx) LockVideo(ctx context.Context, id uuid.UUID) (*simplemedia.Video, error) {
	v, ok := t.st.videos[id]
	if !ok {
		return nil, simplemedia.ErrVideoNotFound
	}
	return t.st.project(v, false), nil
}

func (t *tx) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, ok := t.st.categories[id]
	return ok, nil
}

func (t *tx) CreateVideo(ctx context.Context, video *simplemedia.Video) error {
	t.st.videos[video.ID] = stored(video)
	return nil
}

func (t *tx) UpdateVideo(ctx context.Context, video *simplemedia.Video) error {
	if _, ok := t.st.videos[video.ID]; !ok {
		return simplemedia.ErrVideoNotFound
	}
	t.st.videos[video.ID] = stored(video)
	return nil
}

// DeleteVideo removes the video and its sections. Events are kept.
func (t *tx) DeleteVideo(ctx context.Context, id uuid.UUID) error {
	if _, ok := t.st.videos[id]; !ok {
		return simplemedia.ErrVideoNotFound
	}
	delete(t.st.videos, id)
	t.removeSections(id)
	return nil
}

func (t *tx) InsertTextSections(ctx context.Context, sections []simplemedia.TextSection) error {
	for _, sec := range sections {
		if _, ok := t.st.videos[sec.VideoID]; !ok {
			return simplemedia.ErrVideoNotFound
		}
	}
	t.st.sections = append(t.st.sections, sections...)
	return nil
}

func (t *tx) DeleteTextSections(ctx context.Context, videoID uuid.UUID) error {
	t.removeSections(videoID)
	return nil
}

func (t *tx) MaxSectionPosition(ctx context.Context, videoID uuid.UUID) (int, error) {
	last := 0
	for _, sec := range t.st.sections {
		if sec.VideoID == videoID && sec.Position > last {
			last = sec.Position
		}
	}
	return last, nil
}

func (t *tx) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	return append([]uuid.UUID(nil), t.st.users...), nil
}

func (t *tx) InsertNotifications(ctx context.Context, notifications []simplemedia.Notification) error {
	t.st.notifications = append(t.st.notifications, notifications...)
	return nil
}

func (t *tx) removeSections(videoID uuid.UUID) {
	kept := t.st.sections[:0:0]
	for _, sec := range t.st.sections {
		if sec.VideoID != videoID {
			kept = append(kept, sec)
		}
	}
	t.st.sections = kept
}

// stored strips the read-time fields from a video
func stored(v *simplemedia.Video) simplemedia.Video {
	out := *v
	out.TextSections = nil
	out.CategoryName = ""
	out.StreamingURL = nil
	out.Counts = simplemedia.EngagementCounts{}
	return out
}
