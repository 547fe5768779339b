package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/tendant/simple-media/pkg/simplemedia"
)

const (
	defaultMaxUploadBytes = 512 << 20
	multipartMemory       = 32 << 20
)

// Handler serves the media API on top of a simplemedia.Service
type Handler struct {
	service        simplemedia.Service
	logger         *slog.Logger
	maxUploadBytes int64
}

// HandlerOption configures a Handler
type HandlerOption func(*Handler)

// WithHandlerLogger sets the request logger
func WithHandlerLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithMaxUploadBytes caps multipart request bodies
func WithMaxUploadBytes(n int64) HandlerOption {
	return func(h *Handler) {
		h.maxUploadBytes = n
	}
}

// NewHandler creates a new media handler
func NewHandler(service simplemedia.Service, opts ...HandlerOption) *Handler {
	h := &Handler{
		service:        service,
		logger:         slog.Default(),
		maxUploadBytes: defaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the API router. Tokens are verified with auth; reads are
// public, engagement needs a user and publishing needs the admin role.
func (h *Handler) Routes(auth *jwtauth.JWTAuth) chi.Router {
	r := chi.NewRouter()
	r.Use(jwtauth.Verifier(auth))
	r.Use(ActorMiddleware)

	// Public reads
	r.Get("/videos", h.ListVideos)
	r.Get("/videos/{id}", h.GetVideo)
	r.Post("/videos/{id}/views", h.IncrementViews)
	r.Get("/videos/{id}/sections", h.ListTextSections)
	r.Get("/videos/{id}/shares/count", h.CountShares)
	r.Get("/videos/{id}/downloads/count", h.CountDownloads)

	// Signed-in users
	r.Group(func(r chi.Router) {
		r.Use(RequireActor)

		r.Post("/videos/{id}/shares", h.ShareVideo)
		r.Post("/videos/{id}/downloads", h.RecordDownload)
		r.Get("/videos/{id}/like", h.IsLiked)
		r.Post("/videos/{id}/like", h.LikeVideo)
		r.Delete("/videos/{id}/like", h.UnlikeVideo)

		r.Get("/me/downloads", h.ListUserDownloads)
		r.Get("/me/likes", h.ListLikedVideos)
		r.Get("/me/notifications", h.ListNotifications)
		r.Post("/me/notifications/{id}/read", h.MarkNotificationRead)
	})

	// Admins
	r.Group(func(r chi.Router) {
		r.Use(RequireRole(RoleAdmin))

		r.Post("/videos", h.CreateVideo)
		r.Patch("/videos/{id}", h.UpdateVideo)
		r.Delete("/videos/{id}", h.DeleteVideo)

		r.Post("/videos/{id}/sections", h.AddTextSection)
		r.Patch("/videos/{id}/sections/{sectionID}", h.UpdateTextSection)
		r.Delete("/videos/{id}/sections/{sectionID}", h.DeleteTextSection)

		r.Get("/dashboard", h.DashboardSummary)
	})

	return r
}

// Publishing

// CreateVideo publishes a video from a multipart form
func (h *Handler) CreateVideo(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	form, err := h.parseVideoForm(w, r)
	if err != nil {
		writeError(w, r, h.logger, "Invalid video form", err)
		return
	}

	req := simplemedia.CreateVideoRequest{
		Title:        form.title,
		Description:  form.description,
		IsPublished:  form.isPublished,
		CreatedBy:    actor.UserID,
		VideoFile:    form.video,
		Thumbnail:    form.thumbnail,
		TextSections: form.sections,
	}
	if form.categoryID != nil {
		req.CategoryID = *form.categoryID
	}

	video, err := h.service.CreateVideo(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, "Failed to create video", err)
		return
	}

	h.logger.InfoContext(r.Context(), "Video created", "video_id", video.ID, "actor", actor.UserID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, video)
}

// UpdateVideo applies a partial update from a multipart form. Supplying the
// text_sections field replaces every section.
func (h *Handler) UpdateVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	form, err := h.parseVideoForm(w, r)
	if err != nil {
		writeError(w, r, h.logger, "Invalid video form", err)
		return
	}

	req := simplemedia.UpdateVideoRequest{
		ID:              id,
		Description:     form.description,
		CategoryID:      form.categoryID,
		IsPublished:     form.isPublished,
		VideoFile:       form.video,
		Thumbnail:       form.thumbnail,
		ReplaceSections: form.hasSections,
		TextSections:    form.sections,
	}
	if form.hasTitle {
		req.Title = &form.title
	}

	video, err := h.service.UpdateVideo(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, "Failed to update video", err)
		return
	}
	render.JSON(w, r, video)
}

func (h *Handler) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	video, err := h.service.DeleteVideo(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, "Failed to delete video", err)
		return
	}
	render.JSON(w, r, video)
}

// Reads

func (h *Handler) ListVideos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	actor, _ := ActorFromContext(r.Context())

	req := simplemedia.ListVideosRequest{
		Page:               queryInt(q.Get("page")),
		Limit:              queryInt(q.Get("limit")),
		Search:             q.Get("search"),
		IncludeUnpublished: actor.IsAdmin() && q.Get("include_unpublished") == "true",
	}
	if category := q.Get("category"); category != "" {
		if id, err := uuid.Parse(category); err == nil {
			req.CategoryID = &id
		} else {
			req.CategorySlug = category
		}
	}

	page, err := h.service.ListVideos(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, "Failed to list videos", err)
		return
	}
	render.JSON(w, r, page)
}

// GetVideo returns a published video; admins also see drafts
func (h *Handler) GetVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	actor, _ := ActorFromContext(r.Context())

	video, err := h.service.GetVideo(r.Context(), id, actor.IsAdmin())
	if err != nil {
		writeError(w, r, h.logger, "Failed to get video", err)
		return
	}
	render.JSON(w, r, video)
}

func (h *Handler) IncrementViews(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	video, err := h.service.IncrementViews(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, "Failed to count view", err)
		return
	}
	render.JSON(w, r, map[string]int64{"views_count": video.ViewsCount})
}

func (h *Handler) ListLikedVideos(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	q := r.URL.Query()

	page, err := h.service.ListLikedVideos(r.Context(), actor.UserID, queryInt(q.Get("page")), queryInt(q.Get("limit")))
	if err != nil {
		writeError(w, r, h.logger, "Failed to list liked videos", err)
		return
	}
	render.JSON(w, r, page)
}

// Text sections

type sectionBody struct {
	Position *int    `json:"position"`
	Heading  *string `json:"heading"`
	Body     *string `json:"body"`
}

func (h *Handler) ListTextSections(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	sections, err := h.service.ListTextSections(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, "Failed to list sections", err)
		return
	}
	render.JSON(w, r, sections)
}

func (h *Handler) AddTextSection(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var body sectionBody
	if !h.decode(w, r, &body) {
		return
	}

	req := simplemedia.AddTextSectionRequest{VideoID: id, Position: body.Position, Heading: body.Heading}
	if body.Body != nil {
		req.Body = *body.Body
	}
	section, err := h.service.AddTextSection(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, "Failed to add section", err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, section)
}

func (h *Handler) UpdateTextSection(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	sectionID, ok := h.pathID(w, r, "sectionID")
	if !ok {
		return
	}
	var body sectionBody
	if !h.decode(w, r, &body) {
		return
	}

	section, err := h.service.UpdateTextSection(r.Context(), simplemedia.UpdateTextSectionRequest{
		VideoID:   id,
		SectionID: sectionID,
		Position:  body.Position,
		Heading:   body.Heading,
		Body:      body.Body,
	})
	if err != nil {
		writeError(w, r, h.logger, "Failed to update section", err)
		return
	}
	render.JSON(w, r, section)
}

func (h *Handler) DeleteTextSection(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	sectionID, ok := h.pathID(w, r, "sectionID")
	if !ok {
		return
	}
	section, err := h.service.DeleteTextSection(r.Context(), id, sectionID)
	if err != nil {
		writeError(w, r, h.logger, "Failed to delete section", err)
		return
	}
	render.JSON(w, r, section)
}

// Engagement

func (h *Handler) ShareVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	actor, _ := ActorFromContext(r.Context())

	var body struct {
		Channel *string `json:"channel"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	event, err := h.service.ShareVideo(r.Context(), simplemedia.ShareVideoRequest{
		VideoID: id,
		UserID:  actor.UserID,
		Channel: body.Channel,
	})
	if err != nil {
		writeError(w, r, h.logger, "Failed to share video", err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, event)
}

func (h *Handler) CountShares(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	n, err := h.service.CountShares(r.Context(), &id)
	if err != nil {
		writeError(w, r, h.logger, "Failed to count shares", err)
		return
	}
	render.JSON(w, r, map[string]int64{"count": n})
}

func (h *Handler) RecordDownload(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	actor, _ := ActorFromContext(r.Context())

	receipt, err := h.service.RecordDownload(r.Context(), id, actor.UserID)
	if err != nil {
		writeError(w, r, h.logger, "Failed to record download", err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, receipt)
}

func (h *Handler) CountDownloads(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	n, err := h.service.CountDownloads(r.Context(), &id)
	if err != nil {
		writeError(w, r, h.logger, "Failed to count downloads", err)
		return
	}
	render.JSON(w, r, map[string]int64{"count": n})
}

func (h *Handler) ListUserDownloads(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	downloads, err := h.service.ListUserDownloads(r.Context(), actor.UserID)
	if err != nil {
		writeError(w, r, h.logger, "Failed to list downloads", err)
		return
	}
	render.JSON(w, r, downloads)
}

func (h *Handler) LikeVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	actor, _ := ActorFromContext(r.Context())

	like, err := h.service.LikeVideo(r.Context(), id, actor.UserID)
	if err != nil {
		writeError(w, r, h.logger, "Failed to like video", err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, like)
}

func (h *Handler) UnlikeVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	actor, _ := ActorFromContext(r.Context())

	if err := h.service.UnlikeVideo(r.Context(), id, actor.UserID); err != nil {
		writeError(w, r, h.logger, "Failed to unlike video", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) IsLiked(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	actor, _ := ActorFromContext(r.Context())

	liked, err := h.service.IsLiked(r.Context(), id, actor.UserID)
	if err != nil {
		writeError(w, r, h.logger, "Failed to check like", err)
		return
	}
	render.JSON(w, r, map[string]bool{"liked": liked})
}

// Notifications

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	notifications, err := h.service.ListNotifications(r.Context(), actor.UserID)
	if err != nil {
		writeError(w, r, h.logger, "Failed to list notifications", err)
		return
	}
	render.JSON(w, r, notifications)
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	actor, _ := ActorFromContext(r.Context())

	notification, err := h.service.MarkNotificationRead(r.Context(), id, actor.UserID)
	if err != nil {
		writeError(w, r, h.logger, "Failed to mark notification read", err)
		return
	}
	render.JSON(w, r, notification)
}

// Analytics

// DashboardSummary serves the dashboard for ?days=N (default 10)
func (h *Handler) DashboardSummary(w http.ResponseWriter, r *http.Request) {
	days := simplemedia.ParseDays(r.URL.Query().Get("days"))

	summary, err := h.service.DashboardSummary(r.Context(), days)
	if err != nil {
		writeError(w, r, h.logger, "Failed to compute dashboard", err)
		return
	}
	render.JSON(w, r, summary)
}

// helpers

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Invalid id", "param", name, "value", raw, "error", err)
		http.Error(w, fmt.Sprintf("Invalid %s", name), http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// queryInt parses an optional integer; anything unparsable is zero and
// falls back to the service default.
func queryInt(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}

type videoForm struct {
	title       string
	hasTitle    bool
	description *string
	categoryID  *uuid.UUID
	isPublished *bool
	video       []byte
	thumbnail   []byte
	sections    []simplemedia.TextSectionInput
	hasSections bool
}

func (h *Handler) parseVideoForm(w http.ResponseWriter, r *http.Request) (*videoForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, &simplemedia.ValidationError{Message: "invalid multipart form: " + err.Error()}
	}

	form := &videoForm{}
	values := r.MultipartForm.Value

	if v, ok := values["title"]; ok && len(v) > 0 {
		form.title = v[0]
		form.hasTitle = true
	}
	if v, ok := values["description"]; ok && len(v) > 0 {
		form.description = &v[0]
	}
	if raw := r.FormValue("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, &simplemedia.ValidationError{Field: "category_id", Message: "must be a UUID"}
		}
		form.categoryID = &id
	}
	if raw := r.FormValue("is_published"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, &simplemedia.ValidationError{Field: "is_published", Message: "must be a boolean"}
		}
		form.isPublished = &b
	}
	if v, ok := values["text_sections"]; ok && len(v) > 0 {
		form.hasSections = true
		form.sections = []simplemedia.TextSectionInput{}
		if strings.TrimSpace(v[0]) != "" {
			if err := json.Unmarshal([]byte(v[0]), &form.sections); err != nil {
				return nil, &simplemedia.ValidationError{Field: "text_sections", Message: "must be a JSON array"}
			}
		}
	}

	var err error
	if form.video, err = formFile(r, "video"); err != nil {
		return nil, err
	}
	if form.thumbnail, err = formFile(r, "thumbnail"); err != nil {
		return nil, err
	}
	return form, nil
}

// formFile reads an optional file part; a missing part yields nil
func formFile(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, &simplemedia.ValidationError{Field: field, Message: err.Error()}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", field, err)
	}
	return data, nil
}
