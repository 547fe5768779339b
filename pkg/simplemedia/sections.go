package simplemedia

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Text section operations

func (s *service) ListTextSections(ctx context.Context, videoID uuid.UUID) ([]TextSection, error) {
	if _, err := s.loadVideo(ctx, videoID, "list_sections"); err != nil {
		return nil, err
	}
	sections, err := s.repository.ListTextSections(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if sections == nil {
		sections = []TextSection{}
	}
	return sections, nil
}

// AddTextSection appends a section. Without an explicit position the section
// goes after the current last one; the parent row lock keeps concurrent
// appends from picking the same position.
func (s *service) AddTextSection(ctx context.Context, req AddTextSectionRequest) (*TextSection, error) {
	req.Body = strings.TrimSpace(req.Body)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	now := s.timestamp()
	section := TextSection{
		ID:        uuid.New(),
		VideoID:   req.VideoID,
		Heading:   trimmedOrNil(req.Heading),
		Body:      req.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.repository.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		if _, err := tx.LockVideo(ctx, req.VideoID); err != nil {
			return err
		}
		if req.Position != nil {
			section.Position = *req.Position
		} else {
			last, err := tx.MaxSectionPosition(ctx, req.VideoID)
			if err != nil {
				return err
			}
			section.Position = last + 1
		}
		return tx.InsertTextSections(ctx, []TextSection{section})
	})
	if err != nil {
		return nil, &VideoError{VideoID: req.VideoID, Op: "add_section", Err: err}
	}
	return &section, nil
}

func (s *service) UpdateTextSection(ctx context.Context, req UpdateTextSectionRequest) (*TextSection, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	var body *string
	if req.Body != nil {
		b := strings.TrimSpace(*req.Body)
		if b == "" {
			return nil, invalid("body", "must not be empty")
		}
		body = &b
	}

	section, err := s.ownedSection(ctx, req.VideoID, req.SectionID)
	if err != nil {
		return nil, err
	}

	if body != nil {
		section.Body = *body
	}
	if req.Heading != nil {
		section.Heading = trimmedOrNil(req.Heading)
	}
	if req.Position != nil {
		section.Position = *req.Position
	}
	section.UpdatedAt = s.timestamp()

	if err := s.repository.UpdateTextSection(ctx, section); err != nil {
		return nil, &VideoError{VideoID: req.VideoID, Op: "update_section", Err: err}
	}
	return section, nil
}

func (s *service) DeleteTextSection(ctx context.Context, videoID, sectionID uuid.UUID) (*TextSection, error) {
	section, err := s.ownedSection(ctx, videoID, sectionID)
	if err != nil {
		return nil, err
	}
	if err := s.repository.DeleteTextSection(ctx, sectionID); err != nil {
		return nil, &VideoError{VideoID: videoID, Op: "delete_section", Err: err}
	}
	return section, nil
}

// ownedSection loads a section and checks it belongs to videoID
func (s *service) ownedSection(ctx context.Context, videoID, sectionID uuid.UUID) (*TextSection, error) {
	section, err := s.repository.GetTextSection(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	if section.VideoID != videoID {
		return nil, ErrSectionNotFound
	}
	return section, nil
}
