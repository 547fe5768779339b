package simplemedia

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error categories. Callers should match with errors.Is.
var (
	// ErrNotFound indicates a referenced record does not exist
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates the input was rejected before any I/O
	ErrValidation = errors.New("validation failed")

	// ErrUploadFailed indicates the media provider failed or returned no usable result.
	// It is safe to retry.
	ErrUploadFailed = errors.New("upload failed")

	// ErrAlreadyLiked indicates the user already liked the video
	ErrAlreadyLiked = errors.New("video already liked")

	// ErrAggregationFailed indicates the dashboard could not be computed
	ErrAggregationFailed = errors.New("dashboard aggregation failed")
)

// Not-found variants, all matching ErrNotFound.
var (
	ErrVideoNotFound        = fmt.Errorf("video %w", ErrNotFound)
	ErrCategoryNotFound     = fmt.Errorf("category %w", ErrNotFound)
	ErrSectionNotFound      = fmt.Errorf("text section %w", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("notification %w", ErrNotFound)
	ErrLikeNotFound         = fmt.Errorf("like %w", ErrNotFound)
)

// VideoError represents an error related to video operations
type VideoError struct {
	VideoID uuid.UUID
	Op      string
	Err     error
}

func (e *VideoError) Error() string {
	if e.VideoID == uuid.Nil {
		return fmt.Sprintf("video operation %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("video operation %s failed for video %s: %v", e.Op, e.VideoID, e.Err)
}

func (e *VideoError) Unwrap() error {
	return e.Err
}

// ValidationError describes a rejected input field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", ErrValidation, e.Message)
	}
	return fmt.Sprintf("%v: %s %s", ErrValidation, e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// UploadError represents a failed gateway upload
type UploadError struct {
	Kind AssetKind
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("%v: %s asset: %v", ErrUploadFailed, e.Kind, e.Err)
}

func (e *UploadError) Is(target error) bool {
	return target == ErrUploadFailed
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
