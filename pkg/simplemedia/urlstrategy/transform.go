package urlstrategy

import (
	"fmt"
	"strings"
)

// Default thumbnail transformation: a frame 2s in, cropped to fill 640x360.
const (
	ThumbnailOffsetSeconds = 2
	ThumbnailWidth         = 640
	ThumbnailHeight        = 360
)

// TransformStrategy builds delivery URLs for a media service that renders
// renditions from transformation parameters in the path:
//
//	{base}/video/upload/so_2,w_640,h_360,c_fill/{id}.jpg
//	{base}/video/upload/sp_auto/{id}.m3u8
type TransformStrategy struct {
	DeliveryBaseURL string
	Thumbnail       string
	Streaming       string
}

// NewTransformStrategy creates a transform strategy with the default
// thumbnail and adaptive streaming profiles
func NewTransformStrategy(deliveryBaseURL string) *TransformStrategy {
	return &TransformStrategy{
		DeliveryBaseURL: strings.TrimSuffix(deliveryBaseURL, "/"),
		Thumbnail: fmt.Sprintf("so_%d,w_%d,h_%d,c_fill",
			ThumbnailOffsetSeconds, ThumbnailWidth, ThumbnailHeight),
		Streaming: "sp_auto",
	}
}

func (s *TransformStrategy) ThumbnailURL(externalID string) (string, bool) {
	return s.build(s.Thumbnail, externalID, "jpg")
}

func (s *TransformStrategy) StreamingURL(externalID string) (string, bool) {
	return s.build(s.Streaming, externalID, "m3u8")
}

func (s *TransformStrategy) build(transformation, externalID, format string) (string, bool) {
	id := trimID(externalID)
	if s.DeliveryBaseURL == "" || id == "" {
		return "", false
	}
	if transformation == "" {
		return fmt.Sprintf("%s/video/upload/%s.%s", s.DeliveryBaseURL, id, format), true
	}
	return fmt.Sprintf("%s/video/upload/%s/%s.%s", s.DeliveryBaseURL, transformation, id, format), true
}
