package urlstrategy

import (
	"fmt"
	"strings"
)

// CDNStrategy points at renditions published next to each video on a CDN:
//
//	{base}/{id}/thumbnail.jpg
//	{base}/{id}/manifest.mpd
type CDNStrategy struct {
	CDNBaseURL string
}

// NewCDNStrategy creates a new CDN URL strategy
func NewCDNStrategy(cdnBaseURL string) *CDNStrategy {
	return &CDNStrategy{CDNBaseURL: strings.TrimSuffix(cdnBaseURL, "/")}
}

func (s *CDNStrategy) ThumbnailURL(externalID string) (string, bool) {
	return s.build(externalID, "thumbnail.jpg")
}

func (s *CDNStrategy) StreamingURL(externalID string) (string, bool) {
	return s.build(externalID, "manifest.mpd")
}

func (s *CDNStrategy) build(externalID, file string) (string, bool) {
	id := trimID(externalID)
	if s.CDNBaseURL == "" || id == "" {
		return "", false
	}
	return fmt.Sprintf("%s/%s/%s", s.CDNBaseURL, id, file), true
}
