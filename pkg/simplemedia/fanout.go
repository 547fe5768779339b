package simplemedia

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// notificationText returns the fixed title and the body for a notification kind
func notificationText(kind NotificationType, videoTitle string) (string, string) {
	switch kind {
	case NotificationVideoUpdated:
		return "Video updated", fmt.Sprintf("%s was updated.", videoTitle)
	default:
		return "New video uploaded", fmt.Sprintf("New video: %s", videoTitle)
	}
}

// fanOutNotifications writes one notification per existing user through tx.
// It must run inside the same transaction as the video write it announces.
func fanOutNotifications(ctx context.Context, tx Tx, video *Video, kind NotificationType, now time.Time) (int, error) {
	userIDs, err := tx.ListUserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list notification recipients: %w", err)
	}
	if len(userIDs) == 0 {
		return 0, nil
	}

	title, body := notificationText(kind, video.Title)
	videoID := video.ID

	notifications := make([]Notification, 0, len(userIDs))
	for _, userID := range userIDs {
		b := body
		notifications = append(notifications, Notification{
			ID:        uuid.New(),
			UserID:    userID,
			VideoID:   &videoID,
			Type:      kind,
			Title:     title,
			Body:      &b,
			CreatedAt: now,
		})
	}

	if err := tx.InsertNotifications(ctx, notifications); err != nil {
		return 0, fmt.Errorf("failed to insert notifications: %w", err)
	}
	return len(notifications), nil
}
