package models

import "time"

// NotificationType enumerates what triggered a notification.
type NotificationType string

const (
	NotificationLike   NotificationType = "like"
	NotificationFollow NotificationType = "follow"
)

// Valid reports whether t is one of the known types.
func (t NotificationType) Valid() bool {
	return t == NotificationLike || t == NotificationFollow
}

type Notification struct {
	ID        string           `json:"_id"`
	From      string           `json:"from"`
	To        string           `json:"to"`
	Type      NotificationType `json:"type"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}
