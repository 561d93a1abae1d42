// Package events publishes domain events for other services to consume.
package events

import (
	"context"
	"time"
)

const (
	StreamName     = "NOTIFICATIONS"
	SubjectPattern = "notifications.>"
	SubjectFollow  = "notifications.follow"
)

// FollowEvent is emitted after a follow notification has been committed.
type FollowEvent struct {
	NotificationID string    `json:"notification_id"`
	From           string    `json:"from"`
	To             string    `json:"to"`
	CreatedAt      time.Time `json:"created_at"`
}

type Publisher interface {
	PublishFollow(ctx context.Context, e FollowEvent) error
	Close()
}

// Noop drops every event. It is used when no broker is configured.
type Noop struct{}

func (Noop) PublishFollow(context.Context, FollowEvent) error { return nil }
func (Noop) Close()                                           {}
