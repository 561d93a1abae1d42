package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophsocial/internal/server/models"
	"github.com/dmitrijs2005/gophsocial/internal/server/repositories/repomanager"
)

const NotificationPageSize = 50

type NotificationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewNotificationService(db *sql.DB, m repomanager.RepositoryManager) *NotificationService {
	return &NotificationService{db: db, repomanager: m}
}

// ListNotifications returns the newest notifications addressed to userID.
func (s *NotificationService) ListNotifications(ctx context.Context, userID string) ([]*models.Notification, error) {
	list, err := s.repomanager.Notifications(s.db).ListForUser(ctx, userID, NotificationPageSize)
	if err != nil {
		return nil, internalError("list notifications", err)
	}
	return list, nil
}
