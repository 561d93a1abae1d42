// Package services contains server-side business logic: profile lookup,
// follow toggling, suggestions, profile updates and notifications.
package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophsocial/internal/server/models"
	"github.com/dmitrijs2005/gophsocial/internal/server/repositories/repomanager"
)

type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager) *ProfileService {
	return &ProfileService{db: db, repomanager: m}
}

// GetProfile returns the public profile of the user named handle.
func (s *ProfileService) GetProfile(ctx context.Context, handle string) (*models.Profile, error) {
	user, err := s.repomanager.Users(s.db).GetByUserName(ctx, handle)
	if err != nil {
		return nil, internalError("get profile", err)
	}
	return user.Profile(), nil
}
