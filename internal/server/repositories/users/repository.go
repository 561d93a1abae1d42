package users

import (
	"context"

	"github.com/dmitrijs2005/gophsocial/internal/server/models"
)

// Repository is the user store. Lookups return common.ErrorNotFound for
// absent rows; GetByID and GetByUserName load the follower/following sets.
type Repository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUserName(ctx context.Context, userName string) (*models.User, error)
	LoadRelations(ctx context.Context, user *models.User) error
	ListFollowing(ctx context.Context, userID string) ([]string, error)
	Sample(ctx context.Context, excludeID string, size int) ([]*models.User, error)
	Follow(ctx context.Context, followerID, followeeID string) (bool, error)
	Unfollow(ctx context.Context, followerID, followeeID string) error
	Update(ctx context.Context, user *models.User) (*models.User, error)
}
