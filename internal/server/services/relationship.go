package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/dbx"
	"github.com/dmitrijs2005/gophsocial/internal/logging"
	"github.com/dmitrijs2005/gophsocial/internal/server/events"
	"github.com/dmitrijs2005/gophsocial/internal/server/models"
	"github.com/dmitrijs2005/gophsocial/internal/server/repositories/repomanager"
)

// FollowAction is the transition ToggleFollow performed.
type FollowAction string

const (
	FollowActionFollowed   FollowAction = "followed"
	FollowActionUnfollowed FollowAction = "unfollowed"
)

type RelationshipService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	publisher   events.Publisher
	recorder    Recorder
	logger      logging.Logger
}

func NewRelationshipService(db *sql.DB, m repomanager.RepositoryManager, p events.Publisher, r Recorder, l logging.Logger) *RelationshipService {
	if p == nil {
		p = events.Noop{}
	}
	if r == nil {
		r = nopRecorder{}
	}
	if l == nil {
		l = logging.Nop()
	}
	return &RelationshipService{
		db:          db,
		repomanager: m,
		publisher:   p,
		recorder:    r,
		logger:      l.With("module", "relationships"),
	}
}

// ToggleFollow makes actorID follow targetID, or unfollow it when the edge
// already exists. Following also creates a follow notification for the
// target. Both happen in one transaction. When a concurrent request inserted
// the same edge first, the result is FollowActionFollowed without a second
// notification.
func (s *RelationshipService) ToggleFollow(ctx context.Context, actorID, targetID string) (FollowAction, error) {
	if actorID == targetID {
		return "", common.ErrSelfFollow
	}

	var (
		action       FollowAction
		changed      bool
		notification *models.Notification
	)

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)

		target, err := users.GetByID(ctx, targetID)
		if err != nil {
			return err
		}
		actor, err := users.GetByID(ctx, actorID)
		if err != nil {
			return err
		}

		if actor.IsFollowing(target.ID) {
			if err := users.Unfollow(ctx, actor.ID, target.ID); err != nil {
				return err
			}
			action = FollowActionUnfollowed
			changed = true
			return nil
		}

		action = FollowActionFollowed
		inserted, err := users.Follow(ctx, actor.ID, target.ID)
		if err != nil {
			return err
		}
		if !inserted {
			return nil
		}
		n, err := s.repomanager.Notifications(tx).Create(ctx, &models.Notification{
			From: actor.ID,
			To:   target.ID,
			Type: models.NotificationFollow,
		})
		if err != nil {
			return err
		}
		notification = n
		changed = true
		return nil
	})
	if err != nil {
		return "", internalError("toggle follow", err)
	}

	if !changed {
		s.logger.Info(ctx, "follow already recorded", "actor", actorID, "target", targetID)
		return action, nil
	}

	s.recorder.Follow(string(action))
	s.logger.Info(ctx, "follow toggled", "actor", actorID, "target", targetID, "action", string(action))

	if notification != nil {
		e := events.FollowEvent{
			NotificationID: notification.ID,
			From:           notification.From,
			To:             notification.To,
			CreatedAt:      notification.CreatedAt,
		}
		if err := s.publisher.PublishFollow(ctx, e); err != nil {
			s.logger.Warn(ctx, "follow event not published", "notification", notification.ID, "error", err)
		}
	}

	return action, nil
}
