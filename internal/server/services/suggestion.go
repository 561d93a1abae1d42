package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophsocial/internal/server/models"
	"github.com/dmitrijs2005/gophsocial/internal/server/repositories/repomanager"
)

const (
	SampleSize      = 10
	SuggestionLimit = 4
)

type SuggestionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewSuggestionService(db *sql.DB, m repomanager.RepositoryManager) *SuggestionService {
	return &SuggestionService{db: db, repomanager: m}
}

// GetSuggestions samples SampleSize users other than actorID, drops the
// ones actorID already follows and returns up to SuggestionLimit of the
// rest in sample order. Fewer results, or none, are possible.
func (s *SuggestionService) GetSuggestions(ctx context.Context, actorID string) ([]*models.Profile, error) {
	users := s.repomanager.Users(s.db)

	following, err := users.ListFollowing(ctx, actorID)
	if err != nil {
		return nil, internalError("list following", err)
	}
	followed := make(map[string]struct{}, len(following))
	for _, id := range following {
		followed[id] = struct{}{}
	}

	sample, err := users.Sample(ctx, actorID, SampleSize)
	if err != nil {
		return nil, internalError("sample users", err)
	}

	out := make([]*models.Profile, 0, SuggestionLimit)
	for _, u := range sample {
		if len(out) == SuggestionLimit {
			break
		}
		if u.ID == actorID {
			continue
		}
		if _, ok := followed[u.ID]; ok {
			continue
		}
		if err := users.LoadRelations(ctx, u); err != nil {
			return nil, internalError("load relations", err)
		}
		out = append(out, u.Profile())
	}
	return out, nil
}
