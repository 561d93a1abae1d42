// Package notifications implements the PostgreSQL-backed notification
// repository.
package notifications

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/dbx"
	"github.com/dmitrijs2005/gophsocial/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts n as unread and fills in its ID and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	if !n.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown notification type %q", common.ErrorInvalidRequest, n.Type)
	}

	query :=
		`INSERT INTO notifications (from_user_id, to_user_id, type)
		 VALUES ($1, $2, $3)
		 RETURNING id, read, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, n.From, n.To, string(n.Type)).
		Scan(&n.ID, &n.Read, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if dbx.ForeignKeyViolation(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// ListForUser returns the newest notifications addressed to userID.
func (r *PostgresRepository) ListForUser(ctx context.Context, userID string, limit int) ([]*models.Notification, error) {
	query :=
		`SELECT id, from_user_id, to_user_id, type, read, created_at, updated_at
		 FROM notifications
		 WHERE to_user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []*models.Notification{}
	for rows.Next() {
		n := &models.Notification{}
		var typ string
		if err := rows.Scan(&n.ID, &n.From, &n.To, &typ, &n.Read, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		n.Type = models.NotificationType(typ)
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
