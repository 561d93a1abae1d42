// Package users implements the PostgreSQL-backed user repository. The
// follower/following sets of a user are rows of the follows table.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/dbx"
	"github.com/dmitrijs2005/gophsocial/internal/server/models"
)

const userColumns = `id, username, email, password, full_name, bio, link, profile_img, cover_img, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.UserName, &u.Email, &u.Password, &u.FullName, &u.Bio, &u.Link,
		&u.ProfileImg, &u.CoverImg, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.InvalidText(err) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := r.LoadRelations(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT ` + userColumns + ` FROM users
		 WHERE id = $1
		 `
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) GetByUserName(ctx context.Context, userName string) (*models.User, error) {
	query :=
		`SELECT ` + userColumns + ` FROM users
		 WHERE username = $1
		 `
	return r.getOne(ctx, query, userName)
}

// LoadRelations fills user.Followers and user.Following.
func (r *PostgresRepository) LoadRelations(ctx context.Context, user *models.User) error {
	followers, err := r.listIDs(ctx,
		`SELECT follower_id FROM follows
		 WHERE followee_id = $1
		 ORDER BY created_at
		 `, user.ID)
	if err != nil {
		return err
	}

	following, err := r.ListFollowing(ctx, user.ID)
	if err != nil {
		return err
	}

	user.Followers = followers
	user.Following = following
	return nil
}

func (r *PostgresRepository) ListFollowing(ctx context.Context, userID string) ([]string, error) {
	return r.listIDs(ctx,
		`SELECT followee_id FROM follows
		 WHERE follower_id = $1
		 ORDER BY created_at
		 `, userID)
}

func (r *PostgresRepository) listIDs(ctx context.Context, query string, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ids, nil
}

// Sample returns up to size random users other than excludeID. Relations
// are not loaded; callers use LoadRelations on the rows they keep.
func (r *PostgresRepository) Sample(ctx context.Context, excludeID string, size int) ([]*models.User, error) {
	query :=
		`SELECT ` + userColumns + ` FROM users
		 WHERE id <> $1
		 ORDER BY random()
		 LIMIT $2
		 `

	rows, err := r.db.QueryContext(ctx, query, excludeID, size)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

// Follow adds the edge follower -> followee and reports whether a row was
// inserted. An edge that already exists, e.g. one committed by a concurrent
// request, yields false.
func (r *PostgresRepository) Follow(ctx context.Context, followerID, followeeID string) (bool, error) {
	query :=
		`INSERT INTO follows (follower_id, followee_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING
		 `
	res, err := r.db.ExecContext(ctx, query, followerID, followeeID)
	if err != nil {
		if dbx.ForeignKeyViolation(err) {
			return false, common.ErrUserNotFound
		}
		return false, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) Unfollow(ctx context.Context, followerID, followeeID string) error {
	query :=
		`DELETE FROM follows
		 WHERE follower_id = $1 AND followee_id = $2
		 `
	if _, err := r.db.ExecContext(ctx, query, followerID, followeeID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update writes every mutable column of user and refreshes UpdatedAt.
func (r *PostgresRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`UPDATE users
		 SET username = $2, email = $3, password = $4, full_name = $5, bio = $6, link = $7,
		     profile_img = $8, cover_img = $9, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, user.ID, user.UserName, user.Email, user.Password,
		user.FullName, user.Bio, user.Link, user.ProfileImg, user.CoverImg).Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrUserNotFound
		}
		if constraint, ok := dbx.UniqueViolation(err); ok {
			return nil, uniqueError(constraint)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func uniqueError(constraint string) error {
	switch constraint {
	case "users_username_key":
		return fmt.Errorf("%w: username is already taken", common.ErrorAlreadyExists)
	case "users_email_key":
		return fmt.Errorf("%w: email is already taken", common.ErrorAlreadyExists)
	default:
		return common.ErrorAlreadyExists
	}
}
