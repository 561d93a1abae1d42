package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/logging"
	"github.com/dmitrijs2005/gophsocial/internal/server/models"
	"github.com/dmitrijs2005/gophsocial/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type relationshipFixture struct {
	mock  sqlmock.Sqlmock
	users *memUsers
	notes *memNotifications
	rm    *fakeRepoManager
	pub   *fakePublisher
	rec   *fakeRecorder
	svc   *RelationshipService
}

func newRelationshipFixture(t *testing.T) *relationshipFixture {
	t.Helper()
	db, mock := newSQLMockDB(t)
	f := &relationshipFixture{
		mock:  mock,
		users: newMemUsers(&models.User{ID: "a", UserName: "alice"}, &models.User{ID: "b", UserName: "bob"}),
		notes: &memNotifications{},
		pub:   &fakePublisher{},
		rec:   &fakeRecorder{},
	}
	f.rm = &fakeRepoManager{u: f.users, n: f.notes}
	f.svc = NewRelationshipService(db, f.rm, f.pub, f.rec, logging.Nop())
	return f
}

func TestToggleFollow_Follow(t *testing.T) {
	f := newRelationshipFixture(t)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	action, err := f.svc.ToggleFollow(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, FollowActionFollowed, action)

	a, _ := f.users.GetByID(context.Background(), "a")
	b, _ := f.users.GetByID(context.Background(), "b")
	assert.Contains(t, a.Following, "b")
	assert.Contains(t, b.Followers, "a")

	require.Len(t, f.notes.created, 1)
	n := f.notes.created[0]
	assert.Equal(t, models.NotificationFollow, n.Type)
	assert.Equal(t, "a", n.From)
	assert.Equal(t, "b", n.To)

	require.Len(t, f.pub.events, 1)
	assert.Equal(t, n.ID, f.pub.events[0].NotificationID)
	assert.Equal(t, []string{"followed"}, f.rec.follows)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestToggleFollow_TwiceRestoresState(t *testing.T) {
	f := newRelationshipFixture(t)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	first, err := f.svc.ToggleFollow(context.Background(), "a", "b")
	require.NoError(t, err)
	second, err := f.svc.ToggleFollow(context.Background(), "a", "b")
	require.NoError(t, err)

	assert.Equal(t, FollowActionFollowed, first)
	assert.Equal(t, FollowActionUnfollowed, second)
	assert.False(t, f.users.hasEdge("a", "b"))

	a, _ := f.users.GetByID(context.Background(), "a")
	b, _ := f.users.GetByID(context.Background(), "b")
	assert.Empty(t, a.Following)
	assert.Empty(t, b.Followers)

	assert.Len(t, f.notes.created, 1)
	assert.Len(t, f.pub.events, 1)
	assert.Equal(t, []string{"followed", "unfollowed"}, f.rec.follows)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestToggleFollow_ReverseEdgeIsIndependent(t *testing.T) {
	f := newRelationshipFixture(t)
	f.users.edges = []edge{{"b", "a"}}
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	action, err := f.svc.ToggleFollow(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, FollowActionFollowed, action)
	assert.True(t, f.users.hasEdge("a", "b"))
	assert.True(t, f.users.hasEdge("b", "a"))
}

func TestToggleFollow_EdgeInsertedConcurrently(t *testing.T) {
	f := newRelationshipFixture(t)
	f.users.beforeFollow = func(m *memUsers) {
		m.edges = append(m.edges, edge{"a", "b"})
	}
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	action, err := f.svc.ToggleFollow(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, FollowActionFollowed, action)
	assert.True(t, f.users.hasEdge("a", "b"))
	assert.Len(t, f.users.edges, 1)
	assert.Empty(t, f.notes.created)
	assert.Empty(t, f.pub.events)
	assert.Empty(t, f.rec.follows)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestToggleFollow_PostgresExistingEdgeSkipsNotification(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	const (
		qUser      = `(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1`
		qFollowers = `(?s)^SELECT\s+follower_id\s+FROM\s+follows`
		qFollowing = `(?s)^SELECT\s+followee_id\s+FROM\s+follows`
		qFollow    = `(?s)^INSERT\s+INTO\s+follows`
	)
	cols := []string{"id", "username", "email", "password", "full_name", "bio", "link",
		"profile_img", "cover_img", "created_at", "updated_at"}
	ts := time.Now().UTC()
	expectUser := func(id, name string) {
		mock.ExpectQuery(qUser).WithArgs(id).WillReturnRows(sqlmock.NewRows(cols).
			AddRow(id, name, name+"@example.com", "hash", "", "", "", nil, nil, ts, ts))
		mock.ExpectQuery(qFollowers).WithArgs(id).WillReturnRows(sqlmock.NewRows([]string{"follower_id"}))
		mock.ExpectQuery(qFollowing).WithArgs(id).WillReturnRows(sqlmock.NewRows([]string{"followee_id"}))
	}

	mock.ExpectBegin()
	expectUser("b", "bob")
	expectUser("a", "alice")
	mock.ExpectExec(qFollow).WithArgs("a", "b").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	pub := &fakePublisher{}
	svc := NewRelationshipService(db, repomanager.NewPostgresRepositoryManager(), pub, nil, logging.Nop())

	action, err := svc.ToggleFollow(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, FollowActionFollowed, action)
	assert.Empty(t, pub.events)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleFollow_Self(t *testing.T) {
	f := newRelationshipFixture(t)

	_, err := f.svc.ToggleFollow(context.Background(), "a", "a")
	assert.ErrorIs(t, err, common.ErrSelfFollow)
	assert.ErrorIs(t, err, common.ErrorInvalidRequest)
	assert.Equal(t, 0, f.rm.calls)
	assert.Empty(t, f.notes.created)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestToggleFollow_SelfEvenWhenUserMissing(t *testing.T) {
	f := newRelationshipFixture(t)

	_, err := f.svc.ToggleFollow(context.Background(), "ghost", "ghost")
	assert.ErrorIs(t, err, common.ErrSelfFollow)
}

func TestToggleFollow_NotFound(t *testing.T) {
	tests := []struct {
		name   string
		actor  string
		target string
	}{
		{"missing target", "a", "ghost"},
		{"missing actor", "ghost", "b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRelationshipFixture(t)
			f.mock.ExpectBegin()
			f.mock.ExpectRollback()

			_, err := f.svc.ToggleFollow(context.Background(), tt.actor, tt.target)
			assert.ErrorIs(t, err, common.ErrorNotFound)
			assert.Empty(t, f.users.edges)
			assert.Empty(t, f.rec.follows)
			require.NoError(t, f.mock.ExpectationsWereMet())
		})
	}
}

func TestToggleFollow_NotificationFailureRollsBack(t *testing.T) {
	f := newRelationshipFixture(t)
	f.notes.createErr = errBoom
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.ToggleFollow(context.Background(), "a", "b")
	assert.ErrorIs(t, err, common.ErrorInternal)
	assert.Empty(t, f.pub.events)
	assert.Empty(t, f.rec.follows)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestToggleFollow_StoreFailure(t *testing.T) {
	f := newRelationshipFixture(t)
	f.users.followErr = errBoom
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.ToggleFollow(context.Background(), "a", "b")
	assert.ErrorIs(t, err, common.ErrorInternal)
	assert.Empty(t, f.notes.created)
}

func TestToggleFollow_CommitFailure(t *testing.T) {
	f := newRelationshipFixture(t)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit().WillReturnError(errBoom)

	_, err := f.svc.ToggleFollow(context.Background(), "a", "b")
	assert.ErrorIs(t, err, common.ErrorInternal)
	assert.Empty(t, f.pub.events)
}

func TestToggleFollow_PublishFailureIsNotReturned(t *testing.T) {
	f := newRelationshipFixture(t)
	f.pub.err = errBoom
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	action, err := f.svc.ToggleFollow(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, FollowActionFollowed, action)
	assert.Len(t, f.notes.created, 1)
}

func TestNewRelationshipService_Defaults(t *testing.T) {
	db, mock := newSQLMockDB(t)
	u := newMemUsers(&models.User{ID: "a"}, &models.User{ID: "b"})
	s := NewRelationshipService(db, &fakeRepoManager{u: u, n: &memNotifications{}}, nil, nil, nil)
	mock.ExpectBegin()
	mock.ExpectCommit()

	action, err := s.ToggleFollow(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, FollowActionFollowed, action)
}
