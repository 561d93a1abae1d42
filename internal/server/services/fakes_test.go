package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/dbx"
	"github.com/dmitrijs2005/gophsocial/internal/server/events"
	"github.com/dmitrijs2005/gophsocial/internal/server/imagestore"
	"github.com/dmitrijs2005/gophsocial/internal/server/models"
	"github.com/dmitrijs2005/gophsocial/internal/server/repositories/notifications"
	"github.com/dmitrijs2005/gophsocial/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type edge struct{ follower, followee string }

// memUsers is an in-memory users.Repository.
type memUsers struct {
	mu     sync.Mutex
	byID   map[string]*models.User
	edges  []edge
	sample []*models.User

	getErr     error
	followErr  error
	listErr    error
	sampleErr  error
	updateErr  error
	updates    []*models.User
	sampleSize int

	// leakActor makes Sample ignore excludeID.
	leakActor bool
	// beforeFollow runs inside Follow before the edge check, with the lock held.
	beforeFollow func(m *memUsers)
	relErr       error
}

func newMemUsers(us ...*models.User) *memUsers {
	m := &memUsers{byID: map[string]*models.User{}}
	for _, u := range us {
		m.byID[u.ID] = u
	}
	return m
}

func (m *memUsers) load(u *models.User) *models.User {
	cp := *u
	cp.Followers = []string{}
	cp.Following = []string{}
	for _, e := range m.edges {
		if e.followee == u.ID {
			cp.Followers = append(cp.Followers, e.follower)
		}
		if e.follower == u.ID {
			cp.Following = append(cp.Following, e.followee)
		}
	}
	return &cp
}

func (m *memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return m.load(u), nil
}

func (m *memUsers) GetByUserName(ctx context.Context, userName string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.byID {
		if u.UserName == userName {
			return m.load(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsers) LoadRelations(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.relErr != nil {
		return m.relErr
	}
	loaded := m.load(u)
	u.Followers, u.Following = loaded.Followers, loaded.Following
	return nil
}

func (m *memUsers) ListFollowing(ctx context.Context, id string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []string{}
	for _, e := range m.edges {
		if e.follower == id {
			out = append(out, e.followee)
		}
	}
	return out, nil
}

func (m *memUsers) Sample(ctx context.Context, excludeID string, size int) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sampleSize = size
	if m.sampleErr != nil {
		return nil, m.sampleErr
	}
	var out []*models.User
	for _, u := range m.sample {
		if (u.ID != excludeID || m.leakActor) && len(out) < size {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUsers) Follow(ctx context.Context, followerID, followeeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.followErr != nil {
		return false, m.followErr
	}
	if m.beforeFollow != nil {
		m.beforeFollow(m)
	}
	for _, e := range m.edges {
		if e.follower == followerID && e.followee == followeeID {
			return false, nil
		}
	}
	m.edges = append(m.edges, edge{followerID, followeeID})
	return true, nil
}

func (m *memUsers) Unfollow(ctx context.Context, followerID, followeeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.followErr != nil {
		return m.followErr
	}
	kept := m.edges[:0]
	for _, e := range m.edges {
		if e.follower != followerID || e.followee != followeeID {
			kept = append(kept, e)
		}
	}
	m.edges = kept
	return nil
}

func (m *memUsers) Update(ctx context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	cp := *u
	cp.UpdatedAt = time.Now()
	m.byID[u.ID] = &cp
	m.updates = append(m.updates, &cp)
	return &cp, nil
}

func (m *memUsers) hasEdge(follower, followee string) bool {
	for _, e := range m.edges {
		if e.follower == follower && e.followee == followee {
			return true
		}
	}
	return false
}

// memNotifications is an in-memory notifications.Repository.
type memNotifications struct {
	created   []*models.Notification
	createErr error
	listErr   error
}

func (m *memNotifications) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	cp := *n
	cp.ID = fmt.Sprintf("n%d", len(m.created)+1)
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	m.created = append(m.created, &cp)
	return &cp, nil
}

func (m *memNotifications) ListForUser(ctx context.Context, userID string, limit int) ([]*models.Notification, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []*models.Notification{}
	for i := len(m.created) - 1; i >= 0 && len(out) < limit; i-- {
		if m.created[i].To == userID {
			out = append(out, m.created[i])
		}
	}
	return out, nil
}

type fakeRepoManager struct {
	u     *memUsers
	n     *memNotifications
	calls int
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository {
	m.calls++
	return m.u
}
func (m *fakeRepoManager) Notifications(db dbx.DBTX) notifications.Repository {
	m.calls++
	return m.n
}

// fakeImages records uploads and deletions in call order.
type fakeImages struct {
	calls        []string
	uploaded     []*imagestore.Image
	uploadErrAt  int
	deleteFails  int
	deleteErrAll bool
}

func (f *fakeImages) Upload(ctx context.Context, img *imagestore.Image) (string, error) {
	n := len(f.uploaded) + 1
	if f.uploadErrAt == n {
		f.calls = append(f.calls, "upload-failed")
		return "", errBoom
	}
	f.uploaded = append(f.uploaded, img)
	f.calls = append(f.calls, fmt.Sprintf("upload:new-%d", n))
	return fmt.Sprintf("https://cdn.example.com/images/gophsocial/new-%d%s", n, img.Ext()), nil
}

func (f *fakeImages) Delete(ctx context.Context, publicID string) error {
	f.calls = append(f.calls, "delete:"+publicID)
	if f.deleteErrAll {
		return errBoom
	}
	if f.deleteFails > 0 {
		f.deleteFails--
		return errBoom
	}
	return nil
}

func (f *fakeImages) count(prefix string) int {
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

type fakePublisher struct {
	events []events.FollowEvent
	err    error
}

func (p *fakePublisher) PublishFollow(ctx context.Context, e events.FollowEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *fakePublisher) Close() {}

type fakeRecorder struct {
	follows   []string
	uploads   []string
	deletions []string
}

func (r *fakeRecorder) Follow(action string)            { r.follows = append(r.follows, action) }
func (r *fakeRecorder) ImageUpload(slot, result string) { r.uploads = append(r.uploads, slot+":"+result) }
func (r *fakeRecorder) ImageDeletion(result string)     { r.deletions = append(r.deletions, result) }

type fakeHasher struct{ hashErr error }

func (h fakeHasher) Hash(plaintext string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hashed:" + plaintext, nil
}

func (h fakeHasher) Verify(plaintext, hash string) bool {
	return hash == "hashed:"+plaintext
}

func strptr(s string) *string { return &s }
