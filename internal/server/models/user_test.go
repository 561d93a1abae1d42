package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_IsFollowing(t *testing.T) {
	u := &User{ID: "a", Following: []string{"b", "c"}}
	assert.True(t, u.IsFollowing("b"))
	assert.True(t, u.IsFollowing("c"))
	assert.False(t, u.IsFollowing("a"))
	assert.False(t, (&User{}).IsFollowing("b"))
}

func TestUser_Profile_DropsCredential(t *testing.T) {
	img := "https://cdn/x.png"
	u := &User{
		ID:         "u1",
		UserName:   "alice",
		Email:      "alice@example.com",
		Password:   "$2a$10$hash",
		FullName:   "Alice",
		ProfileImg: &img,
		CreatedAt:  time.Unix(0, 0).UTC(),
	}

	p := u.Profile()
	require.NotNil(t, p)
	assert.Equal(t, "alice", p.UserName)
	assert.Equal(t, &img, p.ProfileImg)
	assert.NotNil(t, p.Followers)
	assert.NotNil(t, p.Following)

	b, err := json.Marshal(p)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(b, &fields))
	assert.NotContains(t, fields, "password")
	assert.NotContains(t, string(b), "$2a$10$hash")
	assert.Nil(t, fields["coverImg"])
	assert.Equal(t, []any{}, fields["followers"])
}

func TestUser_Profile_Nil(t *testing.T) {
	var u *User
	assert.Nil(t, u.Profile())
}

func TestNotificationType_Valid(t *testing.T) {
	assert.True(t, NotificationFollow.Valid())
	assert.True(t, NotificationLike.Valid())
	assert.False(t, NotificationType("comment").Valid())
}
