// Package models defines server-side data models persisted in the database
// and the projections returned to clients.
package models

import "time"

// User is the full stored record, credential included. It must never be
// serialized to clients; use Profile for that.
type User struct {
	ID         string
	UserName   string
	Email      string
	Password   string
	FullName   string
	Bio        string
	Link       string
	ProfileImg *string
	CoverImg   *string
	Followers  []string
	Following  []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsFollowing reports whether u's following set contains id.
func (u *User) IsFollowing(id string) bool {
	for _, f := range u.Following {
		if f == id {
			return true
		}
	}
	return false
}

// Profile is the public projection of a User: every field except the
// credential.
type Profile struct {
	ID         string    `json:"_id"`
	UserName   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Bio        string    `json:"bio"`
	Link       string    `json:"link"`
	ProfileImg *string   `json:"profileImg"`
	CoverImg   *string   `json:"coverImg"`
	Followers  []string  `json:"followers"`
	Following  []string  `json:"following"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Profile returns the projection of u. Nil-safe.
func (u *User) Profile() *Profile {
	if u == nil {
		return nil
	}
	followers := u.Followers
	if followers == nil {
		followers = []string{}
	}
	following := u.Following
	if following == nil {
		following = []string{}
	}
	return &Profile{
		ID:         u.ID,
		UserName:   u.UserName,
		Email:      u.Email,
		FullName:   u.FullName,
		Bio:        u.Bio,
		Link:       u.Link,
		ProfileImg: u.ProfileImg,
		CoverImg:   u.CoverImg,
		Followers:  followers,
		Following:  following,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
