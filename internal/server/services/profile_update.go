package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/logging"
	"github.com/dmitrijs2005/gophsocial/internal/server/auth"
	"github.com/dmitrijs2005/gophsocial/internal/server/config"
	"github.com/dmitrijs2005/gophsocial/internal/server/imagestore"
	"github.com/dmitrijs2005/gophsocial/internal/server/metrics"
	"github.com/dmitrijs2005/gophsocial/internal/server/models"
	"github.com/dmitrijs2005/gophsocial/internal/server/repositories/repomanager"
	"github.com/sethvargo/go-retry"
)

// Image slots.
const (
	SlotProfile = "profile"
	SlotCover   = "cover"
)

// UpdateProfileInput holds the fields a user may change. Empty strings mean
// "keep the current value". ProfileImg and CoverImg are image payloads as
// accepted by imagestore.DecodePayload.
type UpdateProfileInput struct {
	UserName        string `json:"username"`
	Email           string `json:"email"`
	FullName        string `json:"fullName"`
	Bio             string `json:"bio"`
	Link            string `json:"link"`
	ProfileImg      string `json:"profileImg"`
	CoverImg        string `json:"coverImg"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// RetryPolicy controls how often a stale image deletion is retried.
type RetryPolicy struct {
	Base       time.Duration
	MaxRetries uint64
}

var DefaultRetryPolicy = RetryPolicy{Base: 100 * time.Millisecond, MaxRetries: 3}

type ProfileUpdateService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	images        imagestore.Store
	hasher        auth.Hasher
	recorder      Recorder
	logger        logging.Logger
	imageMaxBytes int64
	retry         RetryPolicy
}

func NewProfileUpdateService(db *sql.DB, m repomanager.RepositoryManager, images imagestore.Store, hasher auth.Hasher,
	r Recorder, l logging.Logger, cfg *config.Config) *ProfileUpdateService {
	if r == nil {
		r = nopRecorder{}
	}
	if l == nil {
		l = logging.Nop()
	}
	policy := DefaultRetryPolicy
	if cfg.ImageDeleteRetryBase > 0 {
		policy.Base = cfg.ImageDeleteRetryBase
	}
	return &ProfileUpdateService{
		db:            db,
		repomanager:   m,
		images:        images,
		hasher:        hasher,
		recorder:      r,
		logger:        l.With("module", "profiles"),
		imageMaxBytes: cfg.ImageMaxBytes,
		retry:         policy,
	}
}

// WithRetryPolicy replaces the deletion retry policy.
func (s *ProfileUpdateService) WithRetryPolicy(p RetryPolicy) *ProfileUpdateService {
	s.retry = p
	return s
}

type slotUpdate struct {
	slot   string
	field  **string
	image  *imagestore.Image
	newURL string
	oldURL string
}

// UpdateProfile applies in to the user with id userID.
//
// Image order is upload, persist, delete: a replaced image stays in storage
// until the row referencing its successor has been written, so a failed
// update never leaves the profile pointing at a deleted object. If writing
// the row fails the fresh uploads are removed again. Deleting the replaced
// image happens last and its failure does not fail the update.
func (s *ProfileUpdateService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*models.Profile, error) {
	users := s.repomanager.Users(s.db)

	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return nil, internalError("load user", err)
	}

	if err := s.applyPassword(user, in.CurrentPassword, in.NewPassword); err != nil {
		return nil, err
	}

	var slots []*slotUpdate
	for _, p := range []struct {
		slot    string
		field   **string
		payload string
	}{
		{SlotProfile, &user.ProfileImg, in.ProfileImg},
		{SlotCover, &user.CoverImg, in.CoverImg},
	} {
		if p.payload == "" {
			continue
		}
		img, err := imagestore.DecodePayload(p.payload, s.imageMaxBytes)
		if err != nil {
			return nil, err
		}
		slots = append(slots, &slotUpdate{slot: p.slot, field: p.field, image: img})
	}

	for i, su := range slots {
		url, err := s.images.Upload(ctx, su.image)
		if err != nil {
			s.recorder.ImageUpload(su.slot, metrics.ResultFailed)
			s.discardUploads(ctx, slots[:i])
			return nil, internalError("upload "+su.slot+" image", err)
		}
		s.recorder.ImageUpload(su.slot, metrics.ResultOK)
		su.newURL = url
	}

	setIfPresent(&user.UserName, in.UserName)
	setIfPresent(&user.Email, in.Email)
	setIfPresent(&user.FullName, in.FullName)
	setIfPresent(&user.Bio, in.Bio)
	setIfPresent(&user.Link, in.Link)
	for _, su := range slots {
		if *su.field != nil {
			su.oldURL = **su.field
		}
		url := su.newURL
		*su.field = &url
	}

	updated, err := users.Update(ctx, user)
	if err != nil {
		s.discardUploads(ctx, slots)
		return nil, internalError("update user", err)
	}

	for _, su := range slots {
		if su.oldURL != "" {
			s.deleteImage(ctx, imagestore.PublicIDFromURL(su.oldURL))
		}
	}

	return updated.Profile(), nil
}

func (s *ProfileUpdateService) applyPassword(user *models.User, current, next string) error {
	if current == "" && next == "" {
		return nil
	}
	if current == "" || next == "" {
		return common.ErrPasswordPairRequired
	}
	if !s.hasher.Verify(current, user.Password) {
		return common.ErrIncorrectPassword
	}
	if len(next) < common.MinPasswordLength {
		return common.ErrPasswordTooShort
	}
	hash, err := s.hasher.Hash(next)
	if err != nil {
		return internalError("hash password", err)
	}
	user.Password = hash
	return nil
}

func setIfPresent(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// discardUploads removes images uploaded for an update that did not
// complete.
func (s *ProfileUpdateService) discardUploads(ctx context.Context, slots []*slotUpdate) {
	for _, su := range slots {
		if su.newURL != "" {
			s.deleteImage(ctx, imagestore.PublicIDFromURL(su.newURL))
		}
	}
}

// deleteImage removes publicID, retrying with exponential backoff. A final
// failure is logged and counted.
func (s *ProfileUpdateService) deleteImage(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}

	b := retry.WithMaxRetries(s.retry.MaxRetries, retry.NewExponential(s.retry.Base))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		if err := s.images.Delete(ctx, publicID); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		s.recorder.ImageDeletion(metrics.ResultFailed)
		s.logger.Error(ctx, "image not deleted", "public_id", publicID, "error", err)
		return
	}
	s.recorder.ImageDeletion(metrics.ResultOK)
}
