package httpapi

import (
	"context"

	"github.com/dmitrijs2005/gophsocial/internal/server/models"
	"github.com/dmitrijs2005/gophsocial/internal/server/services"
	"github.com/gofiber/fiber/v3"
)

type ProfileGetter interface {
	GetProfile(ctx context.Context, handle string) (*models.Profile, error)
}

type FollowToggler interface {
	ToggleFollow(ctx context.Context, actorID, targetID string) (services.FollowAction, error)
}

type Suggester interface {
	GetSuggestions(ctx context.Context, actorID string) ([]*models.Profile, error)
}

type ProfileUpdater interface {
	UpdateProfile(ctx context.Context, userID string, in services.UpdateProfileInput) (*models.Profile, error)
}

type NotificationLister interface {
	ListNotifications(ctx context.Context, userID string) ([]*models.Notification, error)
}

// Services bundles the operations exposed over HTTP.
type Services struct {
	Profiles      ProfileGetter
	Relationships FollowToggler
	Suggestions   Suggester
	Updates       ProfileUpdater
	Notifications NotificationLister
}

type UserHandler struct {
	svc Services
}

func NewUserHandler(svc Services) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/users/profile/:username", h.GetProfile)
	r.Get("/users/suggested", h.GetSuggested)
	r.Post("/users/follow/:id", h.FollowUnfollow)
	r.Post("/users/update", h.UpdateProfile)
	r.Get("/notifications", h.ListNotifications)
}

func (h *UserHandler) GetProfile(c fiber.Ctx) error {
	p, err := h.svc.Profiles.GetProfile(c.Context(), c.Params("username"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(p)
}

func (h *UserHandler) GetSuggested(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	list, err := h.svc.Suggestions.GetSuggestions(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(list)
}

func (h *UserHandler) FollowUnfollow(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	action, err := h.svc.Relationships.ToggleFollow(c.Context(), userID, c.Params("id"))
	if err != nil {
		return err
	}

	if action == services.FollowActionUnfollowed {
		return writeMessage(c, fiber.StatusOK, "user unfollowed successfully")
	}
	return writeMessage(c, fiber.StatusOK, "user followed successfully")
}

func (h *UserHandler) UpdateProfile(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req services.UpdateProfileInput
	if err := c.Bind().Body(&req); err != nil {
		return NewAppError(fiber.StatusBadRequest, "invalid request payload", err)
	}

	p, err := h.svc.Updates.UpdateProfile(c.Context(), userID, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(p)
}

func (h *UserHandler) ListNotifications(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	list, err := h.svc.Notifications.ListNotifications(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(list)
}
