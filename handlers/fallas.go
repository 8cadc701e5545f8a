package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/manugamu/pfc/services/logging"
	"github.com/manugamu/pfc/services/users"
	"go.uber.org/zap"
)

type FallaHandler struct {
	store  *users.Store
	logger *logging.Service
}

func NewFallaHandler(store *users.Store, logger *logging.Service) *FallaHandler {
	return &FallaHandler{
		store:  store,
		logger: logger,
	}
}

func (h *FallaHandler) ByCode(c echo.Context) error {
	falla, err := h.store.FindByFallaCode(c.Request().Context(), c.Param("codigo"))
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "falla not found")
		}
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"username":        falla.Username,
		"profileImageUrl": falla.ProfileImageURL,
		"fullname":        falla.FullName,
	})
}

func (h *FallaHandler) PendingRequests(c echo.Context) error {
	falla, err := h.findFalla(c, c.Param("fallaId"))
	if err != nil {
		return err
	}

	pending, err := h.store.FindByIDs(c.Request().Context(), falla.FallaInfo.PendingRequests)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, pending)
}

type membershipRequest struct {
	UserID  string `json:"userId"`
	FallaID string `json:"fallaId"`
}

// Accept promotes a pending user to FALLERO and moves them from the
// falla's pending list to its member list.
func (h *FallaHandler) Accept(c echo.Context) error {
	var req membershipRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	falla, err := h.findFalla(c, req.FallaID)
	if err != nil {
		return err
	}

	user, err := h.store.FindByID(c.Request().Context(), req.UserID)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return err
	}

	user.Role = users.RoleFallero
	user.FallaCode = falla.FallaInfo.Code
	user.PendingJoin = false
	if err := h.store.Save(c.Request().Context(), user); err != nil {
		return err
	}

	falla.FallaInfo.RemovePendingRequest(user.ID)
	falla.FallaInfo.AddFallero(user.ID)
	if err := h.store.Save(c.Request().Context(), falla); err != nil {
		return err
	}

	if h.logger != nil {
		h.logger.Info("falla member accepted",
			zap.String("falla_id", falla.ID),
			zap.String("user_id", user.ID))
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "user accepted into falla"})
}

// Reject drops a pending request. The user record is cleaned up when it
// still exists, but a vanished user does not block the rejection.
func (h *FallaHandler) Reject(c echo.Context) error {
	var req membershipRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	falla, err := h.findFalla(c, req.FallaID)
	if err != nil {
		return err
	}

	falla.FallaInfo.RemovePendingRequest(req.UserID)
	if err := h.store.Save(c.Request().Context(), falla); err != nil {
		return err
	}

	if user, err := h.store.FindByID(c.Request().Context(), req.UserID); err == nil {
		user.FallaCode = ""
		user.PendingJoin = false
		if err := h.store.Save(c.Request().Context(), user); err != nil {
			return err
		}
	} else if !errors.Is(err, users.ErrUserNotFound) {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "request rejected"})
}

// RemoveMember expels a fallero: off the falla's member list, code
// cleared, role demoted back to USER.
func (h *FallaHandler) RemoveMember(c echo.Context) error {
	falla, err := h.findFalla(c, c.Param("fallaId"))
	if err != nil {
		return err
	}

	user, err := h.store.FindByID(c.Request().Context(), c.Param("userId"))
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return err
	}

	falla.FallaInfo.RemoveFallero(user.ID)
	if err := h.store.Save(c.Request().Context(), falla); err != nil {
		return err
	}

	user.FallaCode = ""
	user.PendingJoin = false
	user.Role = users.RoleUser
	if err := h.store.Save(c.Request().Context(), user); err != nil {
		return err
	}

	if h.logger != nil {
		h.logger.Info("falla member removed",
			zap.String("falla_id", falla.ID),
			zap.String("user_id", user.ID))
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "member removed from falla"})
}

func (h *FallaHandler) Members(c echo.Context) error {
	falla, err := h.findFalla(c, c.Param("fallaId"))
	if err != nil {
		return err
	}

	members, err := h.store.FindByIDs(c.Request().Context(), falla.FallaInfo.FalleroIDs)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, members)
}

func (h *FallaHandler) findFalla(c echo.Context, id string) (*users.User, error) {
	falla, err := h.store.FindByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "falla not found")
		}
		return nil, err
	}
	if !falla.IsFalla() {
		return nil, echo.NewHTTPError(http.StatusNotFound, "falla not found")
	}
	return falla, nil
}
