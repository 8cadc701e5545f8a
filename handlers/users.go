package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/manugamu/pfc/middleware/bearerauth"
	"github.com/manugamu/pfc/services/logging"
	"github.com/manugamu/pfc/services/users"
	"go.uber.org/zap"
)

type UserHandler struct {
	store  *users.Store
	logger *logging.Service
}

func NewUserHandler(store *users.Store, logger *logging.Service) *UserHandler {
	return &UserHandler{
		store:  store,
		logger: logger,
	}
}

func (h *UserHandler) currentUser(c echo.Context) (*users.User, error) {
	identity, ok := bearerauth.CurrentIdentity(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	user, err := h.store.FindByEmail(c.Request().Context(), identity.Email)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return nil, err
	}
	return user, nil
}

func (h *UserHandler) Me(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":              user.ID,
		"username":        user.Username,
		"email":           user.Email,
		"fullName":        user.FullName,
		"profileImageUrl": user.ProfileImageURL,
		"role":            user.Role,
		"fallaInfo":       user.FallaInfo,
		"codigoFalla":     user.FallaCode,
		"pendienteUnion":  user.PendingJoin,
	})
}

func (h *UserHandler) GetByID(c echo.Context) error {
	user, err := h.store.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":              user.ID,
		"username":        user.Username,
		"profileImageUrl": user.ProfileImageURL,
		"role":            user.Role,
		"fallaInfo":       user.FallaInfo,
		"codigoFalla":     user.FallaCode,
	})
}

func (h *UserHandler) ProfileImage(c echo.Context) error {
	user, err := h.store.FindByID(c.Request().Context(), c.Param("userId"))
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"profileImageUrl": user.ProfileImageURL})
}

type updateProfileImageRequest struct {
	ProfileImageURL string `json:"profileImageUrl"`
}

func (h *UserHandler) UpdateProfileImage(c echo.Context) error {
	var req updateProfileImageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	user.ProfileImageURL = req.ProfileImageURL
	if err := h.store.Save(c.Request().Context(), user); err != nil {
		return err
	}

	if h.logger != nil {
		h.logger.Info("profile image updated", zap.String("user_id", user.ID))
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "profile image updated"})
}

type joinRequest struct {
	FallaCode string `json:"codigoFalla"`
}

// RequestFallaJoin queues the caller on a falla's pending list. Joining
// a second falla while a request is open replaces the previous request
// on the caller's side but not on the old falla's list, matching the
// membership model where the falla resolves requests explicitly.
func (h *UserHandler) RequestFallaJoin(c echo.Context) error {
	var req joinRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.FallaCode == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "falla code is required")
	}

	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	falla, err := h.store.FindByFallaCode(c.Request().Context(), req.FallaCode)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "falla not found")
		}
		return err
	}

	user.FallaCode = req.FallaCode
	user.PendingJoin = true
	if err := h.store.Save(c.Request().Context(), user); err != nil {
		return err
	}

	falla.FallaInfo.AddPendingRequest(user.ID)
	if err := h.store.Save(c.Request().Context(), falla); err != nil {
		return err
	}

	if h.logger != nil {
		h.logger.Info("falla join requested",
			zap.String("user_id", user.ID),
			zap.String("falla_id", falla.ID))
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "join request sent"})
}

func (h *UserHandler) CancelFallaJoin(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	if !user.PendingJoin {
		return echo.NewHTTPError(http.StatusBadRequest, "no pending request")
	}

	falla, err := h.store.FindByFallaCode(c.Request().Context(), user.FallaCode)
	if err == nil {
		falla.FallaInfo.RemovePendingRequest(user.ID)
		if err := h.store.Save(c.Request().Context(), falla); err != nil {
			return err
		}
	} else if !errors.Is(err, users.ErrUserNotFound) {
		return err
	}

	user.PendingJoin = false
	user.FallaCode = ""
	if err := h.store.Save(c.Request().Context(), user); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "request cancelled"})
}
