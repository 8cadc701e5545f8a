package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/manugamu/pfc/middleware/bearerauth"
	"github.com/manugamu/pfc/services/auth"
	"github.com/manugamu/pfc/services/logging"
	"go.uber.org/zap"
)

type AuthHandler struct {
	auth   *auth.Service
	logger *logging.Service
}

func NewAuthHandler(authSvc *auth.Service, logger *logging.Service) *AuthHandler {
	return &AuthHandler{
		auth:   authSvc,
		logger: logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	DeviceID string `json:"deviceId"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Password == "" || req.DeviceID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email, password and deviceId are required")
	}

	result, err := h.auth.Login(c.Request().Context(), req.Email, req.Password, req.DeviceID, c.Request().UserAgent())
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		if h.logger != nil {
			h.logger.Error("login failed", zap.Error(err))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":              result.User.ID,
		"username":        result.User.Username,
		"fullName":        result.User.FullName,
		"accessToken":     result.AccessToken,
		"refreshToken":    result.RefreshToken,
		"profileImageUrl": result.User.ProfileImageURL,
		"role":            result.User.Role,
		"fallaInfo":       result.User.FallaInfo,
	})
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FullName  string `json:"fullName"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	FallaCode string `json:"codigoFalla"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username, email and password are required")
	}

	user, err := h.auth.Register(c.Request().Context(), auth.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FullName:  req.FullName,
		Phone:     req.Phone,
		Address:   req.Address,
		FallaCode: req.FallaCode,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			return echo.NewHTTPError(http.StatusBadRequest, "user already exists")
		case errors.Is(err, auth.ErrInvalidFallaCode):
			return echo.NewHTTPError(http.StatusBadRequest, "invalid falla code")
		}
		if h.logger != nil {
			h.logger.Error("registration failed", zap.Error(err))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "registration failed")
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"id":             user.ID,
		"username":       user.Username,
		"email":          user.Email,
		"pendienteUnion": user.PendingJoin,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
	DeviceID     string `json:"deviceId"`
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.RefreshToken == "" || req.DeviceID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "refreshToken and deviceId are required")
	}

	result, err := h.auth.Refresh(c.Request().Context(), req.RefreshToken, req.DeviceID)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUnrecognizedToken):
			return echo.NewHTTPError(http.StatusUnauthorized, "refresh token not recognized")
		case errors.Is(err, auth.ErrInvalidOrExpired):
			return echo.NewHTTPError(http.StatusUnauthorized, "refresh token invalid or expired")
		}
		if h.logger != nil {
			h.logger.Error("refresh failed", zap.Error(err))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "refresh failed")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
		"username":     result.User.Username,
	})
}

// Logout always reports success so clients can clear local state even
// when the token they present is already unusable.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.auth.Logout(c.Request().Context(), bearerauth.BearerToken(c)); err != nil {
		if h.logger != nil {
			h.logger.Error("logout failed", zap.Error(err))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "logout failed")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "session closed"})
}

type logoutDeviceRequest struct {
	DeviceID string `json:"deviceId"`
}

func (h *AuthHandler) LogoutDevice(c echo.Context) error {
	var req logoutDeviceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.DeviceID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "deviceId is required")
	}

	accessToken := bearerauth.BearerToken(c)
	if accessToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token not provided")
	}

	_, err := h.auth.LogoutDevice(c.Request().Context(), accessToken, req.DeviceID)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidOrExpired):
			return echo.NewHTTPError(http.StatusUnauthorized, "token invalid or expired")
		case errors.Is(err, auth.ErrUserNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		if h.logger != nil {
			h.logger.Error("device logout failed", zap.Error(err))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "device logout failed")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "device disconnected"})
}
