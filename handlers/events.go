package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/manugamu/pfc/middleware/bearerauth"
	"github.com/manugamu/pfc/services/events"
	"github.com/manugamu/pfc/services/logging"
	"github.com/manugamu/pfc/services/users"
	"go.uber.org/zap"
)

type EventHandler struct {
	events *events.Store
	users  *users.Store
	logger *logging.Service
}

func NewEventHandler(eventStore *events.Store, userStore *users.Store, logger *logging.Service) *EventHandler {
	return &EventHandler{
		events: eventStore,
		users:  userStore,
		logger: logger,
	}
}

func (h *EventHandler) List(c echo.Context) error {
	listed, err := h.events.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listed)
}

func (h *EventHandler) Get(c echo.Context) error {
	event, err := h.events.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, events.ErrEventNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "event not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, event)
}

type createEventRequest struct {
	Title       string    `json:"title"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
}

// Create requires a FALLA or FALLERO account. The role is checked
// against storage rather than the token claim so a demoted member
// cannot keep creating events until their token expires.
func (h *EventHandler) Create(c echo.Context) error {
	var req createEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}

	user, err := h.requestingUser(c)
	if err != nil {
		return err
	}

	if user.Role != users.RoleFalla && user.Role != users.RoleFallero {
		return echo.NewHTTPError(http.StatusForbidden, "not allowed to create events")
	}

	event := &events.Event{
		Title:        req.Title,
		Location:     req.Location,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		CreatorID:    user.ID,
		CreatorName:  user.Username,
		CreatorImage: user.ProfileImageURL,
		CreatorRole:  user.Role,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
	}
	if err := h.events.Create(c.Request().Context(), event); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, event)
}

// Delete is allowed for the event's creator, or for the falla whose
// member created it.
func (h *EventHandler) Delete(c echo.Context) error {
	user, err := h.requestingUser(c)
	if err != nil {
		return err
	}

	event, err := h.events.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, events.ErrEventNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "event not found")
		}
		return err
	}

	if !h.canDelete(user, event) {
		return echo.NewHTTPError(http.StatusForbidden, "not allowed to delete this event")
	}

	if err := h.events.Delete(c.Request().Context(), event.ID); err != nil {
		return err
	}

	if h.logger != nil {
		h.logger.Info("event deleted",
			zap.String("event_id", event.ID),
			zap.String("deleted_by", user.ID))
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *EventHandler) canDelete(user *users.User, event *events.Event) bool {
	if event.CreatorID == user.ID {
		return true
	}
	if !user.IsFalla() {
		return false
	}
	for _, id := range user.FallaInfo.FalleroIDs {
		if id == event.CreatorID {
			return true
		}
	}
	return false
}

func (h *EventHandler) requestingUser(c echo.Context) (*users.User, error) {
	identity, ok := bearerauth.CurrentIdentity(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	user, err := h.users.FindByEmail(c.Request().Context(), identity.Email)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "user not found")
		}
		return nil, err
	}
	return user, nil
}
