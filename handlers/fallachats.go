package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/manugamu/pfc/services/fallachat"
	"github.com/manugamu/pfc/services/logging"
)

type FallaChatHandler struct {
	chats  *fallachat.Store
	logger *logging.Service
}

func NewFallaChatHandler(chats *fallachat.Store, logger *logging.Service) *FallaChatHandler {
	return &FallaChatHandler{
		chats:  chats,
		logger: logger,
	}
}

// Get returns the chat metadata for a falla code, creating the room on
// first access.
func (h *FallaChatHandler) Get(c echo.Context) error {
	chat, err := h.chats.GetOrCreate(c.Request().Context(), c.Param("fallaCode"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, chat)
}
