package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clanops/roster-bot/internal/bot"
)

// UpdateQueue accepts inbound updates for asynchronous per-actor processing.
type UpdateQueue interface {
	Enqueue(u bot.Update)
}

// UpdateHandler ingests chat updates pushed by the platform webhook. The
// update is acknowledged as soon as it is queued; processing happens on the
// dispatcher workers so a slow handler never stalls the webhook.
type UpdateHandler struct {
	queue UpdateQueue
}

func NewUpdateHandler(queue UpdateQueue) *UpdateHandler {
	return &UpdateHandler{queue: queue}
}

// Receive handles POST /v1/updates.
func (h *UpdateHandler) Receive(c echo.Context) error {
	var u bot.Update
	if err := c.Bind(&u); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&u); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	h.queue.Enqueue(u)
	return c.NoContent(http.StatusAccepted)
}
