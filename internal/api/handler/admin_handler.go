package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clanops/roster-bot/internal/core/domain"
	"github.com/clanops/roster-bot/internal/core/ports"
)

// AdminHandler exposes read access to the roster for authenticated operators.
// Calls run under the administrator's identity: the JWT middleware has
// already established the operator, so the chat-level actor check is
// satisfied by construction.
type AdminHandler struct {
	admin        ports.AdminService
	adminActorID int64
}

func NewAdminHandler(admin ports.AdminService, adminActorID int64) *AdminHandler {
	return &AdminHandler{admin: admin, adminActorID: adminActorID}
}

type membersResponse struct {
	Active   []*domain.Member `json:"active"`
	Excluded []*domain.Member `json:"excluded"`
}

type pendingResponse struct {
	Pending []*domain.PendingRequest `json:"pending"`
}

// ListMembers handles GET /v1/admin/members.
func (h *AdminHandler) ListMembers(c echo.Context) error {
	list, err := h.admin.ListMembers(c.Request().Context(), ports.Actor{ID: h.adminActorID})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, membersResponse{
		Active:   emptyIfNil(list.Active),
		Excluded: emptyIfNil(list.Excluded),
	})
}

// ListPending handles GET /v1/admin/pending.
func (h *AdminHandler) ListPending(c echo.Context) error {
	requests, err := h.admin.ListPending(c.Request().Context(), ports.Actor{ID: h.adminActorID})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, pendingResponse{Pending: emptyIfNil(requests)})
}

// emptyIfNil keeps JSON arrays as [] instead of null.
func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
