package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clanops/roster-bot/internal/core/domain"
	"github.com/clanops/roster-bot/internal/core/ports"
)

type stubAdminService struct {
	listMembersFn func(ctx context.Context, admin ports.Actor) (*ports.MemberList, error)
	listPendingFn func(ctx context.Context, admin ports.Actor) ([]*domain.PendingRequest, error)
}

func (s *stubAdminService) Approve(_ context.Context, _ ports.Actor, _ int64) (*domain.PendingRequest, error) {
	panic("not used")
}

func (s *stubAdminService) Reject(_ context.Context, _ ports.Actor, _ int64) (*domain.PendingRequest, error) {
	panic("not used")
}

func (s *stubAdminService) Exclude(_ context.Context, _ ports.Actor, _, _ string) (*domain.Member, error) {
	panic("not used")
}

func (s *stubAdminService) Add(_ context.Context, _ ports.Actor, _, _ string) (*domain.Member, error) {
	panic("not used")
}

func (s *stubAdminService) ListPending(ctx context.Context, admin ports.Actor) ([]*domain.PendingRequest, error) {
	return s.listPendingFn(ctx, admin)
}

func (s *stubAdminService) ListMembers(ctx context.Context, admin ports.Actor) (*ports.MemberList, error) {
	return s.listMembersFn(ctx, admin)
}

func TestAdminHandler_ListMembers(t *testing.T) {
	e := newTestEcho()
	stub := &stubAdminService{
		listMembersFn: func(_ context.Context, admin ports.Actor) (*ports.MemberList, error) {
			if admin.ID != 900 {
				t.Fatalf("expected configured admin actor, got %d", admin.ID)
			}
			return &ports.MemberList{
				Active: []*domain.Member{{Handle: "@raven", Nickname: "Raven", Status: domain.StatusActive}},
			}, nil
		},
	}
	handler := NewAdminHandler(stub, 900)

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/members", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.ListMembers(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Active   []map[string]any `json:"active"`
		Excluded []map[string]any `json:"excluded"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Active) != 1 || resp.Active[0]["handle"] != "@raven" {
		t.Fatalf("unexpected active list: %+v", resp.Active)
	}
	if resp.Excluded == nil {
		t.Fatalf("excluded must render as [], not null")
	}
}

func TestAdminHandler_ListPending_Empty(t *testing.T) {
	e := newTestEcho()
	stub := &stubAdminService{
		listPendingFn: func(_ context.Context, _ ports.Actor) ([]*domain.PendingRequest, error) {
			return nil, nil
		},
	}
	handler := NewAdminHandler(stub, 900)

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/pending", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.ListPending(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Pending []any `json:"pending"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Pending == nil {
		t.Fatalf("pending must render as [], not null")
	}
}
