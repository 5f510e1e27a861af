package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/clanops/roster-bot/internal/bot"
)

type stubQueue struct {
	enqueued []bot.Update
}

func (q *stubQueue) Enqueue(u bot.Update) {
	q.enqueued = append(q.enqueued, u)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func TestUpdateHandler_Receive_Accepted(t *testing.T) {
	e := newTestEcho()
	queue := &stubQueue{}
	handler := NewUpdateHandler(queue)

	body := strings.NewReader(`{"update_id":7,"actor_id":42,"handle":"@raven_gaming","text":"/register"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/updates", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Receive(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if len(queue.enqueued) != 1 {
		t.Fatalf("expected 1 enqueued update, got %d", len(queue.enqueued))
	}
	u := queue.enqueued[0]
	if u.UpdateID != 7 || u.ActorID != 42 || u.Text != "/register" {
		t.Fatalf("unexpected update enqueued: %+v", u)
	}
}

func TestUpdateHandler_Receive_MissingActorID(t *testing.T) {
	e := newTestEcho()
	queue := &stubQueue{}
	handler := NewUpdateHandler(queue)

	req := httptest.NewRequest(http.MethodPost, "/v1/updates", strings.NewReader(`{"update_id":7,"text":"hi"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.Receive(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
	if len(queue.enqueued) != 0 {
		t.Fatalf("invalid update must not be enqueued")
	}
}

func TestUpdateHandler_Receive_MalformedJSON(t *testing.T) {
	e := newTestEcho()
	handler := NewUpdateHandler(&stubQueue{})

	req := httptest.NewRequest(http.MethodPost, "/v1/updates", strings.NewReader(`{not json`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.Receive(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}
