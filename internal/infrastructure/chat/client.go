// Package chat implements the outbound side of the chat transport as a thin
// JSON-over-HTTP client against the platform's bot gateway.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/clanops/roster-bot/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

// Config carries the gateway endpoint and credentials.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client implements ports.Notifier against the chat gateway HTTP API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a gateway client. A default timeout is applied when none
// is provided.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("chat gateway base url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

type button struct {
	Label string `json:"label"`
	Data  string `json:"data"`
}

type sendTextRequest struct {
	ActorID int64    `json:"actor_id"`
	Text    string   `json:"text"`
	Buttons []button `json:"buttons,omitempty"`
}

type sendImageRequest struct {
	ActorID  int64    `json:"actor_id"`
	ImageRef string   `json:"image_ref"`
	Caption  string   `json:"caption"`
	Buttons  []button `json:"buttons,omitempty"`
}

type editCaptionRequest struct {
	ActorID    int64  `json:"actor_id"`
	MessageRef string `json:"message_ref"`
	Caption    string `json:"caption"`
}

// SendText delivers a text message, optionally with inline buttons.
func (c *Client) SendText(ctx context.Context, actorID int64, text string, buttons ...ports.Button) error {
	return c.post(ctx, "/sendText", sendTextRequest{
		ActorID: actorID,
		Text:    text,
		Buttons: toWireButtons(buttons),
	})
}

// SendImage delivers an image by storage reference with a caption and
// optional inline buttons.
func (c *Client) SendImage(ctx context.Context, actorID int64, imageRef, caption string, buttons []ports.Button) error {
	return c.post(ctx, "/sendImage", sendImageRequest{
		ActorID:  actorID,
		ImageRef: imageRef,
		Caption:  caption,
		Buttons:  toWireButtons(buttons),
	})
}

// EditCaption rewrites the caption of a previously sent message and clears
// its buttons.
func (c *Client) EditCaption(ctx context.Context, actorID int64, messageRef, caption string) error {
	return c.post(ctx, "/editCaption", editCaptionRequest{
		ActorID:    actorID,
		MessageRef: messageRef,
		Caption:    caption,
	})
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gateway %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gateway %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

func toWireButtons(in []ports.Button) []button {
	if len(in) == 0 {
		return nil
	}
	out := make([]button, 0, len(in))
	for _, b := range in {
		out = append(out, button{Label: b.Label, Data: b.Data})
	}
	return out
}
