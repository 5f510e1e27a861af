package bot

// Update is one inbound chat event delivered by the transport. Exactly one of
// Text, Image, or Callback carries the payload; UpdateID is the transport's
// monotonically increasing delivery id used for redelivery detection.
type Update struct {
	UpdateID int64     `json:"update_id" validate:"required"`
	ActorID  int64     `json:"actor_id" validate:"required"`
	Handle   string    `json:"handle,omitempty"`
	Text     string    `json:"text,omitempty"`
	Image    *Image    `json:"image,omitempty"`
	Callback *Callback `json:"callback,omitempty"`
}

// Image is an uploaded photo. Data travels base64-encoded on the wire.
type Image struct {
	Data        []byte `json:"data" validate:"required"`
	ContentType string `json:"content_type,omitempty"`
}

// Callback is a button press echoing back the opaque payload attached to the
// button. MessageRef identifies the message that hosted the button so its
// caption can be rewritten after an administrative decision.
type Callback struct {
	Data       string `json:"data" validate:"required"`
	MessageRef string `json:"message_ref,omitempty"`
}

// Kind classifies the update shape for routing and metrics.
func (u *Update) Kind() string {
	switch {
	case u.Callback != nil:
		return "callback"
	case u.Image != nil:
		return "image"
	case len(u.Text) > 0 && u.Text[0] == '/':
		return "command"
	default:
		return "text"
	}
}
