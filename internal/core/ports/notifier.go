package ports

import "context"

// Notifier is the outbound side of the chat transport. Sends may suspend and
// may fail; callers decide whether a failure is fatal. It usually is not:
// decision notifications are logged and dropped, never rolled back.
type Notifier interface {
	// SendText delivers a text message to an actor, optionally with inline
	// affordances.
	SendText(ctx context.Context, actorID int64, text string, buttons ...Button) error
	// SendImage delivers an image by storage reference with a caption and
	// optional inline affordances.
	SendImage(ctx context.Context, actorID int64, imageRef, caption string, buttons []Button) error
	// EditCaption rewrites the caption and clears the affordances of a
	// previously sent message.
	EditCaption(ctx context.Context, actorID int64, messageRef, caption string) error
}

// ProofStorage persists uploaded proof-of-identity images. A write failure is
// a hard error for the submission step.
type ProofStorage interface {
	// Put stores the image under the suggested name and returns the
	// locator used to retrieve it later.
	Put(ctx context.Context, data []byte, suggestedName, contentType string) (string, error)
}
