package ports

import "context"

// Actor is an external chat identity: a stable numeric id plus the mutable
// display handle observed on the triggering event.
type Actor struct {
	ID     int64
	Handle string
}

// Button is an inline affordance attached to a reply. Data is the opaque
// callback payload the transport echoes back on a press.
type Button struct {
	Label string
	Data  string
}

// Reply is the structured outcome of a conversational operation: the message
// to show the originating actor plus optional next-step affordances. The
// caller performs the actual send. Event names a domain outcome for
// observability; it is empty when the reply is purely conversational.
type Reply struct {
	Text    string
	Buttons []Button
	Event   string
}

// ProofImage is an uploaded proof-of-identity image handed over by the
// transport layer.
type ProofImage struct {
	Data        []byte
	ContentType string
}

// RegistrationService drives a single actor through the multi-step
// registration flow. Recoverable outcomes (validation failures, duplicate
// attempts) are expressed in the returned Reply; only system faults surface
// as errors, and the caller renders those as a generic failure message.
type RegistrationService interface {
	// Start begins registration, guarded by membership and pending checks.
	Start(ctx context.Context, actor Actor) (*Reply, error)
	// AnswerChallenge processes a challenge answer; a wrong answer
	// re-prompts without leaving the challenge step.
	AnswerChallenge(ctx context.Context, actor Actor, answer string) (*Reply, error)
	// SubmitNickname captures the nickname and advances to the proof step.
	SubmitNickname(ctx context.Context, actor Actor, text string) (*Reply, error)
	// SubmitProof stores the proof image, persists the pending request, and
	// notifies the administrator. The conversation returns to idle whether
	// or not the administrator notification succeeds.
	SubmitProof(ctx context.Context, actor Actor, image ProofImage) (*Reply, error)
	// Cancel aborts the flow from any step, clearing accumulated data.
	Cancel(ctx context.Context, actor Actor) (*Reply, error)
	// UnexpectedInput handles an event the actor's current step has no
	// transition for, re-prompting with guidance.
	UnexpectedInput(ctx context.Context, actor Actor) (*Reply, error)
}
