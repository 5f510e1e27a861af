package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/clanops/roster-bot/internal/core/challenge"
	"github.com/clanops/roster-bot/internal/core/domain"
	"github.com/clanops/roster-bot/internal/core/ports"
	"github.com/clanops/roster-bot/internal/core/validate"
)

// RegistrationConfig carries the tunable knobs of the registration flow.
type RegistrationConfig struct {
	ChallengeEnabled bool
	Nickname         validate.NicknamePolicy
	AdminActorID     int64
}

type registrationService struct {
	members  ports.MemberRepository
	pending  ports.PendingRepository
	sessions *SessionStore
	proofs   ports.ProofStorage
	notifier ports.Notifier
	bank     *challenge.Bank
	cfg      RegistrationConfig
	log      zerolog.Logger
}

// NewRegistrationService returns a RegistrationService implementation.
func NewRegistrationService(
	members ports.MemberRepository,
	pending ports.PendingRepository,
	sessions *SessionStore,
	proofs ports.ProofStorage,
	notifier ports.Notifier,
	bank *challenge.Bank,
	cfg RegistrationConfig,
	log zerolog.Logger,
) ports.RegistrationService {
	return &registrationService{
		members:  members,
		pending:  pending,
		sessions: sessions,
		proofs:   proofs,
		notifier: notifier,
		bank:     bank,
		cfg:      cfg,
		log:      log,
	}
}

// Start begins the flow. Actors that are already members or already have a
// pending application are turned away without touching their session.
func (s *registrationService) Start(ctx context.Context, actor ports.Actor) (*ports.Reply, error) {
	exists, err := s.members.Exists(ctx, actor.ID)
	if err != nil {
		s.sessions.Clear(actor.ID)
		return nil, fmt.Errorf("start registration: %w", err)
	}
	if exists {
		return &ports.Reply{Text: "You are already a member of the clan. Use /help to see available commands."}, nil
	}

	if _, err := s.pending.Get(ctx, actor.ID); err == nil {
		return &ports.Reply{Text: "Your application has already been submitted and is awaiting review. Please wait for the administrator's decision."}, nil
	} else if !errors.Is(err, domain.ErrPendingNotFound) {
		s.sessions.Clear(actor.ID)
		return nil, fmt.Errorf("start registration: %w", err)
	}

	if s.cfg.ChallengeEnabled {
		q := s.bank.Random()
		s.sessions.Put(actor.ID, Session{Step: StepChallenge, Challenge: q})
		return challengeReply(q), nil
	}

	s.sessions.Put(actor.ID, Session{Step: StepNickname})
	return &ports.Reply{Text: nicknamePrompt}, nil
}

// AnswerChallenge checks the answer. A wrong answer re-prompts with the same
// question; it is not a hard failure.
func (s *registrationService) AnswerChallenge(_ context.Context, actor ports.Actor, answer string) (*ports.Reply, error) {
	sess := s.sessions.Get(actor.ID)
	if sess.Step != StepChallenge {
		return s.unexpected(sess), nil
	}

	if !sess.Challenge.IsCorrect(answer) {
		s.log.Debug().Int64("actor_id", actor.ID).Msg("wrong challenge answer")
		reply := challengeReply(sess.Challenge)
		reply.Text = "That is not the right answer. Try again.\n\n" + reply.Text
		return reply, nil
	}

	s.sessions.Put(actor.ID, Session{Step: StepNickname})
	return &ports.Reply{Text: "Correct!\n\n" + nicknamePrompt}, nil
}

// SubmitNickname validates the nickname and advances to the proof step.
// Validation failures re-prompt in place, naming the violated rule.
func (s *registrationService) SubmitNickname(_ context.Context, actor ports.Actor, text string) (*ports.Reply, error) {
	sess := s.sessions.Get(actor.ID)
	if sess.Step != StepNickname {
		return s.unexpected(sess), nil
	}

	nickname, err := validate.Nickname(text, s.cfg.Nickname)
	if err != nil {
		return &ports.Reply{Text: err.Error() + "\n\nPlease send a valid nickname:"}, nil
	}

	s.sessions.Put(actor.ID, Session{Step: StepProof, Nickname: nickname})
	return &ports.Reply{Text: fmt.Sprintf(
		"Nickname %s accepted!\n\nNow send a screenshot of your in-game profile. It must clearly show your nickname and level.", nickname)}, nil
}

// SubmitProof persists the image and the pending request, then notifies the
// administrator. The session returns to idle regardless of whether the
// administrator notification succeeds; the request is already durable.
func (s *registrationService) SubmitProof(ctx context.Context, actor ports.Actor, image ports.ProofImage) (*ports.Reply, error) {
	sess := s.sessions.Get(actor.ID)
	if sess.Step != StepProof {
		return s.unexpected(sess), nil
	}

	contentType := image.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	name := fmt.Sprintf("proofs/%d_%s.jpg", actor.ID, time.Now().UTC().Format("20060102_150405"))

	proofRef, err := s.proofs.Put(ctx, image.Data, name, contentType)
	if err != nil {
		s.sessions.Clear(actor.ID)
		return nil, fmt.Errorf("store proof image: %w", err)
	}

	request := &domain.PendingRequest{
		ActorID:   actor.ID,
		Handle:    actorHandle(actor),
		Nickname:  sess.Nickname,
		ProofRef:  proofRef,
		CreatedAt: time.Now().UTC(),
	}

	saved, err := s.pending.Save(ctx, request)
	if err != nil {
		s.sessions.Clear(actor.ID)
		if errors.Is(err, domain.ErrDuplicateActor) {
			return &ports.Reply{Text: "Your application has already been submitted and is awaiting review."}, nil
		}
		return nil, fmt.Errorf("save pending request: %w", err)
	}

	s.log.Info().
		Int64("actor_id", actor.ID).
		Str("handle", saved.Handle).
		Str("nickname", saved.Nickname).
		Msg("registration submitted")

	s.notifyAdmin(ctx, saved)
	s.sessions.Clear(actor.ID)

	return &ports.Reply{
		Text: fmt.Sprintf(
			"Application submitted!\n\nYour application has been sent to the clan administrator. You will be notified once it is reviewed.\n\nYour nickname: %s", saved.Nickname),
		Event: "submitted",
	}, nil
}

// Cancel aborts the flow from any step. Cancelling an idle conversation is a
// no-op with its own message.
func (s *registrationService) Cancel(_ context.Context, actor ports.Actor) (*ports.Reply, error) {
	sess := s.sessions.Get(actor.ID)
	if sess.Step == StepIdle {
		return &ports.Reply{Text: "There is no operation to cancel."}, nil
	}

	s.sessions.Clear(actor.ID)
	s.log.Info().Int64("actor_id", actor.ID).Int("step", int(sess.Step)).Msg("registration cancelled")
	return &ports.Reply{Text: "Operation cancelled.\n\nUse /register to start over, or /help for available commands."}, nil
}

// UnexpectedInput re-prompts an actor whose current step has no transition
// for the received event type.
func (s *registrationService) UnexpectedInput(_ context.Context, actor ports.Actor) (*ports.Reply, error) {
	return s.unexpected(s.sessions.Get(actor.ID)), nil
}

func (s *registrationService) unexpected(sess Session) *ports.Reply {
	switch sess.Step {
	case StepChallenge:
		return &ports.Reply{Text: "Please answer the verification question using the buttons above, or /cancel to abort."}
	case StepNickname:
		return &ports.Reply{Text: nicknamePrompt}
	case StepProof:
		return &ports.Reply{Text: "Please send a photo (screenshot), not text.\n\nTo start over, use /cancel followed by /register."}
	default:
		return &ports.Reply{Text: "Use /register to apply for membership, or /help for available commands."}
	}
}

// notifyAdmin sends the submitted application to the administrator with
// approve/reject affordances. Failure is logged only: the request is already
// recorded and an administrator can still act on it via /pending.
func (s *registrationService) notifyAdmin(ctx context.Context, p *domain.PendingRequest) {
	caption := fmt.Sprintf(
		"New membership application\n\nHandle: %s\nNickname: %s\nActor ID: %d",
		p.Handle, p.Nickname, p.ActorID)
	buttons := []ports.Button{
		{Label: "Approve", Data: fmt.Sprintf("approve:%d", p.ActorID)},
		{Label: "Reject", Data: fmt.Sprintf("reject:%d", p.ActorID)},
	}
	if err := s.notifier.SendImage(ctx, s.cfg.AdminActorID, p.ProofRef, caption, buttons); err != nil {
		s.log.Warn().Err(err).Int64("actor_id", p.ActorID).Msg("failed to notify administrator")
	}
}

// challengeReply renders a question with its options as inline affordances.
func challengeReply(q challenge.Question) *ports.Reply {
	options := q.Options()
	buttons := make([]ports.Button, 0, len(options))
	for _, opt := range options {
		buttons = append(buttons, ports.Button{Label: opt, Data: "challenge:" + opt})
	}
	return &ports.Reply{
		Text:    "Quick check before we start, to keep automated bots out:\n\n" + q.Question,
		Buttons: buttons,
	}
}

// actorHandle falls back to a synthetic handle for actors without one.
func actorHandle(actor ports.Actor) string {
	if actor.Handle == "" {
		return fmt.Sprintf("user_%d", actor.ID)
	}
	return validate.NormalizeHandle(actor.Handle)
}

const nicknamePrompt = "Please send your in-game nickname. This is the name displayed in the game."
