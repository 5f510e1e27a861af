package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/clanops/roster-bot/internal/api/metrics"
	"github.com/clanops/roster-bot/internal/core/domain"
	"github.com/clanops/roster-bot/internal/core/ports"
	"github.com/clanops/roster-bot/internal/core/ratelimit"
	"github.com/clanops/roster-bot/internal/core/validate"
)

// Deduper filters redelivered updates. A nil Deduper disables the check.
type Deduper interface {
	Seen(ctx context.Context, updateID int64) (bool, error)
}

// Router turns inbound chat updates into service calls and sends the
// resulting replies. The rate limiter runs before anything else: a denied
// update never reaches dedup or handler logic.
type Router struct {
	registration ports.RegistrationService
	admin        ports.AdminService
	notifier     ports.Notifier
	limiter      *ratelimit.Limiter
	dedup        Deduper
	adminActorID int64
	nickname     validate.NicknamePolicy
	log          zerolog.Logger
}

func NewRouter(
	registration ports.RegistrationService,
	admin ports.AdminService,
	notifier ports.Notifier,
	limiter *ratelimit.Limiter,
	dedup Deduper,
	adminActorID int64,
	nickname validate.NicknamePolicy,
	log zerolog.Logger,
) *Router {
	return &Router{
		registration: registration,
		admin:        admin,
		notifier:     notifier,
		limiter:      limiter,
		dedup:        dedup,
		adminActorID: adminActorID,
		nickname:     nickname,
		log:          log,
	}
}

// Handle processes one update end to end. Recoverable outcomes are delivered
// to the actor as replies; only system faults return an error, after the
// actor has been shown a generic failure message.
func (r *Router) Handle(ctx context.Context, u Update) error {
	kind := u.Kind()

	if ok, retryAfter := r.limiter.Admit(u.ActorID, time.Now()); !ok {
		metrics.RateLimitDeniedTotal.Inc()
		r.send(ctx, u.ActorID, &ports.Reply{Text: fmt.Sprintf(rateLimitedFmt, int(retryAfter.Seconds()))})
		return nil
	}

	if r.dedup != nil {
		seen, err := r.dedup.Seen(ctx, u.UpdateID)
		switch {
		case err != nil:
			// Fail open: a dedup outage must not stop the bot.
			r.log.Warn().Err(err).Int64("update_id", u.UpdateID).Msg("dedup check failed")
		case seen:
			metrics.UpdatesDedupTotal.WithLabelValues("hit").Inc()
			r.log.Debug().Int64("update_id", u.UpdateID).Msg("duplicate update skipped")
			return nil
		default:
			metrics.UpdatesDedupTotal.WithLabelValues("miss").Inc()
		}
	}

	start := time.Now()
	reply, err := r.route(ctx, u)
	metrics.UpdateProcessingDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.UpdatesProcessedTotal.WithLabelValues(kind, "error").Inc()
		r.send(ctx, u.ActorID, &ports.Reply{Text: genericFailureText})
		return fmt.Errorf("handle %s update: %w", kind, err)
	}

	metrics.UpdatesProcessedTotal.WithLabelValues(kind, "ok").Inc()
	if reply != nil {
		if reply.Event != "" {
			metrics.RegistrationsTotal.WithLabelValues(reply.Event).Inc()
		}
		r.send(ctx, u.ActorID, reply)
	}
	return nil
}

func (r *Router) route(ctx context.Context, u Update) (*ports.Reply, error) {
	actor := ports.Actor{ID: u.ActorID, Handle: u.Handle}

	switch {
	case u.Callback != nil:
		return r.handleCallback(ctx, actor, u.Callback)
	case u.Image != nil:
		return r.registration.SubmitProof(ctx, actor, ports.ProofImage{
			Data:        u.Image.Data,
			ContentType: u.Image.ContentType,
		})
	case strings.HasPrefix(u.Text, "/"):
		return r.handleCommand(ctx, actor, u.Text)
	default:
		return r.registration.SubmitNickname(ctx, actor, u.Text)
	}
}

func (r *Router) handleCommand(ctx context.Context, actor ports.Actor, text string) (*ports.Reply, error) {
	command := strings.ToLower(strings.Fields(text)[0])

	switch command {
	case "/start":
		return &ports.Reply{Text: welcomeText}, nil
	case "/help":
		help := helpText
		if actor.ID == r.adminActorID {
			help += adminHelpText
		}
		return &ports.Reply{Text: help}, nil
	case "/register", "/reg":
		return r.registration.Start(ctx, actor)
	case "/cancel":
		return r.registration.Cancel(ctx, actor)
	case "/approve", "/reject":
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return &ports.Reply{Text: "Usage: " + command + " <actor_id>"}, nil
		}
		targetID, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return &ports.Reply{Text: "Usage: " + command + " <actor_id>"}, nil
		}
		return r.handleDecision(ctx, actor, targetID, "", command == "/approve")
	case "/exclude":
		return r.handleExclude(ctx, actor, text)
	case "/add":
		return r.handleAdd(ctx, actor, text)
	case "/pending":
		return r.handleListPending(ctx, actor)
	case "/members", "/list":
		return r.handleListMembers(ctx, actor)
	default:
		return &ports.Reply{Text: unknownCommandText}, nil
	}
}

// handleCallback dispatches a button press by its payload prefix.
func (r *Router) handleCallback(ctx context.Context, actor ports.Actor, cb *Callback) (*ports.Reply, error) {
	switch {
	case strings.HasPrefix(cb.Data, "challenge:"):
		return r.registration.AnswerChallenge(ctx, actor, strings.TrimPrefix(cb.Data, "challenge:"))
	case strings.HasPrefix(cb.Data, "approve:"), strings.HasPrefix(cb.Data, "reject:"):
		payload := cb.Data[strings.Index(cb.Data, ":")+1:]
		targetID, err := strconv.ParseInt(payload, 10, 64)
		if err != nil {
			return &ports.Reply{Text: unknownCommandText}, nil
		}
		return r.handleDecision(ctx, actor, targetID, cb.MessageRef, strings.HasPrefix(cb.Data, "approve:"))
	default:
		r.log.Warn().Str("data", cb.Data).Msg("unknown callback payload")
		return &ports.Reply{Text: unknownCommandText}, nil
	}
}

// handleDecision runs an approve or reject, from either a command
// ("/approve 42") or a notification button press. After a button decision the
// notification caption is rewritten so the buttons cannot be pressed twice.
func (r *Router) handleDecision(ctx context.Context, actor ports.Actor, targetID int64, messageRef string, approve bool) (*ports.Reply, error) {
	var request *domain.PendingRequest
	var err error
	verb, outcome := "Rejected", "rejected"
	if approve {
		verb, outcome = "Approved", "approved"
		request, err = r.admin.Approve(ctx, actor, targetID)
	} else {
		request, err = r.admin.Reject(ctx, actor, targetID)
	}
	if err != nil {
		return r.adminErrorReply(err)
	}

	metrics.RegistrationsTotal.WithLabelValues(outcome).Inc()

	caption := fmt.Sprintf("%s: %s (%s)", verb, request.Handle, request.Nickname)
	if messageRef != "" {
		if err := r.notifier.EditCaption(ctx, actor.ID, messageRef, caption); err != nil {
			r.log.Warn().Err(err).Str("message_ref", messageRef).Msg("failed to edit decision caption")
		}
		return nil, nil
	}
	return &ports.Reply{Text: caption}, nil
}

func (r *Router) handleExclude(ctx context.Context, actor ports.Actor, text string) (*ports.Reply, error) {
	handle, reason, err := validate.ParseExclude(text)
	if err != nil {
		return &ports.Reply{Text: err.Error()}, nil
	}

	member, err := r.admin.Exclude(ctx, actor, handle, reason)
	if err != nil {
		return r.adminErrorReply(err)
	}

	metrics.ExclusionsTotal.Inc()
	return &ports.Reply{Text: fmt.Sprintf("Member %s (%s) has been excluded.\nReason: %s", member.Handle, member.Nickname, reason)}, nil
}

func (r *Router) handleAdd(ctx context.Context, actor ports.Actor, text string) (*ports.Reply, error) {
	handle, nickname, err := validate.ParseAdd(text, r.nickname)
	if err != nil {
		return &ports.Reply{Text: err.Error()}, nil
	}

	member, err := r.admin.Add(ctx, actor, handle, nickname)
	if err != nil {
		return r.adminErrorReply(err)
	}

	return &ports.Reply{Text: fmt.Sprintf("Member %s (%s) has been added to the roster.", member.Handle, member.Nickname)}, nil
}

func (r *Router) handleListPending(ctx context.Context, actor ports.Actor) (*ports.Reply, error) {
	requests, err := r.admin.ListPending(ctx, actor)
	if err != nil {
		return r.adminErrorReply(err)
	}

	if len(requests) == 0 {
		return &ports.Reply{Text: "There are no pending applications."}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Pending applications (%d):\n", len(requests))
	for i, p := range requests {
		fmt.Fprintf(&b, "\n%d. %s (%s)\n   Actor ID: %d\n   Submitted: %s",
			i+1, p.Handle, p.Nickname, p.ActorID, p.CreatedAt.Format("2006-01-02 15:04"))
	}
	return &ports.Reply{Text: b.String()}, nil
}

func (r *Router) handleListMembers(ctx context.Context, actor ports.Actor) (*ports.Reply, error) {
	list, err := r.admin.ListMembers(ctx, actor)
	if err != nil {
		return r.adminErrorReply(err)
	}

	if len(list.Active) == 0 && len(list.Excluded) == 0 {
		return &ports.Reply{Text: "The roster is empty."}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active members (%d):\n", len(list.Active))
	for i, m := range list.Active {
		fmt.Fprintf(&b, "%d. %s (%s) since %s\n", i+1, m.Handle, m.Nickname, m.JoinDate.Format("2006-01-02"))
	}
	if len(list.Excluded) > 0 {
		fmt.Fprintf(&b, "\nExcluded (%d):\n", len(list.Excluded))
		for i, m := range list.Excluded {
			reason := ""
			if m.ExclusionReason != nil {
				reason = " - " + *m.ExclusionReason
			}
			fmt.Fprintf(&b, "%d. %s (%s)%s\n", i+1, m.Handle, m.Nickname, reason)
		}
	}
	return &ports.Reply{Text: b.String()}, nil
}

// adminErrorReply maps expected administrative failures to user-facing
// replies. Unrecognized errors are system faults and bubble up.
func (r *Router) adminErrorReply(err error) (*ports.Reply, error) {
	switch {
	case errors.Is(err, domain.ErrAccessDenied):
		return &ports.Reply{Text: adminOnlyText}, nil
	case errors.Is(err, domain.ErrPendingNotFound):
		return &ports.Reply{Text: "Application not found. It may already have been processed."}, nil
	case errors.Is(err, domain.ErrAlreadyMember):
		return &ports.Reply{Text: "This applicant is already a member. The stale application has been removed."}, nil
	case errors.Is(err, domain.ErrMemberNotFound):
		return &ports.Reply{Text: "No member found with that handle."}, nil
	case errors.Is(err, domain.ErrAlreadyExcluded):
		return &ports.Reply{Text: "This member is already excluded."}, nil
	case errors.Is(err, domain.ErrDuplicateActor):
		return &ports.Reply{Text: "A member with this identity already exists."}, nil
	case validate.IsValidation(err):
		return &ports.Reply{Text: err.Error()}, nil
	default:
		return nil, err
	}
}

// send delivers a reply. Send failures are logged, not propagated: the
// operation already completed and must not be retried for a delivery hiccup.
func (r *Router) send(ctx context.Context, actorID int64, reply *ports.Reply) {
	if err := r.notifier.SendText(ctx, actorID, reply.Text, reply.Buttons...); err != nil {
		r.log.Warn().Err(err).Int64("actor_id", actorID).Msg("failed to send reply")
	}
}
