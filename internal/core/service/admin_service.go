package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/clanops/roster-bot/internal/core/domain"
	"github.com/clanops/roster-bot/internal/core/ports"
	"github.com/clanops/roster-bot/internal/core/validate"
)

type adminService struct {
	members      ports.MemberRepository
	pending      ports.PendingRepository
	notifier     ports.Notifier
	adminActorID int64
	log          zerolog.Logger
}

// NewAdminService returns an AdminService implementation. adminActorID is the
// single actor allowed to invoke any of its methods.
func NewAdminService(
	members ports.MemberRepository,
	pending ports.PendingRepository,
	notifier ports.Notifier,
	adminActorID int64,
	log zerolog.Logger,
) ports.AdminService {
	return &adminService{
		members:      members,
		pending:      pending,
		notifier:     notifier,
		adminActorID: adminActorID,
		log:          log,
	}
}

// authorize is the first step of every action: only the configured
// administrator may proceed, anyone else is turned away with no side effects.
func (s *adminService) authorize(admin ports.Actor) error {
	if admin.ID != s.adminActorID {
		return domain.ErrAccessDenied
	}
	return nil
}

// Approve converts a pending request into an active member. The two store
// calls are not one transaction: a crash between them leaves a stale pending
// request alongside the member, which a later Approve resolves by treating
// the member record as authoritative and removing the leftover request.
func (s *adminService) Approve(ctx context.Context, admin ports.Actor, targetActorID int64) (*domain.PendingRequest, error) {
	if err := s.authorize(admin); err != nil {
		return nil, err
	}

	request, err := s.pending.Get(ctx, targetActorID)
	if err != nil {
		return nil, fmt.Errorf("approve: %w", err)
	}

	exists, err := s.members.Exists(ctx, targetActorID)
	if err != nil {
		return nil, fmt.Errorf("approve: %w", err)
	}
	if exists {
		if _, err := s.pending.Remove(ctx, targetActorID); err != nil {
			s.log.Warn().Err(err).Int64("actor_id", targetActorID).Msg("failed to remove stale pending request")
		}
		return nil, domain.ErrAlreadyMember
	}

	member := request.ToMember(actorHandle(admin))
	if _, err := s.members.Add(ctx, member); err != nil {
		if errors.Is(err, domain.ErrDuplicateActor) {
			// Lost a race with a concurrent duplicate submission; the
			// member record wins.
			if _, rmErr := s.pending.Remove(ctx, targetActorID); rmErr != nil {
				s.log.Warn().Err(rmErr).Int64("actor_id", targetActorID).Msg("failed to remove stale pending request")
			}
			return nil, domain.ErrAlreadyMember
		}
		return nil, fmt.Errorf("approve: %w", err)
	}

	if _, err := s.pending.Remove(ctx, targetActorID); err != nil {
		s.log.Warn().Err(err).Int64("actor_id", targetActorID).Msg("member added but pending request removal failed")
	}

	s.log.Info().
		Int64("actor_id", targetActorID).
		Str("handle", request.Handle).
		Str("approved_by", member.AddedBy).
		Msg("application approved")

	s.notify(ctx, targetActorID, fmt.Sprintf(
		"Congratulations!\n\nYour membership application has been approved. Welcome, %s!", request.Nickname))

	return request, nil
}

// Reject discards a pending request and notifies the applicant.
func (s *adminService) Reject(ctx context.Context, admin ports.Actor, targetActorID int64) (*domain.PendingRequest, error) {
	if err := s.authorize(admin); err != nil {
		return nil, err
	}

	request, err := s.pending.Get(ctx, targetActorID)
	if err != nil {
		return nil, fmt.Errorf("reject: %w", err)
	}

	if _, err := s.pending.Remove(ctx, targetActorID); err != nil {
		return nil, fmt.Errorf("reject: %w", err)
	}

	s.log.Info().Int64("actor_id", targetActorID).Str("handle", request.Handle).Msg("application rejected")

	s.notify(ctx, targetActorID,
		"Unfortunately, your membership application has been rejected.\n\nYou may try registering again later with /register.")

	return request, nil
}

// Exclude removes a member from the roster. A second exclusion of the same
// member fails with ErrAlreadyExcluded and leaves the first exclusion's
// metadata untouched.
func (s *adminService) Exclude(ctx context.Context, admin ports.Actor, handle, reason string) (*domain.Member, error) {
	if err := s.authorize(admin); err != nil {
		return nil, err
	}
	if reason == "" {
		return nil, &validate.Error{Reason: "exclusion reason cannot be empty"}
	}

	member, err := s.members.GetByHandle(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("exclude: %w", err)
	}
	if member.Excluded() {
		return nil, domain.ErrAlreadyExcluded
	}

	excludedBy := actorHandle(admin)
	ok, err := s.members.Exclude(ctx, member.ID, reason, excludedBy)
	if err != nil {
		return nil, fmt.Errorf("exclude: %w", err)
	}
	if !ok {
		return nil, domain.ErrAlreadyExcluded
	}

	s.log.Info().
		Int64("actor_id", member.ActorID).
		Str("handle", member.Handle).
		Str("reason", reason).
		Str("excluded_by", excludedBy).
		Msg("member excluded")

	// Manually added members have no known chat; there is nobody to notify.
	if member.ActorID != 0 {
		s.notify(ctx, member.ActorID, fmt.Sprintf(
			"You have been excluded from the clan.\n\nReason: %s\n\nContact the administration if you have questions.", reason))
	}

	now := time.Now().UTC()
	member.Status = domain.StatusExcluded
	member.ExclusionDate = &now
	member.ExclusionReason = &reason
	member.ExcludedBy = &excludedBy
	return member, nil
}

// Add inserts a member directly, bypassing the application flow. The actor id
// is unknown for manually added members, so the handle serves as the roster
// key until the member interacts with the bot.
func (s *adminService) Add(ctx context.Context, admin ports.Actor, handle, nickname string) (*domain.Member, error) {
	if err := s.authorize(admin); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	member := &domain.Member{
		Handle:    handle,
		Nickname:  nickname,
		JoinDate:  now,
		Status:    domain.StatusActive,
		AddedBy:   actorHandle(admin),
		Notes:     "added manually",
		CreatedAt: now,
		UpdatedAt: now,
	}

	added, err := s.members.Add(ctx, member)
	if err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}

	s.log.Info().Str("handle", handle).Str("nickname", nickname).Msg("member added manually")
	return added, nil
}

// ListPending returns all open applications, newest first.
func (s *adminService) ListPending(ctx context.Context, admin ports.Actor) ([]*domain.PendingRequest, error) {
	if err := s.authorize(admin); err != nil {
		return nil, err
	}
	return s.pending.List(ctx)
}

// ListMembers returns the roster partitioned by status for display.
func (s *adminService) ListMembers(ctx context.Context, admin ports.Actor) (*ports.MemberList, error) {
	if err := s.authorize(admin); err != nil {
		return nil, err
	}

	members, err := s.members.List(ctx)
	if err != nil {
		return nil, err
	}

	list := &ports.MemberList{}
	for _, m := range members {
		if m.Excluded() {
			list.Excluded = append(list.Excluded, m)
		} else {
			list.Active = append(list.Active, m)
		}
	}
	return list, nil
}

// notify delivers a decision notification. Failures are logged and dropped;
// the action that produced them has already succeeded durably.
func (s *adminService) notify(ctx context.Context, actorID int64, text string) {
	if err := s.notifier.SendText(ctx, actorID, text); err != nil {
		s.log.Warn().Err(err).Int64("actor_id", actorID).Msg("failed to notify actor of decision")
	}
}
