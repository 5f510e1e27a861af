package ports

import (
	"context"

	"github.com/clanops/roster-bot/internal/core/domain"
)

// MemberList partitions the roster by status for display purposes only.
type MemberList struct {
	Active   []*domain.Member
	Excluded []*domain.Member
}

// AdminService performs the administrative action set. Every method verifies
// that the calling actor is the single configured administrator before any
// side effect; other actors receive domain.ErrAccessDenied.
type AdminService interface {
	// Approve converts the target's pending request into an active member
	// and notifies the applicant.
	Approve(ctx context.Context, admin Actor, targetActorID int64) (*domain.PendingRequest, error)
	// Reject discards the target's pending request and notifies the applicant.
	Reject(ctx context.Context, admin Actor, targetActorID int64) (*domain.PendingRequest, error)
	// Exclude removes a member from the roster by handle, stamping the
	// reason and the excluding administrator, and notifies the member.
	Exclude(ctx context.Context, admin Actor, handle, reason string) (*domain.Member, error)
	// Add inserts a member directly, bypassing the application flow.
	Add(ctx context.Context, admin Actor, handle, nickname string) (*domain.Member, error)
	// ListPending returns all open applications, newest first.
	ListPending(ctx context.Context, admin Actor) ([]*domain.PendingRequest, error)
	// ListMembers returns the roster partitioned by status.
	ListMembers(ctx context.Context, admin Actor) (*MemberList, error)
}

// AuthService authenticates operator accounts for the administrative HTTP API.
type AuthService interface {
	Register(ctx context.Context, username, password, role string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
