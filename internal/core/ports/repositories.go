package ports

import (
	"context"

	"github.com/clanops/roster-bot/internal/core/domain"
)

// MemberRepository defines persistence operations for confirmed roster
// members. All operations are atomic per actor; uniqueness of actor_id is
// enforced by a storage-level constraint, not a prior read.
type MemberRepository interface {
	// Exists reports whether a member record exists for the actor.
	Exists(ctx context.Context, actorID int64) (bool, error)
	// Get retrieves a member by actor id, or domain.ErrMemberNotFound.
	Get(ctx context.Context, actorID int64) (*domain.Member, error)
	// GetByHandle retrieves a member by exact stored handle.
	GetByHandle(ctx context.Context, handle string) (*domain.Member, error)
	// List returns all members, newest first.
	List(ctx context.Context) ([]*domain.Member, error)
	// Add inserts a new member. Returns domain.ErrDuplicateActor when a
	// member with the same actor id already exists.
	Add(ctx context.Context, m *domain.Member) (*domain.Member, error)
	// UpdateStatus sets the member's status. Returns false when the actor
	// has no member record.
	UpdateStatus(ctx context.Context, actorID int64, status domain.MemberStatus) (bool, error)
	// Exclude atomically sets status to excluded and stamps the exclusion
	// metadata on the member record with the given id. Keyed on the record
	// id rather than the actor id because manually added members share the
	// zero actor id. Returns false when no active record matches; a repeated
	// call never alters the first exclusion.
	Exclude(ctx context.Context, id, reason, excludedBy string) (bool, error)
}

// PendingRepository defines persistence operations for in-flight membership
// applications.
type PendingRepository interface {
	// Get retrieves a pending request by actor id, or domain.ErrPendingNotFound.
	Get(ctx context.Context, actorID int64) (*domain.PendingRequest, error)
	// GetByHandle retrieves a pending request by exact stored handle.
	GetByHandle(ctx context.Context, handle string) (*domain.PendingRequest, error)
	// Save inserts a new pending request. Returns domain.ErrDuplicateActor
	// when one already exists for the actor.
	Save(ctx context.Context, p *domain.PendingRequest) (*domain.PendingRequest, error)
	// Remove deletes the actor's pending request. Returns false when none exists.
	Remove(ctx context.Context, actorID int64) (bool, error)
	// List returns all pending requests, newest first.
	List(ctx context.Context) ([]*domain.PendingRequest, error)
}

// UserRepository defines persistence for administrative HTTP API accounts.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
