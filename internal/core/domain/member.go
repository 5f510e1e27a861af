package domain

import (
	"errors"
	"time"
)

// MemberStatus represents the roster state of a confirmed member.
type MemberStatus string

const (
	StatusActive   MemberStatus = "active"
	StatusExcluded MemberStatus = "excluded"
)

var ErrMemberNotFound = errors.New("member not found")
var ErrPendingNotFound = errors.New("pending request not found")
var ErrDuplicateActor = errors.New("actor already exists")
var ErrAlreadyMember = errors.New("actor is already a member")
var ErrAlreadyExcluded = errors.New("member is already excluded")
var ErrAccessDenied = errors.New("access denied")

// Member is a confirmed roster entry. The exclusion fields are either all nil
// (status active) or all set (status excluded).
type Member struct {
	ID              string       `json:"id" bson:"_id,omitempty"`
	ActorID         int64        `json:"actor_id" bson:"actor_id"`
	Handle          string       `json:"handle" bson:"handle"`
	Nickname        string       `json:"nickname" bson:"nickname"`
	ProofRef        string       `json:"proof_ref,omitempty" bson:"proof_ref,omitempty"`
	JoinDate        time.Time    `json:"join_date" bson:"join_date"`
	Status          MemberStatus `json:"status" bson:"status"`
	AddedBy         string       `json:"added_by" bson:"added_by"`
	Notes           string       `json:"notes,omitempty" bson:"notes,omitempty"`
	ExclusionDate   *time.Time   `json:"exclusion_date,omitempty" bson:"exclusion_date,omitempty"`
	ExclusionReason *string      `json:"exclusion_reason,omitempty" bson:"exclusion_reason,omitempty"`
	ExcludedBy      *string      `json:"excluded_by,omitempty" bson:"excluded_by,omitempty"`
	CreatedAt       time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at" bson:"updated_at"`
}

// Excluded reports whether the member has been removed from the roster.
func (m *Member) Excluded() bool {
	return m.Status == StatusExcluded
}

// PendingRequest is an in-flight membership application awaiting an
// administrative decision. At most one exists per actor.
type PendingRequest struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	ActorID   int64     `json:"actor_id" bson:"actor_id"`
	Handle    string    `json:"handle" bson:"handle"`
	Nickname  string    `json:"nickname" bson:"nickname"`
	ProofRef  string    `json:"proof_ref" bson:"proof_ref"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// ToMember builds the Member created when this request is approved.
func (p *PendingRequest) ToMember(addedBy string) *Member {
	now := time.Now().UTC()
	return &Member{
		ActorID:   p.ActorID,
		Handle:    p.Handle,
		Nickname:  p.Nickname,
		ProofRef:  p.ProofRef,
		JoinDate:  now,
		Status:    StatusActive,
		AddedBy:   addedBy,
		Notes:     "approved via bot",
		CreatedAt: now,
		UpdatedAt: now,
	}
}
