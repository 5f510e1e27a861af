package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/clanops/roster-bot/internal/core/domain"
	"github.com/clanops/roster-bot/internal/core/ports"
	"github.com/clanops/roster-bot/internal/core/validate"
)

type adminFixture struct {
	members  *stubMemberRepo
	pending  *stubPendingRepo
	notifier *stubNotifier
	svc      ports.AdminService
}

func newAdminFixture() *adminFixture {
	f := &adminFixture{
		members:  newStubMemberRepo(),
		pending:  newStubPendingRepo(),
		notifier: &stubNotifier{},
	}
	f.svc = NewAdminService(f.members, f.pending, f.notifier, testAdminID, zerolog.Nop())
	return f
}

func adminActor() ports.Actor {
	return ports.Actor{ID: testAdminID, Handle: "@clan_leader"}
}

func seedPending(f *adminFixture, actorID int64) {
	f.pending.byActor[actorID] = &domain.PendingRequest{
		ActorID:   actorID,
		Handle:    "@raven_gaming",
		Nickname:  "Raven",
		ProofRef:  "mem://proofs/42.jpg",
		CreatedAt: time.Now().UTC(),
	}
}

func TestAdmin_Approve_HappyPath(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()
	seedPending(f, 42)

	request, err := f.svc.Approve(ctx, adminActor(), 42)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if request.Nickname != "Raven" {
		t.Errorf("expected approved request returned, got %+v", request)
	}

	member, err := f.members.Get(ctx, 42)
	if err != nil {
		t.Fatalf("member not created: %v", err)
	}
	if member.Status != domain.StatusActive {
		t.Errorf("expected active status, got %q", member.Status)
	}
	if member.AddedBy != "@clan_leader" {
		t.Errorf("expected added_by stamped with approving handle, got %q", member.AddedBy)
	}

	if _, err := f.pending.Get(ctx, 42); !errors.Is(err, domain.ErrPendingNotFound) {
		t.Errorf("pending request should be removed after approval")
	}
	if len(f.notifier.texts) != 1 || f.notifier.texts[0].actorID != 42 {
		t.Errorf("expected exactly one applicant notification, got %+v", f.notifier.texts)
	}
}

func TestAdmin_Approve_NotFound(t *testing.T) {
	f := newAdminFixture()

	_, err := f.svc.Approve(context.Background(), adminActor(), 42)
	if !errors.Is(err, domain.ErrPendingNotFound) {
		t.Fatalf("expected ErrPendingNotFound, got %v", err)
	}
}

func TestAdmin_Approve_AlreadyMember_RemovesStalePending(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()
	seedPending(f, 42)
	f.members.put(&domain.Member{ActorID: 42, Status: domain.StatusActive})

	_, err := f.svc.Approve(ctx, adminActor(), 42)
	if !errors.Is(err, domain.ErrAlreadyMember) {
		t.Fatalf("expected ErrAlreadyMember, got %v", err)
	}
	if _, err := f.pending.Get(ctx, 42); !errors.Is(err, domain.ErrPendingNotFound) {
		t.Errorf("stale pending request should be removed opportunistically")
	}
}

func TestAdmin_Reject(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()
	seedPending(f, 42)

	request, err := f.svc.Reject(ctx, adminActor(), 42)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if request.ActorID != 42 {
		t.Errorf("expected rejected request returned")
	}
	if _, err := f.pending.Get(ctx, 42); !errors.Is(err, domain.ErrPendingNotFound) {
		t.Errorf("pending request should be removed after rejection")
	}
	if _, err := f.members.Get(ctx, 42); !errors.Is(err, domain.ErrMemberNotFound) {
		t.Errorf("rejection must not create a member")
	}
	if len(f.notifier.texts) != 1 {
		t.Errorf("expected applicant notified of rejection")
	}
}

func TestAdmin_Exclude_ThenSecondAttemptFails(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()
	f.members.put(&domain.Member{ActorID: 42, Handle: "@raven_gaming", Status: domain.StatusActive})

	member, err := f.svc.Exclude(ctx, adminActor(), "@raven_gaming", "rule violation")
	if err != nil {
		t.Fatalf("Exclude: %v", err)
	}
	if member.Status != domain.StatusExcluded {
		t.Errorf("expected excluded status")
	}

	stored := f.members.byActorID(42)
	if stored.ExclusionReason == nil || *stored.ExclusionReason != "rule violation" {
		t.Errorf("expected exclusion reason stamped, got %v", stored.ExclusionReason)
	}
	if stored.ExcludedBy == nil || *stored.ExcludedBy != "@clan_leader" {
		t.Errorf("expected excluded_by stamped, got %v", stored.ExcludedBy)
	}
	if stored.ExclusionDate == nil {
		t.Errorf("expected exclusion date stamped")
	}
	firstDate := *stored.ExclusionDate
	if len(f.notifier.texts) != 1 || f.notifier.texts[0].actorID != 42 {
		t.Errorf("expected excluded member notified")
	}

	// Second attempt is idempotent-false and leaves the first exclusion intact.
	_, err = f.svc.Exclude(ctx, adminActor(), "@raven_gaming", "another reason")
	if !errors.Is(err, domain.ErrAlreadyExcluded) {
		t.Fatalf("expected ErrAlreadyExcluded, got %v", err)
	}
	if *f.members.byActorID(42).ExclusionReason != "rule violation" {
		t.Errorf("second exclude must not alter the first exclusion's reason")
	}
	if !f.members.byActorID(42).ExclusionDate.Equal(firstDate) {
		t.Errorf("second exclude must not alter the first exclusion's date")
	}
}

func TestAdmin_Exclude_UnknownHandle(t *testing.T) {
	f := newAdminFixture()

	_, err := f.svc.Exclude(context.Background(), adminActor(), "@nobody_here", "reason")
	if !errors.Is(err, domain.ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestAdmin_Exclude_EmptyReason(t *testing.T) {
	f := newAdminFixture()
	f.members.put(&domain.Member{ActorID: 42, Handle: "@raven_gaming", Status: domain.StatusActive})

	_, err := f.svc.Exclude(context.Background(), adminActor(), "@raven_gaming", "")
	if !validate.IsValidation(err) {
		t.Fatalf("expected validation error for missing reason, got %v", err)
	}
	if f.members.byActorID(42).Status != domain.StatusActive {
		t.Errorf("member must be untouched on input error")
	}
}

func TestAdmin_AccessDenied_NoSideEffects(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()
	seedPending(f, 42)
	f.members.put(&domain.Member{ActorID: 7, Handle: "@some_member", Status: domain.StatusActive})
	intruder := ports.Actor{ID: 555, Handle: "@intruder_x"}

	if _, err := f.svc.Approve(ctx, intruder, 42); !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("Approve: expected ErrAccessDenied, got %v", err)
	}
	if _, err := f.svc.Reject(ctx, intruder, 42); !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("Reject: expected ErrAccessDenied, got %v", err)
	}
	if _, err := f.svc.Exclude(ctx, intruder, "@some_member", "reason"); !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("Exclude: expected ErrAccessDenied, got %v", err)
	}
	if _, err := f.svc.ListPending(ctx, intruder); !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("ListPending: expected ErrAccessDenied, got %v", err)
	}

	// Store unchanged.
	if _, err := f.pending.Get(ctx, 42); err != nil {
		t.Errorf("pending request must survive denied actions: %v", err)
	}
	if f.members.byActorID(7).Status != domain.StatusActive {
		t.Errorf("member must survive denied exclusion")
	}
	if len(f.notifier.texts) != 0 {
		t.Errorf("no notifications on denied actions")
	}
}

func TestAdmin_Add_Manual(t *testing.T) {
	f := newAdminFixture()

	member, err := f.svc.Add(context.Background(), adminActor(), "@new_player", "Falcon")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if member.Status != domain.StatusActive {
		t.Errorf("expected active status")
	}
	if member.AddedBy != "@clan_leader" {
		t.Errorf("expected added_by stamped, got %q", member.AddedBy)
	}
}

func TestAdmin_Exclude_ManualMember_LeavesOtherManualMembersAlone(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()

	// Manually added members all carry the zero actor id; exclusion must
	// target the resolved record, not whichever record shares the actor id.
	if _, err := f.svc.Add(ctx, adminActor(), "@first_manual", "First"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := f.svc.Add(ctx, adminActor(), "@second_manual", "Second"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	member, err := f.svc.Exclude(ctx, adminActor(), "@second_manual", "left the community")
	if err != nil {
		t.Fatalf("Exclude: %v", err)
	}
	if member.Handle != "@second_manual" || member.Status != domain.StatusExcluded {
		t.Errorf("expected @second_manual excluded, got %+v", member)
	}

	first, err := f.members.GetByHandle(ctx, "@first_manual")
	if err != nil {
		t.Fatalf("GetByHandle: %v", err)
	}
	if first.Status != domain.StatusActive || first.ExclusionReason != nil {
		t.Errorf("other manual member must be untouched, got %+v", first)
	}

	second, err := f.members.GetByHandle(ctx, "@second_manual")
	if err != nil {
		t.Fatalf("GetByHandle: %v", err)
	}
	if second.Status != domain.StatusExcluded || second.ExclusionReason == nil {
		t.Errorf("expected exclusion stamped on @second_manual, got %+v", second)
	}

	// There is no chat to notify for a manually added member.
	if len(f.notifier.texts) != 0 {
		t.Errorf("expected no notification for a member without an actor id, got %+v", f.notifier.texts)
	}
}

func TestAdmin_ListPending_NewestFirst(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()
	base := time.Now().UTC()
	for i, actorID := range []int64{11, 12, 13} {
		f.pending.byActor[actorID] = &domain.PendingRequest{
			ActorID:   actorID,
			Handle:    fmt.Sprintf("@applicant_%d", actorID),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}

	requests, err := f.svc.ListPending(ctx, adminActor())
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(requests) != 3 {
		t.Fatalf("expected 3 pending requests, got %d", len(requests))
	}
	for i, want := range []int64{13, 12, 11} {
		if requests[i].ActorID != want {
			t.Errorf("position %d: expected actor %d, got %d", i, want, requests[i].ActorID)
		}
	}
}

func TestAdmin_ListMembers_PartitionsByStatus(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()
	f.members.put(&domain.Member{ActorID: 1, Handle: "@one_active", Status: domain.StatusActive})
	f.members.put(&domain.Member{ActorID: 2, Handle: "@two_gone", Status: domain.StatusExcluded})
	f.members.put(&domain.Member{ActorID: 3, Handle: "@three_active", Status: domain.StatusActive})

	list, err := f.svc.ListMembers(ctx, adminActor())
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	if len(list.Active) != 2 {
		t.Errorf("expected 2 active members, got %d", len(list.Active))
	}
	if len(list.Excluded) != 1 {
		t.Errorf("expected 1 excluded member, got %d", len(list.Excluded))
	}
}
