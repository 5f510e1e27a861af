package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clanops/roster-bot/internal/core/domain"
)

const collectionMembers = "members"

// MemberRepository implements ports.MemberRepository using MongoDB. The
// unique index on actor_id is the authoritative duplicate guard: concurrent
// inserts for the same actor cannot both succeed.
type MemberRepository struct {
	col *mongo.Collection
}

func NewMemberRepository(db *mongo.Database) *MemberRepository {
	return &MemberRepository{col: db.Collection(collectionMembers)}
}

// memberDoc is the stored row shape. The object-to-document mapping is
// internal to this repository; the domain type never carries driver concerns.
type memberDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	ActorID         int64              `bson:"actor_id"`
	Handle          string             `bson:"handle"`
	Nickname        string             `bson:"nickname"`
	ProofRef        string             `bson:"proof_ref,omitempty"`
	JoinDate        time.Time          `bson:"join_date"`
	Status          string             `bson:"status"`
	AddedBy         string             `bson:"added_by"`
	Notes           string             `bson:"notes,omitempty"`
	ExclusionDate   *time.Time         `bson:"exclusion_date,omitempty"`
	ExclusionReason *string            `bson:"exclusion_reason,omitempty"`
	ExcludedBy      *string            `bson:"excluded_by,omitempty"`
	CreatedAt       time.Time          `bson:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at"`
}

func toMemberDoc(m *domain.Member) memberDoc {
	return memberDoc{
		ActorID:         m.ActorID,
		Handle:          m.Handle,
		Nickname:        m.Nickname,
		ProofRef:        m.ProofRef,
		JoinDate:        m.JoinDate,
		Status:          string(m.Status),
		AddedBy:         m.AddedBy,
		Notes:           m.Notes,
		ExclusionDate:   m.ExclusionDate,
		ExclusionReason: m.ExclusionReason,
		ExcludedBy:      m.ExcludedBy,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func (d memberDoc) toDomain() *domain.Member {
	return &domain.Member{
		ID:              d.ID.Hex(),
		ActorID:         d.ActorID,
		Handle:          d.Handle,
		Nickname:        d.Nickname,
		ProofRef:        d.ProofRef,
		JoinDate:        d.JoinDate,
		Status:          domain.MemberStatus(d.Status),
		AddedBy:         d.AddedBy,
		Notes:           d.Notes,
		ExclusionDate:   d.ExclusionDate,
		ExclusionReason: d.ExclusionReason,
		ExcludedBy:      d.ExcludedBy,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

// Exists reports whether a member record exists for the actor.
func (r *MemberRepository) Exists(ctx context.Context, actorID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"actor_id": actorID})
	if err != nil {
		return false, fmt.Errorf("count members: %w", err)
	}
	return n > 0, nil
}

// Get retrieves a member by actor id.
func (r *MemberRepository) Get(ctx context.Context, actorID int64) (*domain.Member, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d memberDoc
	if err := r.col.FindOne(ctx, bson.M{"actor_id": actorID}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, fmt.Errorf("find member: %w", err)
	}
	return d.toDomain(), nil
}

// GetByHandle retrieves a member by exact stored handle.
func (r *MemberRepository) GetByHandle(ctx context.Context, handle string) (*domain.Member, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d memberDoc
	if err := r.col.FindOne(ctx, bson.M{"handle": handle}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, fmt.Errorf("find member by handle: %w", err)
	}
	return d.toDomain(), nil
}

// List returns all members, newest first.
func (r *MemberRepository) List(ctx context.Context) ([]*domain.Member, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer cursor.Close(ctx)

	var members []*domain.Member
	for cursor.Next(ctx) {
		var d memberDoc
		if err := cursor.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode member: %w", err)
		}
		members = append(members, d.toDomain())
	}
	return members, cursor.Err()
}

// Add inserts a new member. The unique index turns a concurrent duplicate
// into domain.ErrDuplicateActor rather than a second row.
func (r *MemberRepository) Add(ctx context.Context, m *domain.Member) (*domain.Member, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMemberDoc(m)
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateActor
		}
		return nil, fmt.Errorf("insert member: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

// UpdateStatus sets the member's status. Returns false when the actor is unknown.
func (r *MemberRepository) UpdateStatus(ctx context.Context, actorID int64, status domain.MemberStatus) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"actor_id": actorID},
		bson.M{"$set": bson.M{"status": string(status), "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return false, fmt.Errorf("update member status: %w", err)
	}
	return res.MatchedCount > 0, nil
}

// Exclude sets status to excluded and stamps the exclusion metadata in one
// document update. The filter keys on _id so manually added members, which
// all carry the zero actor id, cannot shadow each other. Filtering on the
// active status makes the call idempotent-false: a second exclusion matches
// nothing and cannot overwrite the first exclusion's reason, date, or
// excluded_by.
func (r *MemberRepository) Exclude(ctx context.Context, id, reason, excludedBy string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("exclude member: invalid id %q: %w", id, err)
	}

	now := time.Now().UTC()
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "status": string(domain.StatusActive)},
		bson.M{"$set": bson.M{
			"status":           string(domain.StatusExcluded),
			"exclusion_date":   now,
			"exclusion_reason": reason,
			"excluded_by":      excludedBy,
			"updated_at":       now,
		}},
	)
	if err != nil {
		return false, fmt.Errorf("exclude member: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

// EnsureIndexes creates the uniqueness constraint and query indexes. The
// actor_id index is partial: manually added members have no actor id yet and
// must not collide with each other on the zero value.
func (r *MemberRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "actor_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"actor_id": bson.M{"$gt": 0}}),
		},
		{Keys: bson.D{{Key: "handle", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
