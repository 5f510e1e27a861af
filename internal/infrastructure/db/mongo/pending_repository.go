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

const collectionPending = "pending_requests"

// PendingRepository implements ports.PendingRepository using MongoDB.
type PendingRepository struct {
	col *mongo.Collection
}

func NewPendingRepository(db *mongo.Database) *PendingRepository {
	return &PendingRepository{col: db.Collection(collectionPending)}
}

type pendingDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	ActorID   int64              `bson:"actor_id"`
	Handle    string             `bson:"handle"`
	Nickname  string             `bson:"nickname"`
	ProofRef  string             `bson:"proof_ref"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (d pendingDoc) toDomain() *domain.PendingRequest {
	return &domain.PendingRequest{
		ID:        d.ID.Hex(),
		ActorID:   d.ActorID,
		Handle:    d.Handle,
		Nickname:  d.Nickname,
		ProofRef:  d.ProofRef,
		CreatedAt: d.CreatedAt,
	}
}

// Get retrieves the pending request for an actor.
func (r *PendingRepository) Get(ctx context.Context, actorID int64) (*domain.PendingRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d pendingDoc
	if err := r.col.FindOne(ctx, bson.M{"actor_id": actorID}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPendingNotFound
		}
		return nil, fmt.Errorf("find pending request: %w", err)
	}
	return d.toDomain(), nil
}

// GetByHandle retrieves a pending request by stored handle.
func (r *PendingRepository) GetByHandle(ctx context.Context, handle string) (*domain.PendingRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d pendingDoc
	if err := r.col.FindOne(ctx, bson.M{"handle": handle}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPendingNotFound
		}
		return nil, fmt.Errorf("find pending request by handle: %w", err)
	}
	return d.toDomain(), nil
}

// Save inserts a pending request. The unique index enforces the one-request-
// per-actor rule under concurrent submissions.
func (r *PendingRepository) Save(ctx context.Context, p *domain.PendingRequest) (*domain.PendingRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := pendingDoc{
		ActorID:   p.ActorID,
		Handle:    p.Handle,
		Nickname:  p.Nickname,
		ProofRef:  p.ProofRef,
		CreatedAt: p.CreatedAt,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateActor
		}
		return nil, fmt.Errorf("insert pending request: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

// Remove deletes the pending request for an actor. Returns false when there
// was nothing to delete.
func (r *PendingRepository) Remove(ctx context.Context, actorID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"actor_id": actorID})
	if err != nil {
		return false, fmt.Errorf("delete pending request: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// List returns all pending requests, newest first.
func (r *PendingRepository) List(ctx context.Context) ([]*domain.PendingRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []*domain.PendingRequest
	for cursor.Next(ctx) {
		var d pendingDoc
		if err := cursor.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode pending request: %w", err)
		}
		requests = append(requests, d.toDomain())
	}
	return requests, cursor.Err()
}

// EnsureIndexes creates the one-request-per-actor constraint.
func (r *PendingRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "actor_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
