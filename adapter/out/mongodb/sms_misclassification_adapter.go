package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"sms_classifier/core/domain"
	"sms_classifier/core/port/out"
)

// =============================================================================
// MongoDB Misclassification Log Adapter
// =============================================================================

const collectionMisclassifications = "misclassification_logs"

// MisclassificationAdapter implements out.MisclassificationRepository using MongoDB.
type MisclassificationAdapter struct {
	collection *mongo.Collection
}

var _ out.MisclassificationRepository = (*MisclassificationAdapter)(nil)

func NewMisclassificationAdapter(db *mongo.Database) *MisclassificationAdapter {
	return &MisclassificationAdapter{collection: db.Collection(collectionMisclassifications)}
}

// EnsureIndexes creates necessary indexes for the collection.
func (a *MisclassificationAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "message_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// misclassificationDocument represents the MongoDB document structure.
// Unknown verdicts are stored as null.
type misclassificationDocument struct {
	ID        string `bson:"id"`
	MessageID int64  `bson:"message_id"`
	Sender    string `bson:"sender"`
	Body      string `bson:"body"`

	PredictedIsOTP      *bool    `bson:"predicted_is_otp"`
	PredictedOTPIntent  *string  `bson:"predicted_otp_intent"`
	PredictedIsPhishing *bool    `bson:"predicted_is_phishing"`
	Reasons             []string `bson:"reasons"`

	UserNote  *string   `bson:"user_note,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

func toDocument(e *domain.MisclassificationLog) *misclassificationDocument {
	return &misclassificationDocument{
		ID:                  e.ID,
		MessageID:           e.MessageID,
		Sender:              e.Sender,
		Body:                e.Body,
		PredictedIsOTP:      e.PredictedIsOTP.Ptr(),
		PredictedOTPIntent:  e.PredictedOTPIntent,
		PredictedIsPhishing: e.PredictedIsPhishing.Ptr(),
		Reasons:             e.Reasons,
		UserNote:            e.UserNote,
		CreatedAt:           e.CreatedAt,
	}
}

func (d *misclassificationDocument) toDomain() *domain.MisclassificationLog {
	return &domain.MisclassificationLog{
		ID:                  d.ID,
		MessageID:           d.MessageID,
		Sender:              d.Sender,
		Body:                d.Body,
		PredictedIsOTP:      domain.FromPtr(d.PredictedIsOTP),
		PredictedOTPIntent:  d.PredictedOTPIntent,
		PredictedIsPhishing: domain.FromPtr(d.PredictedIsPhishing),
		Reasons:             d.Reasons,
		UserNote:            d.UserNote,
		CreatedAt:           d.CreatedAt,
	}
}

// Save upserts the entry by ID.
func (a *MisclassificationAdapter) Save(ctx context.Context, entry *domain.MisclassificationLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	opts := options.Replace().SetUpsert(true)
	_, err := a.collection.ReplaceOne(ctx, bson.M{"id": entry.ID}, toDocument(entry), opts)
	if err != nil {
		return fmt.Errorf("failed to save misclassification log: %w", err)
	}
	return nil
}

// ListRecent returns the newest entries first.
func (a *MisclassificationAdapter) ListRecent(ctx context.Context, limit int) ([]*domain.MisclassificationLog, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := a.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list misclassification logs: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []misclassificationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode misclassification logs: %w", err)
	}

	entries := make([]*domain.MisclassificationLog, len(docs))
	for i := range docs {
		entries[i] = docs[i].toDomain()
	}
	return entries, nil
}
