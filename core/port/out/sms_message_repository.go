package out

import (
	"context"

	"sms_classifier/core/domain"
)

// MessageRepository is the persistence port used by the batch worker and the API.
type MessageRepository interface {
	// ListUnclassified returns up to limit messages whose is_otp or is_phishing is NULL, newest first.
	ListUnclassified(ctx context.Context, limit int) ([]*domain.Message, error)
	// UpdateClassification writes every prediction field in one statement.
	UpdateClassification(ctx context.Context, id int64, pred *domain.Prediction) error

	Insert(ctx context.Context, msg *domain.Message) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Message, error)
	MarkReviewed(ctx context.Context, id int64) error
	ListNeedsReview(ctx context.Context, limit, offset int) ([]*domain.Message, error)
	Counts(ctx context.Context) (*domain.MessageCounts, error)
}

// FeedbackRepository stores user corrections.
type FeedbackRepository interface {
	Create(ctx context.Context, fb *domain.Feedback) (int64, error)
	ListByMessage(ctx context.Context, messageID int64) ([]*domain.Feedback, error)
}

// MisclassificationRepository stores the export log of corrected messages.
type MisclassificationRepository interface {
	Save(ctx context.Context, entry *domain.MisclassificationLog) error
	ListRecent(ctx context.Context, limit int) ([]*domain.MisclassificationLog, error)
}
