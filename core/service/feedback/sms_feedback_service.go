// Package feedback records user corrections to classification verdicts.
package feedback

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sms_classifier/core/domain"
	"sms_classifier/core/port/in"
	"sms_classifier/core/port/out"
	"sms_classifier/pkg/apperr"
	"sms_classifier/pkg/logger"
)

// Service stores feedback and marks the corrected message as reviewed.
type Service struct {
	messages           out.MessageRepository
	feedback           out.FeedbackRepository
	misclassifications out.MisclassificationRepository // optional export log
	now                func() time.Time
	log                zerolog.Logger
}

var _ in.FeedbackService = (*Service)(nil)

// NewService creates a feedback service. misclassifications may be nil.
func NewService(messages out.MessageRepository, feedback out.FeedbackRepository, misclassifications out.MisclassificationRepository) *Service {
	return &Service{
		messages:           messages,
		feedback:           feedback,
		misclassifications: misclassifications,
		now:                time.Now,
		log:                logger.Component("feedback"),
	}
}

// Submit snapshots the current verdict next to the correction. A failed
// export log write is logged and does not fail the submission.
func (s *Service) Submit(ctx context.Context, messageID int64, correction *domain.Correction) (*domain.Feedback, error) {
	if correction == nil || correction.IsEmpty() {
		return nil, apperr.InvalidInput("correction", "at least one of isOtp, otpIntent, isPhishing is required")
	}
	if correction.OTPIntent != nil && !validIntent(*correction.OTPIntent) {
		return nil, apperr.InvalidInput("otpIntent", "unknown intent label")
	}

	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	fb := &domain.Feedback{
		MessageID:          msg.ID,
		OriginalIsOTP:      msg.IsOTP,
		OriginalOTPIntent:  msg.OTPIntent,
		OriginalIsPhishing: msg.IsPhishing,
		OriginalPhishScore: msg.PhishScore,
		UserCorrection:     *correction,
		CreatedAt:          s.now(),
	}
	id, err := s.feedback.Create(ctx, fb)
	if err != nil {
		return nil, err
	}
	fb.ID = id

	if s.misclassifications != nil {
		entry := &domain.MisclassificationLog{
			ID:                  uuid.New().String(),
			MessageID:           msg.ID,
			Sender:              msg.Sender,
			Body:                logger.Redact(msg.Body),
			PredictedIsOTP:      msg.IsOTP,
			PredictedOTPIntent:  msg.OTPIntent,
			PredictedIsPhishing: msg.IsPhishing,
			Reasons:             msg.Reasons,
			UserNote:            correction.Note,
			CreatedAt:           fb.CreatedAt,
		}
		if err := s.misclassifications.Save(ctx, entry); err != nil {
			s.log.Warn().Err(err).Int64("message_id", msg.ID).Msg("misclassification log write failed")
		}
	}

	if err := s.messages.MarkReviewed(ctx, msg.ID); err != nil {
		return nil, err
	}

	s.log.Info().Int64("message_id", msg.ID).Int64("feedback_id", fb.ID).Msg("feedback recorded")
	return fb, nil
}

// History returns all feedback for a message, oldest first.
func (s *Service) History(ctx context.Context, messageID int64) ([]*domain.Feedback, error) {
	return s.feedback.ListByMessage(ctx, messageID)
}

// RecentMisclassifications returns the newest export log entries.
func (s *Service) RecentMisclassifications(ctx context.Context, limit int) ([]*domain.MisclassificationLog, error) {
	if s.misclassifications == nil {
		return []*domain.MisclassificationLog{}, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.misclassifications.ListRecent(ctx, limit)
}

func validIntent(label string) bool {
	for _, l := range domain.IntentLabels {
		if l == label {
			return true
		}
	}
	return false
}
