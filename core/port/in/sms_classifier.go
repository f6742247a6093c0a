package in

import (
	"context"

	"sms_classifier/core/domain"
)

// Classifier is the model scoring port. Local and remote implementations are
// interchangeable and selected at runtime.
type Classifier interface {
	// Predict never returns an error: failures surface as Unknown verdicts with a reason.
	Predict(ctx context.Context, features *domain.MessageFeatures) *domain.Prediction
	IsAvailable(ctx context.Context) bool
}

// ClassifyRequest is an on-demand classification request.
type ClassifyRequest struct {
	Text   string  `json:"text"`
	Sender *string `json:"sender,omitempty"`
}

// ClassifyResult is a prediction with its derived presentation fields.
type ClassifyResult struct {
	domain.Prediction
	Badge       domain.RiskBadge   `json:"badge"`
	Sensitivity domain.Sensitivity `json:"sensitivity"`
	OTPCode     string             `json:"otpCode,omitempty"`
}

// ClassificationService runs the full pipeline for ad-hoc text.
type ClassificationService interface {
	Classify(ctx context.Context, req *ClassifyRequest) (*ClassifyResult, error)
}

// FeedbackService records user corrections.
type FeedbackService interface {
	Submit(ctx context.Context, messageID int64, correction *domain.Correction) (*domain.Feedback, error)
}
