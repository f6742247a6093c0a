package classification

import (
	"context"
	"fmt"
	"time"

	"sms_classifier/core/domain"
	"sms_classifier/core/port/out"
)

// Thresholds tunes arbitration. The defaults match the trained models.
type Thresholds struct {
	// HeuristicTrust: above this the heuristic verdict is final and the is-OTP model is skipped.
	HeuristicTrust float32
	// HeuristicOverride: above this the heuristic overrides a negative is-OTP model verdict.
	HeuristicOverride float32
	OTPPositive       float32
	PhishingPositive  float32
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		HeuristicTrust:    0.8,
		HeuristicOverride: 0.5,
		OTPPositive:       0.5,
		PhishingPositive:  0.5,
	}
}

// Arbiter combines the heuristic verdict with model scores. The heuristic
// decides obvious OTPs, the is-OTP model arbitrates low-confidence cases, and
// phishing always comes from the model.
type Arbiter struct {
	heuristic  *HeuristicClassifier
	scorer     out.ModelScorer
	thresholds Thresholds
}

func NewArbiter(heuristic *HeuristicClassifier, scorer out.ModelScorer, thresholds Thresholds) *Arbiter {
	if heuristic == nil {
		heuristic = NewHeuristicClassifier()
	}
	return &Arbiter{heuristic: heuristic, scorer: scorer, thresholds: thresholds}
}

// Resolve produces the final prediction. A scoring failure yields an all-Unknown
// prediction whose reason names the error.
func (a *Arbiter) Resolve(ctx context.Context, features *domain.MessageFeatures) *domain.Prediction {
	start := time.Now()
	pred, err := a.resolve(ctx, features)
	if err != nil {
		return domain.UnknownPrediction("Error: "+err.Error(), time.Since(start).Milliseconds())
	}
	pred.InferenceTimeMs = time.Since(start).Milliseconds()
	return pred
}

func (a *Arbiter) resolve(ctx context.Context, features *domain.MessageFeatures) (*domain.Prediction, error) {
	input := features.Combined()
	var reasons []string

	phishScores, err := a.binaryScores(ctx, out.ModelPhishing, input)
	if err != nil {
		return nil, err
	}
	phishScore := phishScores[1]
	isPhishing := phishScore > a.thresholds.PhishingPositive
	if isPhishing {
		reasons = append(reasons, fmt.Sprintf("Phishing score: %.2f", phishScore))
	}

	h := a.heuristic.Classify(features.Text, features.SenderOrEmpty())

	var isOTP, fromHeuristic bool
	switch {
	case h.IsOTP && h.Confidence > a.thresholds.HeuristicTrust:
		isOTP, fromHeuristic = true, true
		reasons = append(reasons, h.Reasons...)
		reasons = append(reasons, fmt.Sprintf("OTP detected by heuristics (confidence: %.2f)", h.Confidence))
	default:
		otpScores, err := a.binaryScores(ctx, out.ModelIsOTP, input)
		if err != nil {
			return nil, err
		}
		isOTP = otpScores[1] > a.thresholds.OTPPositive
		switch {
		case isOTP:
			reasons = append(reasons, fmt.Sprintf("OTP detected by ML (score: %.2f)", otpScores[1]))
		case h.Confidence > a.thresholds.HeuristicOverride:
			isOTP, fromHeuristic = true, true
			reasons = append(reasons, h.Reasons...)
			reasons = append(reasons, fmt.Sprintf("ML negative but heuristics positive (confidence: %.2f)", h.Confidence))
		}
	}

	var intent *string
	if isOTP {
		switch {
		case h.SuggestedIntent != nil:
			label := *h.SuggestedIntent
			intent = &label
			if !fromHeuristic {
				reasons = append(reasons, fmt.Sprintf("OTP Intent: %s (heuristic)", label))
			}
		default:
			label, err := a.intent(ctx, input)
			if err != nil {
				return nil, err
			}
			intent = &label
			reasons = append(reasons, "OTP Intent: "+label)
		}
	}

	return &domain.Prediction{
		IsOTP:      domain.FromBool(isOTP),
		OTPIntent:  intent,
		IsPhishing: domain.FromBool(isPhishing),
		PhishScore: phishScore,
		Reasons:    reasons,
	}, nil
}

// binaryScores returns a [negative, positive] pair.
func (a *Arbiter) binaryScores(ctx context.Context, model out.ModelKind, input []float32) ([]float32, error) {
	scores, err := a.scorer.Score(ctx, model, input)
	if err != nil {
		return nil, fmt.Errorf("%s model: %w", model, err)
	}
	if len(scores) < 2 {
		return nil, fmt.Errorf("%s model: expected 2 scores, got %d", model, len(scores))
	}
	return scores, nil
}

// intent returns the label with the highest score.
func (a *Arbiter) intent(ctx context.Context, input []float32) (string, error) {
	scores, err := a.scorer.Score(ctx, out.ModelIntent, input)
	if err != nil {
		return "", fmt.Errorf("%s model: %w", out.ModelIntent, err)
	}
	if len(scores) == 0 {
		return domain.IntentUnknown, nil
	}
	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}
	return domain.IntentForIndex(best), nil
}
