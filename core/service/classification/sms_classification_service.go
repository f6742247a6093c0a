// Package classification implements the SMS classification pipeline:
// sanitizing, feature extraction, the rule-based OTP detector, and
// arbitration between heuristic and model verdicts.
package classification

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"sms_classifier/core/domain"
	"sms_classifier/core/port/in"
	"sms_classifier/core/port/out"
	"sms_classifier/pkg/apperr"
	"sms_classifier/pkg/cache"
	"sms_classifier/pkg/logger"
	"sms_classifier/pkg/metrics"
)

// sharedClassifyTimeout bounds one prediction shared by concurrent callers.
// It covers three remote attempts of 10s and their backoff.
const sharedClassifyTimeout = 45 * time.Second

// Service classifies ad-hoc text through the same pipeline the batch worker uses.
type Service struct {
	classifier in.Classifier
	extractor  *FeatureExtractor
	heuristic  *HeuristicClassifier
	tracker    *metrics.PerformanceTracker

	cache    out.PredictionCache // optional
	cacheTTL time.Duration

	group singleflight.Group
	log   zerolog.Logger
}

var _ in.ClassificationService = (*Service)(nil)

func NewService(
	classifier in.Classifier,
	extractor *FeatureExtractor,
	heuristic *HeuristicClassifier,
	tracker *metrics.PerformanceTracker,
	predictionCache out.PredictionCache,
	cacheTTL time.Duration,
) *Service {
	if heuristic == nil {
		heuristic = NewHeuristicClassifier()
	}
	if tracker == nil {
		tracker = metrics.NewPerformanceTracker()
	}
	return &Service{
		classifier: classifier,
		extractor:  extractor,
		heuristic:  heuristic,
		tracker:    tracker,
		cache:      predictionCache,
		cacheTTL:   cacheTTL,
		log:        logger.Component("classification_service"),
	}
}

// Classify runs the pipeline for one text. Identical concurrent requests
// share a single prediction. Only fully known verdicts are cached.
func (s *Service) Classify(ctx context.Context, req *in.ClassifyRequest) (*in.ClassifyResult, error) {
	if req == nil {
		return nil, apperr.MissingField("text")
	}
	text := Sanitize(req.Text)
	if text == "" {
		return nil, apperr.MissingField("text")
	}
	sender := ""
	if req.Sender != nil {
		sender = *req.Sender
	}

	key := cache.PredictionKey(text, sender)
	if s.cache != nil {
		var cached in.ClassifyResult
		found, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.log.Warn().Err(err).Msg("prediction cache read failed")
		} else if found {
			return &cached, nil
		}
	}

	// The shared call outlives any one caller's request.
	ch := s.group.DoChan(key, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedClassifyTimeout)
		defer cancel()
		return s.classify(ctx, text, req.Sender, key), nil
	})
	select {
	case res := <-ch:
		return res.Val.(*in.ClassifyResult), nil
	case <-ctx.Done():
		return nil, apperr.Timeout("classify")
	}
}

func (s *Service) classify(ctx context.Context, text string, sender *string, key string) *in.ClassifyResult {
	features := s.extractor.Extract(text, sender)
	pred := s.classifier.Predict(ctx, features)
	s.tracker.RecordMillis(pred.InferenceTimeMs)

	h := s.heuristic.Classify(text, features.SenderOrEmpty())
	result := &in.ClassifyResult{
		Prediction:  *pred,
		Badge:       domain.BadgeFor(pred.IsPhishing, pred.PhishScore),
		Sensitivity: domain.SensitivityFor(pred.IsOTP, pred.OTPIntent),
		OTPCode:     domain.OTPForCopy(text, pred.IsOTP, h),
	}

	s.log.Debug().
		Str("text", logger.Redact(text)).
		Str("is_otp", pred.IsOTP.String()).
		Str("is_phishing", pred.IsPhishing.String()).
		Int64("inference_ms", pred.InferenceTimeMs).
		Msg("classified")

	if s.cache != nil && pred.IsOTP.IsKnown() && pred.IsPhishing.IsKnown() {
		if err := s.cache.SetJSON(ctx, key, result, s.cacheTTL); err != nil {
			s.log.Warn().Err(err).Msg("prediction cache write failed")
		}
	}
	return result
}

// Available reports whether the underlying classifier can serve requests.
func (s *Service) Available(ctx context.Context) bool {
	return s.classifier.IsAvailable(ctx)
}

func (s *Service) Tracker() *metrics.PerformanceTracker {
	return s.tracker
}
