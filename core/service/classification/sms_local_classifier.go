package classification

import (
	"context"

	"sms_classifier/core/domain"
	"sms_classifier/core/port/out"
)

// LocalClassifier scores messages with the bundled models.
type LocalClassifier struct {
	scorer  out.ModelScorer
	arbiter *Arbiter
}

func NewLocalClassifier(scorer out.ModelScorer, heuristic *HeuristicClassifier, thresholds Thresholds) *LocalClassifier {
	return &LocalClassifier{
		scorer:  scorer,
		arbiter: NewArbiter(heuristic, scorer, thresholds),
	}
}

func (c *LocalClassifier) Predict(ctx context.Context, features *domain.MessageFeatures) *domain.Prediction {
	return c.arbiter.Resolve(ctx, features)
}

// IsAvailable reports whether all three models loaded.
func (c *LocalClassifier) IsAvailable(_ context.Context) bool {
	for _, m := range out.AllModels {
		if !c.scorer.Available(m) {
			return false
		}
	}
	return true
}
