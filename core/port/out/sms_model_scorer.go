package out

import "context"

// ModelKind names one of the three bundled models.
type ModelKind string

const (
	ModelPhishing ModelKind = "phishing"
	ModelIsOTP    ModelKind = "is_otp"
	ModelIntent   ModelKind = "intent"
)

// AllModels lists every model the local classifier needs.
var AllModels = []ModelKind{ModelPhishing, ModelIsOTP, ModelIntent}

// ModelScorer runs an opaque model over a dense input vector. Binary models
// return [negative, positive]; the intent model returns one score per label.
type ModelScorer interface {
	Score(ctx context.Context, model ModelKind, input []float32) ([]float32, error)
	// Available loads the model if needed and reports whether it can score.
	Available(model ModelKind) bool
}
