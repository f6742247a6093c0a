package classification

import (
	"fmt"
	"strings"
	"time"

	"sms_classifier/core/domain"
	"sms_classifier/core/port/in"
	"sms_classifier/core/port/out"
)

// ClassifierOptions carries everything either classifier variant may need.
type ClassifierOptions struct {
	Mode          domain.InferenceMode
	Scorer        out.ModelScorer
	Heuristic     *HeuristicClassifier
	Thresholds    Thresholds
	ServerBaseURL string
	RemoteTimeout time.Duration
	RemoteOptions []RemoteOption
}

// ParseInferenceMode accepts ON_DEVICE or SERVER, case-insensitively.
func ParseInferenceMode(s string) (domain.InferenceMode, error) {
	switch domain.InferenceMode(strings.ToUpper(strings.TrimSpace(s))) {
	case domain.InferenceModeOnDevice, "":
		return domain.InferenceModeOnDevice, nil
	case domain.InferenceModeServer:
		return domain.InferenceModeServer, nil
	default:
		return "", fmt.Errorf("unknown inference mode %q", s)
	}
}

// NewClassifier selects the local or remote classifier for opts.Mode.
// Zero thresholds fall back to DefaultThresholds.
func NewClassifier(opts ClassifierOptions) (in.Classifier, error) {
	if opts.Thresholds == (Thresholds{}) {
		opts.Thresholds = DefaultThresholds()
	}
	switch opts.Mode {
	case domain.InferenceModeOnDevice, "":
		if opts.Scorer == nil {
			return nil, fmt.Errorf("on-device inference requires a model scorer")
		}
		return NewLocalClassifier(opts.Scorer, opts.Heuristic, opts.Thresholds), nil
	case domain.InferenceModeServer:
		if opts.ServerBaseURL == "" {
			return nil, fmt.Errorf("server inference requires a base URL")
		}
		cfg := DefaultRemoteConfig(opts.ServerBaseURL)
		if opts.RemoteTimeout > 0 {
			cfg.AttemptTimeout = opts.RemoteTimeout
		}
		return NewRemoteClassifier(cfg, opts.RemoteOptions...), nil
	default:
		return nil, fmt.Errorf("unknown inference mode %q", opts.Mode)
	}
}
