package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Model names accepted under models: in the manifest.
var manifestModels = map[string]bool{"phishing": true, "is_otp": true, "intent": true}

// ModelManifest describes a model bundle. Every field is optional and only
// overrides the built-in defaults.
type ModelManifest struct {
	Vocabulary string                `yaml:"vocabulary"`
	Models     map[string]ModelEntry `yaml:"models"`
	Thresholds ThresholdOverrides    `yaml:"thresholds"`
}

// ModelEntry overrides one model's file and tensor names.
type ModelEntry struct {
	File       string `yaml:"file"`
	Input      string `yaml:"input"`
	Output     string `yaml:"output"`
	OutputSize int    `yaml:"output_size"`
}

type ThresholdOverrides struct {
	HeuristicTrust    *float32 `yaml:"heuristic_trust"`
	HeuristicOverride *float32 `yaml:"heuristic_override"`
	OTPPositive       *float32 `yaml:"otp_positive"`
	PhishingPositive  *float32 `yaml:"phishing_positive"`
}

// LoadModelManifest reads the manifest at path. An empty path returns an
// empty manifest. Relative file names stay relative to the model directory.
func LoadModelManifest(path string) (*ModelManifest, error) {
	if path == "" {
		return &ModelManifest{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model manifest: %w", err)
	}

	var m ModelManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse model manifest %s: %w", filepath.Base(path), err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *ModelManifest) Validate() error {
	for name, entry := range m.Models {
		if !manifestModels[name] {
			return fmt.Errorf("model manifest: unknown model %q", name)
		}
		if entry.OutputSize < 0 {
			return fmt.Errorf("model manifest: %s output_size must not be negative", name)
		}
	}

	t := m.Thresholds
	for name, v := range map[string]*float32{
		"heuristic_trust":    t.HeuristicTrust,
		"heuristic_override": t.HeuristicOverride,
		"otp_positive":       t.OTPPositive,
		"phishing_positive":  t.PhishingPositive,
	} {
		if v != nil && (*v < 0 || *v > 1) {
			return fmt.Errorf("model manifest: threshold %s must be within [0, 1], got %v", name, *v)
		}
	}
	return nil
}
