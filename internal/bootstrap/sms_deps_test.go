package bootstrap

import (
	"testing"

	"sms_classifier/adapter/out/onnx"
	"sms_classifier/config"
	"sms_classifier/core/port/out"
	"sms_classifier/core/service/classification"
)

func f32(v float32) *float32 { return &v }

func TestApplyManifestModels(t *testing.T) {
	base := onnx.DefaultConfig("/models")
	m := &config.ModelManifest{
		Models: map[string]config.ModelEntry{
			"intent":   {File: "intent_v2.onnx", OutputSize: 12},
			"phishing": {Input: "features", Output: "probabilities"},
		},
	}

	got := ApplyManifestModels(base, m)

	intent := got.Models[out.ModelIntent]
	if intent.File != "intent_v2.onnx" || intent.OutputSize != 12 {
		t.Errorf("intent = %+v, want intent_v2.onnx with 12 outputs", intent)
	}
	phishing := got.Models[out.ModelPhishing]
	if phishing.File != "model_phishing.onnx" {
		t.Errorf("phishing file = %q, want default kept", phishing.File)
	}
	if phishing.InputName != "features" || phishing.OutputName != "probabilities" {
		t.Errorf("phishing tensors = %q/%q, want features/probabilities", phishing.InputName, phishing.OutputName)
	}
	if got.Models[out.ModelIsOTP] != base.Models[out.ModelIsOTP] {
		t.Errorf("is_otp = %+v, want unchanged", got.Models[out.ModelIsOTP])
	}
	if base.Models[out.ModelIntent].File != "model_intent.onnx" {
		t.Error("base config should not be modified")
	}
}

func TestApplyManifestThresholds(t *testing.T) {
	def := classification.DefaultThresholds()

	tests := []struct {
		name     string
		manifest *config.ModelManifest
		want     classification.Thresholds
	}{
		{
			name:     "empty manifest",
			manifest: &config.ModelManifest{},
			want:     def,
		},
		{
			name: "partial override",
			manifest: &config.ModelManifest{Thresholds: config.ThresholdOverrides{
				PhishingPositive: f32(0.7),
			}},
			want: classification.Thresholds{
				HeuristicTrust:    def.HeuristicTrust,
				HeuristicOverride: def.HeuristicOverride,
				OTPPositive:       def.OTPPositive,
				PhishingPositive:  0.7,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ApplyManifestThresholds(def, tt.manifest); got != tt.want {
				t.Errorf("ApplyManifestThresholds() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolveModelPath(t *testing.T) {
	if got := resolveModelPath("/models", "vocab.json"); got != "/models/vocab.json" {
		t.Errorf("relative = %q, want /models/vocab.json", got)
	}
	if got := resolveModelPath("/models", "/etc/vocab.json"); got != "/etc/vocab.json" {
		t.Errorf("absolute = %q, want /etc/vocab.json", got)
	}
}

func TestNewWorkerWithDeps_RequiresStore(t *testing.T) {
	if _, err := NewWorkerWithDeps(&config.Config{}, &Dependencies{}); err == nil {
		t.Error("NewWorkerWithDeps() without a store should fail")
	}
}
