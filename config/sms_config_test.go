package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"INFERENCE_MODE", "BATCH_SIZE", "MODEL_DIR", "VOCABULARY_PATH", "REMOTE_TIMEOUT_SEC", "SERVER_API_BASE_URL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.InferenceMode != InferenceOnDevice {
		t.Errorf("InferenceMode = %q, want %q", cfg.InferenceMode, InferenceOnDevice)
	}
	if cfg.BatchSize != 10 {
		t.Errorf("BatchSize = %d, want 10", cfg.BatchSize)
	}
	if cfg.RemoteTimeout != 10*time.Second {
		t.Errorf("RemoteTimeout = %v, want 10s", cfg.RemoteTimeout)
	}
	if want := filepath.Join("models", "feature_map.json"); cfg.VocabularyPath != want {
		t.Errorf("VocabularyPath = %q, want %q", cfg.VocabularyPath, want)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{"server mode with url", map[string]string{"INFERENCE_MODE": "server", "SERVER_API_BASE_URL": "http://backend/"}, false},
		{"server mode without url", map[string]string{"INFERENCE_MODE": "SERVER", "SERVER_API_BASE_URL": ""}, true},
		{"unknown mode", map[string]string{"INFERENCE_MODE": "CLOUD"}, true},
		{"zero batch", map[string]string{"INFERENCE_MODE": "", "BATCH_SIZE": "0"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && cfg.ServerAPIBaseURL == "http://backend/" {
				t.Error("trailing slash should be trimmed")
			}
		})
	}
}

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "models.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadModelManifest(t *testing.T) {
	path := writeManifest(t, `
vocabulary: vocab_v2.json
models:
  phishing:
    file: phish_v2.onnx
    output: probabilities
  intent:
    output_size: 9
thresholds:
  heuristic_trust: 0.85
`)

	m, err := LoadModelManifest(path)
	if err != nil {
		t.Fatalf("LoadModelManifest() error = %v", err)
	}
	if m.Vocabulary != "vocab_v2.json" {
		t.Errorf("Vocabulary = %q, want vocab_v2.json", m.Vocabulary)
	}
	if got := m.Models["phishing"]; got.File != "phish_v2.onnx" || got.Output != "probabilities" {
		t.Errorf("phishing = %+v", got)
	}
	if m.Thresholds.HeuristicTrust == nil || *m.Thresholds.HeuristicTrust != 0.85 {
		t.Errorf("HeuristicTrust = %v, want 0.85", m.Thresholds.HeuristicTrust)
	}
	if m.Thresholds.OTPPositive != nil {
		t.Errorf("OTPPositive = %v, want nil", *m.Thresholds.OTPPositive)
	}
}

func TestLoadModelManifest_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown model", "models:\n  spam:\n    file: x.onnx\n"},
		{"threshold out of range", "thresholds:\n  otp_positive: 1.5\n"},
		{"bad yaml", "models: [unclosed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadModelManifest(writeManifest(t, tt.body)); err == nil {
				t.Error("LoadModelManifest() error = nil, want error")
			}
		})
	}

	if _, err := LoadModelManifest(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
	if m, err := LoadModelManifest(""); err != nil || m == nil {
		t.Errorf("LoadModelManifest(\"\") = %v, %v; want empty manifest", m, err)
	}
}
