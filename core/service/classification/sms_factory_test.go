package classification

import (
	"testing"

	"sms_classifier/core/domain"
)

func TestParseInferenceMode(t *testing.T) {
	tests := []struct {
		in      string
		want    domain.InferenceMode
		wantErr bool
	}{
		{"ON_DEVICE", domain.InferenceModeOnDevice, false},
		{" server ", domain.InferenceModeServer, false},
		{"", domain.InferenceModeOnDevice, false},
		{"cloud", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseInferenceMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseInferenceMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseInferenceMode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewClassifier(t *testing.T) {
	scorer := newFakeScorer([]float32{0.9, 0.1}, []float32{0.9, 0.1}, nil)

	tests := []struct {
		name    string
		opts    ClassifierOptions
		wantErr bool
		check   func(t *testing.T, c any)
	}{
		{
			name: "on device",
			opts: ClassifierOptions{Mode: domain.InferenceModeOnDevice, Scorer: scorer},
			check: func(t *testing.T, c any) {
				if _, ok := c.(*LocalClassifier); !ok {
					t.Errorf("classifier = %T, want *LocalClassifier", c)
				}
			},
		},
		{
			name: "server",
			opts: ClassifierOptions{Mode: domain.InferenceModeServer, ServerBaseURL: "http://localhost:9000"},
			check: func(t *testing.T, c any) {
				if _, ok := c.(*RemoteClassifier); !ok {
					t.Errorf("classifier = %T, want *RemoteClassifier", c)
				}
			},
		},
		{
			name: "default mode",
			opts: ClassifierOptions{Scorer: scorer},
			check: func(t *testing.T, c any) {
				if _, ok := c.(*LocalClassifier); !ok {
					t.Errorf("classifier = %T, want *LocalClassifier", c)
				}
			},
		},
		{
			name:    "on device without scorer",
			opts:    ClassifierOptions{Mode: domain.InferenceModeOnDevice},
			wantErr: true,
		},
		{
			name:    "server without url",
			opts:    ClassifierOptions{Mode: domain.InferenceModeServer},
			wantErr: true,
		},
		{
			name:    "unknown mode",
			opts:    ClassifierOptions{Mode: "EDGE"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClassifier(tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewClassifier() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, c)
			}
		})
	}
}
