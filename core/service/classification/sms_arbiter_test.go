package classification

import (
	"context"
	"errors"
	"strings"
	"testing"

	"sms_classifier/core/domain"
	"sms_classifier/core/port/out"
)

// fakeScorer returns canned scores per model and records calls.
type fakeScorer struct {
	scores      map[out.ModelKind][]float32
	errs        map[out.ModelKind]error
	unavailable map[out.ModelKind]bool
	calls       map[out.ModelKind]int
}

func newFakeScorer(phishing, isOTP, intent []float32) *fakeScorer {
	return &fakeScorer{
		scores: map[out.ModelKind][]float32{
			out.ModelPhishing: phishing,
			out.ModelIsOTP:    isOTP,
			out.ModelIntent:   intent,
		},
		errs:        map[out.ModelKind]error{},
		unavailable: map[out.ModelKind]bool{},
		calls:       map[out.ModelKind]int{},
	}
}

func (f *fakeScorer) Score(_ context.Context, model out.ModelKind, _ []float32) ([]float32, error) {
	f.calls[model]++
	if err := f.errs[model]; err != nil {
		return nil, err
	}
	return f.scores[model], nil
}

func (f *fakeScorer) Available(model out.ModelKind) bool {
	return !f.unavailable[model]
}

func resolve(t *testing.T, scorer *fakeScorer, text string) *domain.Prediction {
	t.Helper()
	a := NewArbiter(NewHeuristicClassifier(), scorer, DefaultThresholds())
	features := NewFeatureExtractor(testVocabulary()).Extract(text, nil)
	return a.Resolve(context.Background(), features)
}

func TestArbiter_Resolve(t *testing.T) {
	bankIntent := []float32{0, 0, 0.9, 0, 0, 0, 0, 0.1, 0}

	tests := []struct {
		name           string
		text           string
		scorer         *fakeScorer
		wantOTP        domain.Tristate
		wantPhishing   domain.Tristate
		wantIntent     string
		wantReason     string
		wantOTPCalls   int
		wantIntentCall int
	}{
		{
			name:         "confident heuristic skips the is-OTP model",
			text:         "Your OTP is 482910. Do not share with anyone.",
			scorer:       newFakeScorer([]float32{0.9, 0.1}, []float32{0.9, 0.1}, bankIntent),
			wantOTP:      domain.TristateTrue,
			wantPhishing: domain.TristateFalse,
			wantIntent:   domain.IntentGenericAppAction,
			wantReason:   "OTP detected by heuristics (confidence: 0.98)",
		},
		{
			name:         "model positive with heuristic intent",
			text:         "Ref 58213",
			scorer:       newFakeScorer([]float32{0.9, 0.1}, []float32{0.2, 0.8}, bankIntent),
			wantOTP:      domain.TristateTrue,
			wantPhishing: domain.TristateFalse,
			wantIntent:   domain.IntentGenericAppAction,
			wantReason:   "OTP Intent: GENERIC_APP_ACTION_OTP (heuristic)",
			wantOTPCalls: 1,
		},
		{
			name:         "heuristic overrides negative model",
			text:         "Ref 58213",
			scorer:       newFakeScorer([]float32{0.9, 0.1}, []float32{0.9, 0.1}, bankIntent),
			wantOTP:      domain.TristateTrue,
			wantPhishing: domain.TristateFalse,
			wantIntent:   domain.IntentGenericAppAction,
			wantReason:   "ML negative but heuristics positive (confidence: 0.60)",
			wantOTPCalls: 1,
		},
		{
			name:         "negative everywhere, phishing positive",
			text:         "Hello there friend",
			scorer:       newFakeScorer([]float32{0.2, 0.8}, []float32{0.9, 0.1}, bankIntent),
			wantOTP:      domain.TristateFalse,
			wantPhishing: domain.TristateTrue,
			wantReason:   "Phishing score: 0.80",
			wantOTPCalls: 1,
		},
		{
			name:           "intent model used without heuristic intent",
			text:           "Hello there friend",
			scorer:         newFakeScorer([]float32{0.9, 0.1}, []float32{0.1, 0.9}, bankIntent),
			wantOTP:        domain.TristateTrue,
			wantPhishing:   domain.TristateFalse,
			wantIntent:     domain.IntentBankOrCardTxn,
			wantReason:     "OTP Intent: BANK_OR_CARD_TXN_OTP",
			wantOTPCalls:   1,
			wantIntentCall: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolve(t, tt.scorer, tt.text)
			if got.IsOTP != tt.wantOTP {
				t.Errorf("IsOTP = %v, want %v (reasons %v)", got.IsOTP, tt.wantOTP, got.Reasons)
			}
			if got.IsPhishing != tt.wantPhishing {
				t.Errorf("IsPhishing = %v, want %v", got.IsPhishing, tt.wantPhishing)
			}
			switch {
			case tt.wantIntent == "" && got.OTPIntent != nil:
				t.Errorf("OTPIntent = %s, want nil", *got.OTPIntent)
			case tt.wantIntent != "" && (got.OTPIntent == nil || *got.OTPIntent != tt.wantIntent):
				t.Errorf("OTPIntent = %v, want %s", got.OTPIntent, tt.wantIntent)
			}
			if !hasReason(got.Reasons, tt.wantReason) {
				t.Errorf("Reasons = %v, want one containing %q", got.Reasons, tt.wantReason)
			}
			if n := tt.scorer.calls[out.ModelIsOTP]; n != tt.wantOTPCalls {
				t.Errorf("is-OTP model calls = %d, want %d", n, tt.wantOTPCalls)
			}
			if n := tt.scorer.calls[out.ModelIntent]; n != tt.wantIntentCall {
				t.Errorf("intent model calls = %d, want %d", n, tt.wantIntentCall)
			}
		})
	}
}

func TestArbiter_ScoringErrorYieldsUnknown(t *testing.T) {
	for _, model := range out.AllModels {
		t.Run(string(model), func(t *testing.T) {
			scorer := newFakeScorer([]float32{0.9, 0.1}, []float32{0.1, 0.9}, []float32{1})
			scorer.errs[model] = errors.New("session closed")

			got := resolve(t, scorer, "Hello there friend")
			if got.IsOTP.IsKnown() || got.IsPhishing.IsKnown() || got.OTPIntent != nil {
				t.Fatalf("got %+v, want all unknown", got)
			}
			if len(got.Reasons) != 1 || !strings.HasPrefix(got.Reasons[0], "Error: ") {
				t.Errorf("Reasons = %v, want single Error reason", got.Reasons)
			}
		})
	}
}

func TestArbiter_ShortBinaryScores(t *testing.T) {
	got := resolve(t, newFakeScorer([]float32{0.5}, nil, nil), "Hello")
	if got.IsPhishing.IsKnown() {
		t.Errorf("IsPhishing = %v, want unknown", got.IsPhishing)
	}
}

func TestLocalClassifier_IsAvailable(t *testing.T) {
	scorer := newFakeScorer(nil, nil, nil)
	c := NewLocalClassifier(scorer, nil, DefaultThresholds())
	if !c.IsAvailable(context.Background()) {
		t.Error("IsAvailable() = false with all models loaded")
	}
	scorer.unavailable[out.ModelIntent] = true
	if c.IsAvailable(context.Background()) {
		t.Error("IsAvailable() = true with intent model missing")
	}
}
