package domain

import "testing"

func strp(s string) *string { return &s }

func TestBadgeFor(t *testing.T) {
	tests := []struct {
		name       string
		isPhishing Tristate
		score      float32
		want       RiskBadge
	}{
		{"confirmed phishing with low score", TristateTrue, 0.1, BadgePhishing},
		{"high score", TristateFalse, 0.6, BadgePhishing},
		{"suspicious band", TristateFalse, 0.3, BadgeSuspicious},
		{"unknown with mid score", TristateUnknown, 0.45, BadgeSuspicious},
		{"safe", TristateFalse, 0.29, BadgeSafe},
		{"unknown no score", TristateUnknown, 0, BadgeSafe},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BadgeFor(tt.isPhishing, tt.score); got != tt.want {
				t.Errorf("BadgeFor(%v, %v) = %s, want %s", tt.isPhishing, tt.score, got, tt.want)
			}
		})
	}
}

func TestSensitivityFor(t *testing.T) {
	tests := []struct {
		isOTP  Tristate
		intent *string
		want   Sensitivity
	}{
		{TristateTrue, strp(IntentBankOrCardTxn), SensitivityDoNotShare},
		{TristateTrue, strp(IntentUPITxnOrPIN), SensitivityDoNotShare},
		{TristateTrue, strp(IntentDeliveryService), SensitivityCourierOnly},
		{TristateTrue, strp(IntentAppLogin), SensitivityInfo},
		{TristateTrue, nil, SensitivityInfo},
		{TristateFalse, strp(IntentBankOrCardTxn), SensitivityNone},
		{TristateUnknown, nil, SensitivityNone},
	}
	for _, tt := range tests {
		if got := SensitivityFor(tt.isOTP, tt.intent); got != tt.want {
			t.Errorf("SensitivityFor(%v, %v) = %s, want %s", tt.isOTP, tt.intent, got, tt.want)
		}
	}
}

func TestOTPForCopy(t *testing.T) {
	confident := &HeuristicResult{IsOTP: true, Confidence: 0.9}
	weak := &HeuristicResult{IsOTP: true, Confidence: 0.6}

	tests := []struct {
		name      string
		body      string
		isOTP     Tristate
		heuristic *HeuristicResult
		want      string
	}{
		{"confirmed OTP", "Your OTP is 482910", TristateTrue, nil, "482910"},
		{"unknown but confident heuristic", "Code 7781 for login", TristateUnknown, confident, "7781"},
		{"unknown and weak heuristic", "Ref 58213", TristateUnknown, weak, ""},
		{"not an OTP", "Order 58213 shipped", TristateFalse, nil, ""},
		{"no code", "Your OTP is on its way", TristateTrue, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OTPForCopy(tt.body, tt.isOTP, tt.heuristic); got != tt.want {
				t.Errorf("OTPForCopy() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMessage_ClassificationState(t *testing.T) {
	m := &Message{ID: 1, Body: "Your OTP is 1234"}
	if !m.IsUnclassified() || !m.NeedsReview() {
		t.Fatal("fresh message should be unclassified and need review")
	}

	intent := IntentAppLogin
	m.ApplyPrediction(&Prediction{
		IsOTP:      TristateTrue,
		OTPIntent:  &intent,
		IsPhishing: TristateFalse,
		PhishScore: 0.05,
		Reasons:    []string{"OTP detected by ML (score: 0.93)"},
	})
	if m.IsUnclassified() || m.NeedsReview() {
		t.Error("classified message still pending")
	}
	if m.Badge() != BadgeSafe || m.Sensitivity() != SensitivityInfo {
		t.Errorf("Badge/Sensitivity = %s/%s", m.Badge(), m.Sensitivity())
	}

	m.ApplyPrediction(UnknownPrediction("Server error: timeout", 10))
	if !m.IsUnclassified() {
		t.Error("unknown prediction should leave the message unclassified")
	}
	if len(m.Reasons) != 1 || m.Reasons[0] != "Server error: timeout" {
		t.Errorf("Reasons = %v", m.Reasons)
	}
}

func TestIntentForIndex(t *testing.T) {
	if got := IntentForIndex(0); got != IntentAppAccountChange {
		t.Errorf("IntentForIndex(0) = %s", got)
	}
	if got := IntentForIndex(8); got != IntentUPITxnOrPIN {
		t.Errorf("IntentForIndex(8) = %s", got)
	}
	if got := IntentForIndex(9); got != IntentUnknown {
		t.Errorf("IntentForIndex(9) = %s, want UNKNOWN", got)
	}
}
