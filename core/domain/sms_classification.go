package domain

// Intent labels. The order of IntentLabels matches the intent model's output
// vector and must only change together with a retrained model.
const (
	IntentAppAccountChange = "APP_ACCOUNT_CHANGE_OTP"
	IntentAppLogin         = "APP_LOGIN_OTP"
	IntentBankOrCardTxn    = "BANK_OR_CARD_TXN_OTP"
	IntentDeliveryService  = "DELIVERY_OR_SERVICE_OTP"
	IntentFinancialLogin   = "FINANCIAL_LOGIN_OTP"
	IntentGenericAppAction = "GENERIC_APP_ACTION_OTP"
	IntentKYCOrESign       = "KYC_OR_ESIGN_OTP"
	IntentNotOTP           = "NOT_OTP"
	IntentUPITxnOrPIN      = "UPI_TXN_OR_PIN_OTP"

	IntentUnknown = "UNKNOWN"
)

var IntentLabels = [...]string{
	IntentAppAccountChange,
	IntentAppLogin,
	IntentBankOrCardTxn,
	IntentDeliveryService,
	IntentFinancialLogin,
	IntentGenericAppAction,
	IntentKYCOrESign,
	IntentNotOTP,
	IntentUPITxnOrPIN,
}

// IntentForIndex maps a model output index to its label.
func IntentForIndex(i int) string {
	if i < 0 || i >= len(IntentLabels) {
		return IntentUnknown
	}
	return IntentLabels[i]
}

// HeuristicFeatureCount is the fixed width of the heuristic feature block.
const HeuristicFeatureCount = 23

// MessageFeatures is the per-call model input. It is owned by the call that created it.
type MessageFeatures struct {
	Text              string
	Sender            *string
	TFVector          []float32
	HeuristicFeatures []float32
}

// InputWidth is the combined model input width.
func (f *MessageFeatures) InputWidth() int {
	return len(f.TFVector) + len(f.HeuristicFeatures)
}

// Combined returns TF ++ heuristic as a fresh slice.
func (f *MessageFeatures) Combined() []float32 {
	out := make([]float32, 0, f.InputWidth())
	out = append(out, f.TFVector...)
	return append(out, f.HeuristicFeatures...)
}

// SenderOrEmpty returns the sender, or "" when absent.
func (f *MessageFeatures) SenderOrEmpty() string {
	if f.Sender == nil {
		return ""
	}
	return *f.Sender
}

// HeuristicResult is the rule-based OTP verdict. It is never mutated after construction.
type HeuristicResult struct {
	IsOTP           bool
	Confidence      float32
	SuggestedIntent *string
	Reasons         []string
}

// Prediction is the pipeline output. Unknown verdicts mean "could not be determined".
type Prediction struct {
	IsOTP           Tristate `json:"isOtp"`
	OTPIntent       *string  `json:"otpIntent"`
	IsPhishing      Tristate `json:"isPhishing"`
	PhishScore      float32  `json:"phishScore"`
	Reasons         []string `json:"reasons"`
	InferenceTimeMs int64    `json:"inferenceTimeMs"`
}

// UnknownPrediction is the result when classification could not run at all.
func UnknownPrediction(reason string, elapsedMs int64) *Prediction {
	return &Prediction{
		IsOTP:           TristateUnknown,
		IsPhishing:      TristateUnknown,
		Reasons:         []string{reason},
		InferenceTimeMs: elapsedMs,
	}
}

// PhishScoreOrNil returns nil when no phishing verdict or score was produced.
func (p *Prediction) PhishScoreOrNil() *float32 {
	if !p.IsPhishing.IsKnown() && p.PhishScore == 0 {
		return nil
	}
	score := p.PhishScore
	return &score
}

// InferenceMode selects the classifier implementation.
type InferenceMode string

const (
	InferenceModeOnDevice InferenceMode = "ON_DEVICE"
	InferenceModeServer   InferenceMode = "SERVER"
)
