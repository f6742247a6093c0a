package domain

import "regexp"

type RiskBadge string

const (
	BadgePhishing   RiskBadge = "PHISHING"
	BadgeSuspicious RiskBadge = "SUSPICIOUS"
	BadgeSafe       RiskBadge = "SAFE"
)

type Sensitivity string

const (
	SensitivityDoNotShare  Sensitivity = "DO_NOT_SHARE"
	SensitivityCourierOnly Sensitivity = "COURIER_ONLY"
	SensitivityInfo        Sensitivity = "INFO"
	SensitivityNone        Sensitivity = "NONE"
)

const (
	phishingBadgeScore   = 0.6
	suspiciousBadgeScore = 0.3

	// OTPCopyMinConfidence is the heuristic confidence needed to offer a code
	// for copying when the stored verdict is not a confirmed OTP.
	OTPCopyMinConfidence = 0.8
)

var otpCodePattern = regexp.MustCompile(`\b\d{4,8}\b`)

// BadgeFor derives the risk badge from a phishing verdict and score.
func BadgeFor(isPhishing Tristate, phishScore float32) RiskBadge {
	switch {
	case isPhishing.IsTrue() || phishScore >= phishingBadgeScore:
		return BadgePhishing
	case phishScore >= suspiciousBadgeScore:
		return BadgeSuspicious
	default:
		return BadgeSafe
	}
}

// SensitivityFor tells the user who, if anyone, may receive the code.
func SensitivityFor(isOTP Tristate, intent *string) Sensitivity {
	if !isOTP.IsTrue() {
		return SensitivityNone
	}
	if intent == nil {
		return SensitivityInfo
	}
	switch *intent {
	case IntentBankOrCardTxn, IntentFinancialLogin, IntentAppAccountChange, IntentUPITxnOrPIN:
		return SensitivityDoNotShare
	case IntentDeliveryService:
		return SensitivityCourierOnly
	default:
		return SensitivityInfo
	}
}

// ExtractOTPCode returns the first 4-8 digit run, or "".
func ExtractOTPCode(body string) string {
	return otpCodePattern.FindString(body)
}

// OTPForCopy returns the code to offer for copying. A confirmed OTP always
// qualifies; otherwise the heuristic must be confident enough.
func OTPForCopy(body string, isOTP Tristate, heuristic *HeuristicResult) string {
	code := ExtractOTPCode(body)
	if code == "" {
		return ""
	}
	if isOTP.IsTrue() {
		return code
	}
	if heuristic != nil && heuristic.IsOTP && heuristic.Confidence >= OTPCopyMinConfidence {
		return code
	}
	return ""
}

// Badge is the badge for a stored message.
func (m *Message) Badge() RiskBadge {
	var score float32
	if m.PhishScore != nil {
		score = *m.PhishScore
	}
	return BadgeFor(m.IsPhishing, score)
}

func (m *Message) Sensitivity() Sensitivity {
	return SensitivityFor(m.IsOTP, m.OTPIntent)
}
