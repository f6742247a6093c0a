package classification

import (
	"fmt"
	"regexp"
	"strings"

	"sms_classifier/core/domain"
)

// =============================================================================
// Heuristic OTP Classifier
// =============================================================================

// Confidence tiers.
const (
	confStrongPattern   float32 = 0.95
	confCodeAtStart     float32 = 0.90
	confKeyword         float32 = 0.85
	confPhrase          float32 = 0.80
	confVerificationHit float32 = 0.80
	confSecurityCode    float32 = 0.75
	confKnownSender     float32 = 0.75
	confSecurityWarning float32 = 0.75
	confValidity        float32 = 0.70
	confShortMessage    float32 = 0.60
	confMediumMessage   float32 = 0.55

	multiSignalBonus   float32 = 0.05
	multiSignalCeiling float32 = 0.98
	phishingPenalty    float32 = 0.7

	shortMessageLen  = 100
	mediumMessageLen = 150
)

var (
	codePattern = regexp.MustCompile(`\b\d{4,8}\b`)

	strongPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(otp|one.?time.?password)\b.*?\b\d{4,8}\b`),
		regexp.MustCompile(`(?i)\b\d{4,8}\b.*?(otp|code|verification)`),
		regexp.MustCompile(`(?i)(your|use|enter).*?(otp|code).*?\b\d{4,8}\b`),
		regexp.MustCompile(`(?i)\b\d{4,8}\b.*?(is|as).*?(your|the).*?(otp|code|password)`),
	}

	startCodePattern    = regexp.MustCompile(`(?i)^\b\d{4,8}\b\s*(?:is|for|your|use|enter|verification|code|otp|password)`)
	verificationPattern = regexp.MustCompile(`(?i)(?:verify|verification|authenticate|login|sign.?in).*?\b\d{4,8}\b`)
	securityCodePattern = regexp.MustCompile(`(?i)(?:do\s+not\s+share|don'?t\s+share|keep\s+secret|confidential|never\s+share).*?\b\d{4,8}\b`)

	intentDeliveryPattern = regexp.MustCompile(`(?i)\b(delivery|deliver|courier|package|order|shipment|tracking|logistics)\b`)
	intentBankPattern     = regexp.MustCompile(`(?i)\b(bank|card|transaction|payment|transfer|upi|debit|credit)\b`)
	intentUPIPattern      = regexp.MustCompile(`(?i)\b(upi|unified payments|pin|device.*link|link.*device)\b`)
	intentAccountPattern  = regexp.MustCompile(`(?i)\b(password.*reset|change.*password|update.*profile|change.*phone|change.*email|account.*change)\b`)
	intentLoginPattern    = regexp.MustCompile(`(?i)\b(login|sign.?in|access|verify.?account|authenticate)\b`)
	intentKYCPattern      = regexp.MustCompile(`(?i)\b(kyc|know.*customer|e.?sign|esign|document.*sign)\b`)

	// Matched against lowercased text.
	phishingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`http://|https://|www\.`),
		regexp.MustCompile(`click.*here|verify.*link`),
		regexp.MustCompile(`urgent|immediately|act.*now`),
		regexp.MustCompile(`reward|win|cashback|lottery`),
	}
)

var otpKeywords = []string{
	"otp",
	"verification code",
	"authentication code",
	"your code",
	"one time password",
	"verification pin",
	"access code",
	"security code",
	"password code",
	"login code",
	"verification",
	"authenticate",
}

var otpPhrases = []string{
	"is your", "code is", "verify with", "use code", "enter code", "use otp",
	"your otp", "otp is", "code to", "verification code is", "your verification",
	"verification code", "login code is",
}

var securityWarnings = []string{
	"do not share", "don't share", "keep secret", "confidential", "never share",
	"do not disclose", "keep it safe", "don't reveal", "never reveal",
}

var validityWords = []string{
	"valid", "validity", "expires", "expiry", "minutes", "min",
	"seconds", "sec", "valid for", "expires in",
}

var otpSenderTokens = []string{
	"BANK", "PAYTM", "PHONEPE", "GPAY", "SWIGGY", "ZOMATO",
	"AMAZON", "FLIPKART", "ICICI", "HDFC", "SBI", "AXIS",
	"OTP", "VERIFY", "CODE", "AUTH",
}

// Single-word keywords match on word boundaries; phrases match as substrings.
var (
	keywordPatterns []*regexp.Regexp
	keywordPhrases  []string
)

func init() {
	for _, kw := range otpKeywords {
		if strings.Contains(kw, " ") {
			keywordPhrases = append(keywordPhrases, kw)
			continue
		}
		keywordPatterns = append(keywordPatterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(kw)+`\b`))
	}
}

// HeuristicClassifier is a rule-based OTP detector. It is stateless and safe
// for concurrent use.
type HeuristicClassifier struct{}

func NewHeuristicClassifier() *HeuristicClassifier {
	return &HeuristicClassifier{}
}

// Classify scores text for OTP likelihood. Reasons are appended in the order
// the rules fire.
func (h *HeuristicClassifier) Classify(text, sender string) *domain.HeuristicResult {
	if !codePattern.MatchString(text) {
		return &domain.HeuristicResult{
			Reasons: []string{"No numeric code found (4-8 digits required)"},
		}
	}

	textLower := strings.ToLower(text)
	senderUpper := strings.ToUpper(sender)
	reasons := []string{"Numeric code found (4-8 digits)"}

	var (
		isOTP      bool
		confidence float32
		indicators int
	)
	raise := func(fired bool, conf float32, reason string) {
		if !fired {
			return
		}
		isOTP = true
		confidence = max(confidence, conf)
		indicators++
		reasons = append(reasons, reason)
	}

	raise(matchAny(strongPatterns, text), confStrongPattern, "Strong OTP pattern detected")
	raise(startCodePattern.MatchString(text), confCodeAtStart, "Code at start with OTP context")
	raise(matchAny(keywordPatterns, text) || containsAny(textLower, keywordPhrases), confKeyword, "OTP keyword found")
	raise(containsAny(textLower, otpPhrases), confPhrase, "OTP phrase found")
	raise(verificationPattern.MatchString(text), confVerificationHit, "Verification word with code detected")
	raise(securityCodePattern.MatchString(text), confSecurityCode, "Security warning with code detected")
	raise(containsAny(senderUpper, otpSenderTokens), confKnownSender, "Known OTP sender pattern")
	raise(containsAny(textLower, validityWords), confValidity, "Validity period mentioned")
	raise(containsAny(textLower, securityWarnings), confSecurityWarning, "Security warning present")

	if indicators >= 2 {
		confidence = min(confidence+multiSignalBonus, multiSignalCeiling)
		reasons = append(reasons, fmt.Sprintf("Multiple OTP indicators (%d)", indicators))
	}

	if !isOTP {
		switch n := len([]rune(text)); {
		case n < shortMessageLen:
			isOTP, confidence = true, confShortMessage
			reasons = append(reasons, "Short message with numeric code (possible OTP)")
		case n < mediumMessageLen:
			isOTP, confidence = true, confMediumMessage
			reasons = append(reasons, "Medium-length message with numeric code (possible OTP)")
		}
	}

	var intent *string
	if isOTP {
		label, reason := detectIntent(text, senderUpper)
		intent = &label
		reasons = append(reasons, reason)
	}

	if matchAny(phishingPatterns, textLower) {
		confidence *= phishingPenalty
		reasons = append(reasons, "Phishing indicators present (reduced confidence)")
	}

	return &domain.HeuristicResult{
		IsOTP:           isOTP,
		Confidence:      confidence,
		SuggestedIntent: intent,
		Reasons:         reasons,
	}
}

// detectIntent returns the first matching intent; generic is the default.
func detectIntent(text, senderUpper string) (string, string) {
	switch {
	case intentDeliveryPattern.MatchString(text) ||
		containsAny(senderUpper, []string{"SWIGGY", "ZOMATO", "DELHIVERY", "BLUEDART"}):
		return domain.IntentDeliveryService, "Intent: " + domain.IntentDeliveryService
	case intentBankPattern.MatchString(text) ||
		containsAny(senderUpper, []string{"BANK", "ICICI", "HDFC", "SBI", "AXIS"}):
		return domain.IntentBankOrCardTxn, "Intent: " + domain.IntentBankOrCardTxn
	case intentUPIPattern.MatchString(text) ||
		containsAny(senderUpper, []string{"UPI", "PHONEPE", "GPAY", "PAYTM"}):
		return domain.IntentUPITxnOrPIN, "Intent: " + domain.IntentUPITxnOrPIN
	case intentAccountPattern.MatchString(text):
		return domain.IntentAppAccountChange, "Intent: " + domain.IntentAppAccountChange
	case intentLoginPattern.MatchString(text):
		return domain.IntentAppLogin, "Intent: " + domain.IntentAppLogin
	case intentKYCPattern.MatchString(text):
		return domain.IntentKYCOrESign, "Intent: " + domain.IntentKYCOrESign
	}
	return domain.IntentGenericAppAction, "Intent: " + domain.IntentGenericAppAction + " (default)"
}

func matchAny(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	if s == "" {
		return false
	}
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
