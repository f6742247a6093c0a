package classification

import (
	"regexp"
	"strings"

	"sms_classifier/core/domain"
)

// heuristicPredicate is one positional 0/1 feature.
type heuristicPredicate struct {
	name     string
	pattern  *regexp.Regexp
	onSender bool // match the uppercased sender instead of the text
}

// heuristicPredicates is the ordered heuristic block. Models consume it
// positionally: never reorder without retraining.
var heuristicPredicates = []heuristicPredicate{
	{name: "has_digit", pattern: regexp.MustCompile(`\d`)},
	{name: "otp_keyword", pattern: regexp.MustCompile(`(?i)\bOTP\b`)},
	{name: "do_not_share", pattern: regexp.MustCompile(`(?i)do not share|never share`)},
	{name: "url", pattern: regexp.MustCompile(`https?://|www\.`)},
	{name: "action_verb", pattern: regexp.MustCompile(`(?i)\blogin\b|\bverify\b|\bupdate\b|\bclick\b|\bcall\b|\bshare\b`)},
	{name: "bank_warning", pattern: regexp.MustCompile(`(?i)bank never asks|otp is secret|do not disclose`)},
	{name: "short_code", pattern: regexp.MustCompile(`(?i)sms block 7007`)},
	{name: "reward", pattern: regexp.MustCompile(`(?i)reward|win|cashback|lottery|prize|gift`)},
	{name: "trading", pattern: regexp.MustCompile(`(?i)\b(trading|investment|portfolio|demat|mutual fund|stocks|NSE|BSE|Zerodha|Groww|Upstox|broker|equity|Angel One|Kotak Securities|ICICI Direct|HDFC Securities)\b`)},
	{name: "entertainment", pattern: regexp.MustCompile(`(?i)\b(social|entertainment|streaming|gaming|shopping|app login|account login)\b`)},
	{name: "delivery", pattern: regexp.MustCompile(`(?i)\b(delivery|deliver|courier|package|order|shipment|tracking|OTP.*delivery|share.*code.*delivery)\b`)},
	{name: "upi_pin", pattern: regexp.MustCompile(`(?i)\b(UPI|unified payments|PIN|device.*link|link.*device|bind.*device)\b`)},
	{name: "kyc", pattern: regexp.MustCompile(`(?i)\b(KYC|know your customer|e-sign|esign|document.*sign|verification.*document)\b`)},
	{name: "account_change", pattern: regexp.MustCompile(`(?i)\b(password.*reset|change.*password|update.*profile|change.*phone|change.*email|update.*contact)\b`)},
	{name: "otp_phrase", pattern: regexp.MustCompile(`(?i)\b(one time password|OTP|verification code|authentication code|this is your.*code|your.*code is|give.*code|share.*code|delivery code)\b`)},
	{name: "currency_amount", pattern: regexp.MustCompile(`\b(INR|Rs\.?|₹)\s*\d+[.,]?\d*\b`)},
	{name: "masked_account", pattern: regexp.MustCompile(`(?i)\b(XX\d+|xxxx\d+|card.*XX|account.*XX)\b`)},
	{name: "urgency", pattern: regexp.MustCompile(`(?i)\b(urgent|immediately|act now|expires.*soon|limited time|verify now)\b`)},
	{name: "short_link", pattern: regexp.MustCompile(`(?i)\b(bit\.ly|tinyurl|short\.link|click.*here|verify.*link)\b`)},

	{name: "sender_bank", pattern: regexp.MustCompile(`\b(ICICI|HDFC|SBI|AXIS|KOTAK|ZERODHA|GROWW|UPSTOX|PAYTM|PHONEPE|GPAY)\b`), onSender: true},
	{name: "sender_delivery", pattern: regexp.MustCompile(`\b(SWIGGY|ZOMATO|AMAZON|FLIPKART|DELHIVERY|BLUEDART)\b`), onSender: true},
	{name: "sender_ott", pattern: regexp.MustCompile(`\b(NETFLIX|SPOTIFY|INSTAGRAM|FACEBOOK|TWITTER)\b`), onSender: true},
	{name: "sender_numeric", pattern: regexp.MustCompile(`^\d{10,12}$`), onSender: true},
}

func init() {
	if len(heuristicPredicates) != domain.HeuristicFeatureCount {
		panic("classification: heuristic predicate count does not match HeuristicFeatureCount")
	}
}

// HeuristicFeatureNames lists the heuristic slots in order.
func HeuristicFeatureNames() []string {
	names := make([]string, len(heuristicPredicates))
	for i, p := range heuristicPredicates {
		names[i] = p.name
	}
	return names
}

// FeatureExtractor turns (text, sender) into model inputs.
type FeatureExtractor struct {
	vocab *Vocabulary
}

// NewFeatureExtractor builds an extractor over vocab. A nil vocab yields empty TF vectors.
func NewFeatureExtractor(vocab *Vocabulary) *FeatureExtractor {
	return &FeatureExtractor{vocab: vocab}
}

// Extract builds the TF vector and the heuristic block for one message.
func (e *FeatureExtractor) Extract(text string, sender *string) *domain.MessageFeatures {
	return &domain.MessageFeatures{
		Text:              text,
		Sender:            sender,
		TFVector:          e.TFVector(text),
		HeuristicFeatures: HeuristicFeatures(text, senderValue(sender)),
	}
}

// TFVector counts vocabulary tokens and L1-normalises the counts.
// It is all-zero when nothing matches and empty when there is no vocabulary.
func (e *FeatureExtractor) TFVector(text string) []float32 {
	if e.vocab == nil {
		return []float32{}
	}
	size := e.vocab.Size()
	vec := make([]float32, size)
	if size == 0 {
		return vec
	}

	var sum float32
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		if i, ok := e.vocab.Lookup(tok); ok {
			vec[i]++
			sum++
		}
	}
	if sum > 0 {
		for i := range vec {
			vec[i] /= sum
		}
	}
	return vec
}

// HeuristicFeatures evaluates every predicate; the result always has
// domain.HeuristicFeatureCount entries.
func HeuristicFeatures(text, sender string) []float32 {
	senderUpper := strings.ToUpper(sender)
	out := make([]float32, len(heuristicPredicates))
	for i, p := range heuristicPredicates {
		subject := text
		if p.onSender {
			subject = senderUpper
		}
		if p.pattern.MatchString(subject) {
			out[i] = 1
		}
	}
	return out
}

func senderValue(sender *string) string {
	if sender == nil {
		return ""
	}
	return *sender
}
