package domain

import "time"

// MessageType mirrors the SMS provider type column.
type MessageType int

const (
	MessageTypeReceived MessageType = 1
	MessageTypeSent     MessageType = 2
	MessageTypeDraft    MessageType = 3
	MessageTypeOutbox   MessageType = 4
	MessageTypeFailed   MessageType = 5
)

// Message is a stored text message together with its classification.
type Message struct {
	ID        int64       `json:"id"`
	Sender    string      `json:"sender"`
	Body      string      `json:"body"`
	Timestamp time.Time   `json:"ts"`
	ThreadID  int64       `json:"threadId"`
	Type      MessageType `json:"type"`
	Read      bool        `json:"read"`
	Language  *string     `json:"language,omitempty"`

	FeaturesJSON *string `json:"featuresJson,omitempty"`

	// Classification
	IsOTP      Tristate `json:"isOtp"`
	OTPIntent  *string  `json:"otpIntent"`
	IsPhishing Tristate `json:"isPhishing"`
	PhishScore *float32 `json:"phishScore"`
	Reasons    []string `json:"reasons"`
	Reviewed   bool     `json:"reviewed"`
	Version    int      `json:"version"`
}

// IsUnclassified reports whether either verdict is still undetermined.
func (m *Message) IsUnclassified() bool {
	return !m.IsOTP.IsKnown() || !m.IsPhishing.IsKnown()
}

// NeedsReview matches the review queue: not reviewed and no phishing verdict or score.
func (m *Message) NeedsReview() bool {
	return !m.Reviewed && (!m.IsPhishing.IsKnown() || m.PhishScore == nil)
}

// ApplyPrediction copies every prediction field onto the message.
func (m *Message) ApplyPrediction(p *Prediction) {
	m.IsOTP = p.IsOTP
	m.OTPIntent = p.OTPIntent
	m.IsPhishing = p.IsPhishing
	m.PhishScore = p.PhishScoreOrNil()
	m.Reasons = append([]string(nil), p.Reasons...)
}

// MessageCounts summarises the inbox by classification bucket.
type MessageCounts struct {
	Total       int64 `json:"total" db:"total"`
	OTP         int64 `json:"otp" db:"otp"`
	Phishing    int64 `json:"phishing" db:"phishing"`
	NeedsReview int64 `json:"needsReview" db:"needs_review"`
	General     int64 `json:"general" db:"general"`
}
