package domain

import "time"

// Correction is what the user says the verdict should have been.
// Nil fields were not corrected.
type Correction struct {
	IsOTP      *bool   `json:"isOtp,omitempty"`
	OTPIntent  *string `json:"otpIntent,omitempty"`
	IsPhishing *bool   `json:"isPhishing,omitempty"`
	Note       *string `json:"note,omitempty"`
}

// IsEmpty reports whether nothing was corrected.
func (c *Correction) IsEmpty() bool {
	return c.IsOTP == nil && c.OTPIntent == nil && c.IsPhishing == nil
}

// Feedback snapshots the original verdict next to the user's correction.
type Feedback struct {
	ID                 int64      `json:"id"`
	MessageID          int64      `json:"messageId"`
	OriginalIsOTP      Tristate   `json:"originalIsOtp"`
	OriginalOTPIntent  *string    `json:"originalOtpIntent"`
	OriginalIsPhishing Tristate   `json:"originalIsPhishing"`
	OriginalPhishScore *float32   `json:"originalPhishScore"`
	UserCorrection     Correction `json:"userCorrection"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// MisclassificationLog is the export record of a corrected message.
// Body is stored redacted.
type MisclassificationLog struct {
	ID                  string    `json:"id"`
	MessageID           int64     `json:"messageId"`
	Sender              string    `json:"sender"`
	Body                string    `json:"body"`
	PredictedIsOTP      Tristate  `json:"predictedIsOtp"`
	PredictedOTPIntent  *string   `json:"predictedOtpIntent"`
	PredictedIsPhishing Tristate  `json:"predictedIsPhishing"`
	Reasons             []string  `json:"reasons"`
	UserNote            *string   `json:"userNote,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
}
