package persistence

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/lib/pq"

	"sms_classifier/core/domain"
	"sms_classifier/pkg/apperr"
)

func TestMessageRow_ToDomain(t *testing.T) {
	row := messageRow{
		ID:         3,
		Sender:     "AX-HDFCBK",
		Body:       "482910 is your OTP",
		Type:       1,
		IsOTP:      domain.TristateTrue,
		OTPIntent:  sql.NullString{String: domain.IntentBankOrCardTxn, Valid: true},
		IsPhishing: domain.TristateFalse,
		PhishScore: sql.NullFloat64{Float64: 0.25, Valid: true},
		Reasons:    pq.StringArray{"Strong OTP pattern detected"},
	}
	m := row.toDomain()

	if m.OTPIntent == nil || *m.OTPIntent != domain.IntentBankOrCardTxn {
		t.Errorf("OTPIntent = %v", m.OTPIntent)
	}
	if m.PhishScore == nil || *m.PhishScore != 0.25 {
		t.Errorf("PhishScore = %v, want 0.25", m.PhishScore)
	}
	if m.Language != nil || m.FeaturesJSON != nil {
		t.Error("NULL columns mapped to non-nil pointers")
	}
	if m.IsUnclassified() {
		t.Error("IsUnclassified() = true for a fully classified row")
	}
}

func TestMessageRow_Unclassified(t *testing.T) {
	m := (&messageRow{ID: 4, Body: "hi"}).toDomain()
	if !m.IsUnclassified() || !m.NeedsReview() {
		t.Error("row with NULL verdicts should be unclassified and need review")
	}
	if m.Reasons == nil {
		t.Error("Reasons = nil, want empty slice")
	}
}

func TestTranslate(t *testing.T) {
	if translate("op", "message", nil) != nil {
		t.Error("translate(nil) != nil")
	}

	err := translate("get message", "message", sql.ErrNoRows)
	if appErr := apperr.AsAppError(err); appErr.Code != apperr.CodeNotFound {
		t.Errorf("ErrNoRows -> %v, want NOT_FOUND", err)
	}

	err = translate("get message", "message", errors.New("connection reset"))
	if appErr := apperr.AsAppError(err); appErr.Code != apperr.CodeDatabaseError {
		t.Errorf("driver error -> %v, want DATABASE_ERROR", err)
	}
}
