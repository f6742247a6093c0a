package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"

	"sms_classifier/core/domain"
	"sms_classifier/core/port/out"
	"sms_classifier/pkg/apperr"
)

// FeedbackAdapter implements out.FeedbackRepository using PostgreSQL.
type FeedbackAdapter struct {
	db *sqlx.DB
}

var _ out.FeedbackRepository = (*FeedbackAdapter)(nil)

func NewFeedbackAdapter(db *sqlx.DB) *FeedbackAdapter {
	return &FeedbackAdapter{db: db}
}

type feedbackRow struct {
	ID                 int64           `db:"id"`
	MessageID          int64           `db:"message_id"`
	OriginalIsOTP      domain.Tristate `db:"original_is_otp"`
	OriginalOTPIntent  sql.NullString  `db:"original_otp_intent"`
	OriginalIsPhishing domain.Tristate `db:"original_is_phishing"`
	OriginalPhishScore sql.NullFloat64 `db:"original_phish_score"`
	UserCorrection     []byte          `db:"user_correction"`
	CreatedAt          time.Time       `db:"created_at"`
}

func (r *feedbackRow) toDomain() *domain.Feedback {
	fb := &domain.Feedback{
		ID:                 r.ID,
		MessageID:          r.MessageID,
		OriginalIsOTP:      r.OriginalIsOTP,
		OriginalIsPhishing: r.OriginalIsPhishing,
		CreatedAt:          r.CreatedAt,
	}
	if r.OriginalOTPIntent.Valid {
		fb.OriginalOTPIntent = &r.OriginalOTPIntent.String
	}
	if r.OriginalPhishScore.Valid {
		score := float32(r.OriginalPhishScore.Float64)
		fb.OriginalPhishScore = &score
	}
	if len(r.UserCorrection) > 0 {
		json.Unmarshal(r.UserCorrection, &fb.UserCorrection)
	}
	return fb
}

func (a *FeedbackAdapter) Create(ctx context.Context, fb *domain.Feedback) (int64, error) {
	correction, err := json.Marshal(fb.UserCorrection)
	if err != nil {
		return 0, apperr.InternalWithError(err)
	}

	query := `
		INSERT INTO feedback (message_id, original_is_otp, original_otp_intent, original_is_phishing,
			original_phish_score, user_correction, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	createdAt := fb.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	var id int64
	err = a.db.QueryRowxContext(ctx, query,
		fb.MessageID,
		fb.OriginalIsOTP,
		fb.OriginalOTPIntent,
		fb.OriginalIsPhishing,
		fb.OriginalPhishScore,
		string(correction),
		createdAt,
	).Scan(&id)
	if err != nil {
		return 0, translate("create feedback", "feedback", err)
	}
	return id, nil
}

func (a *FeedbackAdapter) ListByMessage(ctx context.Context, messageID int64) ([]*domain.Feedback, error) {
	query := `
		SELECT id, message_id, original_is_otp, original_otp_intent, original_is_phishing,
			original_phish_score, user_correction, created_at
		FROM feedback
		WHERE message_id = $1
		ORDER BY created_at`

	var rows []feedbackRow
	if err := a.db.SelectContext(ctx, &rows, query, messageID); err != nil {
		return nil, translate("list feedback", "feedback", err)
	}
	out := make([]*domain.Feedback, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}
