package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"sms_classifier/core/domain"
	"sms_classifier/core/port/out"
	"sms_classifier/pkg/apperr"
)

// MessageAdapter implements out.MessageRepository using PostgreSQL.
type MessageAdapter struct {
	db *sqlx.DB
}

var _ out.MessageRepository = (*MessageAdapter)(nil)

func NewMessageAdapter(db *sqlx.DB) *MessageAdapter {
	return &MessageAdapter{db: db}
}

const messageColumns = `id, sender, body, ts, thread_id, type, read, language, features_json,
	is_otp, otp_intent, is_phishing, phish_score, reasons, reviewed, version`

// messageRow represents the database row.
type messageRow struct {
	ID           int64           `db:"id"`
	Sender       string          `db:"sender"`
	Body         string          `db:"body"`
	TS           time.Time       `db:"ts"`
	ThreadID     int64           `db:"thread_id"`
	Type         int             `db:"type"`
	Read         bool            `db:"read"`
	Language     sql.NullString  `db:"language"`
	FeaturesJSON sql.NullString  `db:"features_json"`
	IsOTP        domain.Tristate `db:"is_otp"`
	OTPIntent    sql.NullString  `db:"otp_intent"`
	IsPhishing   domain.Tristate `db:"is_phishing"`
	PhishScore   sql.NullFloat64 `db:"phish_score"`
	Reasons      pq.StringArray  `db:"reasons"`
	Reviewed     bool            `db:"reviewed"`
	Version      int             `db:"version"`
}

func (r *messageRow) toDomain() *domain.Message {
	m := &domain.Message{
		ID:         r.ID,
		Sender:     r.Sender,
		Body:       r.Body,
		Timestamp:  r.TS,
		ThreadID:   r.ThreadID,
		Type:       domain.MessageType(r.Type),
		Read:       r.Read,
		IsOTP:      r.IsOTP,
		IsPhishing: r.IsPhishing,
		Reasons:    []string(r.Reasons),
		Reviewed:   r.Reviewed,
		Version:    r.Version,
	}
	if m.Reasons == nil {
		m.Reasons = []string{}
	}
	if r.Language.Valid {
		m.Language = &r.Language.String
	}
	if r.FeaturesJSON.Valid {
		m.FeaturesJSON = &r.FeaturesJSON.String
	}
	if r.OTPIntent.Valid {
		m.OTPIntent = &r.OTPIntent.String
	}
	if r.PhishScore.Valid {
		score := float32(r.PhishScore.Float64)
		m.PhishScore = &score
	}
	return m
}

func toRows(rows []messageRow) []*domain.Message {
	out := make([]*domain.Message, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out
}

// ListUnclassified selects messages with either verdict still NULL, newest first.
func (a *MessageAdapter) ListUnclassified(ctx context.Context, limit int) ([]*domain.Message, error) {
	query := `SELECT ` + messageColumns + `
		FROM messages
		WHERE is_otp IS NULL OR is_phishing IS NULL
		ORDER BY ts DESC
		LIMIT $1`

	var rows []messageRow
	if err := a.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, translate("list unclassified messages", "message", err)
	}
	return toRows(rows), nil
}

// UpdateClassification writes all prediction fields in a single statement.
func (a *MessageAdapter) UpdateClassification(ctx context.Context, id int64, pred *domain.Prediction) error {
	query := `
		UPDATE messages
		SET is_otp = $1, otp_intent = $2, is_phishing = $3, phish_score = $4, reasons = $5,
			version = version + 1, updated_at = NOW()
		WHERE id = $6`

	reasons := pred.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	result, err := a.db.ExecContext(ctx, query,
		pred.IsOTP,
		pred.OTPIntent,
		pred.IsPhishing,
		pred.PhishScoreOrNil(),
		pq.Array(reasons),
		id,
	)
	if err != nil {
		return translate("update classification", "message", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFound("message")
	}
	return nil
}

// Insert stores a new, unclassified message and returns its ID.
func (a *MessageAdapter) Insert(ctx context.Context, msg *domain.Message) (int64, error) {
	query := `
		INSERT INTO messages (sender, body, ts, thread_id, type, read, language, features_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	msgType := msg.Type
	if msgType == 0 {
		msgType = domain.MessageTypeReceived
	}

	var id int64
	err := a.db.QueryRowxContext(ctx, query,
		msg.Sender,
		msg.Body,
		ts,
		msg.ThreadID,
		int(msgType),
		msg.Read,
		msg.Language,
		msg.FeaturesJSON,
	).Scan(&id)
	if err != nil {
		return 0, translate("insert message", "message", err)
	}
	msg.ID, msg.Timestamp, msg.Type = id, ts, msgType
	return id, nil
}

func (a *MessageAdapter) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`

	var row messageRow
	if err := a.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, translate("get message", "message", err)
	}
	return row.toDomain(), nil
}

func (a *MessageAdapter) MarkReviewed(ctx context.Context, id int64) error {
	result, err := a.db.ExecContext(ctx,
		`UPDATE messages SET reviewed = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return translate("mark reviewed", "message", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFound("message")
	}
	return nil
}

// ListNeedsReview lists unreviewed messages that lack a phishing verdict or score.
func (a *MessageAdapter) ListNeedsReview(ctx context.Context, limit, offset int) ([]*domain.Message, error) {
	query := `SELECT ` + messageColumns + `
		FROM messages
		WHERE reviewed = FALSE AND (is_phishing IS NULL OR phish_score IS NULL)
		ORDER BY ts DESC
		LIMIT $1 OFFSET $2`

	var rows []messageRow
	if err := a.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, translate("list needs review", "message", err)
	}
	return toRows(rows), nil
}

func (a *MessageAdapter) Counts(ctx context.Context) (*domain.MessageCounts, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE is_otp) AS otp,
			COUNT(*) FILTER (WHERE is_phishing) AS phishing,
			COUNT(*) FILTER (WHERE reviewed = FALSE AND (is_phishing IS NULL OR phish_score IS NULL)) AS needs_review,
			COUNT(*) FILTER (WHERE is_otp = FALSE AND is_phishing = FALSE) AS general
		FROM messages`

	var counts domain.MessageCounts
	if err := a.db.GetContext(ctx, &counts, query); err != nil {
		return nil, translate("count messages", "message", err)
	}
	return &counts, nil
}
