package http

import (
	"context"
	"strings"
	"time"

	"sms_classifier/core/domain"
	"sms_classifier/core/port/out"
	"sms_classifier/core/service/classification"
	"sms_classifier/pkg/apperr"
	"sms_classifier/pkg/logger"
	"sms_classifier/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// FeedbackRecorder records and lists user corrections.
type FeedbackRecorder interface {
	Submit(ctx context.Context, messageID int64, correction *domain.Correction) (*domain.Feedback, error)
	History(ctx context.Context, messageID int64) ([]*domain.Feedback, error)
}

// MessageHandler handles message ingest, lookup, review and feedback.
type MessageHandler struct {
	messages  out.MessageRepository
	trigger   out.ClassifyTrigger
	feedback  FeedbackRecorder
	heuristic *classification.HeuristicClassifier
}

func NewMessageHandler(
	messages out.MessageRepository,
	trigger out.ClassifyTrigger,
	feedback FeedbackRecorder,
	heuristic *classification.HeuristicClassifier,
) *MessageHandler {
	if heuristic == nil {
		heuristic = classification.NewHeuristicClassifier()
	}
	return &MessageHandler{
		messages:  messages,
		trigger:   trigger,
		feedback:  feedback,
		heuristic: heuristic,
	}
}

// Register mounts read routes on r and write routes on r behind auth.
func (h *MessageHandler) Register(r fiber.Router, auth fiber.Handler) {
	msgs := r.Group("/messages")
	msgs.Post("/", auth, h.Ingest)
	msgs.Get("/review", h.ListNeedsReview)
	msgs.Get("/:id", h.Get)
	msgs.Post("/:id/feedback", auth, h.SubmitFeedback)
	msgs.Get("/:id/feedback", h.FeedbackHistory)
}

// IngestRequest is the body of POST /messages.
type IngestRequest struct {
	Sender    string             `json:"sender"`
	Body      string             `json:"body"`
	Timestamp *time.Time         `json:"ts,omitempty"`
	ThreadID  int64              `json:"threadId,omitempty"`
	Type      domain.MessageType `json:"type,omitempty"`
	Read      bool               `json:"read,omitempty"`
	Language  *string            `json:"language,omitempty"`
}

// MessageView is a stored message with its derived presentation fields.
type MessageView struct {
	*domain.Message
	Badge       domain.RiskBadge   `json:"badge"`
	Sensitivity domain.Sensitivity `json:"sensitivity"`
	OTPCode     string             `json:"otpCode,omitempty"`
}

func (h *MessageHandler) Ingest(c *fiber.Ctx) error {
	var req IngestRequest
	if err := BindJSON(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Body) == "" {
		return apperr.MissingField("body")
	}
	if strings.TrimSpace(req.Sender) == "" {
		return apperr.MissingField("sender")
	}

	msg := &domain.Message{
		Sender:    req.Sender,
		Body:      req.Body,
		Timestamp: time.Now().UTC(),
		ThreadID:  req.ThreadID,
		Type:      req.Type,
		Read:      req.Read,
		Language:  req.Language,
	}
	if req.Timestamp != nil {
		msg.Timestamp = req.Timestamp.UTC()
	}
	if msg.Type == 0 {
		msg.Type = domain.MessageTypeReceived
	}

	ctx := c.UserContext()
	id, err := h.messages.Insert(ctx, msg)
	if err != nil {
		return err
	}

	if h.trigger != nil {
		job := &out.MessageArrivedJob{MessageID: id, Sender: msg.Sender}
		if err := h.trigger.PublishMessageArrived(ctx, job); err != nil {
			logger.WithError(err).WithField("message_id", id).Warn("failed to trigger classification")
		}
	}

	return response.Created(c, fiber.Map{"id": id})
}

func (h *MessageHandler) Get(c *fiber.Ctx) error {
	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	msg, err := h.messages.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return response.OK(c, h.view(msg))
}

func (h *MessageHandler) ListNeedsReview(c *fiber.Ctx) error {
	page := response.GetPagination(c, 20, 100)

	msgs, err := h.messages.ListNeedsReview(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return err
	}

	views := make([]*MessageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, h.view(m))
	}
	return response.OKWithMeta(c, views, page.PageMeta(len(views)))
}

func (h *MessageHandler) SubmitFeedback(c *fiber.Ctx) error {
	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	var correction domain.Correction
	if err := BindJSON(c, &correction); err != nil {
		return err
	}

	fb, err := h.feedback.Submit(c.UserContext(), id, &correction)
	if err != nil {
		return err
	}
	return response.Created(c, fb)
}

func (h *MessageHandler) FeedbackHistory(c *fiber.Ctx) error {
	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	history, err := h.feedback.History(c.UserContext(), id)
	if err != nil {
		return err
	}
	return response.OK(c, history)
}

func (h *MessageHandler) view(m *domain.Message) *MessageView {
	v := &MessageView{
		Message:     m,
		Badge:       m.Badge(),
		Sensitivity: m.Sensitivity(),
	}
	if domain.ExtractOTPCode(m.Body) != "" {
		v.OTPCode = domain.OTPForCopy(m.Body, m.IsOTP, h.heuristic.Classify(m.Body, m.Sender))
	}
	return v
}
