package out

import (
	"context"
	"time"
)

// ClassifyTrigger announces that new messages are waiting for classification.
type ClassifyTrigger interface {
	PublishMessageArrived(ctx context.Context, job *MessageArrivedJob) error
}

// MessageArrivedJob is the stream payload for a new message.
type MessageArrivedJob struct {
	ID        string    `json:"id"`
	MessageID int64     `json:"message_id"`
	Sender    string    `json:"sender,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
