package bot

import (
	"context"

	"github.com/nvnfont/nvnfont-bot-go/internal/logger"
	"github.com/nvnfont/nvnfont-bot-go/internal/messenger"
)

// Sender delivers one message to one recipient.
type Sender interface {
	Send(ctx context.Context, recipientID string, msg messenger.Message) error
}

// Outbox sends messages in order. A failed send is logged and the
// remaining messages are still sent.
type Outbox struct {
	sender Sender
	log    *logger.Logger
}

// NewOutbox creates an Outbox.
func NewOutbox(sender Sender, log *logger.Logger) *Outbox {
	return &Outbox{sender: sender, log: log.WithModule("outbox")}
}

// Send delivers msgs to recipientID sequentially and returns how many
// failed.
func (o *Outbox) Send(ctx context.Context, recipientID string, msgs ...messenger.Message) int {
	failed := 0
	for i, msg := range msgs {
		if err := o.sender.Send(ctx, recipientID, msg); err != nil {
			failed++
			o.log.WithError(err).
				WithField("recipient_id", recipientID).
				WithField("part", i+1).
				WithField("parts", len(msgs)).
				ErrorContext(ctx, "Failed to send message")
		}
	}
	return failed
}

// SendText delivers each text as its own message.
func (o *Outbox) SendText(ctx context.Context, recipientID string, texts ...string) int {
	msgs := make([]messenger.Message, 0, len(texts))
	for _, t := range texts {
		msgs = append(msgs, messenger.TextMessage(t))
	}
	return o.Send(ctx, recipientID, msgs...)
}
