package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/accessdeck/accessdeck/internal/models"
)

const (
	eventOTP             = "otp"
	eventWelcome         = "welcome"
	eventResetConfirmed  = "password_reset_confirmed"
	eventPasswordChanged = "password_changed"
)

type emailEvent struct {
	Type    string `json:"type"`
	To      string `json:"to"`
	Code    string `json:"code,omitempty"`
	Purpose string `json:"purpose,omitempty"`
	Name    string `json:"name,omitempty"`
	SentAt  int64  `json:"sent_at"`
}

// KafkaNotifier publishes email events for the mailer to consume. The
// writer is safe for concurrent use.
type KafkaNotifier struct {
	writer *kafka.Writer
}

func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

func (n *KafkaNotifier) SendOTPEmail(ctx context.Context, address, code string, purpose models.OTPPurpose) error {
	return n.publish(ctx, emailEvent{Type: eventOTP, To: address, Code: code, Purpose: string(purpose)})
}

func (n *KafkaNotifier) SendWelcomeEmail(ctx context.Context, address, name string) error {
	return n.publish(ctx, emailEvent{Type: eventWelcome, To: address, Name: name})
}

func (n *KafkaNotifier) SendPasswordResetConfirmation(ctx context.Context, address, name string) error {
	return n.publish(ctx, emailEvent{Type: eventResetConfirmed, To: address, Name: name})
}

func (n *KafkaNotifier) SendPasswordChangedEmail(ctx context.Context, address, name string) error {
	return n.publish(ctx, emailEvent{Type: eventPasswordChanged, To: address, Name: name})
}

func (n *KafkaNotifier) publish(ctx context.Context, ev emailEvent) error {
	ev.SentAt = time.Now().Unix()
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.To),
		Value: data,
	})
}
