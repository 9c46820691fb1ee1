package mailer

import (
	"concordia-courses/helpers"
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// MailQueue is the queue the mail worker consumes
const MailQueue = "mail_queue"

// Mailer delivers the verification code of a new account
type Mailer interface {
	SendVerification(ctx context.Context, to string, username string, token string) error
}

// Message is what's published to the mail queue
type Message struct {
	Kind     string    `json:"kind"`
	To       string    `json:"to"`
	Username string    `json:"username"`
	Token    string    `json:"token"`
	SentAt   time.Time `json:"sentAt"`
}

// message kinds
const (
	KindVerification = "verification"
)

// LogMailer only logs the mail (DEV)
type LogMailer struct{}

// SendVerification logs the token so it can be confirmed by hand
func (LogMailer) SendVerification(ctx context.Context, to string, username string, token string) error {
	logrus.WithFields(logrus.Fields{
		"to":       to,
		"username": username,
		"token":    token,
	}).Info("verification mail")
	return nil
}

// publisher is the part of *amqp.Channel used here
type publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// QueueMailer publishes mails to RabbitMQ, a worker outside of this service sends them
type QueueMailer struct {
	channel publisher
	queue   string
}

// NewQueueMailer publishes to MailQueue on the given channel
func NewQueueMailer(channel publisher) *QueueMailer {
	return &QueueMailer{channel: channel, queue: MailQueue}
}

// SendVerification publishes a verification message
func (m *QueueMailer) SendVerification(ctx context.Context, to string, username string, token string) error {

	msg := Message{
		Kind:     KindVerification,
		To:       to,
		Username: username,
		Token:    token,
		SentAt:   time.Now(),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	err = m.channel.Publish("", m.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    msg.SentAt,
		Body:         body,
	})
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	return nil
}
