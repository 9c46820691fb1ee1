package database

import (
	"os"

	"github.com/streadway/amqp"
)

var (
	mqConn    *amqp.Connection
	mqChannel *amqp.Channel
)

// OpenQueueConnection connects to RabbitMQ and declares the given (durable) queues
func OpenQueueConnection(queues ...string) error {
	var err error

	mqConn, err = amqp.Dial(os.Getenv("MAIL_QUEUE_URL"))
	if err != nil {
		return err
	}

	mqChannel, err = mqConn.Channel()
	if err != nil {
		return err
	}

	for _, q := range queues {
		if _, err = mqChannel.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return err
		}
	}

	return nil
}

// GetQueueChannel returns the shared channel
func GetQueueChannel() *amqp.Channel {
	return mqChannel
}

// CloseQueueConnection closes channel and connection
func CloseQueueConnection() error {
	if mqChannel != nil {
		mqChannel.Close()
	}
	if mqConn != nil {
		return mqConn.Close()
	}
	return nil
}
