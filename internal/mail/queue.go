package mail

import (
	"context"
	"time"
)

const (
	defaultQueueCapacity = 64
	sendTimeout          = 30 * time.Second

	logMsgMailSent    = "mail sent"
	logMsgMailFailed  = "mail delivery failed"
	logMsgMailDropped = "mail queue full, message dropped"

	logAttrTo      = "to"
	logAttrSubject = "subject"
	logAttrError   = "error"
)

// Logger is the minimal logging surface the queue needs.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Queue decouples request handling from SMTP round trips. Enqueue never
// blocks: when the buffer is full the message is dropped with a log line,
// mail here is best effort notification, not a ledger.
type Queue struct {
	sender   Sender
	logger   Logger
	messages chan Message
	done     chan struct{}
}

// NewQueue creates a Queue and starts its delivery worker.
func NewQueue(sender Sender, logger Logger) *Queue {
	queue := &Queue{
		sender:   sender,
		logger:   logger,
		messages: make(chan Message, defaultQueueCapacity),
		done:     make(chan struct{}),
	}

	go queue.deliver()

	return queue
}

// Enqueue hands a message to the delivery worker without blocking.
func (q *Queue) Enqueue(message Message) {
	select {
	case q.messages <- message:
	default:
		if q.logger != nil {
			q.logger.Warn(logMsgMailDropped, logAttrTo, message.To, logAttrSubject, message.Subject)
		}
	}
}

// Close stops accepting messages and waits for the worker to drain the queue.
func (q *Queue) Close() {
	close(q.messages)
	<-q.done
}

func (q *Queue) deliver() {
	defer close(q.done)

	for message := range q.messages {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		err := q.sender.Send(ctx, message)
		cancel()

		if err != nil {
			if q.logger != nil {
				q.logger.Error(logMsgMailFailed, logAttrTo, message.To, logAttrSubject, message.Subject, logAttrError, err.Error())
			}

			continue
		}

		if q.logger != nil {
			q.logger.Info(logMsgMailSent, logAttrTo, message.To, logAttrSubject, message.Subject)
		}
	}
}
