package events

import (
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/streadway/amqp"

	"taskflow/internal/models"
)

// Event names published to the task event queue.
const (
	TaskCreated = "task.created"
	TaskUpdated = "task.updated"
	TaskDeleted = "task.deleted"
)

const taskQueue = "task_events"

// Publisher emits task lifecycle events. Implementations must tolerate being
// the slow path: publishing failures are logged by callers, never surfaced to
// API clients.
type Publisher interface {
	PublishTaskEvent(event string, task *models.Task, actorID string) error
	Close() error
}

// TaskEvent is the JSON payload placed on the queue.
type TaskEvent struct {
	Event      string            `json:"event"`
	TaskID     string            `json:"task_id"`
	Title      string            `json:"title"`
	Status     models.TaskStatus `json:"status"`
	ActorID    string            `json:"actor_id"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// AMQPPublisher publishes task events to a durable RabbitMQ queue.
type AMQPPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewAMQPPublisher connects to RabbitMQ and declares the task event queue.
func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		taskQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s: %w", taskQueue, err)
	}

	return &AMQPPublisher{conn: conn, channel: ch}, nil
}

// PublishTaskEvent marshals the event and publishes it to the task queue.
func (p *AMQPPublisher) PublishTaskEvent(event string, task *models.Task, actorID string) error {
	payload := TaskEvent{
		Event:      event,
		TaskID:     task.ID,
		Title:      task.Title,
		Status:     task.Status,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal task event: %w", err)
	}

	return p.channel.Publish(
		"",        // default exchange
		taskQueue, // routing key
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// Close closes the channel and connection.
func (p *AMQPPublisher) Close() error {
	var errs []error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to close AMQP publisher: %v", errs)
	}
	return nil
}
