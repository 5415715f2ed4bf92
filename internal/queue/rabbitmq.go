package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// DefaultQueueName is the mirror job queue name
	DefaultQueueName = "mirror_push_jobs"
	// DefaultDLQName is the dead letter queue name
	DefaultDLQName = "mirror_push_jobs_dlq"
	// DefaultExchangeName is the exchange name
	DefaultExchangeName = "mirror_jobs"

	routingKeyJobs = "jobs"
	routingKeyDLQ  = "dlq"
)

// RabbitMQQueue implements JobQueue using RabbitMQ, for deployments where a
// separate worker drains the mirror queue.
type RabbitMQQueue struct {
	conn         *amqp.Connection
	channel      *amqp.Channel
	queueName    string
	dlqName      string
	exchangeName string
}

// NewRabbitMQQueue connects to RabbitMQ and declares the mirror topology.
func NewRabbitMQQueue(amqpURL string) (*RabbitMQQueue, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			_ = closeErr
		}
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	q := &RabbitMQQueue{
		conn:         conn,
		channel:      ch,
		queueName:    DefaultQueueName,
		dlqName:      DefaultDLQName,
		exchangeName: DefaultExchangeName,
	}

	if err := q.setup(); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			_ = closeErr
		}
		return nil, fmt.Errorf("failed to setup queues: %w", err)
	}

	return q, nil
}

// setup declares the exchange, the dead letter queue, and the main queue.
func (q *RabbitMQQueue) setup() error {
	err := q.channel.ExchangeDeclare(
		q.exchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	if _, err = q.channel.QueueDeclare(
		q.dlqName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare DLQ: %w", err)
	}

	if err = q.channel.QueueBind(q.dlqName, routingKeyDLQ, q.exchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind DLQ: %w", err)
	}

	queueArgs := amqp.Table{
		"x-dead-letter-exchange":    q.exchangeName,
		"x-dead-letter-routing-key": routingKeyDLQ,
	}
	if _, err = q.channel.QueueDeclare(
		q.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		queueArgs,
	); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err = q.channel.QueueBind(q.queueName, routingKeyJobs, q.exchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue to exchange: %w", err)
	}

	return nil
}

// Enqueue publishes a job as a persistent message.
func (q *RabbitMQQueue) Enqueue(ctx context.Context, job *Job) error {
	jobJSON, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		Body:         jobJSON,
		DeliveryMode: amqp.Persistent,
		MessageId:    job.ID.String(),
		Timestamp:    job.CreatedAt,
	}

	if err := q.channel.PublishWithContext(
		ctx,
		q.exchangeName,
		routingKeyJobs,
		false, // mandatory
		false, // immediate
		publishing,
	); err != nil {
		return fmt.Errorf("failed to publish job: %w", err)
	}

	return nil
}

// Consume delivers jobs on a dedicated consumer channel. prefetchCount
// controls how many unacknowledged messages this consumer holds; 1 gives
// fair dispatch across workers.
func (q *RabbitMQQueue) Consume(ctx context.Context, prefetchCount int) (<-chan Message, <-chan error, error) {
	consumeCh, err := q.conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create consumer channel: %w", err)
	}

	if err := consumeCh.Qos(prefetchCount, 0, false); err != nil {
		if closeErr := consumeCh.Close(); closeErr != nil {
			_ = closeErr
		}
		return nil, nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := consumeCh.Consume(
		q.queueName,
		"",    // consumer tag, auto-generated
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		if closeErr := consumeCh.Close(); closeErr != nil {
			_ = closeErr
		}
		return nil, nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	messages := make(chan Message)
	errs := make(chan error, 1)

	go func() {
		defer close(messages)
		defer func() {
			if closeErr := consumeCh.Close(); closeErr != nil {
				_ = closeErr
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					errs <- fmt.Errorf("delivery channel closed")
					return
				}
				job := &Job{}
				if err := json.Unmarshal(d.Body, job); err != nil {
					// Unparseable message, send straight to the DLQ.
					if nackErr := d.Nack(false, false); nackErr != nil {
						_ = nackErr
					}
					continue
				}
				select {
				case <-ctx.Done():
					if nackErr := d.Nack(false, true); nackErr != nil {
						_ = nackErr
					}
					return
				case messages <- &rabbitMessage{delivery: d, job: job}:
				}
			}
		}
	}()

	return messages, errs, nil
}

// Close closes the channel and connection.
func (q *RabbitMQQueue) Close() error {
	if err := q.channel.Close(); err != nil {
		if closeErr := q.conn.Close(); closeErr != nil {
			_ = closeErr
		}
		return fmt.Errorf("failed to close channel: %w", err)
	}
	if err := q.conn.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}

// HealthCheck verifies the connection is open.
func (q *RabbitMQQueue) HealthCheck(ctx context.Context) error {
	if q.conn.IsClosed() {
		return fmt.Errorf("rabbitmq connection closed")
	}
	return nil
}

type rabbitMessage struct {
	delivery amqp.Delivery
	job      *Job
}

func (m *rabbitMessage) Job() *Job { return m.job }

func (m *rabbitMessage) Ack() error {
	return m.delivery.Ack(false)
}

func (m *rabbitMessage) Nack(requeue bool) error {
	return m.delivery.Nack(false, requeue)
}

var _ JobQueue = (*RabbitMQQueue)(nil)
