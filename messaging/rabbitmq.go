package messaging

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const (
	reconnectDelay = 5 * time.Second
	publishTimeout = 5 * time.Second
)

// RabbitMQ publishes events to a durable topic exchange and reconnects when the
// connection drops.
type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	url     string
	mu      sync.RWMutex
	done    chan struct{}
}

func NewRabbitMQ(url string) (*RabbitMQ, error) {
	rmq := &RabbitMQ{
		url:  url,
		done: make(chan struct{}),
	}

	if err := rmq.connect(); err != nil {
		return nil, err
	}

	go rmq.handleReconnect()

	return rmq, nil
}

func (r *RabbitMQ) connect() error {
	var err error

	r.conn, err = amqp.Dial(r.url)
	if err != nil {
		return errors.Wrap(err, "connect to RabbitMQ")
	}

	r.channel, err = r.conn.Channel()
	if err != nil {
		r.conn.Close()
		return errors.Wrap(err, "open channel")
	}

	err = r.channel.ExchangeDeclare(
		ExchangeName,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return errors.Wrap(err, "declare exchange")
	}

	log.Info().Str("exchange", ExchangeName).Msg("RabbitMQ connected")
	return nil
}

func (r *RabbitMQ) handleReconnect() {
	for {
		r.mu.RLock()
		closed := r.conn.NotifyClose(make(chan *amqp.Error, 1))
		r.mu.RUnlock()

		select {
		case <-r.done:
			return
		case err := <-closed:
			if err != nil {
				log.Warn().Err(err).Msg("RabbitMQ connection lost, reconnecting")
			}

			r.mu.Lock()
			for {
				select {
				case <-r.done:
					r.mu.Unlock()
					return
				default:
				}
				if err := r.connect(); err != nil {
					log.Error().Err(err).Dur("delay", reconnectDelay).Msg("RabbitMQ reconnect failed")
					time.Sleep(reconnectDelay)
					continue
				}
				break
			}
			r.mu.Unlock()
		}
	}
}

func (r *RabbitMQ) publish(ctx context.Context, routingKey string, message interface{}) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.channel == nil {
		return errors.New("channel not available")
	}

	body, err := json.Marshal(message)
	if err != nil {
		return errors.Wrap(err, "marshal message")
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = r.channel.PublishWithContext(
		ctx,
		ExchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return errors.Wrapf(err, "publish %s", routingKey)
	}

	log.Debug().Str("routing_key", routingKey).Msg("event published")
	return nil
}

func (r *RabbitMQ) PublishSubmissionCreated(ctx context.Context, msg SubmissionCreatedMessage) error {
	return r.publish(ctx, RoutingKeySubmissionCreated, msg)
}

func (r *RabbitMQ) PublishStatusUpdated(ctx context.Context, msg StatusUpdatedMessage) error {
	return r.publish(ctx, RoutingKeyStatusUpdated, msg)
}

func (r *RabbitMQ) Close() {
	close(r.done)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		r.conn.Close()
	}

	log.Info().Msg("RabbitMQ connection closed")
}

// New returns a RabbitMQ publisher for url, or Nop when url is empty.
func New(url string) (Publisher, func(), error) {
	if url == "" {
		return Nop{}, func() {}, nil
	}
	rmq, err := NewRabbitMQ(url)
	if err != nil {
		return nil, nil, err
	}
	return rmq, rmq.Close, nil
}
