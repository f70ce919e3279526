/**
 * @description
 * This package provides a simple producer for publishing money-movement
 * events to RabbitMQ. Downstream consumers (notification senders, analytics)
 * subscribe to the topic exchange; the bank service itself never depends on
 * them, and a fallback producer keeps the service fully functional when the
 * broker is unavailable at startup.
 *
 * @dependencies
 * - github.com/rabbitmq/amqp091-go: The RabbitMQ client library.
 */
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
)

// Exchange is the topic exchange all bank events are published to.
const Exchange = "bank.events"

// TransferEvent is the payload published after a committed money movement.
type TransferEvent struct {
	TransactionID string          `json:"transaction_id"`
	FromAccount   string          `json:"from_account,omitempty"`
	ToAccount     string          `json:"to_account"`
	Amount        decimal.Decimal `json:"amount"`
	Kind          string          `json:"kind"`
	Timestamp     time.Time       `json:"timestamp"`
}

// Publisher is the interface implemented by types that can publish events.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body interface{}) error
	Close()
}

// EventProducer holds the RabbitMQ connection and channel for publishing.
type EventProducer struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

// EventProducerFallback is a no-op publisher used when RabbitMQ is
// unavailable at startup.
type EventProducerFallback struct{}

func (p *EventProducerFallback) Publish(ctx context.Context, routingKey string, body interface{}) error {
	log.Printf("level=warn component=rabbitmq_producer mode=fallback msg=\"publish skipped\" routing_key=%s", routingKey)
	return nil
}

func (p *EventProducerFallback) Close() {}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.Trim(clean, "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

// NewEventProducer creates and returns a new EventProducer.
func NewEventProducer(amqpURL string) (*EventProducer, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}

	// Bounded dial timeout so startup does not hang indefinitely.
	conn, err := amqp091.DialConfig(cleanURL, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &EventProducer{conn: conn, channel: ch}, nil
}

// Publish sends a message to the bank events exchange with a routing key.
func (p *EventProducer) Publish(ctx context.Context, routingKey string, body interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		log.Printf("level=error component=rabbitmq_producer msg=\"json marshal failed\" routing_key=%s err=%v", routingKey, err)
		return err
	}

	err = p.channel.PublishWithContext(ctx,
		Exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Body:        jsonBody,
		},
	)
	if err != nil {
		// One-shot retry on a fresh channel; publishes are best-effort and the
		// caller treats failures as non-fatal.
		log.Printf("level=warn component=rabbitmq_producer msg=\"publish failed; reopening channel\" routing_key=%s err=%v", routingKey, err)
		if p.conn == nil {
			return err
		}
		ch, chErr := p.conn.Channel()
		if chErr != nil {
			return err
		}
		p.channel = ch
		if exErr := p.channel.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); exErr != nil {
			return err
		}
		return p.channel.PublishWithContext(ctx, Exchange, routingKey, false, false, amqp091.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Body:        jsonBody,
		})
	}
	return nil
}

// Close gracefully closes the channel and connection to RabbitMQ.
func (p *EventProducer) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
