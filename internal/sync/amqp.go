package syncx

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const DefaultExchange = "edueval.events"

// BrokerPublisher forwards events to a topic exchange; the event type is the
// routing key. With an empty URL it is a no-op.
type BrokerPublisher struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	enabled  bool
}

func NewBrokerPublisher(uri, exchange string) (*BrokerPublisher, error) {
	if uri == "" {
		log.Println("Warning: AMQP_URL is empty, broker publishing is disabled")
		return &BrokerPublisher{enabled: false}, nil
	}
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp091.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	return &BrokerPublisher{conn: conn, channel: channel, exchange: exchange, enabled: true}, nil
}

func (p *BrokerPublisher) Enabled() bool { return p.enabled }

func (p *BrokerPublisher) Publish(ctx context.Context, typ, key string, payload any) error {
	if !p.enabled {
		return nil
	}
	body, err := json.Marshal(map[string]any{"type": typ, "key": key, "data": payload})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err = p.channel.PublishWithContext(
		pubCtx,
		p.exchange, // exchange
		typ,        // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func (p *BrokerPublisher) Close() error {
	if !p.enabled {
		return nil
	}
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
