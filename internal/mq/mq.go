package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const ExchangeName = "pmdragon.events"

// Routing keys the API publishes and the worker binds to.
const (
	KeyEmailRegistration = "email.registration"
	KeyEmailInvitation   = "email.invitation"
	KeyEmailForgot       = "email.forgot"
	KeyEmailMention      = "email.mention"
)

// EmailJob is the payload carried for every email routing key. Fields
// beyond Email are filled per kind.
type EmailJob struct {
	Email     string `json:"email"`
	Key       string `json:"key,omitempty"`
	PrefixURL string `json:"prefix_url,omitempty"`
	Workspace string `json:"workspace,omitempty"`
	IssueID   int64  `json:"issue,omitempty"`
	Author    string `json:"author,omitempty"`
	Message   string `json:"message,omitempty"`
	RequestID int64  `json:"request,omitempty"`
}

func newConnection(url string) (*amqp091.Connection, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	return conn, nil
}

func declareExchange(ch *amqp091.Channel) error {
	return ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil)
}

type Publisher struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

func NewPublisher(url string) (*Publisher, error) {
	conn, err := newConnection(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareExchange(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Publisher{conn: conn, channel: ch}, nil
}

func (p *Publisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// Publish sends a persistent JSON message to the exchange.
func (p *Publisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.channel.PublishWithContext(ctx,
		ExchangeName,
		routingKey,
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp091.Persistent,
		},
	)
}

type MessageHandler func(ctx context.Context, routingKey string, data json.RawMessage) error

type Consumer struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	queue   amqp091.Queue
	handler MessageHandler
	log     zerolog.Logger
}

// NewConsumer declares a durable queue and binds it to every given
// routing key on the events exchange.
func NewConsumer(url, queueName string, routingKeys []string, log zerolog.Logger) (*Consumer, error) {
	conn, err := newConnection(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareExchange(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	for _, key := range routingKeys {
		if err := ch.QueueBind(q.Name, key, ExchangeName, false, nil); err != nil {
			return nil, fmt.Errorf("bind queue to %s: %w", key, err)
		}
	}

	log.Info().Str("queue", q.Name).Strs("routing_keys", routingKeys).Msg("consumer initialized")

	return &Consumer{conn: conn, channel: ch, queue: q, log: log}, nil
}

func (c *Consumer) SetHandler(h MessageHandler) { c.handler = h }

func (c *Consumer) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// StartConsuming blocks reading deliveries until the channel closes.
// Every delivery ends acked or nacked, handler panics included.
func (c *Consumer) StartConsuming(ctx context.Context) error {
	if c.handler == nil {
		return fmt.Errorf("consumer handler not set")
	}

	deliveries, err := c.channel.Consume(c.queue.Name, "worker", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	c.log.Info().Str("queue", c.queue.Name).Msg("consuming")

	for msg := range deliveries {
		c.handle(ctx, msg)
	}

	return nil
}

func (c *Consumer) handle(ctx context.Context, msg amqp091.Delivery) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Str("routing_key", msg.RoutingKey).Interface("panic", r).
				Msg("handler panic recovered")
			if err := msg.Nack(false, true); err != nil {
				c.log.Error().Err(err).Msg("nack after panic failed")
			}
		}
	}()

	if err := c.handler(ctx, msg.RoutingKey, msg.Body); err != nil {
		c.log.Error().Err(err).Str("routing_key", msg.RoutingKey).Msg("handler error")
		if err := msg.Nack(false, true); err != nil {
			c.log.Error().Err(err).Msg("nack failed")
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		c.log.Error().Err(err).Msg("ack failed")
	}
}
