package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"foundersbook-backend/internal/domain"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const publishTimeout = 5 * time.Second

// Publisher is the part of *amqp091.Channel the dispatcher uses.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// NotificationMessage is the JSON body consumers (email/SMS/WhatsApp
// senders) receive for every stored notification.
type NotificationMessage struct {
	NotificationID string    `json:"notificationId"`
	Type           string    `json:"type"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"createdAt"`
	Recipient      Recipient `json:"recipient"`
}

type Recipient struct {
	UserID      string  `json:"userId"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
}

func NewNotificationMessage(n domain.Notification, u domain.User) NotificationMessage {
	return NotificationMessage{
		NotificationID: n.ID.String(),
		Type:           string(n.Type),
		Message:        n.Message,
		CreatedAt:      n.CreatedAt,
		Recipient: Recipient{
			UserID:      u.ID.String(),
			Name:        u.Name,
			Email:       u.Email,
			PhoneNumber: u.PhoneNumber,
		},
	}
}

// Dispatcher publishes notifications to a durable direct exchange, routed
// by queue name.
type Dispatcher struct {
	pub      Publisher
	exchange string
	queue    string
}

func NewDispatcher(pub Publisher, exchange, queue string) *Dispatcher {
	return &Dispatcher{pub: pub, exchange: exchange, queue: queue}
}

func (d *Dispatcher) Dispatch(ctx context.Context, n domain.Notification, recipient domain.User) error {
	body, err := json.Marshal(NewNotificationMessage(n, recipient))
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = d.pub.PublishWithContext(ctx, d.exchange, d.queue, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    n.ID.String(),
		Type:         string(n.Type),
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	log.Debug().Str("notification_id", n.ID.String()).Str("exchange", d.exchange).Msg("Published notification")
	return nil
}

// Client owns the AMQP connection and channel behind a Dispatcher.
type Client struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	*Dispatcher
}

// Dial connects, declares the exchange and queue, and binds them.
func Dial(url, exchange, queue string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	c := &Client{conn: conn, channel: ch, Dispatcher: NewDispatcher(ch, exchange, queue)}
	if err := c.setup(); err != nil {
		c.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}
	return c, nil
}

func (c *Client) setup() error {
	if err := c.channel.ExchangeDeclare(c.exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := c.channel.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := c.channel.QueueBind(c.queue, c.queue, c.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
