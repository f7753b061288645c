package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ConsumerConfig names the broker, exchange and queue the consumer binds.
type ConsumerConfig struct {
	URL      string
	Exchange string
	Queue    string
}

// Consumer appends one line per booking event to a writer.
type Consumer struct {
	cfg ConsumerConfig
	out io.Writer
	log *zap.Logger
}

func NewConsumer(cfg ConsumerConfig, out io.Writer, log *zap.Logger) *Consumer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Consumer{cfg: cfg, out: out, log: log}
}

// Run connects to the broker and consumes until ctx is cancelled.  Lost
// connections are retried with exponential backoff capped at 30s.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.cfg.URL)
		if err != nil {
			c.log.Warn("booking consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("booking consumer: loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("booking consumer: set QoS failed", zap.Error(err))
	}
	if err := declareExchange(ch, c.cfg.Exchange); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(c.cfg.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if err := ch.QueueBind(c.cfg.Queue, "booking.#", c.cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}
	msgs, err := ch.Consume(c.cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.Handle(d.Body); err != nil {
				c.log.Error("booking consumer: handle message failed", zap.Error(err))
				_ = d.Nack(false, false) // no requeue, a poison message would loop
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Handle decodes one message body and writes its log line.
func (c *Consumer) Handle(body []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" {
		return errors.New("event without type")
	}
	if _, err := io.WriteString(c.out, FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders ev as a single newline-terminated log line.
func FormatLine(ev BookingEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s | booking_id=%d", ev.OccurredAt.UTC().Format(time.RFC3339), ev.Type, ev.BookingID)
	if ev.CustomerName != "" {
		fmt.Fprintf(&b, " | customer=%q", ev.CustomerName)
	}
	if ev.DateISO != "" {
		fmt.Fprintf(&b, " | slot=%s %s", ev.DateISO, ev.Time)
	}
	if ev.SpecialistName != "" {
		fmt.Fprintf(&b, " | professional=%q", ev.SpecialistName)
	}
	if len(ev.Services) > 0 {
		fmt.Fprintf(&b, " | services=[%s]", strings.Join(ev.Services, ","))
	}
	if ev.ItemID != 0 {
		fmt.Fprintf(&b, " | item_id=%d", ev.ItemID)
	}
	fmt.Fprintf(&b, " | total=%d\n", ev.Total)
	return b.String()
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
