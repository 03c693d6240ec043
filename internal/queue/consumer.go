package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultOrderLogPath is where the consumer appends order lines when no
// path is configured.
const DefaultOrderLogPath = "logs/orders.log"

// OrderConsumer drains the order.created queue into a plain-text audit log,
// one line per order.
type OrderConsumer struct {
	URL     string
	LogPath string
}

func NewOrderConsumer(url, logPath string) *OrderConsumer {
	if url == "" {
		url = BrokerURL()
	}
	if logPath == "" {
		logPath = DefaultOrderLogPath
	}
	return &OrderConsumer{URL: url, LogPath: logPath}
}

// Run connects to RabbitMQ, declares the order.created queue (durable) and
// consumes until ctx is cancelled. Broker failures are retried with
// exponential backoff; malformed messages are logged and rejected so the
// server keeps operating.
func (c *OrderConsumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			log.Printf("order-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("order-consumer: consume loop ended: %v; reconnecting", err)
		if !sleepCtx(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *OrderConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("order-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(OrderCreatedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(OrderCreatedQueue, "", false, false, false, false, nil)
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
			if err := c.handleMessage(d.Body); err != nil {
				log.Printf("order-consumer: handle message failed: %v", err)
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *OrderConsumer) handleMessage(body []byte) error {
	var ev OrderCreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.OrderID == "" {
		return errors.New("event without order_id")
	}
	if err := os.MkdirAll(filepath.Dir(c.LogPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(c.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatOrderLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatOrderLine(ev OrderCreatedEvent) string {
	items := make([]string, 0, len(ev.Items))
	for _, it := range ev.Items {
		items = append(items, fmt.Sprintf("%dx#%d@%d", it.Qty, it.ProductID, it.UnitPriceCents))
	}
	installments := "-"
	if ev.Installments != nil {
		installments = fmt.Sprint(*ev.Installments)
	}
	return fmt.Sprintf("[%s] Order created | order_id=%s | email=%s | method=%s | installments=%s | total=%d cents | interest=%d cents | charged=%d cents | items=[%s]\n",
		ev.CreatedAt, ev.OrderID, ev.CustomerEmail, ev.PaymentMethod, installments,
		ev.TotalCents, ev.InterestCents, ev.TotalWithInterestCents, strings.Join(items, ","))
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
