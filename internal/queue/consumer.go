package queue

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const purchaseLogPath = "logs/purchases.log"

// StartPurchaseConsumer drains purchase events and appends them to the
// purchase audit log. It reconnects forever with a doubling backoff, so
// the broker may come up after the service does. Intended to run as a
// goroutine for the life of the process.
func StartPurchaseConsumer(url string) {
	backoff := time.Second
	for {
		if err := consumeLoop(url); err != nil {
			log.Printf("purchase consumer: %v (retrying in %s)", err, backoff)
		}
		time.Sleep(backoff)
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func consumeLoop(url string) error {
	conn, err := amqp.Dial(url)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(purchaseQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	msgs, err := ch.Consume(purchaseQueueName, "", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	log.Printf("purchase consumer connected, waiting for events")
	for msg := range msgs {
		if err := handleMessage(msg.Body); err != nil {
			log.Printf("purchase consumer: %v", err)
		}
	}
	return fmt.Errorf("delivery channel closed")
}

func handleMessage(body []byte) error {
	var ev TicketPurchasedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(purchaseLogPath), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(purchaseLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open purchase log: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s session=%d email=%s quantity=%d remaining=%d\n",
		ev.PurchasedAt, ev.SessionID, ev.Email, ev.Quantity, ev.Remaining)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write purchase log: %w", err)
	}
	return nil
}
