package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/task-manager-api/internal/mailer"
)

// StartAccountConsumer connects to RabbitMQ, declares the account.events
// queue (durable), and starts consuming messages. Each event is rendered
// into a welcome or goodbye email and handed to the sender. The function
// runs a reconnect loop with capped backoff and keeps running across
// broker restarts; bad payloads are rejected without requeue so a poison
// message cannot loop forever.
func StartAccountConsumer(url string, send mailer.Sender) {
	if url == "" {
		log.Printf("account-consumer: no broker configured, notifications disabled")
		return
	}

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("account-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, send); err != nil {
			log.Printf("account-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection, send mailer.Sender) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("account-consumer: set QoS failed: %v", err)
	}

	_, err = ch.QueueDeclare(accountQueueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(accountQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body, send); err != nil {
			log.Printf("account-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte, send mailer.Sender) error {
	var ev AccountEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	subject, text, err := renderMail(ev)
	if err != nil {
		return err
	}
	if err := send.Send(ev.Email, subject, text); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// renderMail maps an event to the notification subject and body.
func renderMail(ev AccountEvent) (subject, text string, err error) {
	switch ev.Type {
	case EventAccountCreated:
		return "Thanks for joining in!",
			fmt.Sprintf("Welcome to the app, %s. Let me know how you get along with the app.", ev.Name),
			nil
	case EventAccountDeleted:
		return "Sorry to see you go",
			fmt.Sprintf("Goodbye, %s. We hope to see you back sometime soon.", ev.Name),
			nil
	default:
		return "", "", fmt.Errorf("unknown event type %q", ev.Type)
	}
}
