package rabbit

// Publishes result events to a topic exchange so other services (analytics,
// notifications) can follow quiz activity without polling the store.

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"quizboard/internal/domain"
)

const (
	DefaultExchange = "quiz.events" // topic exchange for result events

	// ResultCreatedRoutingKey is "result.<quizID>.created".
	ResultCreatedRoutingKey = "result.%s.created"
)

// ResultCreatedEvent is the message body published for every new result.
type ResultCreatedEvent struct {
	ResultID         string    `json:"resultId"`
	QuizID           string    `json:"quizId"`
	UserName         string    `json:"userName"`
	Score            int       `json:"score"`
	TotalQuestions   int       `json:"totalQuestions"`
	Percentage       int       `json:"percentage"`
	TimeTakenSeconds *int      `json:"timeTakenSeconds,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// NewResultCreatedEvent builds the event body for result. The participant's
// email is left out.
func NewResultCreatedEvent(result domain.Result) ResultCreatedEvent {
	return ResultCreatedEvent{
		ResultID:         result.ID,
		QuizID:           result.QuizID,
		UserName:         result.UserName,
		Score:            result.Score,
		TotalQuestions:   result.TotalQuestions,
		Percentage:       result.Percentage,
		TimeTakenSeconds: result.TimeTakenSeconds,
		Timestamp:        result.Timestamp,
	}
}

// RoutingKey returns the routing key used for result events of quizID.
func RoutingKey(quizID string) string {
	return fmt.Sprintf(ResultCreatedRoutingKey, quizID)
}

// Publisher implements app.ResultPublisher over RabbitMQ.
type Publisher struct {
	conn     *amqp.Connection
	exchange string

	mu      sync.Mutex
	channel *amqp.Channel
}

// Dial connects to RabbitMQ and declares the exchange.
func Dial(url, exchange string) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, exchange: exchange, channel: ch}, nil
}

// PublishResult sends a ResultCreatedEvent for result.
func (p *Publisher) PublishResult(ctx context.Context, result domain.Result) error {
	body, err := json.Marshal(NewResultCreatedEvent(result))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel.PublishWithContext(ctx,
		p.exchange,
		RoutingKey(result.QuizID),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    result.ID,
			Timestamp:    result.Timestamp,
			Body:         body,
		})
}

// Close shuts down the channel and connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		_ = p.channel.Close()
	}
	return p.conn.Close()
}
