package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/KOFI-GYIMAH/team-activity-corpus/pkg/errors"
	"github.com/KOFI-GYIMAH/team-activity-corpus/pkg/logger"
	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

const RefreshQueue = "corpus_refresh"

// * RefreshRequest asks the worker to rebuild the corpus
type RefreshRequest struct {
	ID          string    `json:"id"`
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requested_at"`
}

func NewRefreshRequest(reason string) RefreshRequest {
	return RefreshRequest{
		ID:          uuid.NewString(),
		Reason:      reason,
		RequestedAt: time.Now().UTC(),
	}
}

func decodeRefreshRequest(body []byte) (RefreshRequest, error) {
	var req RefreshRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return RefreshRequest{}, errors.Parse("Invalid refresh request", "Message body is not a refresh request", err)
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	return req, nil
}

type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewRabbitMQ(url string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Upstream("Failed to connect to RabbitMQ", "Dial failed", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Upstream("Failed to open RabbitMQ channel", "", err)
	}

	return &RabbitMQ{
		conn:    conn,
		channel: channel,
	}, nil
}

func (r *RabbitMQ) declare() (amqp.Queue, error) {
	return r.channel.QueueDeclare(
		RefreshQueue,
		true,
		false,
		false,
		false,
		nil,
	)
}

// PublishRefreshRequest enqueues a refresh and returns the request that was sent.
func (r *RabbitMQ) PublishRefreshRequest(ctx context.Context, reason string) (RefreshRequest, error) {
	queue, err := r.declare()
	if err != nil {
		return RefreshRequest{}, err
	}

	req := NewRefreshRequest(reason)
	body, err := json.Marshal(req)
	if err != nil {
		return RefreshRequest{}, err
	}

	err = r.channel.Publish(
		"",
		queue.Name,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    req.ID,
			Timestamp:    req.RequestedAt,
			Body:         body,
		},
	)
	if err != nil {
		return RefreshRequest{}, err
	}

	logger.Info("Published refresh request %s (%s)", req.ID, reason)
	return req, nil
}

// ConsumeRefreshRequests hands each delivered request to handler until ctx is done.
func (r *RabbitMQ) ConsumeRefreshRequests(ctx context.Context, handler func(RefreshRequest) error) error {
	queue, err := r.declare()
	if err != nil {
		return err
	}

	msgs, err := r.channel.Consume(
		queue.Name,
		"",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-msgs:
				if !ok {
					logger.Warn("Refresh queue delivery channel closed")
					return
				}
				handleDelivery(d.Body, handler)
			}
		}
	}()

	return nil
}

func handleDelivery(body []byte, handler func(RefreshRequest) error) {
	req, err := decodeRefreshRequest(body)
	if err != nil {
		logger.Error("Error decoding message: %v", err)
		return
	}

	if err := handler(req); err != nil {
		logger.Error("Error handling refresh request %s: %v", req.ID, err)
	}
}

func (r *RabbitMQ) Close() error {
	if err := r.channel.Close(); err != nil {
		return err
	}
	return r.conn.Close()
}
