package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/config"
)

// MessageHandler processes one message value. A returned error is logged;
// the message is committed either way.
type MessageHandler func(ctx context.Context, key []byte, value []byte) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// fetchBackoff is the pause after a failed fetch so a broker outage does not
// spin the loop.
const fetchBackoff = time.Second

type Consumer struct {
	reader    messageReader
	handler   MessageHandler
	logger    *slog.Logger
	processed atomic.Int64
	rejected  atomic.Int64
}

// NewConsumer joins cfg.ConsumerGroup on topic, starting from the oldest
// retained offset when the group has none committed.
func NewConsumer(cfg config.KafkaConfig, topic string, handler MessageHandler) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       topic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})
	return newConsumer(r, topic, handler)
}

func newConsumer(r messageReader, topic string, handler MessageHandler) *Consumer {
	return &Consumer{
		reader:  r,
		handler: handler,
		logger:  slog.Default().With("component", "kafka-consumer", "topic", topic),
	}
}

// Start consumes until ctx is cancelled, then returns nil.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started")
	defer func() {
		c.logger.Info("consumer stopped", "processed", c.processed.Load(), "rejected", c.rejected.Load())
	}()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			c.logger.Error("fetch failed", "error", err)
			select {
			case <-time.After(fetchBackoff):
				continue
			case <-ctx.Done():
				return nil
			}
		}
		c.process(ctx, msg)
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	if err := c.handler(ctx, msg.Key, msg.Value); err != nil {
		c.rejected.Add(1)
		c.logger.Warn("message rejected", "partition", msg.Partition, "offset", msg.Offset, "error", err)
	} else {
		c.processed.Add(1)
	}

	if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
		c.logger.Error("commit failed", "partition", msg.Partition, "offset", msg.Offset, "error", err)
	}
}

// Counts reports how many messages the handler accepted and rejected.
func (c *Consumer) Counts() (processed, rejected int64) {
	return c.processed.Load(), c.rejected.Load()
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

// DecodeJSON unmarshals a message value into T.
func DecodeJSON[T any](value []byte) (T, error) {
	var v T
	if err := json.Unmarshal(value, &v); err != nil {
		return v, fmt.Errorf("decoding kafka message: %w", err)
	}
	return v, nil
}
