package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	EventProductsChanged = "products_changed"
	EventProductChanged  = "product_changed"
)

// CatalogEvent is published by whoever owns the product data when it changes.
type CatalogEvent struct {
	Type      string `json:"type"`
	ProductID int64  `json:"product_id,omitempty"`
}

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Invalidator drops the product cache whenever a catalog event arrives, so
// lists are refreshed before the cache TTL runs out.
type Invalidator struct {
	reader       MessageReader
	target       CacheInvalidator
	logger       *zap.Logger
	errorBackoff time.Duration
}

func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
}

func NewInvalidator(reader MessageReader, target CacheInvalidator, logger *zap.Logger) *Invalidator {
	return &Invalidator{
		reader:       reader,
		target:       target,
		logger:       logger,
		errorBackoff: time.Second,
	}
}

// Run consumes events until ctx is cancelled.
func (i *Invalidator) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		i.handleNext(ctx)
	}
}

func (i *Invalidator) Close() {
	if err := i.reader.Close(); err != nil {
		i.logger.Warn("error closing reader", zap.Error(err))
	}
}

func (i *Invalidator) handleNext(ctx context.Context) {
	m, err := i.reader.ReadMessage(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		i.logger.Warn("error reading message", zap.Error(err))
		select {
		case <-ctx.Done():
		case <-time.After(i.errorBackoff):
		}
		return
	}

	var event CatalogEvent
	if errUnmarshal := json.Unmarshal(m.Value, &event); errUnmarshal != nil {
		i.logger.Warn("error parsing message", zap.Error(errUnmarshal))
		return
	}

	switch event.Type {
	case EventProductsChanged, EventProductChanged:
	default:
		i.logger.Debug("ignoring catalog event", zap.String("type", event.Type))
		return
	}

	if errInvalidate := i.target.Invalidate(ctx); errInvalidate != nil {
		i.logger.Warn("failed to invalidate product cache", zap.Error(errInvalidate))
		return
	}
	i.logger.Info("product cache invalidated",
		zap.String("type", event.Type),
		zap.Int64("product_id", event.ProductID))
}
