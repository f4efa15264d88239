package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-storeops-service/internal/catalog"
	"github.com/fekuna/omnipos-storeops-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-storeops-service/internal/model"
	"github.com/fekuna/omnipos-storeops-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// CatalogListener applies item changes published by the upstream catalog service.
type CatalogListener struct {
	consumer MessageReader
	uc       catalog.UseCase
	logger   logger.ZapLogger
}

func NewCatalogListener(consumer MessageReader, uc catalog.UseCase, logger logger.ZapLogger) *CatalogListener {
	return &CatalogListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
	}
}

func (l *CatalogListener) Start(ctx context.Context) {
	l.logger.Info("Starting Catalog Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Catalog Kafka Listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type CatalogItemEvent struct {
	EventID   string             `json:"event_id"`
	EventType string             `json:"event_type"`
	Payload   CatalogItemPayload `json:"payload"`
	Timestamp time.Time          `json:"timestamp"`
}

type CatalogItemPayload struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	IsActive  bool   `json:"is_active"`
	SortOrder int    `json:"sort_order"`
	Par       int    `json:"par"`
}

func (l *CatalogListener) processMessage(ctx context.Context, value []byte) {
	var event CatalogItemEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != model.EventCatalogUpserted {
		return
	}

	p := event.Payload
	err := l.uc.SyncItem(ctx, &dto.SyncItemInput{
		ID:        p.ID,
		Kind:      model.ItemKind(p.Kind),
		Code:      p.Code,
		Name:      p.Name,
		IsActive:  p.IsActive,
		SortOrder: p.SortOrder,
		Par:       p.Par,
	})
	if err != nil {
		l.logger.Error("Failed to sync catalog item",
			zap.String("event_id", event.EventID),
			zap.String("item_id", p.ID),
			zap.Error(err),
		)
		return
	}
	l.logger.Info("Synced catalog item", zap.String("item_id", p.ID), zap.Int("par", p.Par))
}
