package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/poslink/stock-service/internal/stock/domain"
	"github.com/poslink/stock-service/pkg/logger"
)

// Publisher wraps Kafka producer
type Publisher struct {
	producer sarama.SyncProducer
	brokers  []string
}

// NewPublisher creates a new Kafka publisher
func NewPublisher(brokers []string) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.MaxMessageBytes = 1000000

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Logger.Info().
		Strs("brokers", brokers).
		Msg("Kafka publisher initialized")

	return &Publisher{
		producer: producer,
		brokers:  brokers,
	}, nil
}

// PublishTransferCompleted publishes a stock transfer completed event with tracing
func (p *Publisher) PublishTransferCompleted(ctx context.Context, transfer domain.Transfer, items []domain.TransferredItem) error {
	tracer := otel.Tracer("kafka-publisher")
	ctx, span := tracer.Start(ctx, "kafka.publish.stock_transfer_completed",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", TopicStockTransferCompleted),
			attribute.String("messaging.destination_kind", "topic"),
			attribute.String("event.type", EventTypeStockTransferCompleted),
			attribute.String("transfer.id", transfer.ID),
			attribute.String("transfer.number", transfer.TransferNumber),
			attribute.Int("transfer.items", len(items)),
		),
	)
	defer span.End()

	event := StockTransferCompletedEvent{
		EventID:            fmt.Sprintf("evt_%d", time.Now().UnixNano()),
		EventType:          EventTypeStockTransferCompleted,
		TransferID:         transfer.ID,
		TransferNumber:     transfer.TransferNumber,
		SourceStoreID:      transfer.SourceStoreID,
		DestinationStoreID: transfer.DestinationStoreID,
		Timestamp:          time.Now(),
	}
	for _, item := range items {
		event.Items = append(event.Items, TransferredItemEvent{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Cost:        item.Cost,
			UnitID:      item.UnitID,
		})
	}

	span.SetAttributes(attribute.String("event.id", event.EventID))

	eventBytes, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to marshal event")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Inject trace context into Kafka headers
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	headers := []sarama.RecordHeader{
		{
			Key:   []byte("event_type"),
			Value: []byte(EventTypeStockTransferCompleted),
		},
		{
			Key:   []byte("event_id"),
			Value: []byte(event.EventID),
		},
	}
	for key, value := range carrier {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte(key),
			Value: []byte(value),
		})
	}

	msg := &sarama.ProducerMessage{
		Topic:   TopicStockTransferCompleted,
		Key:     sarama.StringEncoder(transfer.ID),
		Value:   sarama.ByteEncoder(eventBytes),
		Headers: headers,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to send message")
		logger.Logger.Error().
			Err(err).
			Str("topic", TopicStockTransferCompleted).
			Str("transfer_id", transfer.ID).
			Str("trace_id", span.SpanContext().TraceID().String()).
			Msg("Failed to publish event")
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	span.SetAttributes(
		attribute.Int("messaging.kafka.partition", int(partition)),
		attribute.Int64("messaging.kafka.offset", offset),
	)
	span.SetStatus(codes.Ok, "Event published successfully")

	logger.Logger.Info().
		Str("event_id", event.EventID).
		Str("event_type", event.EventType).
		Str("topic", TopicStockTransferCompleted).
		Int32("partition", partition).
		Int64("offset", offset).
		Str("transfer_number", transfer.TransferNumber).
		Str("trace_id", span.SpanContext().TraceID().String()).
		Msg("Stock transfer completed event published")

	return nil
}

// Close closes the Kafka producer
func (p *Publisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
