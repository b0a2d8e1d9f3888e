package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"booking-wizard/internal/domain/events"
	"booking-wizard/internal/infrastructure/bookingstore"
)

const (
	defaultBrokerAddress = "localhost:19092"
	defaultNumPartitions = 12
	readTimeout          = 10 * time.Second
	writeTimeout         = 10 * time.Second
)

// kafkaEventBus implements the EventBus interface over kafka
type kafkaEventBus struct {
	brokers       []string
	numPartitions int
	writers       map[string]*kafka.Writer
	readers       map[string]*kafka.Reader
	writersMu     sync.RWMutex
	readersMu     sync.RWMutex
	running       bool
	mu            sync.RWMutex
}

func newKafkaEventBus(brokers []string) (EventBus, error) {
	if len(brokers) == 0 {
		brokers = []string{defaultBrokerAddress}
	}

	bus := &kafkaEventBus{
		brokers:       brokers,
		numPartitions: defaultNumPartitions,
		writers:       make(map[string]*kafka.Writer),
		readers:       make(map[string]*kafka.Reader),
		running:       true,
	}

	return bus, nil
}

// Publish publishes an event to a topic
func (r *kafkaEventBus) Publish(ctx context.Context, topicName string, event events.Event) error {
	r.mu.RLock()
	if !r.running {
		r.mu.RUnlock()
		return fmt.Errorf("event bus is closed")
	}
	r.mu.RUnlock()

	writer := r.getOrCreateWriter(topicName)

	partitionID, err := GetPartition(event, r.numPartitions)
	if err != nil {
		return fmt.Errorf("failed to calculate partition: %w", err)
	}

	eventJSON, err := marshalEvent(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(event.SessionID()),
		Value: eventJSON,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type())},
			{Key: "event_id", Value: []byte(event.ID())},
		},
		Partition: partitionID,
		Time:      event.Timestamp(),
	}

	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := writer.WriteMessages(writeCtx, message); err != nil {
		return fmt.Errorf("failed to write message to topic %s: %w", topicName, err)
	}

	return nil
}

// Subscribe subscribes to events from a topic
func (r *kafkaEventBus) Subscribe(ctx context.Context, topicName string, handler EventHandler) error {
	return r.SubscribeWithGroupID(ctx, topicName, "", handler)
}

// SubscribeWithGroupID subscribes to events from a topic with a specific consumer group ID
func (r *kafkaEventBus) SubscribeWithGroupID(ctx context.Context, topicName, groupID string, handler EventHandler) error {
	reader := r.getOrCreateReader(topicName, groupID)

	go r.consumeEvents(ctx, reader, handler)

	return nil
}

func (r *kafkaEventBus) consumeEvents(ctx context.Context, reader *kafka.Reader, handler EventHandler) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			r.mu.RLock()
			if !r.running {
				r.mu.RUnlock()
				return
			}
			r.mu.RUnlock()

			readCtx, cancel := context.WithTimeout(ctx, readTimeout)

			message, err := reader.FetchMessage(readCtx)
			cancel()

			if err != nil {
				if err == context.DeadlineExceeded || err == context.Canceled {
					continue
				}
				time.Sleep(100 * time.Millisecond)
				continue
			}

			event, err := unmarshalEvent(message)
			if err != nil {
				// Poison message, commit and move on
				_ = reader.CommitMessages(ctx, message)
				continue
			}

			if err := handler(ctx, event); err == nil {
				_ = reader.CommitMessages(ctx, message)
			}
		}
	}
}

type eventEnvelope struct {
	ID             string               `json:"id"`
	Type           string               `json:"type"`
	SessionID      string               `json:"session_id"`
	AggregateType  string               `json:"aggregate_type"`
	Version        int                  `json:"version"`
	Data           json.RawMessage      `json:"data"`
	Metadata       events.EventMetadata `json:"metadata"`
	Timestamp      time.Time            `json:"timestamp"`
	SequenceNumber int64                `json:"sequence_number"`
}

func marshalEvent(event events.Event) ([]byte, error) {
	eventData, err := json.Marshal(event.Data())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}

	return json.Marshal(eventEnvelope{
		ID:             event.ID(),
		Type:           event.Type(),
		SessionID:      event.SessionID(),
		AggregateType:  event.AggregateType(),
		Version:        event.Version(),
		Data:           eventData,
		Metadata:       event.Metadata(),
		Timestamp:      event.Timestamp(),
		SequenceNumber: event.SequenceNumber(),
	})
}

// unmarshalEvent decodes a message into an Event, using the same payload
// decoding as the Postgres store for consistency.
func unmarshalEvent(msg kafka.Message) (events.Event, error) {
	var envelope eventEnvelope
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	data, err := bookingstore.UnmarshalEventData(envelope.Type, envelope.Data)
	if err != nil {
		return nil, err
	}

	return events.NewBaseEventWithTimestamp(
		envelope.ID,
		envelope.Type,
		envelope.SessionID,
		envelope.AggregateType,
		envelope.Version,
		data,
		envelope.Metadata,
		envelope.SequenceNumber,
		envelope.Timestamp,
	), nil
}

func (r *kafkaEventBus) getOrCreateWriter(topicName string) *kafka.Writer {
	r.writersMu.RLock()
	if writer, ok := r.writers[topicName]; ok {
		r.writersMu.RUnlock()
		return writer
	}
	r.writersMu.RUnlock()

	r.writersMu.Lock()
	defer r.writersMu.Unlock()

	if writer, ok := r.writers[topicName]; ok {
		return writer
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(r.brokers...),
		Topic:        topicName,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: writeTimeout,
		RequiredAcks: kafka.RequireOne,
	}
	r.writers[topicName] = writer
	return writer
}

func (r *kafkaEventBus) getOrCreateReader(topicName, groupID string) *kafka.Reader {
	key := topicName + "/" + groupID

	r.readersMu.Lock()
	defer r.readersMu.Unlock()

	if reader, ok := r.readers[key]; ok {
		return reader
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  r.brokers,
		Topic:    topicName,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	r.readers[key] = reader
	return reader
}

func (r *kafkaEventBus) Close() error {
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()

	r.writersMu.Lock()
	for _, w := range r.writers {
		_ = w.Close()
	}
	r.writersMu.Unlock()

	r.readersMu.Lock()
	for _, rd := range r.readers {
		_ = rd.Close()
	}
	r.readersMu.Unlock()

	return nil
}
