package events

import "time"

// Event is one entry in a booking session's lifecycle stream.
type Event interface {
	ID() string
	Type() string
	SessionID() string
	AggregateType() string
	Version() int
	Data() interface{}
	Metadata() EventMetadata
	SequenceNumber() int64
	Timestamp() time.Time
}

type EventMetadata struct {
	CorrelationID string
	TraceID       string
	Timestamp     time.Time
}

// BaseEvent carries the envelope every booking event shares. Concrete events
// embed it and contribute only their payload.
type BaseEvent struct {
	eventID        string
	eventType      string
	sessionID      string
	aggregateType  string
	version        int
	data           interface{}
	metadata       EventMetadata
	sequenceNumber int64
	timestamp      time.Time
}

func (e *BaseEvent) ID() string {
	return e.eventID
}

func (e *BaseEvent) Type() string {
	return e.eventType
}

// SessionID identifies the booking session this event belongs to. Every
// event of a session shares it, which keys storage and partitioning
// consistently.
func (e *BaseEvent) SessionID() string {
	return e.sessionID
}

func (e *BaseEvent) AggregateType() string {
	return e.aggregateType
}

func (e *BaseEvent) Version() int {
	return e.version
}

func (e *BaseEvent) Data() interface{} {
	return e.data
}

func (e *BaseEvent) Metadata() EventMetadata {
	return e.metadata
}

func (e *BaseEvent) SequenceNumber() int64 {
	return e.sequenceNumber
}

func (e *BaseEvent) Timestamp() time.Time {
	return e.timestamp
}

func NewBaseEvent(eventID, eventType, sessionID, aggregateType string, version int, data interface{}, metadata EventMetadata, sequenceNumber int64) *BaseEvent {
	return NewBaseEventWithTimestamp(eventID, eventType, sessionID, aggregateType, version, data, metadata, sequenceNumber, time.Now())
}

func NewBaseEventWithTimestamp(eventID, eventType, sessionID, aggregateType string, version int, data interface{}, metadata EventMetadata, sequenceNumber int64, timestamp time.Time) *BaseEvent {
	return &BaseEvent{
		eventID:        eventID,
		eventType:      eventType,
		sessionID:      sessionID,
		aggregateType:  aggregateType,
		version:        version,
		data:           data,
		metadata:       metadata,
		sequenceNumber: sequenceNumber,
		timestamp:      timestamp,
	}
}
