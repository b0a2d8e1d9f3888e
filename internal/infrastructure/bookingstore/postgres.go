package bookingstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"booking-wizard/internal/domain/events"
)

const (
	insertEventQuery = `
		INSERT INTO booking_events (
			event_id, session_id, aggregate_type, event_type,
			event_version, event_data, event_metadata, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	selectEventsBySessionQuery = `
		SELECT event_id, session_id, aggregate_type, event_type,
		       event_version, event_data, event_metadata, timestamp, sequence_number
		FROM booking_events
		WHERE session_id = $1
		ORDER BY sequence_number ASC
	`
)

type PostgresEventStore struct {
	db *sql.DB
}

func NewPostgresEventStore(connString string) (*PostgresEventStore, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresEventStore{db: db}, nil
}

func (es *PostgresEventStore) SaveEvent(ctx context.Context, event events.Event) error {
	eventData, err := json.Marshal(event.Data())
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	metadata, err := json.Marshal(event.Metadata())
	if err != nil {
		return fmt.Errorf("failed to marshal event metadata: %w", err)
	}

	_, err = es.db.ExecContext(ctx, insertEventQuery,
		event.ID(),
		event.SessionID(),
		event.AggregateType(),
		event.Type(),
		event.Version(),
		eventData,
		metadata,
		event.Timestamp(),
	)

	if err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}

	return nil
}

func (es *PostgresEventStore) LoadEvents(ctx context.Context, sessionID string) ([]events.Event, error) {
	rows, err := es.db.QueryContext(ctx, selectEventsBySessionQuery, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var loadedEvents []events.Event
	for rows.Next() {
		var eventID, sessID, aggType, eventType string
		var version int
		var eventDataJSON, metadataJSON []byte
		var timestamp sql.NullTime
		var sequenceNumber int64

		err := rows.Scan(&eventID, &sessID, &aggType, &eventType, &version, &eventDataJSON, &metadataJSON, &timestamp, &sequenceNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		event, err := reconstructEvent(eventType, eventID, sessID, aggType, version, eventDataJSON, metadataJSON, timestamp.Time, sequenceNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to reconstruct event: %w", err)
		}

		loadedEvents = append(loadedEvents, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return loadedEvents, nil
}

func (es *PostgresEventStore) Close() error {
	return es.db.Close()
}

func reconstructEvent(eventType, eventID, sessionID, aggType string, version int, eventDataJSON, metadataJSON []byte, timestamp time.Time, sequenceNumber int64) (events.Event, error) {
	var metadata events.EventMetadata
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	eventData, err := UnmarshalEventData(eventType, eventDataJSON)
	if err != nil {
		return nil, err
	}

	return events.NewBaseEventWithTimestamp(eventID, eventType, sessionID, aggType, version, eventData, metadata, sequenceNumber, timestamp), nil
}

// UnmarshalEventData decodes the data payload for a known booking event type.
// The event bus reuses this so wire and storage payloads stay consistent.
func UnmarshalEventData(eventType string, raw []byte) (interface{}, error) {
	switch eventType {
	case "SessionStarted":
		var data events.SessionStartedData
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s data: %w", eventType, err)
		}
		return data, nil
	case "FormUpdated":
		var data events.FormUpdatedData
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s data: %w", eventType, err)
		}
		return data, nil
	case "StepChanged":
		var data events.StepChangedData
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s data: %w", eventType, err)
		}
		return data, nil
	case "VerificationSucceeded":
		var data events.VerificationSucceededData
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s data: %w", eventType, err)
		}
		return data, nil
	case "VerificationFailed":
		var data events.VerificationFailedData
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s data: %w", eventType, err)
		}
		return data, nil
	case "PaymentRequested":
		var data events.PaymentRequestedData
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s data: %w", eventType, err)
		}
		return data, nil
	case "PaymentSucceeded":
		var data events.PaymentSucceededData
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s data: %w", eventType, err)
		}
		return data, nil
	case "PaymentFailed":
		var data events.PaymentFailedData
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s data: %w", eventType, err)
		}
		return data, nil
	case "BookingSubmitted":
		var data events.BookingSubmittedData
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s data: %w", eventType, err)
		}
		return data, nil
	case "SessionReset":
		var data events.SessionResetData
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s data: %w", eventType, err)
		}
		return data, nil
	default:
		var data map[string]interface{}
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal unknown event data: %w", err)
		}
		return data, nil
	}
}
