package events

import (
	"time"

	"github.com/google/uuid"

	"booking-wizard/internal/domain/booking"
)

const aggregateTypeBooking = "BookingSession"

type SessionStartedData struct {
	SessionID string
	StartedAt time.Time
}

type SessionStarted struct {
	*BaseEvent
}

func NewSessionStarted(sessionID string, metadata EventMetadata, sequenceNumber int64) *SessionStarted {
	data := SessionStartedData{
		SessionID: sessionID,
		StartedAt: time.Now(),
	}

	base := NewBaseEvent(
		uuid.New().String(),
		"SessionStarted",
		sessionID,
		aggregateTypeBooking,
		1,
		data,
		metadata,
		sequenceNumber,
	)

	return &SessionStarted{BaseEvent: base}
}

type FormUpdatedData struct {
	SessionID  string
	Fields     []string
	TotalPrice int
}

type FormUpdated struct {
	*BaseEvent
}

func NewFormUpdated(sessionID string, fields []string, totalPrice int, metadata EventMetadata, sequenceNumber int64) *FormUpdated {
	data := FormUpdatedData{
		SessionID:  sessionID,
		Fields:     fields,
		TotalPrice: totalPrice,
	}

	base := NewBaseEvent(
		uuid.New().String(),
		"FormUpdated",
		sessionID,
		aggregateTypeBooking,
		1,
		data,
		metadata,
		sequenceNumber,
	)

	return &FormUpdated{BaseEvent: base}
}

type StepChangedData struct {
	SessionID string
	From      int
	To        int
	Direction string
}

type StepChanged struct {
	*BaseEvent
}

func NewStepChanged(sessionID string, from, to booking.Step, direction string, metadata EventMetadata, sequenceNumber int64) *StepChanged {
	data := StepChangedData{
		SessionID: sessionID,
		From:      int(from),
		To:        int(to),
		Direction: direction,
	}

	base := NewBaseEvent(
		uuid.New().String(),
		"StepChanged",
		sessionID,
		aggregateTypeBooking,
		1,
		data,
		metadata,
		sequenceNumber,
	)

	return &StepChanged{BaseEvent: base}
}

type VerificationSucceededData struct {
	SessionID  string
	Channel    string
	VerifiedAt time.Time
}

type VerificationSucceeded struct {
	*BaseEvent
}

func NewVerificationSucceeded(sessionID, channel string, metadata EventMetadata, sequenceNumber int64) *VerificationSucceeded {
	data := VerificationSucceededData{
		SessionID:  sessionID,
		Channel:    channel,
		VerifiedAt: time.Now(),
	}

	base := NewBaseEvent(
		uuid.New().String(),
		"VerificationSucceeded",
		sessionID,
		aggregateTypeBooking,
		1,
		data,
		metadata,
		sequenceNumber,
	)

	return &VerificationSucceeded{BaseEvent: base}
}

type VerificationFailedData struct {
	SessionID string
	Channel   string
	Reason    string
}

type VerificationFailed struct {
	*BaseEvent
}

func NewVerificationFailed(sessionID, channel, reason string, metadata EventMetadata, sequenceNumber int64) *VerificationFailed {
	data := VerificationFailedData{
		SessionID: sessionID,
		Channel:   channel,
		Reason:    reason,
	}

	base := NewBaseEvent(
		uuid.New().String(),
		"VerificationFailed",
		sessionID,
		aggregateTypeBooking,
		1,
		data,
		metadata,
		sequenceNumber,
	)

	return &VerificationFailed{BaseEvent: base}
}

type PaymentRequestedData struct {
	SessionID   string
	Amount      int
	RequestedAt time.Time
}

type PaymentRequested struct {
	*BaseEvent
}

func NewPaymentRequested(sessionID string, amount int, metadata EventMetadata, sequenceNumber int64) *PaymentRequested {
	data := PaymentRequestedData{
		SessionID:   sessionID,
		Amount:      amount,
		RequestedAt: time.Now(),
	}

	base := NewBaseEvent(
		uuid.New().String(),
		"PaymentRequested",
		sessionID,
		aggregateTypeBooking,
		1,
		data,
		metadata,
		sequenceNumber,
	)

	return &PaymentRequested{BaseEvent: base}
}

type PaymentSucceededData struct {
	SessionID     string
	Amount        int
	TransactionID string
	CompletedAt   time.Time
}

type PaymentSucceeded struct {
	*BaseEvent
}

func NewPaymentSucceeded(sessionID string, amount int, transactionID string, metadata EventMetadata, sequenceNumber int64) *PaymentSucceeded {
	data := PaymentSucceededData{
		SessionID:     sessionID,
		Amount:        amount,
		TransactionID: transactionID,
		CompletedAt:   time.Now(),
	}

	base := NewBaseEvent(
		uuid.New().String(),
		"PaymentSucceeded",
		sessionID,
		aggregateTypeBooking,
		1,
		data,
		metadata,
		sequenceNumber,
	)

	return &PaymentSucceeded{BaseEvent: base}
}

type PaymentFailedData struct {
	SessionID string
	Amount    int
	Reason    string
	FailedAt  time.Time
}

type PaymentFailed struct {
	*BaseEvent
}

func NewPaymentFailed(sessionID string, amount int, reason string, metadata EventMetadata, sequenceNumber int64) *PaymentFailed {
	data := PaymentFailedData{
		SessionID: sessionID,
		Amount:    amount,
		Reason:    reason,
		FailedAt:  time.Now(),
	}

	base := NewBaseEvent(
		uuid.New().String(),
		"PaymentFailed",
		sessionID,
		aggregateTypeBooking,
		1,
		data,
		metadata,
		sequenceNumber,
	)

	return &PaymentFailed{BaseEvent: base}
}

type BookingSubmittedData struct {
	SessionID   string
	FormData    booking.FormData
	SubmittedAt time.Time
}

type BookingSubmitted struct {
	*BaseEvent
}

func NewBookingSubmitted(sessionID string, formData booking.FormData, metadata EventMetadata, sequenceNumber int64) *BookingSubmitted {
	data := BookingSubmittedData{
		SessionID:   sessionID,
		FormData:    formData,
		SubmittedAt: time.Now(),
	}

	base := NewBaseEvent(
		uuid.New().String(),
		"BookingSubmitted",
		sessionID,
		aggregateTypeBooking,
		1,
		data,
		metadata,
		sequenceNumber,
	)

	return &BookingSubmitted{BaseEvent: base}
}

type SessionResetData struct {
	SessionID string
	ResetAt   time.Time
}

type SessionReset struct {
	*BaseEvent
}

func NewSessionReset(sessionID string, metadata EventMetadata, sequenceNumber int64) *SessionReset {
	data := SessionResetData{
		SessionID: sessionID,
		ResetAt:   time.Now(),
	}

	base := NewBaseEvent(
		uuid.New().String(),
		"SessionReset",
		sessionID,
		aggregateTypeBooking,
		1,
		data,
		metadata,
		sequenceNumber,
	)

	return &SessionReset{BaseEvent: base}
}
