package payment

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"booking-wizard/internal/application/wizard"
	"booking-wizard/internal/common/configs"
	"booking-wizard/internal/common/logger"
	"booking-wizard/internal/domain/events"
	"booking-wizard/internal/infrastructure/bookingstore"
	"booking-wizard/internal/infrastructure/dlq"
	"booking-wizard/internal/infrastructure/mock"
)

// RetryPolicy defines the retry policy for gateway calls
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool
}

// DefaultRetryPolicy returns the default retry policy
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// Service drives the payment gateway for a session's overlay and reports the
// outcome back to the wizard. Transport errors retry with backoff; a
// definitive gateway decline does not.
type Service struct {
	wizard      *wizard.Service
	gateway     mock.PaymentGateway
	eventStore  bookingstore.EventStore
	deadLetters dlq.DLQ
	logger      logger.Logger
	retryPolicy RetryPolicy
	sequence    int64 // advanced atomically
}

func NewService(w *wizard.Service, g mock.PaymentGateway, es bookingstore.EventStore, d dlq.DLQ, l logger.Logger) *Service {
	return &Service{
		wizard:      w,
		gateway:     g,
		eventStore:  es,
		deadLetters: d,
		logger:      l,
		retryPolicy: DefaultRetryPolicy(),
	}
}

// SetRetryPolicy overrides the default policy, mainly for tests.
func (s *Service) SetRetryPolicy(p RetryPolicy) {
	s.retryPolicy = p
}

// Process runs the simulated payment for a session whose overlay is raised.
// The outcome parameter is the caller's simulation choice; a real gateway
// integration replaces it with a card token.
func (s *Service) Process(ctx context.Context, sessionID, outcome string) (*wizard.Snapshot, error) {
	snap, err := s.wizard.Snapshot(sessionID)
	if err != nil {
		return nil, err
	}
	if !snap.PaymentOverlay {
		return nil, wizard.ErrOverlayNotRaised
	}

	seq := atomic.AddInt64(&s.sequence, 1)
	requested := events.NewPaymentRequested(sessionID, snap.FormData.TotalPrice, s.newMetadata(), seq)
	if err := s.eventStore.SaveEvent(ctx, requested); err != nil {
		s.logger.Error("failed to save payment request event", logger.Field{Key: "error", Value: err})
	}

	req := mock.PaymentRequest{
		SessionID: sessionID,
		Amount:    strconv.Itoa(snap.FormData.TotalPrice),
		Outcome:   outcome,
	}

	resp, err := s.processWithRetry(ctx, req)
	if err != nil {
		// Retries exhausted: dead-letter the request, then fail the booking
		if dlqErr := s.deadLetters.Publish(ctx, requested, err.Error(), configs.TopicBookings, s.retryPolicy.MaxAttempts); dlqErr != nil {
			s.logger.Error("failed to dead-letter payment request", logger.Field{Key: "error", Value: dlqErr})
		}
		return s.wizard.ReportPaymentOutcome(ctx, sessionID, false, "", err.Error())
	}

	if resp.Status == "SUCCESS" {
		return s.wizard.ReportPaymentOutcome(ctx, sessionID, true, resp.TransactionID, "")
	}
	return s.wizard.ReportPaymentOutcome(ctx, sessionID, false, "", "payment declined by gateway")
}

func (s *Service) processWithRetry(ctx context.Context, req mock.PaymentRequest) (*mock.GatewayResponse, error) {
	delay := s.retryPolicy.InitialDelay

	var lastErr error
	for attempt := 1; attempt <= s.retryPolicy.MaxAttempts; attempt++ {
		resp, err := s.gateway.ProcessPayment(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		s.logger.Warn("payment gateway call failed",
			logger.Field{Key: "session_id", Value: req.SessionID},
			logger.Field{Key: "attempt", Value: attempt},
			logger.Field{Key: "error", Value: err})

		if attempt == s.retryPolicy.MaxAttempts {
			break
		}

		wait := delay
		if s.retryPolicy.Jitter {
			wait += time.Duration(rand.Int63n(int64(delay) / 2))
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		delay = time.Duration(float64(delay) * s.retryPolicy.Multiplier)
		if delay > s.retryPolicy.MaxDelay {
			delay = s.retryPolicy.MaxDelay
		}
	}

	return nil, fmt.Errorf("payment gateway unavailable after %d attempts: %w", s.retryPolicy.MaxAttempts, lastErr)
}

func (s *Service) newMetadata() events.EventMetadata {
	return events.EventMetadata{
		CorrelationID: uuid.New().String(),
		TraceID:       uuid.New().String(),
		Timestamp:     time.Now(),
	}
}
