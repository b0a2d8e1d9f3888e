package mock

import (
	"context"
	"fmt"
	"time"
)

// Payment outcomes the caller may request from the simulated gateway
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

type PaymentRequest struct {
	SessionID string
	Amount    string
	// Outcome is the caller-chosen simulation result. No real gateway is in
	// scope; a provider integration replaces this field with a card token.
	Outcome string
}

type GatewayResponse struct {
	GatewayPaymentID string
	Status           string
	TransactionID    string
}

type PaymentGateway interface {
	ProcessPayment(ctx context.Context, req PaymentRequest) (*GatewayResponse, error)
}

type MockPaymentGateway struct {
	avgLatency time.Duration
}

func NewMockPaymentGateway() *MockPaymentGateway {
	return &MockPaymentGateway{
		avgLatency: 100 * time.Millisecond,
	}
}

func (mg *MockPaymentGateway) SetLatency(d time.Duration) {
	mg.avgLatency = d
}

func (mg *MockPaymentGateway) ProcessPayment(ctx context.Context, req PaymentRequest) (*GatewayResponse, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Simulate latency
	select {
	case <-time.After(mg.avgLatency):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if req.Outcome == OutcomeFailure {
		return &GatewayResponse{
			GatewayPaymentID: fmt.Sprintf("gateway_%s", req.SessionID),
			Status:           "FAILED",
		}, nil
	}

	return &GatewayResponse{
		GatewayPaymentID: fmt.Sprintf("gateway_%s", req.SessionID),
		Status:           "SUCCESS",
		TransactionID:    fmt.Sprintf("txn_%d", time.Now().UnixNano()),
	}, nil
}
