package mock

import (
	"context"
	"time"
)

// OTPProvider abstracts the contact-verification backend. The mock below is
// a placeholder, not a provider contract.
type OTPProvider interface {
	SendOTP(ctx context.Context, phone, email string, useEmail bool) error
	VerifyOTP(ctx context.Context, code, phone string) (bool, error)
}

// mockValidCode is the only code the mock accepts.
const mockValidCode = "123456"

type MockOTPProvider struct {
	sendLatency time.Duration
}

func NewMockOTPProvider() *MockOTPProvider {
	return &MockOTPProvider{sendLatency: 50 * time.Millisecond}
}

func (mp *MockOTPProvider) SendOTP(ctx context.Context, phone, email string, useEmail bool) error {
	select {
	case <-time.After(mp.sendLatency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (mp *MockOTPProvider) VerifyOTP(ctx context.Context, code, phone string) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	return code == mockValidCode, nil
}
