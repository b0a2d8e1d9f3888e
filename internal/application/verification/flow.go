package verification

import (
	"context"
	"errors"
	"sync"
	"time"

	"booking-wizard/internal/common/logger"
	"booking-wizard/internal/infrastructure/mock"
)

var (
	ErrInvalidTransition = errors.New("invalid verification state transition")
	ErrResendNotReady    = errors.New("resend countdown has not expired")
	ErrNotStarted        = errors.New("verification has not been started")
)

// DefaultResendWindow is the countdown between permitted resends.
const DefaultResendWindow = 30 * time.Second

// Channels for OTP delivery
const (
	ChannelPhone = "phone"
	ChannelEmail = "email"
)

// State represents the current state of the verification sub-flow
type State string

const (
	StateIdle          State = "IDLE"
	StateSending       State = "SENDING"
	StateAwaitingInput State = "AWAITING_INPUT"
	StateVerifying     State = "VERIFYING"
	StateVerified      State = "VERIFIED"
	StateRejected      State = "REJECTED"
)

// CanTransitionTo checks if a state transition is valid
func (s State) CanTransitionTo(target State) bool {
	validTransitions := map[State][]State{
		StateIdle:          {StateSending},
		StateSending:       {StateAwaitingInput, StateIdle},
		StateAwaitingInput: {StateVerifying, StateSending},
		StateVerifying:     {StateVerified, StateRejected},
		// Rejected is recoverable: retry the code or switch channels
		StateRejected: {StateVerifying, StateSending},
		// Verified is terminal
		StateVerified: {},
	}

	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}

	for _, state := range allowed {
		if state == target {
			return true
		}
	}

	return false
}

// Callbacks report the sub-flow's terminal outcome to the step controller.
// The sub-flow owns no step-transition logic itself.
type Callbacks struct {
	OnSuccess func(channel string)
	OnFailure func(reason string)
}

// Flow is the nested OTP verification machine. It owns the resend countdown
// timer and disposes it on Stop.
type Flow struct {
	provider  mock.OTPProvider
	logger    logger.Logger
	callbacks Callbacks

	mu           sync.Mutex
	state        State
	phone        string
	email        string
	useEmail     bool
	resendWindow time.Duration
	resendTimer  *time.Timer
	resendReady  bool
	attempts     int
}

func NewFlow(provider mock.OTPProvider, l logger.Logger, callbacks Callbacks) *Flow {
	return &Flow{
		provider:     provider,
		logger:       l,
		callbacks:    callbacks,
		state:        StateIdle,
		resendWindow: DefaultResendWindow,
	}
}

// SetResendWindow overrides the resend countdown. Must be called before Start.
func (f *Flow) SetResendWindow(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resendWindow = d
}

// State returns the current state of the sub-flow.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Channel returns the active delivery channel.
func (f *Flow) Channel() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.channelLocked()
}

func (f *Flow) channelLocked() string {
	if f.useEmail {
		return ChannelEmail
	}
	return ChannelPhone
}

// CanResend reports whether the countdown has expired since the last send.
func (f *Flow) CanResend() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resendReady
}

// Start enters the sub-flow: sends the code and begins awaiting input.
// A send failure returns the flow to idle; the caller may retry.
func (f *Flow) Start(ctx context.Context, phone, email string) error {
	f.mu.Lock()
	if !f.state.CanTransitionTo(StateSending) && f.state != StateIdle {
		f.mu.Unlock()
		return ErrInvalidTransition
	}
	f.phone = phone
	f.email = email
	f.state = StateSending
	f.mu.Unlock()

	return f.send(ctx)
}

// Resend re-sends the code. Permitted once per countdown expiry; the
// countdown restarts on success.
func (f *Flow) Resend(ctx context.Context) error {
	f.mu.Lock()
	if f.state != StateAwaitingInput && f.state != StateRejected {
		f.mu.Unlock()
		return ErrNotStarted
	}
	if !f.resendReady {
		f.mu.Unlock()
		return ErrResendNotReady
	}
	f.state = StateSending
	f.mu.Unlock()

	return f.send(ctx)
}

// ToggleChannel switches between phone and email delivery. Entered input is
// reset and the flow re-enters sending.
func (f *Flow) ToggleChannel(ctx context.Context) error {
	f.mu.Lock()
	if f.state == StateIdle || f.state == StateVerified {
		f.mu.Unlock()
		return ErrNotStarted
	}
	f.useEmail = !f.useEmail
	f.state = StateSending
	f.mu.Unlock()

	return f.send(ctx)
}

// Submit verifies the entered code. The outcome is reported through the
// callbacks; the flow itself never advances the wizard.
func (f *Flow) Submit(ctx context.Context, code string) error {
	f.mu.Lock()
	if !f.state.CanTransitionTo(StateVerifying) {
		f.mu.Unlock()
		return ErrInvalidTransition
	}
	f.state = StateVerifying
	f.attempts++
	phone := f.phone
	f.mu.Unlock()

	ok, err := f.provider.VerifyOTP(ctx, code, phone)
	if err != nil {
		// Converted to a local verification failure, never propagated raw
		f.logger.Error("otp verify call failed", logger.Field{Key: "error", Value: err})
		ok = false
	}

	f.mu.Lock()
	if ok {
		f.state = StateVerified
		f.stopTimerLocked()
		channel := f.channelLocked()
		f.mu.Unlock()

		f.logger.Info("verification succeeded", logger.Field{Key: "channel", Value: channel})
		if f.callbacks.OnSuccess != nil {
			f.callbacks.OnSuccess(channel)
		}
		return nil
	}

	f.state = StateRejected
	f.mu.Unlock()

	f.logger.Warn("verification rejected")
	if f.callbacks.OnFailure != nil {
		f.callbacks.OnFailure("invalid verification code")
	}
	return nil
}

// Stop exits the sub-flow and disposes the countdown timer. Safe to call
// more than once.
func (f *Flow) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopTimerLocked()
}

// Attempts returns how many codes have been submitted.
func (f *Flow) Attempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}

func (f *Flow) send(ctx context.Context) error {
	f.mu.Lock()
	phone, email, useEmail := f.phone, f.email, f.useEmail
	f.mu.Unlock()

	if err := f.provider.SendOTP(ctx, phone, email, useEmail); err != nil {
		f.mu.Lock()
		f.state = StateIdle
		f.mu.Unlock()
		f.logger.Error("otp send failed", logger.Field{Key: "error", Value: err})
		return err
	}

	f.mu.Lock()
	f.state = StateAwaitingInput
	f.restartCountdownLocked()
	f.mu.Unlock()
	return nil
}

// restartCountdownLocked arms the resend countdown, cancelling any previous
// timer first so duplicate timers never run.
func (f *Flow) restartCountdownLocked() {
	f.stopTimerLocked()
	f.resendReady = false
	f.resendTimer = time.AfterFunc(f.resendWindow, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.resendReady = true
	})
}

func (f *Flow) stopTimerLocked() {
	if f.resendTimer != nil {
		f.resendTimer.Stop()
		f.resendTimer = nil
	}
}
