package wizard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"booking-wizard/internal/application/pricing"
	"booking-wizard/internal/application/validation"
	"booking-wizard/internal/application/verification"
	"booking-wizard/internal/common/configs"
	"booking-wizard/internal/common/logger"
	"booking-wizard/internal/common/metrics"
	"booking-wizard/internal/domain/booking"
	"booking-wizard/internal/domain/catalog"
	"booking-wizard/internal/domain/events"
	"booking-wizard/internal/infrastructure/bookingstore"
	"booking-wizard/internal/infrastructure/eventbus"
	"booking-wizard/internal/infrastructure/mock"
)

var (
	ErrSessionNotFound   = errors.New("booking session not found")
	ErrValidationFailed  = errors.New("step validation failed")
	ErrInvalidTransition = errors.New("invalid step transition")
	ErrTerminalState     = errors.New("session is in a terminal state")
	ErrRequiredComponent = errors.New("required component cannot be deselected")
	ErrRequiredInsurance = errors.New("required insurance plan cannot be deselected")
	ErrOverlayNotRaised  = errors.New("payment overlay is not raised")
	ErrNotAtVerification = errors.New("session is not at the verification step")
)

// CatalogSource provides the catalog the wizard prices and validates against.
type CatalogSource interface {
	Catalog() *catalog.Catalog
}

// Callbacks are the contracts the core exposes outward to the presentation
// layer. All fields are optional.
type Callbacks struct {
	OnFormDataChange func(data booking.FormData)
	OnStepChange     func(step booking.Step)
	OnFormSubmit     func(final booking.FormData)
}

// Snapshot is the externally visible state of a session.
type Snapshot struct {
	SessionID         string           `json:"session_id"`
	Step              int              `json:"step"`
	StepName          string           `json:"step_name"`
	PaymentOverlay    bool             `json:"payment_overlay"`
	FormData          booking.FormData `json:"form_data"`
	Errors            booking.ErrorMap `json:"errors"`
	SubmittedSteps    []int            `json:"submitted_steps"`
	VerificationState string           `json:"verification_state"`
	CanResend         bool             `json:"can_resend"`
	CreatedAt         string           `json:"created_at"`
}

// session is one in-flight booking. All mutation goes through its mutex, the
// Go rendition of the source's single-threaded event queue.
type session struct {
	id             string
	mu             sync.Mutex
	aggregate      *booking.Aggregate
	step           booking.Step
	paymentOverlay bool
	submitted      map[booking.Step]bool
	flow           *verification.Flow
	createdAt      time.Time
}

// Service orchestrates booking sessions: step sequencing, validation gating,
// price recomputation and the payment overlay.
type Service struct {
	catalog    CatalogSource
	eventStore bookingstore.EventStore
	eventBus   eventbus.EventBus
	otp        mock.OTPProvider
	logger     logger.Logger
	metrics    metrics.Collector
	callbacks  Callbacks

	mu       sync.RWMutex
	sessions map[string]*session
	sequence int64
}

func NewService(cs CatalogSource, es bookingstore.EventStore, eb eventbus.EventBus, otp mock.OTPProvider, l logger.Logger, mc metrics.Collector, cb Callbacks) *Service {
	return &Service{
		catalog:    cs,
		eventStore: es,
		eventBus:   eb,
		otp:        otp,
		logger:     l,
		metrics:    mc,
		callbacks:  cb,
		sessions:   make(map[string]*session),
	}
}

// StartSession creates a session at step 1 with default field values.
func (s *Service) StartSession(ctx context.Context) (*Snapshot, error) {
	sessionID := uuid.New().String()

	sess := &session{
		id:        sessionID,
		aggregate: booking.NewAggregate(),
		step:      booking.FirstStep,
		submitted: make(map[booking.Step]bool),
		createdAt: time.Now(),
	}
	sess.flow = verification.NewFlow(s.otp, s.logger, verification.Callbacks{
		OnSuccess: func(channel string) { s.handleVerificationSuccess(sessionID, channel) },
		OnFailure: func(reason string) { s.handleVerificationFailure(sessionID, reason) },
	})

	s.mu.Lock()
	s.sessions[sessionID] = sess
	s.mu.Unlock()

	s.emit(ctx, events.NewSessionStarted(sessionID, s.newMetadata(), s.nextSequence()))
	s.logger.Info("booking session started", logger.Field{Key: "session_id", Value: sessionID})

	return s.Snapshot(sessionID)
}

// Snapshot returns the current state of a session.
func (s *Service) Snapshot(sessionID string) (*Snapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.snapshotLocked(sess), nil
}

// UpdateForm merges a partial update into the session's aggregate. This is
// the onFormDataChange entry point: errors for touched fields clear, the
// required-item invariant self-heals, and the total recomputes when a
// price-relevant field changed. A patch that would deselect a required item
// is rejected outright, leaving the aggregate untouched.
func (s *Service) UpdateForm(ctx context.Context, sessionID string, patch booking.Patch) (*Snapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.step.IsTerminal() {
		return nil, ErrTerminalState
	}

	cat := s.catalog.Catalog()
	current := sess.aggregate.Data()

	// The required set is judged against the vehicle the patch leaves selected
	effectiveVehicle := current.SelectedVehicle
	if patch.SelectedVehicle != nil {
		effectiveVehicle = *patch.SelectedVehicle
	}

	if patch.OptionalComponents != nil {
		for _, required := range cat.RequiredComponentsForVehicle(effectiveVehicle) {
			if contains(current.OptionalComponents, required) && !contains(patch.OptionalComponents, required) {
				return nil, ErrRequiredComponent
			}
		}
	}
	if patch.SelectedCoreInsurance != nil {
		for _, required := range cat.RequiredCorePlans() {
			if containsInt(current.SelectedCoreInsurance, required) && !containsInt(patch.SelectedCoreInsurance, required) {
				return nil, ErrRequiredInsurance
			}
		}
	}

	fields := sess.aggregate.Merge(patch)
	s.metrics.IncrementCounter(metrics.CounterFormMerges)

	vehicleChanged := patch.SelectedVehicle != nil && *patch.SelectedVehicle != current.SelectedVehicle

	// Required-item closure: whenever the vehicle (or the selection) changes,
	// required components and required CORE plans are unioned back in.
	if vehicleChanged || patch.OptionalComponents != nil {
		sess.aggregate.UnionComponents(cat.RequiredComponentsForVehicle(effectiveVehicle))
	}
	if effectiveVehicle != "" && (vehicleChanged || patch.SelectedCoreInsurance != nil) {
		sess.aggregate.UnionCoreInsurance(cat.RequiredCorePlans())
	}

	// Tenure defaults from the first selected core plan when none is chosen
	if d := sess.aggregate.Data(); d.SelectedTenure == 0 && len(d.SelectedCoreInsurance) > 0 {
		if plan := cat.PlanByID(d.SelectedCoreInsurance[0]); plan != nil && plan.TenureMonths > 0 {
			months := plan.TenureMonths
			sess.aggregate.Merge(booking.Patch{SelectedTenure: &months})
		}
	}

	if pricing.AffectsPrice(fields) || vehicleChanged {
		total := pricing.ComputeTotal(sess.aggregate.Data(), cat)
		sess.aggregate.SetTotalPrice(total)
		s.metrics.IncrementCounter(metrics.CounterPriceRecomputes)
	}

	data := sess.aggregate.Data()
	s.emit(ctx, events.NewFormUpdated(sessionID, fields, data.TotalPrice, s.newMetadata(), s.nextSequence()))

	if s.callbacks.OnFormDataChange != nil {
		s.callbacks.OnFormDataChange(data)
	}

	return s.snapshotLocked(sess), nil
}

// RecomputePrice reprices one session against the current catalog.
func (s *Service) RecomputePrice(ctx context.Context, sessionID string) (*Snapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	s.repriceLocked(sess, s.catalog.Catalog())

	return s.snapshotLocked(sess), nil
}

// RecomputeAll reprices every live session. Invoked when a catalog load or
// reload completes, so sessions created beforehand never keep a stale total.
func (s *Service) RecomputeAll(ctx context.Context) {
	s.mu.RLock()
	sessions := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()

	cat := s.catalog.Catalog()
	for _, sess := range sessions {
		sess.mu.Lock()
		s.repriceLocked(sess, cat)
		sess.mu.Unlock()
	}
}

// repriceLocked restores the required-item invariant against the given
// catalog and recomputes the total. Caller holds the session lock.
func (s *Service) repriceLocked(sess *session, cat *catalog.Catalog) {
	data := sess.aggregate.Data()
	if data.SelectedVehicle != "" {
		sess.aggregate.UnionComponents(cat.RequiredComponentsForVehicle(data.SelectedVehicle))
		sess.aggregate.UnionCoreInsurance(cat.RequiredCorePlans())
	}
	sess.aggregate.SetTotalPrice(pricing.ComputeTotal(sess.aggregate.Data(), cat))
	s.metrics.IncrementCounter(metrics.CounterPriceRecomputes)
}

// Advance moves to the next step after the current step validates clean.
// On validation failure the step does not change and the errors attach to
// their fields. This is the onNextStep entry point.
func (s *Service) Advance(ctx context.Context, sessionID string) (*Snapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.step.IsTerminal() {
		return nil, ErrTerminalState
	}
	if sess.step == booking.StepVerification {
		// Verification only resolves through the overlay outcome
		return s.snapshotLocked(sess), ErrInvalidTransition
	}

	sess.submitted[sess.step] = true

	errs := validation.ForStep(sess.step, sess.aggregate.Data(), s.catalog.Catalog())
	if len(errs) > 0 {
		sess.aggregate.SetErrors(errs)
		s.metrics.IncrementCounter(metrics.CounterValidationFailures)
		return s.snapshotLocked(sess), ErrValidationFailed
	}

	from := sess.step
	to := from + 1
	if !from.CanTransitionTo(to) {
		return s.snapshotLocked(sess), ErrInvalidTransition
	}
	sess.step = to
	s.metrics.IncrementCounter(metrics.CounterStepAdvances)

	s.emit(ctx, events.NewStepChanged(sessionID, from, to, "advance", s.newMetadata(), s.nextSequence()))
	s.notifyStepChange(to)

	return s.snapshotLocked(sess), nil
}

// Retreat moves one step back, never below step 1, and never validates.
// This is the onPreviousStep entry point.
func (s *Service) Retreat(ctx context.Context, sessionID string) (*Snapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.step.IsTerminal() {
		return nil, ErrTerminalState
	}

	from := sess.step
	if from == booking.FirstStep {
		return s.snapshotLocked(sess), nil
	}

	if from == booking.StepVerification {
		// Leaving the sub-flow disposes its countdown timer
		sess.flow.Stop()
	}

	to := from - 1
	sess.step = to
	s.metrics.IncrementCounter(metrics.CounterStepRetreats)

	s.emit(ctx, events.NewStepChanged(sessionID, from, to, "retreat", s.newMetadata(), s.nextSequence()))
	s.notifyStepChange(to)

	return s.snapshotLocked(sess), nil
}

// Reset is the explicit "start over": default field values, step 1, overlay
// cleared. The only way out of a terminal state besides payment retry.
func (s *Service) Reset(ctx context.Context, sessionID string) (*Snapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.flow.Stop()
	sess.flow = verification.NewFlow(s.otp, s.logger, verification.Callbacks{
		OnSuccess: func(channel string) { s.handleVerificationSuccess(sessionID, channel) },
		OnFailure: func(reason string) { s.handleVerificationFailure(sessionID, reason) },
	})

	sess.aggregate.Reset()
	sess.step = booking.FirstStep
	sess.paymentOverlay = false
	sess.submitted = make(map[booking.Step]bool)

	s.emit(ctx, events.NewSessionReset(sessionID, s.newMetadata(), s.nextSequence()))
	s.notifyStepChange(booking.FirstStep)

	return s.snapshotLocked(sess), nil
}

// StartVerification sends the OTP over the chosen channel. Only valid at the
// verification step.
func (s *Service) StartVerification(ctx context.Context, sessionID string) (*Snapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.step != booking.StepVerification {
		sess.mu.Unlock()
		return nil, ErrNotAtVerification
	}
	data := sess.aggregate.Data()
	flow := sess.flow
	sess.mu.Unlock()

	if err := flow.Start(ctx, data.Phone, data.Email); err != nil {
		// A send failure is local to the sub-flow; the step holds
		s.logger.Warn("otp send failed", logger.Field{Key: "session_id", Value: sessionID}, logger.Field{Key: "error", Value: err})
	}

	return s.Snapshot(sessionID)
}

// ResendOTP re-sends the code, rate-limited by the sub-flow's countdown.
func (s *Service) ResendOTP(ctx context.Context, sessionID string) (*Snapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	flow := sess.flow
	sess.mu.Unlock()

	if err := flow.Resend(ctx); err != nil {
		snap, _ := s.Snapshot(sessionID)
		return snap, err
	}
	return s.Snapshot(sessionID)
}

// ToggleVerificationChannel switches between phone and email delivery.
// Switching resets the entered code along with any error attached to it.
func (s *Service) ToggleVerificationChannel(ctx context.Context, sessionID string) (*Snapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	flow := sess.flow
	sess.mu.Unlock()

	if err := flow.ToggleChannel(ctx); err != nil {
		snap, _ := s.Snapshot(sessionID)
		return snap, err
	}

	empty := ""
	sess.mu.Lock()
	sess.aggregate.Merge(booking.Patch{OTP: &empty})
	sess.mu.Unlock()

	return s.Snapshot(sessionID)
}

// SubmitOTP verifies the entered code. A malformed code fails validation
// locally; an accepted code raises the payment overlay via the sub-flow
// callback, a rejected one leaves the step unchanged.
func (s *Service) SubmitOTP(ctx context.Context, sessionID, code string) (*Snapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.step != booking.StepVerification {
		sess.mu.Unlock()
		return nil, ErrNotAtVerification
	}
	sess.aggregate.Merge(booking.Patch{OTP: &code})
	sess.submitted[booking.StepVerification] = true

	if errs := validation.ValidateOTP(sess.aggregate.Data()); len(errs) > 0 {
		sess.aggregate.SetErrors(errs)
		snap := s.snapshotLocked(sess)
		sess.mu.Unlock()
		return snap, ErrValidationFailed
	}
	flow := sess.flow
	sess.mu.Unlock()

	s.metrics.IncrementCounter(metrics.CounterVerificationAttempts)
	if err := flow.Submit(ctx, code); err != nil {
		snap, _ := s.Snapshot(sessionID)
		return snap, err
	}

	return s.Snapshot(sessionID)
}

// ReportPaymentOutcome resolves the payment overlay. Success transitions to
// the success screen and fires onFormSubmit with the final aggregate;
// failure lands on the failure screen, recoverable via RetryPayment or Reset.
func (s *Service) ReportPaymentOutcome(ctx context.Context, sessionID string, success bool, transactionID, reason string) (*Snapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !sess.paymentOverlay {
		return nil, ErrOverlayNotRaised
	}

	data := sess.aggregate.Data()
	from := sess.step

	if success {
		if !from.CanTransitionTo(booking.StepSuccess) {
			return nil, ErrInvalidTransition
		}
		sess.step = booking.StepSuccess
		sess.paymentOverlay = false
		s.metrics.IncrementCounter(metrics.CounterPaymentSuccesses)

		s.emit(ctx, events.NewPaymentSucceeded(sessionID, data.TotalPrice, transactionID, s.newMetadata(), s.nextSequence()))
		s.emit(ctx, events.NewStepChanged(sessionID, from, booking.StepSuccess, "payment", s.newMetadata(), s.nextSequence()))
		s.emit(ctx, events.NewBookingSubmitted(sessionID, data, s.newMetadata(), s.nextSequence()))

		s.notifyStepChange(booking.StepSuccess)
		if s.callbacks.OnFormSubmit != nil {
			s.callbacks.OnFormSubmit(data)
		}
		return s.snapshotLocked(sess), nil
	}

	sess.paymentOverlay = false
	s.metrics.IncrementCounter(metrics.CounterPaymentFailures)
	s.emit(ctx, events.NewPaymentFailed(sessionID, data.TotalPrice, reason, s.newMetadata(), s.nextSequence()))

	if from != booking.StepFailure {
		if !from.CanTransitionTo(booking.StepFailure) {
			return nil, ErrInvalidTransition
		}
		sess.step = booking.StepFailure
		s.emit(ctx, events.NewStepChanged(sessionID, from, booking.StepFailure, "payment", s.newMetadata(), s.nextSequence()))
		s.notifyStepChange(booking.StepFailure)
	}

	return s.snapshotLocked(sess), nil
}

// RetryPayment re-raises the overlay from the failure screen without
// resetting the aggregate. This is the onTryAgain entry point.
func (s *Service) RetryPayment(ctx context.Context, sessionID string) (*Snapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.step != booking.StepFailure {
		return nil, ErrInvalidTransition
	}
	sess.paymentOverlay = true

	return s.snapshotLocked(sess), nil
}

// History replays the persisted event stream for a session.
func (s *Service) History(ctx context.Context, sessionID string) ([]events.Event, error) {
	if _, err := s.session(sessionID); err != nil {
		return nil, err
	}
	return s.eventStore.LoadEvents(ctx, sessionID)
}

func (s *Service) handleVerificationSuccess(sessionID, channel string) {
	sess, err := s.session(sessionID)
	if err != nil {
		return
	}

	sess.mu.Lock()
	sess.paymentOverlay = true
	sess.mu.Unlock()

	ctx := context.Background()
	s.emit(ctx, events.NewVerificationSucceeded(sessionID, channel, s.newMetadata(), s.nextSequence()))
	s.logger.Info("verification succeeded, payment overlay raised",
		logger.Field{Key: "session_id", Value: sessionID},
		logger.Field{Key: "channel", Value: channel})
}

func (s *Service) handleVerificationFailure(sessionID, reason string) {
	sess, err := s.session(sessionID)
	if err != nil {
		return
	}

	sess.mu.Lock()
	channel := sess.flow.Channel()
	sess.mu.Unlock()

	s.emit(context.Background(), events.NewVerificationFailed(sessionID, channel, reason, s.newMetadata(), s.nextSequence()))
	s.logger.Warn("verification failed",
		logger.Field{Key: "session_id", Value: sessionID},
		logger.Field{Key: "reason", Value: reason})
}

func (s *Service) session(sessionID string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *Service) snapshotLocked(sess *session) *Snapshot {
	submitted := make([]int, 0, len(sess.submitted))
	for step, ok := range sess.submitted {
		if ok {
			submitted = append(submitted, int(step))
		}
	}

	return &Snapshot{
		SessionID:         sess.id,
		Step:              int(sess.step),
		StepName:          sess.step.String(),
		PaymentOverlay:    sess.paymentOverlay,
		FormData:          sess.aggregate.Data(),
		Errors:            sess.aggregate.Errors(),
		SubmittedSteps:    submitted,
		VerificationState: string(sess.flow.State()),
		CanResend:         sess.flow.CanResend(),
		CreatedAt:         sess.createdAt.Format(time.RFC3339),
	}
}

// emit persists and publishes an event. Failures are logged, never allowed
// to corrupt wizard state.
func (s *Service) emit(ctx context.Context, event events.Event) {
	if err := s.eventStore.SaveEvent(ctx, event); err != nil {
		s.logger.Error("failed to save event",
			logger.Field{Key: "event_type", Value: event.Type()},
			logger.Field{Key: "error", Value: err})
	}
	if err := s.eventBus.Publish(ctx, configs.TopicBookings, event); err != nil {
		s.logger.Error("failed to publish event",
			logger.Field{Key: "event_type", Value: event.Type()},
			logger.Field{Key: "error", Value: err})
	}
}

func (s *Service) notifyStepChange(step booking.Step) {
	if s.callbacks.OnStepChange != nil {
		s.callbacks.OnStepChange(step)
	}
}

func (s *Service) newMetadata() events.EventMetadata {
	return events.EventMetadata{
		CorrelationID: uuid.New().String(),
		TraceID:       uuid.New().String(),
		Timestamp:     time.Now(),
	}
}

func (s *Service) nextSequence() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequence++
	return s.sequence
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
