package wizard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-wizard/internal/common/logger"
	"booking-wizard/internal/common/metrics"
	"booking-wizard/internal/domain/booking"
	"booking-wizard/internal/domain/catalog"
	"booking-wizard/internal/infrastructure/bookingstore"
	"booking-wizard/internal/infrastructure/eventbus"
	"booking-wizard/internal/infrastructure/mock"
)

type staticCatalog struct {
	cat *catalog.Catalog
}

func (s *staticCatalog) Catalog() *catalog.Catalog { return s.cat }

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func newTestService(cb Callbacks) *Service {
	return NewService(
		&staticCatalog{cat: catalog.Fallback()},
		bookingstore.NewInMemoryEventStore(),
		eventbus.NewInMemoryEventBus(),
		mock.NewMockOTPProvider(),
		logger.NewMockLogger(),
		metrics.NewInMemoryCollector(),
		cb,
	)
}

func startSession(t *testing.T, s *Service) string {
	t.Helper()
	snap, err := s.StartSession(context.Background())
	require.NoError(t, err)
	require.Equal(t, int(booking.StepVehicleConfig), snap.Step)
	return snap.SessionID
}

// fillVehicleConfig selects the fallback KM3000 with the extended variant.
func fillVehicleConfig(t *testing.T, s *Service, id string) {
	t.Helper()
	_, err := s.UpdateForm(context.Background(), id, booking.Patch{
		Location:        strPtr("110001"),
		SelectedVehicle: strPtr("km3000"),
		SelectedVariant: strPtr("km3000-extended"),
		SelectedColor:   strPtr("km3000-black"),
	})
	require.NoError(t, err)
}

func fillUserInfo(t *testing.T, s *Service, id string) {
	t.Helper()
	_, err := s.UpdateForm(context.Background(), id, booking.Patch{
		Name:    strPtr("Asha Rao"),
		Email:   strPtr("asha@example.com"),
		Phone:   strPtr("9876543210"),
		Address: strPtr("12 Ring Road"),
		City:    strPtr("Delhi"),
		State:   strPtr("Delhi"),
		Pincode: strPtr("110001"),
	})
	require.NoError(t, err)
}

// driveToVerification walks a session through steps 1-4 with valid data.
func driveToVerification(t *testing.T, s *Service, id string) {
	t.Helper()
	ctx := context.Background()

	fillVehicleConfig(t, s, id)
	_, err := s.Advance(ctx, id)
	require.NoError(t, err)

	_, err = s.UpdateForm(ctx, id, booking.Patch{SelectedTenure: intPtr(12)})
	require.NoError(t, err)
	_, err = s.Advance(ctx, id)
	require.NoError(t, err)

	_, err = s.UpdateForm(ctx, id, booking.Patch{PaymentMethod: strPtr(booking.PaymentMethodFull)})
	require.NoError(t, err)
	_, err = s.Advance(ctx, id)
	require.NoError(t, err)

	fillUserInfo(t, s, id)
	snap, err := s.Advance(ctx, id)
	require.NoError(t, err)
	require.Equal(t, int(booking.StepVerification), snap.Step)
}

func TestUpdateForm_PriceAdditivity(t *testing.T) {
	s := newTestService(Callbacks{})
	id := startSession(t, s)
	ctx := context.Background()

	fillVehicleConfig(t, s, id)
	snap, err := s.Snapshot(id)
	require.NoError(t, err)
	// base 190000 + extended 15500 + required helmet 0; required CORE plan 1
	// (9942) is unioned in by the self-repair on vehicle selection
	assert.Equal(t, 215442, snap.FormData.TotalPrice)
	assert.Contains(t, snap.FormData.OptionalComponents, "helmet")
	assert.Contains(t, snap.FormData.SelectedCoreInsurance, 1)

	// Unrelated field edits must not move the total
	snap, err = s.UpdateForm(ctx, id, booking.Patch{Address: strPtr("somewhere else")})
	require.NoError(t, err)
	assert.Equal(t, 215442, snap.FormData.TotalPrice)

	// Additional coverage is additive
	snap, err = s.UpdateForm(ctx, id, booking.Patch{SelectedAdditionalCoverage: []int{4}})
	require.NoError(t, err)
	assert.Equal(t, 215442+1499, snap.FormData.TotalPrice)
}

func TestRecomputeAll_RepricesAfterCatalogLoad(t *testing.T) {
	src := &staticCatalog{}
	s := NewService(
		src,
		bookingstore.NewInMemoryEventStore(),
		eventbus.NewInMemoryEventBus(),
		mock.NewMockOTPProvider(),
		logger.NewMockLogger(),
		metrics.NewInMemoryCollector(),
		Callbacks{},
	)
	id := startSession(t, s)

	// Configured before the catalog resolved: everything prices at 0
	fillVehicleConfig(t, s, id)
	snap, err := s.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.FormData.TotalPrice)

	src.cat = catalog.Fallback()
	s.RecomputeAll(context.Background())

	// The session reprices and the required items are unioned in
	snap, err = s.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, 215442, snap.FormData.TotalPrice)
	assert.Contains(t, snap.FormData.OptionalComponents, "helmet")
	assert.Contains(t, snap.FormData.SelectedCoreInsurance, 1)
}

func TestUpdateForm_TenureDefaultsFromCorePlan(t *testing.T) {
	s := newTestService(Callbacks{})
	id := startSession(t, s)
	ctx := context.Background()

	// Plan 1 is unioned in on vehicle selection; its tenure becomes the default
	fillVehicleConfig(t, s, id)
	snap, err := s.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, 12, snap.FormData.SelectedTenure)

	// An explicit choice is never overridden
	snap, err = s.UpdateForm(ctx, id, booking.Patch{SelectedTenure: intPtr(24)})
	require.NoError(t, err)
	assert.Equal(t, 24, snap.FormData.SelectedTenure)

	snap, err = s.UpdateForm(ctx, id, booking.Patch{SelectedCoreInsurance: []int{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, 24, snap.FormData.SelectedTenure)
}

func TestUpdateForm_RequiredItemClosure(t *testing.T) {
	s := newTestService(Callbacks{})
	id := startSession(t, s)
	ctx := context.Background()

	// Prior selection state on another vehicle
	_, err := s.UpdateForm(ctx, id, booking.Patch{
		SelectedVehicle:    strPtr("km5000"),
		OptionalComponents: []string{"service-plus"},
	})
	require.NoError(t, err)

	snap, err := s.UpdateForm(ctx, id, booking.Patch{SelectedVehicle: strPtr("km3000")})
	require.NoError(t, err)
	assert.Contains(t, snap.FormData.OptionalComponents, "helmet")

	// Attempting to drop the required helmet is rejected, not reverted
	_, err = s.UpdateForm(ctx, id, booking.Patch{OptionalComponents: []string{"care-package"}})
	assert.ErrorIs(t, err, ErrRequiredComponent)

	snap, err = s.Snapshot(id)
	require.NoError(t, err)
	assert.Contains(t, snap.FormData.OptionalComponents, "helmet")

	// Dropping an optional component while keeping the helmet is fine
	_, err = s.UpdateForm(ctx, id, booking.Patch{OptionalComponents: []string{"helmet"}})
	assert.NoError(t, err)
}

func TestUpdateForm_RequiredInsuranceRejected(t *testing.T) {
	s := newTestService(Callbacks{})
	id := startSession(t, s)
	ctx := context.Background()

	fillVehicleConfig(t, s, id)

	_, err := s.UpdateForm(ctx, id, booking.Patch{SelectedCoreInsurance: []int{2}})
	assert.ErrorIs(t, err, ErrRequiredInsurance)

	// Keeping the required plan while adding another is fine
	snap, err := s.UpdateForm(ctx, id, booking.Patch{SelectedCoreInsurance: []int{1, 2}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 2}, snap.FormData.SelectedCoreInsurance)
}

func TestAdvance_GatedByUserInfoValidation(t *testing.T) {
	s := newTestService(Callbacks{})
	id := startSession(t, s)
	ctx := context.Background()

	fillVehicleConfig(t, s, id)
	_, err := s.Advance(ctx, id)
	require.NoError(t, err)
	_, err = s.UpdateForm(ctx, id, booking.Patch{SelectedTenure: intPtr(12)})
	require.NoError(t, err)
	_, err = s.Advance(ctx, id)
	require.NoError(t, err)
	_, err = s.UpdateForm(ctx, id, booking.Patch{PaymentMethod: strPtr(booking.PaymentMethodFull)})
	require.NoError(t, err)
	_, err = s.Advance(ctx, id)
	require.NoError(t, err)

	fillUserInfo(t, s, id)
	_, err = s.UpdateForm(ctx, id, booking.Patch{
		Email: strPtr("not-an-email"),
		Phone: strPtr("98765"),
	})
	require.NoError(t, err)

	snap, err := s.Advance(ctx, id)
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Equal(t, int(booking.StepUserInfo), snap.Step)
	assert.Contains(t, snap.Errors, booking.FieldEmail)
	assert.Equal(t, "Please enter a valid 10-digit phone number", snap.Errors[booking.FieldPhone])
	assert.Contains(t, snap.SubmittedSteps, int(booking.StepUserInfo))
}

func TestUpdateForm_ErrorClearsOnEdit(t *testing.T) {
	s := newTestService(Callbacks{})
	id := startSession(t, s)
	ctx := context.Background()

	snap, err := s.Advance(ctx, id)
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Contains(t, snap.Errors, booking.FieldVehicle)

	// Editing clears the error even though the new value is empty again.
	// Designed optimistic policy; re-validation happens on the next advance.
	snap, err = s.UpdateForm(ctx, id, booking.Patch{SelectedVehicle: strPtr("")})
	require.NoError(t, err)
	assert.NotContains(t, snap.Errors, booking.FieldVehicle)
	assert.Contains(t, snap.Errors, booking.FieldColor)
}

func TestRetreat_BoundedAtFirstStep(t *testing.T) {
	s := newTestService(Callbacks{})
	id := startSession(t, s)
	ctx := context.Background()

	snap, err := s.Retreat(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int(booking.StepVehicleConfig), snap.Step)

	fillVehicleConfig(t, s, id)
	_, err = s.Advance(ctx, id)
	require.NoError(t, err)

	// Retreat never validates, even with a half-filled step
	snap, err = s.Retreat(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int(booking.StepVehicleConfig), snap.Step)
}

func TestAdvance_CannotSkipVerificationOutcome(t *testing.T) {
	s := newTestService(Callbacks{})
	id := startSession(t, s)

	driveToVerification(t, s, id)

	snap, err := s.Advance(context.Background(), id)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, int(booking.StepVerification), snap.Step)
	assert.False(t, snap.PaymentOverlay)
}

func TestSubmitOTP_RejectedCodeKeepsStep(t *testing.T) {
	s := newTestService(Callbacks{})
	id := startSession(t, s)
	ctx := context.Background()

	driveToVerification(t, s, id)
	_, err := s.StartVerification(ctx, id)
	require.NoError(t, err)

	snap, err := s.SubmitOTP(ctx, id, "000000")
	require.NoError(t, err)
	assert.Equal(t, int(booking.StepVerification), snap.Step)
	assert.False(t, snap.PaymentOverlay)
	assert.Equal(t, "REJECTED", snap.VerificationState)
}

func TestSubmitOTP_AcceptedCodeRaisesOverlay(t *testing.T) {
	s := newTestService(Callbacks{})
	id := startSession(t, s)
	ctx := context.Background()

	driveToVerification(t, s, id)
	_, err := s.StartVerification(ctx, id)
	require.NoError(t, err)

	snap, err := s.SubmitOTP(ctx, id, "123456")
	require.NoError(t, err)
	assert.Equal(t, int(booking.StepVerification), snap.Step)
	assert.True(t, snap.PaymentOverlay)
	assert.Equal(t, "VERIFIED", snap.VerificationState)
}

func TestToggleChannel_ResetsEnteredCode(t *testing.T) {
	s := newTestService(Callbacks{})
	id := startSession(t, s)
	ctx := context.Background()

	driveToVerification(t, s, id)
	_, err := s.StartVerification(ctx, id)
	require.NoError(t, err)
	_, err = s.SubmitOTP(ctx, id, "000000")
	require.NoError(t, err)

	snap, err := s.Snapshot(id)
	require.NoError(t, err)
	require.Equal(t, "000000", snap.FormData.OTP)

	// Switching channels re-sends and wipes the entered code
	snap, err = s.ToggleVerificationChannel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "", snap.FormData.OTP)
	assert.Equal(t, "AWAITING_INPUT", snap.VerificationState)
}

func TestSubmitOTP_MalformedCodeFailsValidation(t *testing.T) {
	s := newTestService(Callbacks{})
	id := startSession(t, s)
	ctx := context.Background()

	driveToVerification(t, s, id)
	_, err := s.StartVerification(ctx, id)
	require.NoError(t, err)

	snap, err := s.SubmitOTP(ctx, id, "12ab")
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Contains(t, snap.Errors, booking.FieldOTP)
}

func TestReportPaymentOutcome_Success(t *testing.T) {
	var submitted *booking.FormData
	s := newTestService(Callbacks{
		OnFormSubmit: func(final booking.FormData) { submitted = &final },
	})
	id := startSession(t, s)
	ctx := context.Background()

	driveToVerification(t, s, id)
	_, err := s.StartVerification(ctx, id)
	require.NoError(t, err)
	_, err = s.SubmitOTP(ctx, id, "123456")
	require.NoError(t, err)

	snap, err := s.ReportPaymentOutcome(ctx, id, true, "txn_1", "")
	require.NoError(t, err)
	assert.Equal(t, int(booking.StepSuccess), snap.Step)
	assert.False(t, snap.PaymentOverlay)

	require.NotNil(t, submitted)
	assert.Equal(t, 215442, submitted.TotalPrice)
}

func TestReportPaymentOutcome_FailureAndRetry(t *testing.T) {
	s := newTestService(Callbacks{})
	id := startSession(t, s)
	ctx := context.Background()

	driveToVerification(t, s, id)
	_, err := s.StartVerification(ctx, id)
	require.NoError(t, err)
	_, err = s.SubmitOTP(ctx, id, "123456")
	require.NoError(t, err)

	snap, err := s.ReportPaymentOutcome(ctx, id, false, "", "card declined")
	require.NoError(t, err)
	assert.Equal(t, int(booking.StepFailure), snap.Step)
	assert.False(t, snap.PaymentOverlay)

	// Retry re-raises the overlay without resetting the aggregate
	snap, err = s.RetryPayment(ctx, id)
	require.NoError(t, err)
	assert.True(t, snap.PaymentOverlay)
	assert.Equal(t, int(booking.StepFailure), snap.Step)
	assert.Equal(t, "km3000", snap.FormData.SelectedVehicle)

	snap, err = s.ReportPaymentOutcome(ctx, id, true, "txn_2", "")
	require.NoError(t, err)
	assert.Equal(t, int(booking.StepSuccess), snap.Step)
}

func TestReportPaymentOutcome_RequiresOverlay(t *testing.T) {
	s := newTestService(Callbacks{})
	id := startSession(t, s)

	_, err := s.ReportPaymentOutcome(context.Background(), id, true, "txn", "")
	assert.ErrorIs(t, err, ErrOverlayNotRaised)
}

func TestReset_StartsOver(t *testing.T) {
	var steps []booking.Step
	s := newTestService(Callbacks{
		OnStepChange: func(step booking.Step) { steps = append(steps, step) },
	})
	id := startSession(t, s)
	ctx := context.Background()

	driveToVerification(t, s, id)

	snap, err := s.Reset(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int(booking.StepVehicleConfig), snap.Step)
	assert.Equal(t, booking.FormData{}, snap.FormData)
	assert.Empty(t, snap.Errors)
	assert.Empty(t, snap.SubmittedSteps)
	assert.Equal(t, booking.FirstStep, steps[len(steps)-1])
}

func TestTerminalState_BlocksMutation(t *testing.T) {
	s := newTestService(Callbacks{})
	id := startSession(t, s)
	ctx := context.Background()

	driveToVerification(t, s, id)
	_, err := s.StartVerification(ctx, id)
	require.NoError(t, err)
	_, err = s.SubmitOTP(ctx, id, "123456")
	require.NoError(t, err)
	_, err = s.ReportPaymentOutcome(ctx, id, true, "txn", "")
	require.NoError(t, err)

	_, err = s.Advance(ctx, id)
	assert.ErrorIs(t, err, ErrTerminalState)
	_, err = s.Retreat(ctx, id)
	assert.ErrorIs(t, err, ErrTerminalState)
	_, err = s.UpdateForm(ctx, id, booking.Patch{Name: strPtr("Someone Else")})
	assert.ErrorIs(t, err, ErrTerminalState)

	// Reset remains the way out
	snap, err := s.Reset(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int(booking.StepVehicleConfig), snap.Step)
}

func TestHistory_RecordsLifecycle(t *testing.T) {
	s := newTestService(Callbacks{})
	id := startSession(t, s)
	ctx := context.Background()

	fillVehicleConfig(t, s, id)
	_, err := s.Advance(ctx, id)
	require.NoError(t, err)

	history, err := s.History(ctx, id)
	require.NoError(t, err)
	require.NotEmpty(t, history)
	assert.Equal(t, "SessionStarted", history[0].Type())

	var types []string
	for _, e := range history {
		types = append(types, e.Type())
	}
	assert.Contains(t, types, "FormUpdated")
	assert.Contains(t, types, "StepChanged")
}

func TestSessionNotFound(t *testing.T) {
	s := newTestService(Callbacks{})

	_, err := s.Snapshot("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = s.Advance(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
