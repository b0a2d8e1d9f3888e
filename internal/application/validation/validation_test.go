package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"booking-wizard/internal/domain/booking"
	"booking-wizard/internal/domain/catalog"
)

func validUserInfo() booking.FormData {
	return booking.FormData{
		Name:    "Asha Rao",
		Email:   "asha@example.com",
		Phone:   "9876543210",
		Address: "12 Ring Road",
		City:    "Delhi",
		State:   "Delhi",
		Pincode: "110001",
	}
}

func TestValidateUserInfo_Valid(t *testing.T) {
	assert.Empty(t, ValidateUserInfo(validUserInfo()))
}

func TestValidateUserInfo_Rules(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*booking.FormData)
		wantField string
		wantMsg   string
	}{
		{
			name:      "single-token name",
			mutate:    func(d *booking.FormData) { d.Name = "Asha" },
			wantField: booking.FieldName,
			wantMsg:   "Please enter your first and last name",
		},
		{
			name:      "numeric name token",
			mutate:    func(d *booking.FormData) { d.Name = "Asha 42" },
			wantField: booking.FieldName,
		},
		{
			name:      "missing email",
			mutate:    func(d *booking.FormData) { d.Email = "" },
			wantField: booking.FieldEmail,
		},
		{
			name:      "malformed email",
			mutate:    func(d *booking.FormData) { d.Email = "asha@nodot" },
			wantField: booking.FieldEmail,
		},
		{
			name:      "short phone",
			mutate:    func(d *booking.FormData) { d.Phone = "98765" },
			wantField: booking.FieldPhone,
			wantMsg:   "Please enter a valid 10-digit phone number",
		},
		{
			name:      "alphabetic phone",
			mutate:    func(d *booking.FormData) { d.Phone = "98765abcde" },
			wantField: booking.FieldPhone,
		},
		{
			name:      "short pincode",
			mutate:    func(d *booking.FormData) { d.Pincode = "1100" },
			wantField: booking.FieldPincode,
		},
		{
			name:      "empty address",
			mutate:    func(d *booking.FormData) { d.Address = "" },
			wantField: booking.FieldAddress,
		},
		{
			name:      "empty city",
			mutate:    func(d *booking.FormData) { d.City = "" },
			wantField: booking.FieldCity,
		},
		{
			name:      "empty state",
			mutate:    func(d *booking.FormData) { d.State = "" },
			wantField: booking.FieldState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := validUserInfo()
			tt.mutate(&data)

			errs := ValidateUserInfo(data)
			assert.Contains(t, errs, tt.wantField)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, errs[tt.wantField])
			}
		})
	}
}

func TestValidateVehicleConfig(t *testing.T) {
	data := booking.FormData{
		Location:        "110001",
		SelectedVehicle: "km3000",
		SelectedVariant: "km3000-extended",
		SelectedColor:   "km3000-black",
	}
	assert.Empty(t, ValidateVehicleConfig(data))

	data.SelectedColor = ""
	data.SelectedVariant = ""
	errs := ValidateVehicleConfig(data)
	assert.Contains(t, errs, booking.FieldColor)
	assert.Contains(t, errs, booking.FieldVariant)
	assert.NotContains(t, errs, booking.FieldVehicle)
}

func TestValidateInsurance(t *testing.T) {
	data := booking.FormData{SelectedCoreInsurance: []int{1}}
	assert.Contains(t, ValidateInsurance(data), booking.FieldInsuranceTenure)

	data.SelectedTenure = 12
	assert.Empty(t, ValidateInsurance(data))

	// No coverage selected means nothing to gate on
	assert.Empty(t, ValidateInsurance(booking.FormData{}))
}

func TestValidateFinancing(t *testing.T) {
	cat := catalog.Fallback()

	full := booking.FormData{PaymentMethod: booking.PaymentMethodFull}
	assert.Empty(t, ValidateFinancing(full, cat))

	missing := booking.FormData{}
	assert.Contains(t, ValidateFinancing(missing, cat), booking.FieldPaymentMethod)

	loan := booking.FormData{
		PaymentMethod:   booking.PaymentMethodLoan,
		LoanTenure:      24,
		DownPayment:     50000,
		SelectedVehicle: "km3000",
		Location:        "110001",
	}
	assert.Empty(t, ValidateFinancing(loan, cat))

	loan.LoanTenure = 13
	assert.Contains(t, ValidateFinancing(loan, cat), booking.FieldLoanTenure)

	loan.LoanTenure = 24
	loan.DownPayment = 500000 // above the KM3000 base price
	assert.Contains(t, ValidateFinancing(loan, cat), booking.FieldDownPayment)
}

func TestValidateOTP(t *testing.T) {
	assert.Empty(t, ValidateOTP(booking.FormData{OTP: "123456"}))
	assert.Empty(t, ValidateOTP(booking.FormData{OTP: "000000"}))
	assert.Contains(t, ValidateOTP(booking.FormData{OTP: "12345"}), booking.FieldOTP)
	assert.Contains(t, ValidateOTP(booking.FormData{OTP: "abcdef"}), booking.FieldOTP)
}

func TestForStep(t *testing.T) {
	cat := catalog.Fallback()

	errs := ForStep(booking.StepUserInfo, booking.FormData{}, cat)
	assert.NotEmpty(t, errs)

	// Steps without rules validate clean
	assert.Empty(t, ForStep(booking.StepVerification, booking.FormData{}, cat))
	assert.Empty(t, ForStep(booking.StepSuccess, booking.FormData{}, cat))
}
