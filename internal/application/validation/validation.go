package validation

import (
	"fmt"
	"regexp"
	"strings"

	"booking-wizard/internal/domain/booking"
	"booking-wizard/internal/domain/catalog"
)

var (
	emailPattern   = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
	phonePattern   = regexp.MustCompile(`^[0-9]{10}$`)
	pincodePattern = regexp.MustCompile(`^[0-9]{6}$`)
	otpPattern     = regexp.MustCompile(`^[0-9]{6}$`)
	nameToken      = regexp.MustCompile(`^[A-Za-z]+$`)
)

// ValidateVehicleConfig gates advancing past the vehicle configuration step.
func ValidateVehicleConfig(data booking.FormData) booking.ErrorMap {
	errs := make(booking.ErrorMap)
	if data.Location == "" {
		errs[booking.FieldLocation] = "Please select a delivery location"
	}
	if data.SelectedVehicle == "" {
		errs[booking.FieldVehicle] = "Please select a vehicle"
	}
	if data.SelectedVariant == "" {
		errs[booking.FieldVariant] = "Please select a variant"
	}
	if data.SelectedColor == "" {
		errs[booking.FieldColor] = "Please select a color"
	}
	return errs
}

// ValidateInsurance gates advancing past the insurance step. A tenure must be
// chosen once any core plan is selected.
func ValidateInsurance(data booking.FormData) booking.ErrorMap {
	errs := make(booking.ErrorMap)
	if len(data.SelectedCoreInsurance) > 0 && data.SelectedTenure == 0 {
		errs[booking.FieldInsuranceTenure] = "Please select an insurance tenure"
	}
	return errs
}

// ValidateFinancing gates advancing past the financing step. Loan tenure must
// come from the permitted set and the down payment may not exceed the
// vehicle's base price.
func ValidateFinancing(data booking.FormData, cat *catalog.Catalog) booking.ErrorMap {
	errs := make(booking.ErrorMap)

	switch data.PaymentMethod {
	case booking.PaymentMethodFull:
		// Nothing further to check
	case booking.PaymentMethodLoan:
		if !allowedTenure(data.LoanTenure) {
			errs[booking.FieldLoanTenure] = fmt.Sprintf("Please select a loan tenure of %s months", tenureList())
		}
		if data.DownPayment < 0 {
			errs[booking.FieldDownPayment] = "Down payment cannot be negative"
		} else if base := cat.PriceForVehicle(data.SelectedVehicle, data.Location); base > 0 && data.DownPayment > base {
			errs[booking.FieldDownPayment] = "Down payment cannot exceed the vehicle price"
		}
	default:
		errs[booking.FieldPaymentMethod] = "Please select a payment method"
	}

	return errs
}

// ValidateUserInfo gates advancing past the personal-details step.
func ValidateUserInfo(data booking.FormData) booking.ErrorMap {
	errs := make(booking.ErrorMap)

	if !validFullName(data.Name) {
		errs[booking.FieldName] = "Please enter your first and last name"
	}
	if data.Email == "" || !emailPattern.MatchString(data.Email) {
		errs[booking.FieldEmail] = "Please enter a valid email address"
	}
	if !phonePattern.MatchString(data.Phone) {
		errs[booking.FieldPhone] = "Please enter a valid 10-digit phone number"
	}
	if data.Address == "" {
		errs[booking.FieldAddress] = "Please enter your address"
	}
	if data.City == "" {
		errs[booking.FieldCity] = "Please enter your city"
	}
	if data.State == "" {
		errs[booking.FieldState] = "Please enter your state"
	}
	if !pincodePattern.MatchString(data.Pincode) {
		errs[booking.FieldPincode] = "Please enter a valid 6-digit pincode"
	}

	return errs
}

// ValidateOTP checks the entered verification code's shape. Whether the code
// is accepted is the provider's call, not a validation rule.
func ValidateOTP(data booking.FormData) booking.ErrorMap {
	errs := make(booking.ErrorMap)
	if !otpPattern.MatchString(data.OTP) {
		errs[booking.FieldOTP] = "Please enter the 6-digit verification code"
	}
	return errs
}

// ForStep returns the validator output for the given step. Steps without
// rules validate clean.
func ForStep(step booking.Step, data booking.FormData, cat *catalog.Catalog) booking.ErrorMap {
	switch step {
	case booking.StepVehicleConfig:
		return ValidateVehicleConfig(data)
	case booking.StepInsurance:
		return ValidateInsurance(data)
	case booking.StepFinancing:
		return ValidateFinancing(data, cat)
	case booking.StepUserInfo:
		return ValidateUserInfo(data)
	default:
		return make(booking.ErrorMap)
	}
}

// validFullName requires at least two space-separated alphabetic tokens.
func validFullName(name string) bool {
	tokens := strings.Fields(name)
	if len(tokens) < 2 {
		return false
	}
	for _, tok := range tokens {
		if !nameToken.MatchString(tok) {
			return false
		}
	}
	return true
}

func allowedTenure(months int) bool {
	for _, t := range booking.LoanTenures {
		if t == months {
			return true
		}
	}
	return false
}

func tenureList() string {
	parts := make([]string, len(booking.LoanTenures))
	for i, t := range booking.LoanTenures {
		parts[i] = fmt.Sprintf("%d", t)
	}
	return strings.Join(parts, "/")
}
