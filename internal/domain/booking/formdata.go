package booking

// Field names, used as patch keys and validation-error keys. A typo here is
// a compile error rather than untracked state.
const (
	FieldLocation           = "location"
	FieldVehicle            = "selectedVehicle"
	FieldVariant            = "selectedVariant"
	FieldColor              = "selectedColor"
	FieldComponents         = "optionalComponents"
	FieldInsuranceTenure    = "selectedTenure"
	FieldProvider           = "selectedProvider"
	FieldCoreInsurance      = "selectedCoreInsurance"
	FieldAdditionalCoverage = "selectedAdditionalCoverage"
	FieldPaymentMethod      = "paymentMethod"
	FieldLoanTenure         = "loanTenure"
	FieldDownPayment        = "downPayment"
	FieldName               = "name"
	FieldEmail              = "email"
	FieldPhone              = "phone"
	FieldAddress            = "address"
	FieldCity               = "city"
	FieldState              = "state"
	FieldPincode            = "pincode"
	FieldOTP                = "otp"
)

// Payment methods
const (
	PaymentMethodFull = "full-payment"
	PaymentMethodLoan = "loan"
)

// LoanTenures is the enumerated set of permitted loan tenures in months.
var LoanTenures = []int{12, 18, 24, 36}

// FormData is the single source of truth for every field collected across
// all steps. Nothing else may hold a second copy of a price-relevant field.
type FormData struct {
	Location string `json:"location"`

	SelectedVehicle    string   `json:"selectedVehicle"`
	SelectedVariant    string   `json:"selectedVariant"`
	SelectedColor      string   `json:"selectedColor"`
	OptionalComponents []string `json:"optionalComponents"`

	SelectedTenure             int   `json:"selectedTenure"`
	SelectedProvider           int   `json:"selectedProvider"`
	SelectedCoreInsurance      []int `json:"selectedCoreInsurance"`
	SelectedAdditionalCoverage []int `json:"selectedAdditionalCoverage"`

	PaymentMethod string `json:"paymentMethod"`
	LoanTenure    int    `json:"loanTenure"`
	DownPayment   int    `json:"downPayment"`

	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`

	OTP string `json:"otp"`

	TotalPrice int `json:"totalPrice"`
}

// Patch is a partial update to the form data. A nil field is absent; a
// non-nil field (including an empty slice) overwrites the aggregate key-wise.
type Patch struct {
	Location *string `json:"location,omitempty"`

	SelectedVehicle    *string  `json:"selectedVehicle,omitempty"`
	SelectedVariant    *string  `json:"selectedVariant,omitempty"`
	SelectedColor      *string  `json:"selectedColor,omitempty"`
	OptionalComponents []string `json:"optionalComponents,omitempty"`

	SelectedTenure             *int  `json:"selectedTenure,omitempty"`
	SelectedProvider           *int  `json:"selectedProvider,omitempty"`
	SelectedCoreInsurance      []int `json:"selectedCoreInsurance,omitempty"`
	SelectedAdditionalCoverage []int `json:"selectedAdditionalCoverage,omitempty"`

	PaymentMethod *string `json:"paymentMethod,omitempty"`
	LoanTenure    *int    `json:"loanTenure,omitempty"`
	DownPayment   *int    `json:"downPayment,omitempty"`

	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
	City    *string `json:"city,omitempty"`
	State   *string `json:"state,omitempty"`
	Pincode *string `json:"pincode,omitempty"`

	OTP *string `json:"otp,omitempty"`
}

// Fields returns the names of the fields present in the patch.
func (p Patch) Fields() []string {
	var out []string
	add := func(name string, present bool) {
		if present {
			out = append(out, name)
		}
	}
	add(FieldLocation, p.Location != nil)
	add(FieldVehicle, p.SelectedVehicle != nil)
	add(FieldVariant, p.SelectedVariant != nil)
	add(FieldColor, p.SelectedColor != nil)
	add(FieldComponents, p.OptionalComponents != nil)
	add(FieldInsuranceTenure, p.SelectedTenure != nil)
	add(FieldProvider, p.SelectedProvider != nil)
	add(FieldCoreInsurance, p.SelectedCoreInsurance != nil)
	add(FieldAdditionalCoverage, p.SelectedAdditionalCoverage != nil)
	add(FieldPaymentMethod, p.PaymentMethod != nil)
	add(FieldLoanTenure, p.LoanTenure != nil)
	add(FieldDownPayment, p.DownPayment != nil)
	add(FieldName, p.Name != nil)
	add(FieldEmail, p.Email != nil)
	add(FieldPhone, p.Phone != nil)
	add(FieldAddress, p.Address != nil)
	add(FieldCity, p.City != nil)
	add(FieldState, p.State != nil)
	add(FieldPincode, p.Pincode != nil)
	add(FieldOTP, p.OTP != nil)
	return out
}

// Has reports whether the named field is present in the patch.
func (p Patch) Has(field string) bool {
	for _, f := range p.Fields() {
		if f == field {
			return true
		}
	}
	return false
}

// ErrorMap maps field names to human-readable validation messages. An absent
// key means the field is valid.
type ErrorMap map[string]string

// Aggregate owns the form data and its validation-error state. Mutated only
// through Merge, never replaced wholesale except on Reset.
type Aggregate struct {
	data   FormData
	errors ErrorMap
}

func NewAggregate() *Aggregate {
	return &Aggregate{
		data:   FormData{},
		errors: make(ErrorMap),
	}
}

// Data returns a copy of the current form data.
func (a *Aggregate) Data() FormData {
	d := a.data
	d.OptionalComponents = append([]string(nil), a.data.OptionalComponents...)
	d.SelectedCoreInsurance = append([]int(nil), a.data.SelectedCoreInsurance...)
	d.SelectedAdditionalCoverage = append([]int(nil), a.data.SelectedAdditionalCoverage...)
	return d
}

// Errors returns a copy of the current validation errors.
func (a *Aggregate) Errors() ErrorMap {
	out := make(ErrorMap, len(a.errors))
	for k, v := range a.errors {
		out[k] = v
	}
	return out
}

// Merge shallow-merges the patch into the aggregate, key-wise. For every key
// present in the patch, any existing validation error for that key is cleared
// immediately, before re-validation. An edited field must not keep showing a
// stale error. Returns the names of the merged fields.
func (a *Aggregate) Merge(p Patch) []string {
	if p.Location != nil {
		a.data.Location = *p.Location
	}
	if p.SelectedVehicle != nil {
		a.data.SelectedVehicle = *p.SelectedVehicle
	}
	if p.SelectedVariant != nil {
		a.data.SelectedVariant = *p.SelectedVariant
	}
	if p.SelectedColor != nil {
		a.data.SelectedColor = *p.SelectedColor
	}
	if p.OptionalComponents != nil {
		a.data.OptionalComponents = append([]string(nil), p.OptionalComponents...)
	}
	if p.SelectedTenure != nil {
		a.data.SelectedTenure = *p.SelectedTenure
	}
	if p.SelectedProvider != nil {
		a.data.SelectedProvider = *p.SelectedProvider
	}
	if p.SelectedCoreInsurance != nil {
		a.data.SelectedCoreInsurance = append([]int(nil), p.SelectedCoreInsurance...)
	}
	if p.SelectedAdditionalCoverage != nil {
		a.data.SelectedAdditionalCoverage = append([]int(nil), p.SelectedAdditionalCoverage...)
	}
	if p.PaymentMethod != nil {
		a.data.PaymentMethod = *p.PaymentMethod
	}
	if p.LoanTenure != nil {
		a.data.LoanTenure = *p.LoanTenure
	}
	if p.DownPayment != nil {
		a.data.DownPayment = *p.DownPayment
	}
	if p.Name != nil {
		a.data.Name = *p.Name
	}
	if p.Email != nil {
		a.data.Email = *p.Email
	}
	if p.Phone != nil {
		a.data.Phone = *p.Phone
	}
	if p.Address != nil {
		a.data.Address = *p.Address
	}
	if p.City != nil {
		a.data.City = *p.City
	}
	if p.State != nil {
		a.data.State = *p.State
	}
	if p.OTP != nil {
		a.data.OTP = *p.OTP
	}
	if p.Pincode != nil {
		a.data.Pincode = *p.Pincode
	}

	fields := p.Fields()
	for _, f := range fields {
		delete(a.errors, f)
	}
	return fields
}

// SetErrors records the outcome of a validation attempt for the given step's
// fields, replacing any prior errors for keys present in the map.
func (a *Aggregate) SetErrors(errs ErrorMap) {
	for k, v := range errs {
		a.errors[k] = v
	}
}

// UnionComponents adds the given component ids to the selection without
// duplicating existing entries. Used for required-item self-repair.
func (a *Aggregate) UnionComponents(ids []string) {
	for _, id := range ids {
		if !containsString(a.data.OptionalComponents, id) {
			a.data.OptionalComponents = append(a.data.OptionalComponents, id)
		}
	}
}

// UnionCoreInsurance adds the given plan ids to the core-insurance selection
// without duplicating existing entries.
func (a *Aggregate) UnionCoreInsurance(ids []int) {
	for _, id := range ids {
		if !containsInt(a.data.SelectedCoreInsurance, id) {
			a.data.SelectedCoreInsurance = append(a.data.SelectedCoreInsurance, id)
		}
	}
}

// SetTotalPrice stores the computed total on the aggregate.
func (a *Aggregate) SetTotalPrice(total int) {
	a.data.TotalPrice = total
}

// Reset restores default field values and clears all errors.
func (a *Aggregate) Reset() {
	a.data = FormData{}
	a.errors = make(ErrorMap)
}

func containsString(s []string, v string) bool {
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
