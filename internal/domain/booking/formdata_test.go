package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestAggregate_MergeIsKeyWise(t *testing.T) {
	a := NewAggregate()

	a.Merge(Patch{
		SelectedVehicle: strPtr("km3000"),
		Name:            strPtr("Asha Rao"),
	})
	a.Merge(Patch{Email: strPtr("asha@example.com")})

	d := a.Data()
	assert.Equal(t, "km3000", d.SelectedVehicle)
	assert.Equal(t, "Asha Rao", d.Name)
	assert.Equal(t, "asha@example.com", d.Email)
}

func TestAggregate_MergeIsIdempotent(t *testing.T) {
	p := Patch{
		SelectedVehicle:    strPtr("km3000"),
		OptionalComponents: []string{"helmet", "charger-portable"},
		DownPayment:        intPtr(20000),
	}

	a := NewAggregate()
	a.Merge(p)
	once := a.Data()

	a.Merge(p)
	twice := a.Data()

	assert.Equal(t, once, twice)
}

func TestAggregate_MergeClearsErrorOnEdit(t *testing.T) {
	a := NewAggregate()
	a.SetErrors(ErrorMap{
		FieldEmail: "Please enter a valid email address",
		FieldPhone: "Please enter a valid 10-digit phone number",
	})

	// Clearing happens on edit, even when the new value is still invalid.
	// That is the designed optimistic policy, not a bug.
	a.Merge(Patch{Email: strPtr("still-not-an-email")})

	errs := a.Errors()
	assert.NotContains(t, errs, FieldEmail)
	assert.Contains(t, errs, FieldPhone)
}

func TestAggregate_MergeCopiesSlices(t *testing.T) {
	a := NewAggregate()
	src := []string{"helmet"}
	a.Merge(Patch{OptionalComponents: src})

	src[0] = "mutated"
	assert.Equal(t, []string{"helmet"}, a.Data().OptionalComponents)
}

func TestAggregate_UnionKeepsExistingSelection(t *testing.T) {
	a := NewAggregate()
	a.Merge(Patch{OptionalComponents: []string{"charger-portable"}})

	a.UnionComponents([]string{"helmet", "charger-portable"})
	assert.ElementsMatch(t, []string{"charger-portable", "helmet"}, a.Data().OptionalComponents)

	a.UnionCoreInsurance([]int{1})
	a.UnionCoreInsurance([]int{1})
	assert.Equal(t, []int{1}, a.Data().SelectedCoreInsurance)
}

func TestAggregate_Reset(t *testing.T) {
	a := NewAggregate()
	a.Merge(Patch{SelectedVehicle: strPtr("km3000"), Name: strPtr("Asha Rao")})
	a.SetErrors(ErrorMap{FieldEmail: "Please enter a valid email address"})
	a.SetTotalPrice(205500)

	a.Reset()

	assert.Equal(t, FormData{}, a.Data())
	assert.Empty(t, a.Errors())
}

func TestPatch_Fields(t *testing.T) {
	p := Patch{
		Location:              strPtr("110001"),
		SelectedCoreInsurance: []int{},
	}

	fields := p.Fields()
	assert.ElementsMatch(t, []string{FieldLocation, FieldCoreInsurance}, fields)
	assert.True(t, p.Has(FieldLocation))
	assert.False(t, p.Has(FieldEmail))
}
