package wizard

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
)

func testDefinition() domain.FormDefinition {
	return domain.FormDefinition{
		FormTitle: "Wedding details",
		Fields: []domain.FieldDescriptor{
			{Name: "theme", Label: "Theme", InputKind: domain.InputSelect, Required: true, Options: []string{"royal", "rustic"}},
			{Name: "brideName", Label: "Bride", InputKind: domain.InputText, Required: true},
		},
	}
}

func testPackage() domain.PackageSnapshot {
	return domain.PackageSnapshot{ID: 7, EventID: 3, ServiceID: 2, Name: "Gold", Price: 10000, Currency: "INR"}
}

func newTestController() *Controller {
	state := NewState("wiz-1", 42, testDefinition(), testPackage(), time.Now())
	return NewController(state)
}

func eventDetails() map[string]interface{} {
	return map[string]interface{}{
		"eventName":         "Wedding",
		"eventDate":         "2026-12-12",
		"startTime":         "10:00",
		"endTime":           "18:00",
		"venueName":         "Lotus Hall",
		"venueAddressLine1": "12 MG Road",
		"venueCity":         "Pune",
		"venuePincode":      "411001",
		"numberOfGuests":    "250",
	}
}

// fillToPayment проходит все шаги до оплаты с валидными данными
func fillToPayment(t *testing.T, c *Controller) {
	t.Helper()

	require.NoError(t, c.SetFields(domain.SectionDynamicFields, map[string]interface{}{"theme": "royal", "brideName": "Asha"}))
	_, err := c.Next()
	require.NoError(t, err)

	require.NoError(t, c.SetFields(domain.SectionEventDetails, eventDetails()))
	_, err = c.Next()
	require.NoError(t, err)

	require.NoError(t, c.SetFields(domain.SectionDeliveryAddress, map[string]interface{}{"sameAsClientAddress": true}))
	_, err = c.Next()
	require.NoError(t, err)

	require.NoError(t, c.SetFields(domain.SectionPayment, map[string]interface{}{
		"installmentPlan":       3.0,
		"paymentMethod":         "card",
		"agreeToTerms":          true,
		"confirmBookingDetails": true,
	}))
}

func TestNext_BlockedByInvalidStep(t *testing.T) {
	c := newTestController()

	require.NoError(t, c.SetFields(domain.SectionDynamicFields, map[string]interface{}{"theme": "royal"}))
	res, err := c.Next()

	assert.ErrorIs(t, err, ErrStepInvalid)
	assert.Equal(t, []string{"brideName"}, res.Missing)
	assert.Equal(t, domain.StepDynamicFields, c.State().CurrentStep)
	assert.False(t, c.State().PassedSteps[domain.StepDynamicFields])
}

func TestNext_AdvancesAndResetsScroll(t *testing.T) {
	c := newTestController()
	c.SetScroll(640)

	require.NoError(t, c.SetFields(domain.SectionDynamicFields, map[string]interface{}{"theme": "rustic", "brideName": "Asha"}))
	_, err := c.Next()
	require.NoError(t, err)

	assert.Equal(t, domain.StepEventDetails, c.State().CurrentStep)
	assert.True(t, c.State().PassedSteps[domain.StepDynamicFields])
	assert.Zero(t, c.State().ScrollOffset)
}

func TestPrevious(t *testing.T) {
	c := newTestController()
	assert.ErrorIs(t, c.Previous(), ErrAlreadyFirstStep)

	require.NoError(t, c.SetFields(domain.SectionDynamicFields, map[string]interface{}{"theme": "rustic", "brideName": "Asha"}))
	_, err := c.Next()
	require.NoError(t, err)

	c.SetScroll(100)
	require.NoError(t, c.Previous())
	assert.Equal(t, domain.StepDynamicFields, c.State().CurrentStep)
	assert.Zero(t, c.State().ScrollOffset)
	// Введенные значения сохраняются при возврате
	v, ok := c.State().FormValues.Get("dynamicFields.brideName")
	require.True(t, ok)
	assert.Equal(t, "Asha", v)
}

func TestSetFields_OnlyCurrentSection(t *testing.T) {
	c := newTestController()

	err := c.SetFields(domain.SectionEventDetails, map[string]interface{}{"eventName": "x"})
	assert.ErrorIs(t, err, ErrSectionNotActive)

	err = c.SetFields(domain.SectionDynamicFields, map[string]interface{}{"unknown": "x"})
	assert.ErrorIs(t, err, ErrInvalidFieldValue)
}

func TestSetFields_StaticValidation(t *testing.T) {
	c := newTestController()
	require.NoError(t, c.SetFields(domain.SectionDynamicFields, map[string]interface{}{"theme": "rustic", "brideName": "Asha"}))
	_, err := c.Next()
	require.NoError(t, err)

	err = c.SetFields(domain.SectionEventDetails, map[string]interface{}{"startTime": "25:61", "eventName": "Party"})
	assert.ErrorIs(t, err, ErrInvalidFieldValue)
	_, ok := c.State().FormValues.Get("eventDetails.eventName")
	assert.False(t, ok)

	err = c.SetFields(domain.SectionEventDetails, map[string]interface{}{"numberOfGuests": 12.5})
	assert.ErrorIs(t, err, ErrInvalidFieldValue)

	err = c.SetFields(domain.SectionEventDetails, map[string]interface{}{"venue": "x"})
	assert.ErrorIs(t, err, ErrUnknownField)

	require.NoError(t, c.SetFields(domain.SectionEventDetails, map[string]interface{}{"numberOfGuests": "80"}))
	v, _ := c.State().FormValues.Get("eventDetails.numberOfGuests")
	assert.Equal(t, 80.0, v)

	require.NoError(t, c.SetFields(domain.SectionEventDetails, map[string]interface{}{"numberOfGuests": ""}))
	_, ok = c.State().FormValues.Get("eventDetails.numberOfGuests")
	assert.False(t, ok)
}

func TestSetFields_RejectsNonFiniteNumbers(t *testing.T) {
	for _, raw := range []interface{}{"NaN", "Inf", "+Infinity", math.Inf(1)} {
		c := newTestController()
		require.NoError(t, c.SetFields(domain.SectionDynamicFields, map[string]interface{}{"theme": "rustic", "brideName": "Asha"}))
		_, err := c.Next()
		require.NoError(t, err)

		err = c.SetFields(domain.SectionEventDetails, map[string]interface{}{"numberOfGuests": raw})
		assert.ErrorIs(t, err, ErrInvalidFieldValue, "value %v", raw)

		_, ok := c.State().FormValues.Get("eventDetails.numberOfGuests")
		assert.False(t, ok, "value %v", raw)
		assert.False(t, c.Validate().Valid)
	}
}

func TestNext_LastStep(t *testing.T) {
	c := newTestController()
	fillToPayment(t, c)

	_, err := c.Next()
	assert.ErrorIs(t, err, ErrAlreadyLastStep)
}

func TestBeginPayment_LocksWizard(t *testing.T) {
	c := newTestController()
	assert.ErrorIs(t, c.BeginPayment("order_1"), ErrNotOnPaymentStep)

	fillToPayment(t, c)
	assert.Equal(t, domain.InstallmentPlan(3), c.InstallmentPlan())

	require.NoError(t, c.BeginPayment("order_1"))
	assert.ErrorIs(t, c.Previous(), ErrPaymentInFlight)
	assert.ErrorIs(t, c.SetFields(domain.SectionPayment, map[string]interface{}{"agreeToTerms": false}), ErrPaymentInFlight)

	c.EndPayment("order_other")
	assert.Equal(t, "order_1", c.State().ActiveOrderID)

	c.EndPayment("order_1")
	assert.NoError(t, c.Previous())
}

func TestBeginPayment_RequiresConsents(t *testing.T) {
	c := newTestController()
	fillToPayment(t, c)
	require.NoError(t, c.SetFields(domain.SectionPayment, map[string]interface{}{"agreeToTerms": false}))

	assert.ErrorIs(t, c.BeginPayment("order_1"), ErrStepInvalid)
	assert.Empty(t, c.State().ActiveOrderID)
}

func TestAssembleDraft(t *testing.T) {
	c := newTestController()
	fillToPayment(t, c)

	client := &domain.DeliveryAddress{
		RecipientName: "Asha",
		AddressLine1:  "4 Park St",
		City:          "Kolkata",
		State:         "WB",
		Pincode:       "700016",
		ContactNumber: "9000000000",
	}
	invoice := domain.Invoice{InstallmentIndex: 1, PaidAmount: 3000, DueAmount: 7000}

	draft, err := c.AssembleDraft(invoice, client)
	require.NoError(t, err)

	assert.Equal(t, "wiz-1", draft.WizardID)
	assert.Equal(t, int64(42), draft.UserID)
	assert.Equal(t, int64(7), draft.PackageID)
	assert.Equal(t, int64(3), draft.EventID)
	assert.Equal(t, "royal", draft.DynamicFields["theme"])
	assert.Equal(t, 250, draft.EventDetails.NumberOfGuests)
	assert.Equal(t, "10:00", draft.EventDetails.StartTime.String())
	assert.True(t, draft.DeliveryAddress.SameAsClientAddress)
	assert.Equal(t, "Kolkata", draft.DeliveryAddress.City)
	assert.Equal(t, domain.InstallmentPlan(3), draft.Payment.InstallmentPlan)
	assert.Equal(t, int64(10000), draft.TotalAmount)
	assert.Equal(t, invoice, draft.FirstInvoice)

	// Черновик не разделяет память с состоянием мастера
	draft.DynamicFields["theme"] = "changed"
	v, _ := c.State().FormValues.Get("dynamicFields.theme")
	assert.Equal(t, "royal", v)
}

func TestAssembleDraft_Incomplete(t *testing.T) {
	c := newTestController()
	_, err := c.AssembleDraft(domain.Invoice{}, nil)
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestCompletedWizardIsFrozen(t *testing.T) {
	c := newTestController()
	id := int64(5)
	c.Complete(&id)

	_, err := c.Next()
	assert.ErrorIs(t, err, ErrCompleted)
	assert.ErrorIs(t, c.BeginPayment("o"), ErrCompleted)
	assert.Equal(t, &id, c.State().BookingID)
}
