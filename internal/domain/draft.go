package domain

import (
	"encoding/json"
	"time"

	"github.com/m04kA/SMC-EventBooking/pkg/types"
)

// EventDetails event information collected on the second wizard step
type EventDetails struct {
	EventName         string           `json:"eventName"`
	EventDate         string           `json:"eventDate"` // YYYY-MM-DD
	StartTime         types.TimeString `json:"startTime"`
	EndTime           types.TimeString `json:"endTime"`
	VenueName         string           `json:"venueName"`
	VenueAddressLine1 string           `json:"venueAddressLine1"`
	VenueAddressLine2 string           `json:"venueAddressLine2,omitempty"`
	VenueCity         string           `json:"venueCity"`
	VenuePincode      string           `json:"venuePincode"`
	NumberOfGuests    int              `json:"numberOfGuests"`
	SpecialRequests   string           `json:"specialRequests,omitempty"`
}

// DeliveryAddress where deliverables (albums, prints) are sent
type DeliveryAddress struct {
	SameAsClientAddress bool   `json:"sameAsClientAddress"`
	RecipientName       string `json:"recipientName"`
	AddressLine1        string `json:"addressLine1"`
	AddressLine2        string `json:"addressLine2,omitempty"`
	City                string `json:"city"`
	State               string `json:"state"`
	Pincode             string `json:"pincode"`
	ContactNumber       string `json:"contactNumber"`
}

// PaymentPreferences choices made on the payment step
type PaymentPreferences struct {
	InstallmentPlan       InstallmentPlan `json:"installmentPlan"`
	PaymentMethod         string          `json:"paymentMethod"`
	AgreeToTerms          bool            `json:"agreeToTerms"`
	ConfirmBookingDetails bool            `json:"confirmBookingDetails"`
}

// PackageSnapshot catalog package embedded verbatim into the booking
type PackageSnapshot struct {
	ID        int64           `json:"id"`
	EventID   int64           `json:"eventId"`
	ServiceID int64           `json:"serviceId"`
	Name      string          `json:"name"`
	Price     int64           `json:"price"`
	Currency  string          `json:"currency"`
	Raw       json.RawMessage `json:"raw,omitempty"`
}

// BookingDraft assembled, not yet persisted booking payload
// Built once after payment verification and never mutated afterwards
type BookingDraft struct {
	WizardID        string
	UserID          int64
	EventID         int64
	PackageID       int64
	DynamicFields   map[string]interface{}
	EventDetails    EventDetails
	DeliveryAddress DeliveryAddress
	Payment         PaymentPreferences
	Package         PackageSnapshot
	FirstInvoice    Invoice
	TotalAmount     int64
	Currency        string
}

// NewBooking builds the booking record persisted for a verified draft
func (d BookingDraft) NewBooking(now time.Time) (*Booking, error) {
	snapshot := d.Package.Raw
	if len(snapshot) == 0 {
		raw, err := json.Marshal(d.Package)
		if err != nil {
			return nil, err
		}
		snapshot = raw
	}

	plan := d.Payment.InstallmentPlan
	if plan == 0 {
		plan = PlanFull
	}

	first := d.FirstInvoice
	first.InstallmentIndex = 1

	status := PaymentPartiallyPaid
	if first.DueAmount <= 0 {
		status = PaymentPaid
	}

	return &Booking{
		UserID:           d.UserID,
		PackageID:        d.PackageID,
		EventID:          d.EventID,
		FormValues:       d.DynamicFields,
		EventDetails:     d.EventDetails,
		DeliveryAddress:  d.DeliveryAddress,
		PackageSnapshot:  snapshot,
		PackageName:      d.Package.Name,
		Currency:         d.Currency,
		TotalAmount:      d.TotalAmount,
		PaidAmount:       first.PaidAmount,
		DueAmount:        first.DueAmount,
		InstallmentPlan:  plan,
		PaidInstallments: 1,
		PaymentStatus:    status,
		GatewayOrderID:   first.GatewayOrderID,
		Status:           StatusPending,
		StatusHistory: []StatusHistoryEntry{
			{Status: string(StatusPending), Index: 0, ChangedBy: d.UserID, ChangedAt: now},
		},
		Invoices: []Invoice{first},
	}, nil
}
