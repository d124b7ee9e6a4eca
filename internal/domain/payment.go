package domain

import "time"

// InstallmentPlan number of payments the customer splits the package price into
type InstallmentPlan int

// IsValid returns true for a supported plan
func (p InstallmentPlan) IsValid() bool {
	return p >= PlanFull && p <= MaxInstallmentPlan
}

// InvoiceStatus status of a single recorded payment
type InvoiceStatus string

const (
	InvoiceSuccess InvoiceStatus = "success"
)

// PaymentSession short-lived gateway order driving one checkout attempt
// Amount is in minor currency units
type PaymentSession struct {
	OrderID    string `json:"orderId"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	GatewayKey string `json:"key"`
	Receipt    string `json:"receipt"`
}

// PaymentConfirmation identifiers returned by the hosted checkout on success
type PaymentConfirmation struct {
	OrderID   string
	PaymentID string
	Signature string
}

// Invoice one recorded payment event of a booking (append-only)
type Invoice struct {
	ID               int64
	BookingID        int64
	InstallmentIndex int
	PaidAmount       int64
	DueAmount        int64
	PaymentMethod    string
	PaymentStatus    InvoiceStatus
	PaymentDate      time.Time
	GatewayOrderID   string
	GatewayPaymentID string
}
