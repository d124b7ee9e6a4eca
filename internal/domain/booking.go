package domain

import (
	"encoding/json"
	"time"
)

// BookingStatus represents the lifecycle status of a booking
type BookingStatus string

const (
	StatusPending          BookingStatus = "pending"
	StatusConfirmed        BookingStatus = "confirmed"
	StatusInProgress       BookingStatus = "in_progress"
	StatusCompleted        BookingStatus = "completed"
	StatusCancelledByUser  BookingStatus = "cancelled_by_user"
	StatusCancelledByAdmin BookingStatus = "cancelled_by_admin"
)

// AssignmentStatus represents the progress of the partner assigned to a booking
type AssignmentStatus string

const (
	AssignmentAssigned   AssignmentStatus = "assigned"
	AssignmentAccepted   AssignmentStatus = "accepted"
	AssignmentInProgress AssignmentStatus = "in_progress"
	AssignmentCompleted  AssignmentStatus = "completed"
)

// PaymentStatus represents how much of the booking has been paid
type PaymentStatus string

const (
	PaymentPartiallyPaid PaymentStatus = "partially_paid"
	PaymentPaid          PaymentStatus = "paid"
)

// StatusHistoryEntry one step of a status sequence
// Index is the position of Status in its sequence and never decreases along the history
type StatusHistoryEntry struct {
	Status    string    `json:"status"`
	Index     int       `json:"index"`
	ChangedBy int64     `json:"changedBy"`
	ChangedAt time.Time `json:"changedAt"`
}

// Booking represents a persisted event-service booking
type Booking struct {
	ID        int64
	UserID    int64
	PackageID int64
	EventID   int64

	// Denormalized wizard data
	FormValues      map[string]interface{}
	EventDetails    EventDetails
	DeliveryAddress DeliveryAddress
	PackageSnapshot json.RawMessage
	PackageName     string

	Currency         string
	TotalAmount      int64
	PaidAmount       int64
	DueAmount        int64
	InstallmentPlan  InstallmentPlan
	PaidInstallments int
	PaymentStatus    PaymentStatus
	GatewayOrderID   string // order of the first installment, unique per booking

	Status        BookingStatus
	StatusHistory []StatusHistoryEntry

	AssignedPartnerID     *int64
	AssignedStatus        *AssignmentStatus
	AssignedStatusHistory []StatusHistoryEntry

	Invoices []Invoice

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking is not cancelled
func (b *Booking) IsActive() bool {
	return !b.IsCancelled()
}

// IsCancelled returns true if the booking has been cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelledByUser || b.Status == StatusCancelledByAdmin
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// IsFullyPaid returns true when nothing is left to pay
func (b *Booking) IsFullyPaid() bool {
	return b.DueAmount <= 0
}

// CanTransitionTo returns true if the booking may move to next without going backwards
// The same status is accepted as an idempotent no-op
func (b *Booking) CanTransitionTo(next BookingStatus) bool {
	if b.IsCancelled() {
		return false
	}
	if next == StatusCancelledByUser || next == StatusCancelledByAdmin {
		return b.CanBeCancelled()
	}
	cur, ok := BookingStatusIndex(b.Status)
	if !ok {
		return false
	}
	nxt, ok := BookingStatusIndex(next)
	if !ok {
		return false
	}
	return nxt >= cur
}

// CanTransitionAssignmentTo returns true if the assignment may move to next without going backwards
func (b *Booking) CanTransitionAssignmentTo(next AssignmentStatus) bool {
	nxt, ok := AssignmentStatusIndex(next)
	if !ok {
		return false
	}
	if b.AssignedStatus == nil {
		return next == AssignmentAssigned
	}
	cur, ok := AssignmentStatusIndex(*b.AssignedStatus)
	if !ok {
		return false
	}
	return nxt >= cur
}

// LastInvoice returns the most recent invoice
func (b *Booking) LastInvoice() (Invoice, bool) {
	if len(b.Invoices) == 0 {
		return Invoice{}, false
	}
	return b.Invoices[len(b.Invoices)-1], true
}

// BookingStatusIndex returns the position of a non-cancelled status in the lifecycle sequence
func BookingStatusIndex(s BookingStatus) (int, bool) {
	for i, st := range BookingStatusSequence {
		if st == s {
			return i, true
		}
	}
	return 0, false
}

// AssignmentStatusIndex returns the position of an assignment status in its sequence
func AssignmentStatusIndex(s AssignmentStatus) (int, bool) {
	for i, st := range AssignmentStatusSequence {
		if st == s {
			return i, true
		}
	}
	return 0, false
}

// BookingsFilter фильтр для списка бронирований (админка)
type BookingsFilter struct {
	UserID            *int64         // Бронирования клиента
	AssignedPartnerID *int64         // Бронирования, назначенные партнеру
	Status            *BookingStatus // Фильтр по статусу
	PaymentStatus     *PaymentStatus // Фильтр по статусу оплаты
	IncludeCancelled  bool           // Включать ли отменённые бронирования
	Limit             uint64
	Offset            uint64
}
