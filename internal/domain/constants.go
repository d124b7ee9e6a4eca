package domain

import "time"

// Installment plans
const (
	PlanFull            InstallmentPlan = 1
	PlanThreeInstalment InstallmentPlan = 3
	MaxInstallmentPlan  InstallmentPlan = 12
)

// Installment fractions for the three-part plan, in percent of the total
const (
	ThreePartFirstPercent  = 30
	ThreePartSecondPercent = 40
)

// Business validation constants
const (
	MaxCancellationReasonLength = 500
	MaxPackagePrice             = int64(1_000_000_000_000) // основные единицы валюты
	MaxFieldValueLength         = 2000
	DefaultBookingsPageSize     = 50
	MaxBookingsPageSize         = 200
)

// Wizard lifecycle defaults
const (
	DefaultRedirectDelay    = 3 * time.Second
	DefaultWizardTTL        = 2 * time.Hour
	DefaultRedirectPath     = "/client/bookings"
	AdminBookingPath        = "/admin/bookings/%d"
	ClientBookingPath       = "/client/bookings/%d"
	AdminReconciliationPath = "/admin/payments"
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// BookingStatusSequence порядок статусов жизненного цикла бронирования
// Переход назад по этой последовательности запрещен
var BookingStatusSequence = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusInProgress,
	StatusCompleted,
}

// AssignmentStatusSequence порядок статусов исполнения заказа партнером
var AssignmentStatusSequence = []AssignmentStatus{
	AssignmentAssigned,
	AssignmentAccepted,
	AssignmentInProgress,
	AssignmentCompleted,
}

// CancelledStatuses статусы отмены (терминальные)
var CancelledStatuses = []BookingStatus{
	StatusCancelledByUser,
	StatusCancelledByAdmin,
}
