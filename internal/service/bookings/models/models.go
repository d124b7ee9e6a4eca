package models

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
	"github.com/m04kA/SMC-EventBooking/pkg/money"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	Actor              domain.Actor `json:"-"`
	CancellationReason string       `json:"cancellationReason"`
}

// UpdateStatusRequest запрос на обновление статуса бронирования
type UpdateStatusRequest struct {
	Actor  domain.Actor `json:"-"`
	Status string       `json:"status"`
}

// AssignPartnerRequest запрос на назначение партнера
type AssignPartnerRequest struct {
	Actor     domain.Actor `json:"-"`
	PartnerID int64        `json:"partnerId"`
}

// UpdateAssignmentStatusRequest запрос на обновление статуса исполнения
type UpdateAssignmentStatusRequest struct {
	Actor  domain.Actor `json:"-"`
	Status string       `json:"status"`
}

// GetUserBookingsRequest запрос на получение бронирований пользователя
type GetUserBookingsRequest struct {
	Actor  domain.Actor
	UserID int64
	Status *string
}

// ListBookingsRequest запрос на список бронирований (админка и партнеры)
type ListBookingsRequest struct {
	Actor            domain.Actor
	UserID           *int64
	PartnerID        *int64
	Status           *string
	PaymentStatus    *string
	IncludeCancelled bool
	Limit            uint64
	Offset           uint64
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListBookingsRequest) ToDomainFilter() (domain.BookingsFilter, error) {
	filter := domain.BookingsFilter{
		UserID:            r.UserID,
		AssignedPartnerID: r.PartnerID,
		IncludeCancelled:  r.IncludeCancelled,
		Limit:             r.Limit,
		Offset:            r.Offset,
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	if r.PaymentStatus != nil {
		ps := domain.PaymentStatus(*r.PaymentStatus)
		if ps != domain.PaymentPaid && ps != domain.PaymentPartiallyPaid {
			return filter, ErrInvalidStatus
		}
		filter.PaymentStatus = &ps
	}

	return filter, nil
}

// Response модели

// InvoiceResponse один платеж по бронированию
type InvoiceResponse struct {
	ID               int64     `json:"id"`
	InstallmentIndex int       `json:"installmentIndex"`
	PaidAmount       int64     `json:"paidAmount"`
	DueAmount        int64     `json:"dueAmount"`
	PaymentMethod    string    `json:"paymentMethod"`
	PaymentStatus    string    `json:"paymentStatus"`
	PaymentDate      time.Time `json:"paymentDate"`
	GatewayOrderID   string    `json:"gatewayOrderId"`
	GatewayPaymentID string    `json:"gatewayPaymentId"`
}

// StatusHistoryResponse запись истории статусов
type StatusHistoryResponse struct {
	Status    string    `json:"status"`
	Index     int       `json:"index"`
	ChangedBy int64     `json:"changedBy"`
	ChangedAt time.Time `json:"changedAt"`
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID        int64 `json:"id"`
	UserID    int64 `json:"userId"`
	PackageID int64 `json:"packageId"`
	EventID   int64 `json:"eventId"`

	// Денормализованные данные мастера
	FormValues      map[string]interface{} `json:"formValues"`
	EventDetails    domain.EventDetails    `json:"eventDetails"`
	DeliveryAddress domain.DeliveryAddress `json:"deliveryAddress"`
	PackageName     string                 `json:"packageName"`
	PackageSnapshot json.RawMessage        `json:"packageSnapshot,omitempty"`

	Currency         string `json:"currency"`
	TotalAmount      int64  `json:"totalAmount"`
	PaidAmount       int64  `json:"paidAmount"`
	DueAmount        int64  `json:"dueAmount"`
	TotalFormatted   string `json:"totalFormatted"`
	DueFormatted     string `json:"dueFormatted"`
	InstallmentPlan  int    `json:"installmentPlan"`
	PaidInstallments int    `json:"paidInstallments"`
	PaymentStatus    string `json:"paymentStatus"`

	Status        string                  `json:"status"`
	StatusHistory []StatusHistoryResponse `json:"statusHistory,omitempty"`

	AssignedPartnerID     *int64                  `json:"assignedPartnerId,omitempty"`
	AssignedStatus        *string                 `json:"assignedStatus,omitempty"`
	AssignedStatusHistory []StatusHistoryResponse `json:"assignedStatusHistory,omitempty"`

	Invoices []InvoiceResponse `json:"invoices,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// InvoiceDocument сформированный документ счета
type InvoiceDocument struct {
	FileName string
	Content  []byte
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                    b.ID,
		UserID:                b.UserID,
		PackageID:             b.PackageID,
		EventID:               b.EventID,
		FormValues:            b.FormValues,
		EventDetails:          b.EventDetails,
		DeliveryAddress:       b.DeliveryAddress,
		PackageName:           b.PackageName,
		PackageSnapshot:       b.PackageSnapshot,
		Currency:              b.Currency,
		TotalAmount:           b.TotalAmount,
		PaidAmount:            b.PaidAmount,
		DueAmount:             b.DueAmount,
		TotalFormatted:        money.Format(b.TotalAmount, b.Currency),
		DueFormatted:          money.Format(b.DueAmount, b.Currency),
		InstallmentPlan:       int(b.InstallmentPlan),
		PaidInstallments:      b.PaidInstallments,
		PaymentStatus:         string(b.PaymentStatus),
		Status:                string(b.Status),
		StatusHistory:         fromHistory(b.StatusHistory),
		AssignedPartnerID:     b.AssignedPartnerID,
		AssignedStatusHistory: fromHistory(b.AssignedStatusHistory),
		CancellationReason:    b.CancellationReason,
		CreatedAt:             b.CreatedAt,
		UpdatedAt:             b.UpdatedAt,
	}

	if b.AssignedStatus != nil {
		st := string(*b.AssignedStatus)
		resp.AssignedStatus = &st
	}

	for _, inv := range b.Invoices {
		resp.Invoices = append(resp.Invoices, InvoiceResponse{
			ID:               inv.ID,
			InstallmentIndex: inv.InstallmentIndex,
			PaidAmount:       inv.PaidAmount,
			DueAmount:        inv.DueAmount,
			PaymentMethod:    inv.PaymentMethod,
			PaymentStatus:    string(inv.PaymentStatus),
			PaymentDate:      inv.PaymentDate,
			GatewayOrderID:   inv.GatewayOrderID,
			GatewayPaymentID: inv.GatewayPaymentID,
		})
	}

	// Конвертируем CancelledAt в строку ISO 8601
	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

func fromHistory(entries []domain.StatusHistoryEntry) []StatusHistoryResponse {
	if len(entries) == 0 {
		return nil
	}
	out := make([]StatusHistoryResponse, len(entries))
	for i, e := range entries {
		out[i] = StatusHistoryResponse{Status: e.Status, Index: e.Index, ChangedBy: e.ChangedBy, ChangedAt: e.ChangedAt}
	}
	return out
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)

	if _, ok := domain.BookingStatusIndex(s); ok {
		return s, nil
	}
	for _, cancelled := range domain.CancelledStatuses {
		if s == cancelled {
			return s, nil
		}
	}

	return "", ErrInvalidStatus
}

// ToDomainAssignmentStatus конвертирует строку в domain.AssignmentStatus с валидацией
func ToDomainAssignmentStatus(status string) (domain.AssignmentStatus, error) {
	s := domain.AssignmentStatus(status)
	if _, ok := domain.AssignmentStatusIndex(s); ok {
		return s, nil
	}
	return "", ErrInvalidStatus
}
