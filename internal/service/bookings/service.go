package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-EventBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-EventBooking/internal/service/bookings/models"
)

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo BookingRepository
	txManager   TransactionManager
	logger      Logger
	now         func() time.Time
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		txManager:   txManager,
		logger:      logger,
		now:         time.Now,
	}
}

// GetByID получает бронирование по ID
// Доступ: владелец, назначенный партнер или администратор
func (s *Service) GetByID(ctx context.Context, id int64, actor domain.Actor) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, actor.UserID)

	booking, err := s.load(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if !canView(booking, actor) {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", actor.UserID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBooking(booking), nil
}

// GetUserBookings получает историю бронирований пользователя
// Опционально фильтрует по статусу
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for user=%d, status=%v", req.UserID, req.Status)

	if req.Actor.UserID != req.UserID && !req.Actor.IsAdmin() {
		s.logger.Warn("GetUserBookings: user=%d is not allowed to read bookings of user=%d", req.Actor.UserID, req.UserID)
		return nil, ErrAccessDenied
	}

	userID := req.UserID
	listReq := &models.ListBookingsRequest{
		UserID:           &userID,
		Status:           req.Status,
		IncludeCancelled: true,
		Limit:            domain.MaxBookingsPageSize,
	}

	filter, err := listReq.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetUserBookings: invalid status=%v for user=%d", req.Status, req.UserID)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetByFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserBookings: successfully fetched %d bookings for user=%d", len(bookings), req.UserID)
	return models.FromDomainBookingList(bookings), nil
}

// List получает бронирования с фильтрацией
// Администратор видит все бронирования, партнер только назначенные ему
func (s *Service) List(ctx context.Context, req *models.ListBookingsRequest) (*models.BookingListResponse, error) {
	switch {
	case req.Actor.IsAdmin():
	case req.Actor.IsPartner():
		partnerID := req.Actor.UserID
		req.PartnerID = &partnerID
	default:
		s.logger.Warn("List: user=%d with role=%s is not allowed to list bookings", req.Actor.UserID, req.Actor.Role)
		return nil, ErrAccessDenied
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetByFilter(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d bookings for user=%d", len(bookings), req.Actor.UserID)
	return models.FromDomainBookingList(bookings), nil
}

// Cancel отменяет бронирование
// Клиент отменяет свое бронирование (cancelled_by_user), администратор любое (cancelled_by_admin)
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) error {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d", bookingID, req.Actor.UserID)

	reason := strings.TrimSpace(req.CancellationReason)
	if len(reason) > domain.MaxCancellationReasonLength {
		return fmt.Errorf("%w: cancellation reason is too long", ErrInvalidInput)
	}

	var cancelStatus domain.BookingStatus
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		booking, err := s.load(ctx, "Cancel", bookingID)
		if err != nil {
			return err
		}

		// Определяем статус отмены в зависимости от прав доступа
		switch {
		case booking.UserID == req.Actor.UserID:
			cancelStatus = domain.StatusCancelledByUser
		case req.Actor.IsAdmin():
			cancelStatus = domain.StatusCancelledByAdmin
		default:
			s.logger.Warn("Cancel: access denied for user=%d to cancel booking id=%d", req.Actor.UserID, bookingID)
			return ErrAccessDenied
		}

		if !booking.CanBeCancelled() {
			s.logger.Warn("Cancel: booking id=%d cannot be cancelled, status=%s", bookingID, booking.Status)
			return ErrCannotCancel
		}

		if err := s.bookingRepo.Cancel(ctx, bookingID, cancelStatus, reason); err != nil {
			return s.repoError("Cancel", bookingID, err)
		}

		index := len(domain.BookingStatusSequence)
		return s.appendHistory(ctx, bookingID, bookingRepo.HistoryBooking, string(cancelStatus), index, req.Actor.UserID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Cancel: successfully cancelled booking id=%d with status=%s", bookingID, cancelStatus)
	return nil
}

// UpdateStatus обновляет статус бронирования
// Доступно только администратору, статус не может двигаться назад
func (s *Service) UpdateStatus(ctx context.Context, bookingID int64, req *models.UpdateStatusRequest) error {
	s.logger.Info("UpdateStatus: updating booking id=%d to status=%s by user=%d", bookingID, req.Status, req.Actor.UserID)

	if !req.Actor.IsAdmin() {
		return ErrAccessDenied
	}

	newStatus, err := models.ToDomainBookingStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for booking id=%d", req.Status, bookingID)
		return fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}
	index, ok := domain.BookingStatusIndex(newStatus)
	if !ok {
		// отмена выполняется через Cancel, чтобы сохранить причину
		return fmt.Errorf("%w: use cancellation for status %s", ErrInvalidStatus, newStatus)
	}

	return s.txManager.Do(ctx, func(ctx context.Context) error {
		booking, err := s.load(ctx, "UpdateStatus", bookingID)
		if err != nil {
			return err
		}

		if !booking.CanTransitionTo(newStatus) {
			s.logger.Warn("UpdateStatus: booking id=%d cannot move from %s to %s", bookingID, booking.Status, newStatus)
			return ErrInvalidTransition
		}
		if booking.Status == newStatus {
			return nil
		}

		if err := s.bookingRepo.UpdateStatus(ctx, bookingID, newStatus); err != nil {
			return s.repoError("UpdateStatus", bookingID, err)
		}
		if err := s.appendHistory(ctx, bookingID, bookingRepo.HistoryBooking, string(newStatus), index, req.Actor.UserID); err != nil {
			return err
		}

		s.logger.Info("UpdateStatus: successfully updated booking id=%d to status=%s", bookingID, newStatus)
		return nil
	})
}

// AssignPartner назначает партнера на бронирование
// Переназначение возможно, пока партнер не принял заказ
func (s *Service) AssignPartner(ctx context.Context, bookingID int64, req *models.AssignPartnerRequest) error {
	s.logger.Info("AssignPartner: assigning partner=%d to booking id=%d by user=%d", req.PartnerID, bookingID, req.Actor.UserID)

	if !req.Actor.IsAdmin() {
		return ErrAccessDenied
	}
	if req.PartnerID <= 0 {
		return fmt.Errorf("%w: partner id is required", ErrInvalidInput)
	}

	return s.txManager.Do(ctx, func(ctx context.Context) error {
		booking, err := s.load(ctx, "AssignPartner", bookingID)
		if err != nil {
			return err
		}

		if !booking.IsActive() {
			return ErrInvalidTransition
		}
		if booking.AssignedStatus != nil && *booking.AssignedStatus != domain.AssignmentAssigned {
			return ErrAlreadyAssigned
		}
		if booking.AssignedPartnerID != nil && *booking.AssignedPartnerID == req.PartnerID {
			return nil
		}

		if err := s.bookingRepo.UpdateAssignment(ctx, bookingID, req.PartnerID, domain.AssignmentAssigned); err != nil {
			return s.repoError("AssignPartner", bookingID, err)
		}
		return s.appendHistory(ctx, bookingID, bookingRepo.HistoryAssignment, string(domain.AssignmentAssigned), 0, req.Actor.UserID)
	})
}

// UpdateAssignmentStatus обновляет статус исполнения заказа
// Доступно назначенному партнеру и администратору
func (s *Service) UpdateAssignmentStatus(ctx context.Context, bookingID int64, req *models.UpdateAssignmentStatusRequest) error {
	s.logger.Info("UpdateAssignmentStatus: booking id=%d to status=%s by user=%d", bookingID, req.Status, req.Actor.UserID)

	newStatus, err := models.ToDomainAssignmentStatus(req.Status)
	if err != nil {
		return fmt.Errorf("%w: invalid assignment status", ErrInvalidInput)
	}
	index, _ := domain.AssignmentStatusIndex(newStatus)

	return s.txManager.Do(ctx, func(ctx context.Context) error {
		booking, err := s.load(ctx, "UpdateAssignmentStatus", bookingID)
		if err != nil {
			return err
		}

		if booking.AssignedPartnerID == nil {
			return ErrNotAssigned
		}
		if !req.Actor.IsAdmin() && *booking.AssignedPartnerID != req.Actor.UserID {
			s.logger.Warn("UpdateAssignmentStatus: user=%d is not assigned to booking id=%d", req.Actor.UserID, bookingID)
			return ErrAccessDenied
		}
		if !booking.IsActive() {
			return ErrInvalidTransition
		}
		if !booking.CanTransitionAssignmentTo(newStatus) {
			return ErrInvalidTransition
		}
		if booking.AssignedStatus != nil && *booking.AssignedStatus == newStatus {
			return nil
		}

		if err := s.bookingRepo.UpdateAssignment(ctx, bookingID, *booking.AssignedPartnerID, newStatus); err != nil {
			return s.repoError("UpdateAssignmentStatus", bookingID, err)
		}
		return s.appendHistory(ctx, bookingID, bookingRepo.HistoryAssignment, string(newStatus), index, req.Actor.UserID)
	})
}

// InvoicePDF формирует PDF квитанцию по одному платежу бронирования
func (s *Service) InvoicePDF(ctx context.Context, bookingID, invoiceID int64, actor domain.Actor) (*models.InvoiceDocument, error) {
	booking, err := s.load(ctx, "InvoicePDF", bookingID)
	if err != nil {
		return nil, err
	}
	if !canView(booking, actor) {
		return nil, ErrAccessDenied
	}

	for _, inv := range booking.Invoices {
		if inv.ID != invoiceID {
			continue
		}
		doc, err := renderInvoice(booking, inv)
		if err != nil {
			s.logger.Error("InvoicePDF: failed to render invoice id=%d: %v", invoiceID, err)
			return nil, fmt.Errorf("%w: InvoicePDF - render: %v", ErrInternal, err)
		}
		return doc, nil
	}

	return nil, ErrInvoiceNotFound
}

// Вспомогательные методы

func (s *Service) load(ctx context.Context, op string, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return booking, nil
}

func (s *Service) repoError(op string, id int64, err error) error {
	if errors.Is(err, bookingRepo.ErrBookingNotFound) {
		s.logger.Warn("%s: booking id=%d not found during update", op, id)
		return ErrBookingNotFound
	}
	s.logger.Error("%s: repository error for booking id=%d: %v", op, id, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}

func (s *Service) appendHistory(ctx context.Context, bookingID int64, kind, status string, index int, actorID int64) error {
	entry := domain.StatusHistoryEntry{
		Status:    status,
		Index:     index,
		ChangedBy: actorID,
		ChangedAt: s.now(),
	}
	if err := s.bookingRepo.AppendStatusHistory(ctx, bookingID, kind, entry); err != nil {
		return s.repoError("appendHistory", bookingID, err)
	}
	return nil
}

// canView владелец, назначенный партнер или администратор
func canView(b *domain.Booking, actor domain.Actor) bool {
	if actor.IsAdmin() || b.UserID == actor.UserID {
		return true
	}
	return actor.IsPartner() && b.AssignedPartnerID != nil && *b.AssignedPartnerID == actor.UserID
}
