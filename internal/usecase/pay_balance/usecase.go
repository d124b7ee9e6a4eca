package pay_balance

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-EventBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-EventBooking/internal/payment"
	"github.com/m04kA/SMC-EventBooking/internal/reconciliation"
	"github.com/m04kA/SMC-EventBooking/pkg/money"
)

// UseCase оплата остатка по существующему бронированию.
// Новое бронирование не создается, к нему добавляется один счет
type UseCase struct {
	bookingRepo BookingRepository
	payments    PaymentAdapter
	recorder    InstallmentRecorder
	notifier    Notifier
	reconciler  Reconciler
	metrics     Metrics
	logger      Logger
	now         func() time.Time

	mu      sync.Mutex
	pending map[string]*installment
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	payments PaymentAdapter,
	recorder InstallmentRecorder,
	notifier Notifier,
	reconciler Reconciler,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo: bookingRepo,
		payments:    payments,
		recorder:    recorder,
		notifier:    notifier,
		reconciler:  reconciler,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
		pending:     make(map[string]*installment),
	}
}

// Open открывает сессию на следующий платеж по плану бронирования
func (uc *UseCase) Open(ctx context.Context, req *OpenRequest) (*SessionResponse, error) {
	uc.logger.Info("PayBalance.Open: booking id=%d, user=%d", req.BookingID, req.Actor.UserID)

	booking, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("PayBalance.Open: failed to get booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	if booking.UserID != req.Actor.UserID {
		uc.logger.Warn("PayBalance.Open: user=%d is not the owner of booking id=%d", req.Actor.UserID, req.BookingID)
		return nil, ErrAccessDenied
	}
	if booking.IsCancelled() {
		return nil, ErrBookingCancelled
	}

	amount, index, err := payment.NextInstallment(booking.TotalAmount, booking.DueAmount, booking.InstallmentPlan, booking.PaidInstallments)
	if err != nil {
		uc.logger.Warn("PayBalance.Open: booking id=%d: %v", req.BookingID, err)
		return nil, err
	}

	inst := &installment{
		bookingID: booking.ID,
		userID:    booking.UserID,
		index:     index,
		amount:    amount,
	}
	if last, ok := booking.LastInvoice(); ok {
		inst.method = last.PaymentMethod
	}

	session, err := uc.payments.Open(ctx, payment.OpenRequest{
		Owner:    sessionOwner(booking.ID),
		Amount:   amount,
		Currency: booking.Currency,
		Receipt:  strconv.FormatInt(booking.PackageID, 10),
	}, payment.Continuations{
		OnVerified: func(ctx context.Context, confirmation domain.PaymentConfirmation) error {
			return uc.record(ctx, inst, confirmation)
		},
		OnAbandoned: func() {
			uc.mu.Lock()
			delete(uc.pending, inst.orderID)
			uc.mu.Unlock()
		},
	})
	if err != nil {
		return nil, err
	}

	uc.mu.Lock()
	inst.orderID = session.OrderID()
	uc.pending[inst.orderID] = inst
	uc.mu.Unlock()

	uc.logger.Info("PayBalance.Open: order %s opened for booking id=%d, installment %d, amount=%d",
		inst.orderID, booking.ID, index, amount)

	return &SessionResponse{
		Session:          session.Info(),
		InstallmentIndex: index,
		Amount:           amount,
		DueAfter:         booking.DueAmount - amount,
		Formatted:        money.Format(amount, booking.Currency),
	}, nil
}

// Complete подтверждает оплату и добавляет счет к бронированию
func (uc *UseCase) Complete(ctx context.Context, req *CompleteRequest) (*Response, error) {
	uc.logger.Info("PayBalance.Complete: booking id=%d, order %s, payment %s", req.BookingID, req.OrderID, req.PaymentID)

	inst, err := uc.lookup(req.BookingID, req.Actor.UserID, req.OrderID)
	if err != nil {
		return nil, err
	}

	_, err = uc.payments.Complete(ctx, domain.PaymentConfirmation{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if !errors.Is(err, payment.ErrPaymentInFlight) {
		uc.forget(req.OrderID)
	}
	if err != nil {
		uc.logger.Warn("PayBalance.Complete: order %s: %v", req.OrderID, err)
		return nil, err
	}

	uc.mu.Lock()
	booking, invoice := inst.booking, inst.invoice
	uc.mu.Unlock()
	if booking == nil || invoice == nil {
		return nil, fmt.Errorf("%w: order %s verified without invoice", ErrInternal, req.OrderID)
	}

	return &Response{
		BookingID:        booking.ID,
		InvoiceID:        invoice.ID,
		InstallmentIndex: invoice.InstallmentIndex,
		PaidAmount:       booking.PaidAmount,
		DueAmount:        booking.DueAmount,
		PaymentStatus:    string(booking.PaymentStatus),
	}, nil
}

// Dismiss закрывает сессию без оплаты
func (uc *UseCase) Dismiss(_ context.Context, req *DismissRequest) error {
	if _, err := uc.lookup(req.BookingID, req.Actor.UserID, req.OrderID); err != nil {
		return err
	}
	if err := uc.payments.Dismiss(req.OrderID); err != nil {
		uc.logger.Warn("PayBalance.Dismiss: order %s: %v", req.OrderID, err)
		return err
	}
	uc.logger.Info("PayBalance.Dismiss: order %s dismissed for booking id=%d", req.OrderID, req.BookingID)
	return nil
}

// record выполняется после успешной проверки платежа
func (uc *UseCase) record(ctx context.Context, inst *installment, confirmation domain.PaymentConfirmation) error {
	invoice := domain.Invoice{
		BookingID:        inst.bookingID,
		InstallmentIndex: inst.index,
		PaidAmount:       inst.amount,
		PaymentMethod:    inst.method,
		PaymentStatus:    domain.InvoiceSuccess,
		PaymentDate:      uc.now(),
		GatewayOrderID:   confirmation.OrderID,
		GatewayPaymentID: confirmation.PaymentID,
	}

	updated, err := uc.recorder.RecordInstallment(ctx, inst.bookingID, invoice)
	if err != nil {
		uc.logger.Error("PayBalance.record: failed to record installment for order %s: %v", confirmation.OrderID, err)
		startErr := uc.reconciler.Start(ctx, reconciliation.Request{
			Kind:      reconciliation.KindInstallment,
			OrderID:   confirmation.OrderID,
			PaymentID: confirmation.PaymentID,
			UserID:    inst.userID,
			BookingID: inst.bookingID,
			Invoice:   invoice,
		})
		if startErr != nil {
			uc.logger.Error("PayBalance.record: failed to start reconciliation for order %s: %v", confirmation.OrderID, startErr)
		}
		if alertErr := uc.notifier.PaymentNotRecorded(ctx, inst.userID, confirmation.OrderID, confirmation.PaymentID, err.Error()); alertErr != nil {
			uc.logger.Error("PayBalance.record: failed to alert operator: %v", alertErr)
		}
		return fmt.Errorf("%w: %v", payment.ErrReconciliationRequired, err)
	}

	recorded := invoice
	for _, inv := range updated.Invoices {
		if inv.GatewayOrderID == confirmation.OrderID {
			recorded = inv
		}
	}

	uc.metrics.RecordInvoiceAppended()
	uc.logger.Info("PayBalance.record: installment %d recorded for booking id=%d, due=%d",
		recorded.InstallmentIndex, updated.ID, updated.DueAmount)

	uc.mu.Lock()
	inst.booking = updated
	inst.invoice = &recorded
	uc.mu.Unlock()

	if err := uc.notifier.InstallmentPaid(ctx, updated, recorded); err != nil {
		uc.logger.Warn("PayBalance.record: notifications for booking id=%d were not fully delivered: %v", updated.ID, err)
	}
	return nil
}

func (uc *UseCase) lookup(bookingID, userID int64, orderID string) (*installment, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	inst, ok := uc.pending[orderID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", payment.ErrSessionNotFound, orderID)
	}
	if inst.bookingID != bookingID || inst.userID != userID {
		return nil, ErrOrderMismatch
	}
	return inst, nil
}

func (uc *UseCase) forget(orderID string) {
	uc.mu.Lock()
	delete(uc.pending, orderID)
	uc.mu.Unlock()
}

func sessionOwner(bookingID int64) string {
	return "booking:" + strconv.FormatInt(bookingID, 10)
}
