package submit_booking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
	userClient "github.com/m04kA/SMC-EventBooking/internal/integrations/userservice"
	"github.com/m04kA/SMC-EventBooking/internal/payment"
	"github.com/m04kA/SMC-EventBooking/internal/reconciliation"
	"github.com/m04kA/SMC-EventBooking/internal/wizard"
	"github.com/m04kA/SMC-EventBooking/pkg/money"
)

// UseCase оплата первого платежа из мастера и создание бронирования
type UseCase struct {
	store         *wizard.Store
	payments      PaymentAdapter
	recorder      BookingRecorder
	userClient    UserServiceClient
	notifier      Notifier
	reconciler    Reconciler
	metrics       Metrics
	logger        Logger
	redirectDelay time.Duration
	now           func() time.Time

	mu      sync.Mutex
	pending map[string]*submission // по orderID
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	store *wizard.Store,
	payments PaymentAdapter,
	recorder BookingRecorder,
	userClient UserServiceClient,
	notifier Notifier,
	reconciler Reconciler,
	metrics Metrics,
	logger Logger,
	redirectDelay time.Duration,
) *UseCase {
	if redirectDelay <= 0 {
		redirectDelay = domain.DefaultRedirectDelay
	}
	return &UseCase{
		store:         store,
		payments:      payments,
		recorder:      recorder,
		userClient:    userClient,
		notifier:      notifier,
		reconciler:    reconciler,
		metrics:       metrics,
		logger:        logger,
		redirectDelay: redirectDelay,
		now:           time.Now,
		pending:       make(map[string]*submission),
	}
}

// OpenPayment открывает платежную сессию на первый платеж по выбранному плану.
// Повторное открытие закрывает предыдущую сессию мастера без оплаты
func (uc *UseCase) OpenPayment(ctx context.Context, req *OpenPaymentRequest) (*PaymentSessionResponse, error) {
	uc.logger.Info("OpenPayment: wizard %s, user=%d", req.WizardID, req.UserID)

	var (
		pkg  domain.PackageSnapshot
		plan domain.InstallmentPlan
	)
	err := uc.store.With(req.WizardID, req.UserID, func(c *wizard.Controller) error {
		if err := c.ReadyForPayment(); err != nil {
			return err
		}
		pkg = c.State().Package
		plan = c.InstallmentPlan()
		return nil
	})
	if err != nil {
		uc.logger.Warn("OpenPayment: wizard %s is not ready for payment: %v", req.WizardID, err)
		return nil, err
	}

	amount, due, err := payment.ComputeInstallment(pkg.Price, plan)
	if err != nil {
		uc.logger.Warn("OpenPayment: wizard %s: %v", req.WizardID, err)
		return nil, err
	}

	sub := &submission{
		wizardID: req.WizardID,
		userID:   req.UserID,
		plan:     plan,
		amount:   amount,
		due:      due,
	}

	// Продолжения сами берут блокировку мастера, поэтому адаптер вызывается вне store.With
	session, err := uc.payments.Open(ctx, payment.OpenRequest{
		Owner:    sessionOwner(req.WizardID),
		Amount:   amount,
		Currency: pkg.Currency,
		Receipt:  strconv.FormatInt(pkg.ID, 10),
	}, payment.Continuations{
		OnVerified: func(ctx context.Context, confirmation domain.PaymentConfirmation) error {
			return uc.submit(ctx, sub, confirmation)
		},
		OnAbandoned: func() {
			uc.release(sub)
		},
	})
	if err != nil {
		return nil, err
	}

	uc.mu.Lock()
	sub.orderID = session.OrderID()
	uc.pending[sub.orderID] = sub
	uc.mu.Unlock()

	err = uc.store.With(req.WizardID, req.UserID, func(c *wizard.Controller) error {
		return c.BeginPayment(sub.orderID)
	})
	if err != nil {
		// мастер изменился, пока создавался заказ
		uc.logger.Warn("OpenPayment: wizard %s changed while opening order %s: %v", req.WizardID, sub.orderID, err)
		if dErr := uc.payments.Dismiss(sub.orderID); dErr != nil {
			uc.logger.Warn("OpenPayment: failed to dismiss order %s: %v", sub.orderID, dErr)
		}
		return nil, err
	}

	// Копия замороженного мастера на случай, если после оплаты его не будет в хранилище
	snapshot, err := uc.store.Snapshot(req.WizardID, req.UserID)
	if err != nil {
		uc.logger.Warn("OpenPayment: failed to snapshot wizard %s: %v", req.WizardID, err)
	}
	uc.mu.Lock()
	sub.snapshot = snapshot
	uc.mu.Unlock()

	uc.logger.Info("OpenPayment: order %s opened for wizard %s, plan=%d, amount=%d, due=%d",
		sub.orderID, req.WizardID, plan, amount, due)

	return &PaymentSessionResponse{
		Session:         session.Info(),
		InstallmentPlan: int(plan),
		Installment:     amount,
		Due:             due,
		Formatted:       money.Format(amount, session.Info().Currency),
	}, nil
}

// CompletePayment подтверждает оплату и создает бронирование.
// Ошибка проверки платежа оставляет мастер на шаге оплаты, повторной проверки нет
func (uc *UseCase) CompletePayment(ctx context.Context, req *CompletePaymentRequest) (*Response, error) {
	uc.logger.Info("CompletePayment: wizard %s, order %s, payment %s", req.WizardID, req.OrderID, req.PaymentID)

	sub, err := uc.lookup(req.WizardID, req.UserID, req.OrderID)
	if err != nil {
		return nil, err
	}

	_, err = uc.payments.Complete(ctx, domain.PaymentConfirmation{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrVerificationFailed):
			uc.release(sub)
			uc.logger.Warn("CompletePayment: verification failed for order %s: %v", req.OrderID, err)
		case errors.Is(err, payment.ErrPaymentInFlight):
			uc.logger.Warn("CompletePayment: order %s is already being verified", req.OrderID)
		default:
			uc.forget(req.OrderID)
		}
		return nil, err
	}

	uc.forget(req.OrderID)

	uc.mu.Lock()
	booking := sub.booking
	uc.mu.Unlock()
	if booking == nil {
		return nil, fmt.Errorf("%w: order %s verified without booking", ErrInternal, req.OrderID)
	}

	return &Response{
		BookingID:     booking.ID,
		PaidAmount:    booking.PaidAmount,
		DueAmount:     booking.DueAmount,
		Currency:      booking.Currency,
		RedirectPath:  fmt.Sprintf(domain.ClientBookingPath, booking.ID),
		RedirectDelay: uc.redirectDelay,
	}, nil
}

// DismissPayment закрывает сессию без оплаты, мастер остается на шаге оплаты
func (uc *UseCase) DismissPayment(_ context.Context, req *DismissPaymentRequest) error {
	if _, err := uc.lookup(req.WizardID, req.UserID, req.OrderID); err != nil {
		return err
	}

	if err := uc.payments.Dismiss(req.OrderID); err != nil {
		uc.logger.Warn("DismissPayment: order %s: %v", req.OrderID, err)
		return err
	}

	uc.logger.Info("DismissPayment: order %s dismissed for wizard %s", req.OrderID, req.WizardID)
	return nil
}

// submit выполняется после успешной проверки платежа
func (uc *UseCase) submit(ctx context.Context, sub *submission, confirmation domain.PaymentConfirmation) error {
	clientAddress := uc.clientAddress(ctx, sub)

	invoice := domain.Invoice{
		InstallmentIndex: 1,
		PaidAmount:       sub.amount,
		DueAmount:        sub.due,
		PaymentStatus:    domain.InvoiceSuccess,
		PaymentDate:      uc.now(),
		GatewayOrderID:   confirmation.OrderID,
		GatewayPaymentID: confirmation.PaymentID,
	}

	draft, err := uc.assembleDraft(sub, invoice, clientAddress)
	if err != nil {
		uc.logger.Error("submit: failed to assemble draft for wizard %s after payment %s: %v", sub.wizardID, confirmation.PaymentID, err)
		uc.orphan(ctx, sub, confirmation, err)
		uc.complete(sub, nil)
		return fmt.Errorf("%w: %v", payment.ErrReconciliationRequired, err)
	}
	draft.FirstInvoice.PaymentMethod = draft.Payment.PaymentMethod

	booking, err := draft.NewBooking(uc.now())
	if err != nil {
		uc.logger.Error("submit: invalid booking for wizard %s after payment %s: %v", sub.wizardID, confirmation.PaymentID, err)
		uc.orphan(ctx, sub, confirmation, err)
		uc.complete(sub, nil)
		return fmt.Errorf("%w: %v", payment.ErrReconciliationRequired, err)
	}

	created, err := uc.recorder.RecordBooking(ctx, booking)
	if err != nil {
		uc.logger.Error("submit: failed to persist booking for order %s: %v", confirmation.OrderID, err)
		uc.reconcile(ctx, sub, confirmation, booking, err)
		uc.complete(sub, nil)
		return fmt.Errorf("%w: %v", payment.ErrReconciliationRequired, err)
	}

	uc.metrics.RecordBookingCreated()
	uc.logger.Info("submit: booking id=%d created from wizard %s, paid=%d, due=%d",
		created.ID, sub.wizardID, created.PaidAmount, created.DueAmount)

	uc.mu.Lock()
	sub.booking = created
	uc.mu.Unlock()
	uc.complete(sub, &created.ID)

	if err := uc.notifier.BookingCreated(ctx, created); err != nil {
		uc.logger.Warn("submit: notifications for booking id=%d were not fully delivered: %v", created.ID, err)
	}

	return nil
}

// assembleDraft собирает черновик из мастера в хранилище, а если его там нет,
// из копии, снятой при открытии оплаты
func (uc *UseCase) assembleDraft(sub *submission, invoice domain.Invoice, clientAddress *domain.DeliveryAddress) (domain.BookingDraft, error) {
	var draft domain.BookingDraft
	err := uc.store.With(sub.wizardID, sub.userID, func(c *wizard.Controller) error {
		var err error
		draft, err = c.AssembleDraft(invoice, clientAddress)
		return err
	})
	if err == nil {
		return draft, nil
	}

	uc.mu.Lock()
	snapshot := sub.snapshot
	uc.mu.Unlock()
	if snapshot == nil {
		return domain.BookingDraft{}, err
	}

	uc.logger.Warn("submit: wizard %s unavailable (%v), assembling draft from snapshot", sub.wizardID, err)
	return wizard.NewController(snapshot).AssembleDraft(invoice, clientAddress)
}

// clientAddress адрес из профиля, если выбран адрес клиента.
// При недоступности UserService бронирование сохраняется только с флагом
func (uc *UseCase) clientAddress(ctx context.Context, sub *submission) *domain.DeliveryAddress {
	var sameAsClient bool
	_ = uc.store.With(sub.wizardID, sub.userID, func(c *wizard.Controller) error {
		v, _ := c.State().FormValues.Get(domain.SectionDeliveryAddress + ".sameAsClientAddress")
		sameAsClient, _ = v.(bool)
		return nil
	})
	if !sameAsClient {
		return nil
	}

	user, err := uc.userClient.GetUserWithGracefulDegradation(ctx, sub.userID)
	if err != nil {
		if errors.Is(err, userClient.ErrServiceDegraded) {
			uc.logger.Warn("submit: client address unavailable for user=%d, keeping the flag only", sub.userID)
		} else {
			uc.logger.Warn("submit: failed to get user=%d: %v", sub.userID, err)
		}
		return nil
	}
	return user.DeliveryAddress()
}

// reconcile передает проведенный платеж в сверку и предупреждает оператора
func (uc *UseCase) reconcile(ctx context.Context, sub *submission, confirmation domain.PaymentConfirmation, booking *domain.Booking, cause error) {
	err := uc.reconciler.Start(ctx, reconciliation.Request{
		Kind:      reconciliation.KindBooking,
		OrderID:   confirmation.OrderID,
		PaymentID: confirmation.PaymentID,
		UserID:    sub.userID,
		Booking:   booking,
	})
	if err != nil {
		uc.logger.Error("submit: failed to start reconciliation for order %s: %v", confirmation.OrderID, err)
	}
	uc.alert(ctx, sub, confirmation, cause)
}

// orphan передает в сверку платеж, из которого не удалось собрать бронирование.
// Сверка сохраняет идентификаторы платежа и копию мастера и поднимает оператора
func (uc *UseCase) orphan(ctx context.Context, sub *submission, confirmation domain.PaymentConfirmation, cause error) {
	uc.mu.Lock()
	snapshot := sub.snapshot
	uc.mu.Unlock()

	err := uc.reconciler.Start(ctx, reconciliation.Request{
		Kind:      reconciliation.KindOrphanPayment,
		OrderID:   confirmation.OrderID,
		PaymentID: confirmation.PaymentID,
		UserID:    sub.userID,
		Wizard:    snapshot,
		Amount:    sub.amount,
		Reason:    cause.Error(),
	})
	if err != nil {
		uc.logger.Error("submit: failed to start reconciliation for order %s: %v", confirmation.OrderID, err)
	}
	uc.alert(ctx, sub, confirmation, cause)
}

func (uc *UseCase) alert(ctx context.Context, sub *submission, confirmation domain.PaymentConfirmation, cause error) {
	if err := uc.notifier.PaymentNotRecorded(ctx, sub.userID, confirmation.OrderID, confirmation.PaymentID, cause.Error()); err != nil {
		uc.logger.Error("submit: failed to alert operator about order %s: %v", confirmation.OrderID, err)
	}
}

// complete завершает мастер и планирует его удаление
func (uc *UseCase) complete(sub *submission, bookingID *int64) {
	err := uc.store.With(sub.wizardID, sub.userID, func(c *wizard.Controller) error {
		c.Complete(bookingID)
		return nil
	})
	if err != nil {
		uc.logger.Warn("submit: wizard %s is gone: %v", sub.wizardID, err)
		return
	}
	uc.store.ScheduleRemoval(sub.wizardID, uc.redirectDelay)
}

// release снимает блокировку мастера после отмены или неудачной оплаты
func (uc *UseCase) release(sub *submission) {
	uc.mu.Lock()
	orderID := sub.orderID
	delete(uc.pending, orderID)
	uc.mu.Unlock()

	if orderID == "" {
		return
	}
	err := uc.store.With(sub.wizardID, sub.userID, func(c *wizard.Controller) error {
		c.EndPayment(orderID)
		return nil
	})
	if err != nil {
		uc.logger.Warn("release: wizard %s: %v", sub.wizardID, err)
	}
}

func (uc *UseCase) lookup(wizardID string, userID int64, orderID string) (*submission, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	sub, ok := uc.pending[orderID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", payment.ErrSessionNotFound, orderID)
	}
	if sub.wizardID != wizardID || sub.userID != userID {
		return nil, ErrOrderMismatch
	}
	return sub, nil
}

func (uc *UseCase) forget(orderID string) {
	uc.mu.Lock()
	delete(uc.pending, orderID)
	uc.mu.Unlock()
}

func sessionOwner(wizardID string) string {
	return "wizard:" + wizardID
}
