package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
	"github.com/m04kA/SMC-EventBooking/pkg/metrics"
	"github.com/m04kA/SMC-EventBooking/pkg/money"
)

// Gateway бэкенд платежного шлюза
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (orderID string, err error)
	Verify(ctx context.Context, confirmation domain.PaymentConfirmation) error
}

// Metrics счетчики исходов платежных сессий
type Metrics interface {
	RecordPaymentOutcome(outcome string)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// OpenRequest параметры новой платежной сессии. Amount в основных единицах валюты
type OpenRequest struct {
	Owner    string
	Amount   int64
	Currency string
	Receipt  string
}

// Adapter открывает платежные сессии и доводит их до исхода.
// На одного владельца приходится не более одной открытой сессии.
// Ожидание оплаты не ограничено по времени: заказ в шлюзе остается оплачиваемым,
// поэтому сессия закрывается только отменой, повторным открытием или проверкой платежа
type Adapter struct {
	gateway    Gateway
	gatewayKey string
	metrics    Metrics
	logger     Logger
	now        func() time.Time

	mu      sync.Mutex
	byOwner map[string]*Session
	byOrder map[string]*Session
}

func NewAdapter(gateway Gateway, gatewayKey string, m Metrics, logger Logger) *Adapter {
	return &Adapter{
		gateway:    gateway,
		gatewayKey: gatewayKey,
		metrics:    m,
		logger:     logger,
		now:        time.Now,
		byOwner:    make(map[string]*Session),
		byOrder:    make(map[string]*Session),
	}
}

// Open создает заказ в шлюзе и регистрирует сессию.
// Предыдущая открытая сессия владельца закрывается без оплаты
func (a *Adapter) Open(ctx context.Context, req OpenRequest, cont Continuations) (*Session, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAmount, req.Amount)
	}
	if req.Currency == "" {
		req.Currency = money.DefaultCurrency
	}

	if err := a.checkNotVerifying(req.Owner); err != nil {
		return nil, err
	}

	amountMinor, err := money.ToMinorUnits(req.Amount, req.Currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionCreation, err)
	}

	orderID, err := a.gateway.CreateOrder(ctx, amountMinor, req.Currency, req.Receipt)
	if err != nil {
		a.logger.Error("Open: failed to create gateway order for %s: %v", req.Owner, err)
		return nil, fmt.Errorf("%w: %v", ErrSessionCreation, err)
	}

	session := newSession(req.Owner, domain.PaymentSession{
		OrderID:    orderID,
		Amount:     amountMinor,
		Currency:   req.Currency,
		GatewayKey: a.gatewayKey,
		Receipt:    req.Receipt,
	}, cont, a.now())

	a.mu.Lock()
	previous := a.byOwner[req.Owner]
	if previous != nil && previous.currentState() == StateVerifying {
		a.mu.Unlock()
		// пока создавали заказ, началась проверка предыдущей сессии
		return nil, ErrPaymentInFlight
	}
	if previous != nil {
		delete(a.byOrder, previous.OrderID())
	}
	a.byOwner[req.Owner] = session
	a.byOrder[orderID] = session
	a.mu.Unlock()

	if previous != nil {
		a.finishAbandoned(previous)
	}

	a.metrics.RecordPaymentOutcome(metrics.PaymentOpened)
	a.logger.Info("Open: session %s opened for %s, amount=%d %s", orderID, req.Owner, amountMinor, req.Currency)

	return session, nil
}

// Complete проверяет платеж в шлюзе и выполняет OnVerified.
// Ошибка OnVerified возвращается как есть: платеж при этом уже проведен
func (a *Adapter) Complete(ctx context.Context, confirmation domain.PaymentConfirmation) (*Session, error) {
	session, err := a.lookup(confirmation.OrderID)
	if err != nil {
		return nil, err
	}

	if !session.transition(StateOpen, StateVerifying) {
		if session.currentState() == StateVerifying {
			return session, ErrPaymentInFlight
		}
		return session, ErrSessionNotFound
	}

	if err := a.gateway.Verify(ctx, confirmation); err != nil {
		a.release(session)
		verifyErr := fmt.Errorf("%w: %v", ErrVerificationFailed, err)
		session.finish(StateFailed, verifyErr)
		a.metrics.RecordPaymentOutcome(metrics.PaymentFailed)
		a.logger.Warn("Complete: verification failed for order %s: %v", confirmation.OrderID, err)
		return session, verifyErr
	}

	a.metrics.RecordPaymentOutcome(metrics.PaymentVerified)
	a.logger.Info("Complete: payment %s verified for order %s after %s",
		confirmation.PaymentID, confirmation.OrderID, a.now().Sub(session.OpenedAt()).Round(time.Second))

	var contErr error
	if session.cont.OnVerified != nil {
		contErr = session.cont.OnVerified(ctx, confirmation)
	}

	a.release(session)
	session.finish(StateVerified, contErr)

	return session, contErr
}

// Dismiss закрывает сессию без оплаты (пользователь закрыл виджет)
func (a *Adapter) Dismiss(orderID string) error {
	session, err := a.lookup(orderID)
	if err != nil {
		return err
	}

	a.mu.Lock()
	if !session.abandon() {
		a.mu.Unlock()
		if session.currentState() == StateVerifying {
			return ErrPaymentInFlight
		}
		return ErrSessionNotFound
	}
	a.unregister(session)
	a.mu.Unlock()

	a.runAbandoned(session)
	return nil
}

// Active возвращает открытую сессию владельца
func (a *Adapter) Active(owner string) (*Session, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.byOwner[owner]
	return s, ok
}

func (a *Adapter) checkNotVerifying(owner string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if s, ok := a.byOwner[owner]; ok && s.currentState() == StateVerifying {
		return ErrPaymentInFlight
	}
	return nil
}

func (a *Adapter) lookup(orderID string) (*Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.byOrder[orderID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, orderID)
	}
	return s, nil
}

func (a *Adapter) release(s *Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.unregister(s)
}

// unregister вызывается под a.mu
func (a *Adapter) unregister(s *Session) {
	delete(a.byOrder, s.OrderID())
	if a.byOwner[s.owner] == s {
		delete(a.byOwner, s.owner)
	}
}

func (a *Adapter) finishAbandoned(s *Session) {
	if s.abandon() {
		a.runAbandoned(s)
	}
}

func (a *Adapter) runAbandoned(s *Session) {
	a.metrics.RecordPaymentOutcome(metrics.PaymentAbandoned)
	a.logger.Info("session %s abandoned", s.OrderID())
	if s.cont.OnAbandoned != nil {
		s.cont.OnAbandoned()
	}
}

// IsAbandoned true, если err означает закрытие сессии без оплаты
func IsAbandoned(err error) bool {
	return errors.Is(err, ErrSessionAbandoned)
}
