package payment

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
)

// State состояние платежной сессии
type State string

const (
	StateOpen      State = "open"
	StateVerifying State = "verifying"
	StateVerified  State = "verified"
	StateFailed    State = "failed"
	StateAbandoned State = "abandoned"
)

// IsFinal true для завершенной сессии
func (s State) IsFinal() bool {
	return s == StateVerified || s == StateFailed || s == StateAbandoned
}

// Continuations продолжения, которые выполняются по исходу сессии
type Continuations struct {
	// OnVerified вызывается один раз после успешной проверки платежа
	OnVerified func(ctx context.Context, confirmation domain.PaymentConfirmation) error
	// OnAbandoned вызывается, если сессия закрыта без оплаты
	OnAbandoned func()
}

// Session одна попытка оплаты. Ведет себя как future:
// Done закрывается при переходе в конечное состояние
type Session struct {
	info     domain.PaymentSession
	owner    string
	openedAt time.Time
	cont     Continuations

	mu    sync.Mutex
	state State
	err   error
	done  chan struct{}
}

func newSession(owner string, info domain.PaymentSession, cont Continuations, now time.Time) *Session {
	return &Session{
		info:     info,
		owner:    owner,
		openedAt: now,
		cont:     cont,
		state:    StateOpen,
		done:     make(chan struct{}),
	}
}

// Info параметры для запуска платежного виджета на клиенте
func (s *Session) Info() domain.PaymentSession {
	return s.info
}

// OrderID идентификатор заказа в шлюзе
func (s *Session) OrderID() string {
	return s.info.OrderID
}

// OpenedAt время создания заказа
func (s *Session) OpenedAt() time.Time {
	return s.openedAt
}

// Owner владелец сессии (мастер или бронирование)
func (s *Session) Owner() string {
	return s.owner
}

// Done закрывается, когда сессия завершена
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Outcome текущее состояние и ошибка завершения
func (s *Session) Outcome() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.err
}

// Wait ждет завершения сессии или отмены контекста
func (s *Session) Wait(ctx context.Context) (State, error) {
	select {
	case <-s.done:
		return s.Outcome()
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// transition переводит сессию из from в to, false если сессия в другом состоянии
func (s *Session) transition(from, to State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != from {
		return false
	}
	s.state = to
	return true
}

func (s *Session) currentState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// finish переводит сессию в конечное состояние и освобождает ожидающих
func (s *Session) finish(state State, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.IsFinal() {
		return
	}
	s.state = state
	s.err = err
	close(s.done)
}

// abandon закрывает открытую сессию без оплаты, false если проверка уже началась
func (s *Session) abandon() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateOpen {
		return false
	}
	s.state = StateAbandoned
	s.err = ErrSessionAbandoned
	close(s.done)
	return true
}
