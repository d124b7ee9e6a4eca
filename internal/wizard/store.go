package wizard

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
)

type entry struct {
	mu         sync.Mutex
	state      *domain.WizardState
	lastAccess time.Time
	removal    *time.Timer
}

// Store хранит состояния мастеров в памяти процесса.
// Мастер живет до завершения бронирования или до истечения ttl без обращений
type Store struct {
	mu    sync.Mutex
	items map[string]*entry
	ttl   time.Duration
	now   func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = domain.DefaultWizardTTL
	}
	return &Store{
		items: make(map[string]*entry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Put сохраняет новое состояние мастера
func (s *Store) Put(state *domain.WizardState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[state.ID] = &entry{state: state, lastAccess: s.now()}
}

// With выполняет fn над контроллером мастера под блокировкой этого мастера
func (s *Store) With(id string, userID int64, fn func(c *Controller) error) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.UserID != userID {
		return ErrAccessDenied
	}

	c := NewController(e.state)
	c.now = s.now
	return fn(c)
}

// Snapshot возвращает копию состояния мастера
func (s *Store) Snapshot(id string, userID int64) (*domain.WizardState, error) {
	var snapshot *domain.WizardState
	err := s.With(id, userID, func(c *Controller) error {
		snapshot = cloneState(c.State())
		return nil
	})
	return snapshot, err
}

// Delete удаляет мастер пользователя
func (s *Store) Delete(id string, userID int64) error {
	return s.With(id, userID, func(c *Controller) error {
		if c.State().ActiveOrderID != "" {
			return ErrPaymentInFlight
		}
		s.remove(id)
		return nil
	})
}

// ScheduleRemoval удаляет мастер через delay (сброс после успешного бронирования)
func (s *Store) ScheduleRemoval(id string, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[id]
	if !ok {
		return
	}
	if e.removal != nil {
		e.removal.Stop()
	}
	e.removal = time.AfterFunc(delay, func() {
		s.remove(id)
	})
}

// Sweep удаляет мастера без обращений дольше ttl, возвращает число удаленных
// Мастера с открытой платежной сессией не удаляются
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	deadline := s.now().Add(-s.ttl)
	removed := 0
	for id, e := range s.items {
		if !e.mu.TryLock() {
			continue
		}
		expired := e.lastAccess.Before(deadline) && e.state.ActiveOrderID == ""
		e.mu.Unlock()

		if expired {
			if e.removal != nil {
				e.removal.Stop()
			}
			delete(s.items, id)
			removed++
		}
	}
	return removed
}

// RunSweeper периодически вызывает Sweep до отмены контекста
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Len число мастеров в хранилище
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) lookup(id string) (*entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[id]
	if !ok {
		return nil, ErrWizardNotFound
	}
	e.lastAccess = s.now()
	return e, nil
}

func (s *Store) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
}

func cloneState(src *domain.WizardState) *domain.WizardState {
	dst := *src
	dst.Descriptors = append([]domain.FieldDescriptor(nil), src.Descriptors...)
	dst.FormValues = src.FormValues.Clone()
	dst.PassedSteps = make(map[domain.WizardStep]bool, len(src.PassedSteps))
	for k, v := range src.PassedSteps {
		dst.PassedSteps[k] = v
	}
	if src.BookingID != nil {
		id := *src.BookingID
		dst.BookingID = &id
	}
	return &dst
}
