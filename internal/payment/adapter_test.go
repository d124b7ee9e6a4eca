package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
	"github.com/m04kA/SMC-EventBooking/pkg/metrics"
)

type fakeGateway struct {
	mu        sync.Mutex
	seq       int
	amounts   []int64
	createErr error
	verifyErr error
	verifyHit chan struct{}
	release   chan struct{}
}

func (g *fakeGateway) CreateOrder(_ context.Context, amountMinor int64, _, _ string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.createErr != nil {
		return "", g.createErr
	}
	g.seq++
	g.amounts = append(g.amounts, amountMinor)
	return fmt.Sprintf("order_%d", g.seq), nil
}

func (g *fakeGateway) Verify(_ context.Context, _ domain.PaymentConfirmation) error {
	if g.verifyHit != nil {
		g.verifyHit <- struct{}{}
		<-g.release
	}
	return g.verifyErr
}

type countingMetrics struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (m *countingMetrics) RecordPaymentOutcome(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcomes == nil {
		m.outcomes = make(map[string]int)
	}
	m.outcomes[outcome]++
}

func (m *countingMetrics) count(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outcomes[outcome]
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newTestAdapter(g *fakeGateway) (*Adapter, *countingMetrics) {
	m := &countingMetrics{}
	return NewAdapter(g, "rzp_test_key", m, nopLogger{}), m
}

func openRequest() OpenRequest {
	return OpenRequest{Owner: "wizard:1", Amount: 3000, Currency: "INR", Receipt: "7"}
}

func TestOpen_CreatesSessionInMinorUnits(t *testing.T) {
	g := &fakeGateway{}
	a, m := newTestAdapter(g)

	s, err := a.Open(context.Background(), openRequest(), Continuations{})
	require.NoError(t, err)

	info := s.Info()
	assert.Equal(t, "order_1", info.OrderID)
	assert.Equal(t, int64(300000), info.Amount)
	assert.Equal(t, "INR", info.Currency)
	assert.Equal(t, "rzp_test_key", info.GatewayKey)
	assert.Equal(t, "7", info.Receipt)
	assert.Equal(t, 1, m.count(metrics.PaymentOpened))

	state, _ := s.Outcome()
	assert.Equal(t, StateOpen, state)
}

func TestOpen_GatewayFailure(t *testing.T) {
	g := &fakeGateway{createErr: errors.New("connection refused")}
	a, _ := newTestAdapter(g)

	_, err := a.Open(context.Background(), openRequest(), Continuations{})
	assert.ErrorIs(t, err, ErrSessionCreation)

	_, ok := a.Active("wizard:1")
	assert.False(t, ok)
}

func TestComplete_RunsOnVerifiedOnce(t *testing.T) {
	g := &fakeGateway{}
	a, m := newTestAdapter(g)

	calls := 0
	s, err := a.Open(context.Background(), openRequest(), Continuations{
		OnVerified: func(_ context.Context, c domain.PaymentConfirmation) error {
			calls++
			assert.Equal(t, "pay_1", c.PaymentID)
			return nil
		},
		OnAbandoned: func() { t.Fatal("must not be abandoned") },
	})
	require.NoError(t, err)

	conf := domain.PaymentConfirmation{OrderID: s.OrderID(), PaymentID: "pay_1", Signature: "sig"}
	_, err = a.Complete(context.Background(), conf)
	require.NoError(t, err)

	state, err := s.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateVerified, state)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, m.count(metrics.PaymentVerified))

	// Повторное подтверждение того же заказа не выполняет продолжение снова
	_, err = a.Complete(context.Background(), conf)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 1, calls)
}

func TestComplete_VerificationFailure(t *testing.T) {
	g := &fakeGateway{verifyErr: errors.New("signature mismatch")}
	a, m := newTestAdapter(g)

	s, err := a.Open(context.Background(), openRequest(), Continuations{
		OnVerified: func(context.Context, domain.PaymentConfirmation) error {
			t.Fatal("must not be called")
			return nil
		},
	})
	require.NoError(t, err)

	_, err = a.Complete(context.Background(), domain.PaymentConfirmation{OrderID: s.OrderID()})
	assert.ErrorIs(t, err, ErrVerificationFailed)

	state, outcomeErr := s.Outcome()
	assert.Equal(t, StateFailed, state)
	assert.ErrorIs(t, outcomeErr, ErrVerificationFailed)
	assert.Equal(t, 1, m.count(metrics.PaymentFailed))
}

func TestComplete_ContinuationErrorIsReturned(t *testing.T) {
	a, _ := newTestAdapter(&fakeGateway{})

	s, err := a.Open(context.Background(), openRequest(), Continuations{
		OnVerified: func(context.Context, domain.PaymentConfirmation) error {
			return ErrReconciliationRequired
		},
	})
	require.NoError(t, err)

	_, err = a.Complete(context.Background(), domain.PaymentConfirmation{OrderID: s.OrderID()})
	assert.ErrorIs(t, err, ErrReconciliationRequired)

	state, _ := s.Outcome()
	assert.Equal(t, StateVerified, state)
}

func TestDismiss_ThenReopenGetsNewOrder(t *testing.T) {
	g := &fakeGateway{}
	a, m := newTestAdapter(g)

	abandoned := 0
	verified := 0
	cont := Continuations{
		OnVerified: func(context.Context, domain.PaymentConfirmation) error {
			verified++
			return nil
		},
		OnAbandoned: func() { abandoned++ },
	}

	first, err := a.Open(context.Background(), openRequest(), cont)
	require.NoError(t, err)
	require.NoError(t, a.Dismiss(first.OrderID()))

	state, outcomeErr := first.Outcome()
	assert.Equal(t, StateAbandoned, state)
	assert.True(t, IsAbandoned(outcomeErr))
	assert.Equal(t, 1, abandoned)
	assert.Zero(t, verified)
	assert.Equal(t, 1, m.count(metrics.PaymentAbandoned))

	second, err := a.Open(context.Background(), openRequest(), cont)
	require.NoError(t, err)
	assert.NotEqual(t, first.OrderID(), second.OrderID())

	// Старый заказ больше не может быть подтвержден
	_, err = a.Complete(context.Background(), domain.PaymentConfirmation{OrderID: first.OrderID()})
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Zero(t, verified)
}

func TestOpen_AbandonsPreviousSession(t *testing.T) {
	a, _ := newTestAdapter(&fakeGateway{})

	abandoned := make(chan struct{}, 1)
	first, err := a.Open(context.Background(), openRequest(), Continuations{
		OnAbandoned: func() { abandoned <- struct{}{} },
	})
	require.NoError(t, err)

	second, err := a.Open(context.Background(), openRequest(), Continuations{})
	require.NoError(t, err)

	select {
	case <-first.Done():
	case <-time.After(time.Second):
		t.Fatal("previous session was not finished")
	}
	<-abandoned

	active, ok := a.Active("wizard:1")
	require.True(t, ok)
	assert.Equal(t, second.OrderID(), active.OrderID())
}

func TestOpen_BlockedWhileVerifying(t *testing.T) {
	g := &fakeGateway{verifyHit: make(chan struct{}), release: make(chan struct{})}
	a, _ := newTestAdapter(g)

	s, err := a.Open(context.Background(), openRequest(), Continuations{})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := a.Complete(context.Background(), domain.PaymentConfirmation{OrderID: s.OrderID()})
		done <- err
	}()
	<-g.verifyHit

	_, err = a.Open(context.Background(), openRequest(), Continuations{})
	assert.ErrorIs(t, err, ErrPaymentInFlight)
	assert.ErrorIs(t, a.Dismiss(s.OrderID()), ErrPaymentInFlight)

	close(g.release)
	require.NoError(t, <-done)
}

func TestComplete_NoTimeoutOnOpenSession(t *testing.T) {
	g := &fakeGateway{}
	a, m := newTestAdapter(g)
	now := time.Now()
	a.now = func() time.Time { return now }

	var verified []string
	abandoned := false
	s, err := a.Open(context.Background(), openRequest(), Continuations{
		OnVerified: func(_ context.Context, c domain.PaymentConfirmation) error {
			verified = append(verified, c.PaymentID)
			return nil
		},
		OnAbandoned: func() { abandoned = true },
	})
	require.NoError(t, err)

	// пользователь платит спустя сутки
	now = now.Add(24 * time.Hour)
	_, ok := a.Active("wizard:1")
	require.True(t, ok)

	_, err = a.Complete(context.Background(), domain.PaymentConfirmation{OrderID: s.OrderID(), PaymentID: "pay_late"})
	require.NoError(t, err)

	assert.Equal(t, []string{"pay_late"}, verified)
	assert.False(t, abandoned)
	assert.Equal(t, 1, m.count(metrics.PaymentVerified))
	assert.Zero(t, m.count(metrics.PaymentAbandoned))
	state, _ := s.Outcome()
	assert.Equal(t, StateVerified, state)
}
