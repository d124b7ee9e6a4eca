package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/testsuite"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
	"github.com/m04kA/SMC-EventBooking/internal/ledger"
)

type flakyRecorder struct {
	mu       sync.Mutex
	failures int
	err      error
	attempts int
}

func (r *flakyRecorder) RecordBooking(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts++
	if r.attempts <= r.failures {
		return nil, r.err
	}
	cp := *b
	cp.ID = 5
	return &cp, nil
}

func (r *flakyRecorder) RecordInstallment(_ context.Context, bookingID int64, inv domain.Invoice) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts++
	if r.attempts <= r.failures {
		return nil, r.err
	}
	inv.BookingID = bookingID
	return &domain.Booking{ID: bookingID, Invoices: []domain.Invoice{inv}}, nil
}

type recordingNotifier struct {
	mu          sync.Mutex
	created     []int64
	installment []string
	alerts      []string
}

func (n *recordingNotifier) BookingCreated(_ context.Context, b *domain.Booking) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, b.ID)
	return nil
}

func (n *recordingNotifier) InstallmentPaid(_ context.Context, _ *domain.Booking, inv domain.Invoice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.installment = append(n.installment, inv.GatewayOrderID)
	return nil
}

func (n *recordingNotifier) PaymentNotRecorded(_ context.Context, _ int64, orderID, _ string, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, orderID)
	return nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type WorkflowSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite

	env      *testsuite.TestWorkflowEnvironment
	recorder *flakyRecorder
	notifier *recordingNotifier
}

func (s *WorkflowSuite) SetupTest() {
	s.env = s.NewTestWorkflowEnvironment()
	s.recorder = &flakyRecorder{}
	s.notifier = &recordingNotifier{}
	Register(s.env, NewActivities(s.recorder, s.notifier, nopLogger{}))
}

func (s *WorkflowSuite) AfterTest(_, _ string) {
	s.env.AssertExpectations(s.T())
}

func bookingRequest() Request {
	return Request{
		Kind:      KindBooking,
		OrderID:   "order_1",
		PaymentID: "pay_1",
		UserID:    42,
		Booking:   &domain.Booking{UserID: 42, GatewayOrderID: "order_1", TotalAmount: 10000, PaidAmount: 3000, DueAmount: 7000},
	}
}

func (s *WorkflowSuite) TestBookingRecordedAfterTransientFailures() {
	s.recorder.failures = 2
	s.recorder.err = fmt.Errorf("%w: connection refused", ledger.ErrInternal)

	s.env.ExecuteWorkflow(Workflow, bookingRequest())

	require.True(s.T(), s.env.IsWorkflowCompleted())
	require.NoError(s.T(), s.env.GetWorkflowError())

	var result Result
	require.NoError(s.T(), s.env.GetWorkflowResult(&result))
	assert.Equal(s.T(), int64(5), result.BookingID)
	assert.Equal(s.T(), 3, s.recorder.attempts)
	assert.Equal(s.T(), []int64{5}, s.notifier.created)
	assert.Empty(s.T(), s.notifier.alerts)
}

func (s *WorkflowSuite) TestPermanentErrorAlertsOperatorWithoutRetry() {
	s.recorder.failures = 100
	s.recorder.err = ledger.ErrBookingCancelled

	s.env.ExecuteWorkflow(Workflow, Request{
		Kind:      KindInstallment,
		OrderID:   "order_2",
		PaymentID: "pay_2",
		UserID:    42,
		BookingID: 5,
		Invoice:   domain.Invoice{InstallmentIndex: 2, PaidAmount: 4000, GatewayOrderID: "order_2"},
	})

	require.True(s.T(), s.env.IsWorkflowCompleted())
	assert.Error(s.T(), s.env.GetWorkflowError())
	assert.Equal(s.T(), 1, s.recorder.attempts)
	assert.Equal(s.T(), []string{"order_2"}, s.notifier.alerts)
}

func (s *WorkflowSuite) TestInstallmentNotifiesAboutRecordedInvoice() {
	s.env.ExecuteWorkflow(Workflow, Request{
		Kind:      KindInstallment,
		OrderID:   "order_3",
		PaymentID: "pay_3",
		UserID:    42,
		BookingID: 5,
		Invoice:   domain.Invoice{InstallmentIndex: 2, PaidAmount: 4000, GatewayOrderID: "order_3"},
	})

	require.True(s.T(), s.env.IsWorkflowCompleted())
	require.NoError(s.T(), s.env.GetWorkflowError())
	assert.Equal(s.T(), []string{"order_3"}, s.notifier.installment)
}

func (s *WorkflowSuite) TestUnknownKindIsPermanent() {
	s.env.ExecuteWorkflow(Workflow, Request{Kind: "refund", OrderID: "order_4"})

	require.True(s.T(), s.env.IsWorkflowCompleted())
	assert.Error(s.T(), s.env.GetWorkflowError())
	assert.Equal(s.T(), 0, s.recorder.attempts)
	assert.Equal(s.T(), []string{"order_4"}, s.notifier.alerts)
}

func (s *WorkflowSuite) TestOrphanPaymentAlertsOperator() {
	s.env.ExecuteWorkflow(Workflow, Request{
		Kind:      KindOrphanPayment,
		OrderID:   "order_6",
		PaymentID: "pay_6",
		UserID:    42,
		Amount:    3000,
		Wizard:    &domain.WizardState{ID: "wiz-1", UserID: 42},
		Reason:    "wizard: not found",
	})

	require.True(s.T(), s.env.IsWorkflowCompleted())
	assert.Error(s.T(), s.env.GetWorkflowError())
	assert.Equal(s.T(), 0, s.recorder.attempts)
	assert.Equal(s.T(), []string{"order_6"}, s.notifier.alerts)
}

func TestWorkflowSuite(t *testing.T) {
	suite.Run(t, new(WorkflowSuite))
}

func TestWorkflowID(t *testing.T) {
	assert.Equal(t, "reconcile-order_1", WorkflowID("order_1"))
}

func TestPersist_MissingBookingPayload(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()
	acts := NewActivities(&flakyRecorder{}, &recordingNotifier{}, nopLogger{})
	env.RegisterActivity(acts)

	_, err := env.ExecuteActivity(acts.Persist, Request{Kind: KindBooking, OrderID: "order_5"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ledger.ErrInternal))
}
