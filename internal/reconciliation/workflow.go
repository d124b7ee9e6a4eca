package reconciliation

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
)

// DefaultTaskQueue очередь воркера сверки
const DefaultTaskQueue = "smc-eventbooking-reconciliation"

// Workflow повторяет запись оплаченного бронирования, пока она не удастся.
// Если повторы исчерпаны или ошибка постоянная, оператор получает уведомление
func Workflow(ctx workflow.Context, req Request) (*Result, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Reconciliation started", "orderID", req.OrderID, "kind", req.Kind)

	persistCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        5 * time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        10 * time.Minute,
			MaximumAttempts:        30,
			NonRetryableErrorTypes: []string{permanentErrorType},
		},
	})
	notifyCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    5,
		},
	})

	var a *Activities
	var booking *domain.Booking

	err := workflow.ExecuteActivity(persistCtx, a.Persist, req).Get(ctx, &booking)
	if err != nil {
		logger.Error("Reconciliation failed", "orderID", req.OrderID, "error", err)
		if alertErr := workflow.ExecuteActivity(notifyCtx, a.AlertOperator, req, err.Error()).Get(ctx, nil); alertErr != nil {
			logger.Error("Operator alert failed", "orderID", req.OrderID, "error", alertErr)
		}
		return nil, err
	}

	if err := workflow.ExecuteActivity(notifyCtx, a.NotifyRecorded, req, booking).Get(ctx, nil); err != nil {
		logger.Warn("Notifications after reconciliation failed", "orderID", req.OrderID, "error", err)
	}

	logger.Info("Reconciliation completed", "orderID", req.OrderID, "bookingID", booking.ID)
	return &Result{BookingID: booking.ID}, nil
}
