package reconciliation

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/client"
)

// Metrics счетчик запущенных сверок
type Metrics interface {
	RecordReconciliationStarted()
}

// Starter запускает Workflow сверки из HTTP-процесса
type Starter struct {
	client    client.Client
	taskQueue string
	metrics   Metrics
	logger    Logger
}

func NewStarter(c client.Client, taskQueue string, m Metrics, logger Logger) *Starter {
	if taskQueue == "" {
		taskQueue = DefaultTaskQueue
	}
	return &Starter{client: c, taskQueue: taskQueue, metrics: m, logger: logger}
}

// Start запускает сверку. Один заказ шлюза соответствует одному workflow
func (s *Starter) Start(ctx context.Context, req Request) error {
	opts := client.StartWorkflowOptions{
		ID:        WorkflowID(req.OrderID),
		TaskQueue: s.taskQueue,
	}

	run, err := s.client.ExecuteWorkflow(ctx, opts, Workflow, req)
	if err != nil {
		s.logger.Error("reconciliation: failed to start workflow for order %s: %v", req.OrderID, err)
		return fmt.Errorf("start reconciliation for order %s: %w", req.OrderID, err)
	}

	s.metrics.RecordReconciliationStarted()
	s.logger.Info("reconciliation: workflow %s started (run %s)", run.GetID(), run.GetRunID())
	return nil
}

// WorkflowID идентификатор workflow сверки заказа
func WorkflowID(orderID string) string {
	return "reconcile-" + orderID
}

// Registry воркер Temporal или тестовое окружение
type Registry interface {
	RegisterWorkflow(w interface{})
	RegisterActivity(a interface{})
}

// Register регистрирует workflow и activities в воркере
func Register(w Registry, activities *Activities) {
	w.RegisterWorkflow(Workflow)
	w.RegisterActivity(activities)
}
