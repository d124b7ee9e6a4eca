package booking_wizard

import (
	"context"

	wizardFlow "github.com/m04kA/SMC-EventBooking/internal/usecase/wizard_flow"
)

type WizardUseCase interface {
	Start(ctx context.Context, req *wizardFlow.StartRequest) (*wizardFlow.View, error)
	Get(ctx context.Context, wizardID string, userID int64) (*wizardFlow.View, error)
	Discard(ctx context.Context, wizardID string, userID int64) error
	SetFields(ctx context.Context, req *wizardFlow.FieldsRequest) (*wizardFlow.View, error)
	Next(ctx context.Context, wizardID string, userID int64) (*wizardFlow.View, error)
	Previous(ctx context.Context, wizardID string, userID int64) (*wizardFlow.View, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
