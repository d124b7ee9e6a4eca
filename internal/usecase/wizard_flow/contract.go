package wizard_flow

import (
	"context"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
)

// CatalogClient интерфейс клиента каталога пакетов
type CatalogClient interface {
	GetPackage(ctx context.Context, packageID int64) (*domain.PackageSnapshot, error)
}

// FormClient интерфейс клиента сервиса форм
type FormClient interface {
	GetEventForm(ctx context.Context, eventID int64) (*domain.FormDefinition, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
