package booking

import (
	"github.com/m04kA/SMC-EventBooking/pkg/dbmetrics"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

// Виды истории статусов
const (
	HistoryBooking    = "booking"
	HistoryAssignment = "assignment"
)

// scanner общий интерфейс *sql.Row и *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}
