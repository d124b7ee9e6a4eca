package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/m04kA/SMC-EventBooking/internal/config"
	"github.com/m04kA/SMC-EventBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-EventBooking/pkg/metrics"
	"github.com/m04kA/SMC-EventBooking/pkg/simpletxmanager"
	"github.com/m04kA/SMC-EventBooking/pkg/txmanager"
)

const pingTimeout = 5 * time.Second

// TxManager менеджер транзакций, общий для ledger и сервиса бронирований
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Database подключение к PostgreSQL и выбранная обвязка (с метриками или без)
type Database struct {
	Raw       *sql.DB
	Executor  dbmetrics.DBExecutor
	TxManager TxManager

	stopCh chan struct{}
}

// OpenDatabase открывает пул соединений и проверяет доступность базы.
// При m != nil запросы и пул соединений попадают в метрики
func OpenDatabase(cfg config.DatabaseConfig, m *metrics.Metrics) (*Database, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.DBName, err)
	}

	d := &Database{Raw: db}
	if m != nil {
		d.stopCh = make(chan struct{})
		wrapped := dbmetrics.WrapWithDefault(db, m, d.stopCh)
		d.Executor = wrapped
		d.TxManager = txmanager.NewTransactionManager(wrapped)
	} else {
		d.Executor = db
		d.TxManager = simpletxmanager.NewTransactionManager(db)
	}
	return d, nil
}

// Close останавливает сбор статистики пула и закрывает соединения
func (d *Database) Close() error {
	if d.stopCh != nil {
		close(d.stopCh)
		d.stopCh = nil
	}
	return d.Raw.Close()
}
