package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

var (
	// ErrInvalidConfig возвращается, когда конфигурация не прошла проверку
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config конфигурация сервиса.
// Значения читаются из config.toml, затем переопределяются переменными окружения SMC_*
type Config struct {
	Server              ServerConfig   `toml:"server"`
	Database            DatabaseConfig `toml:"database"`
	Logs                LogsConfig     `toml:"logs"`
	Metrics             MetricsConfig  `toml:"metrics"`
	Auth                AuthConfig     `toml:"auth"`
	UserService         ClientConfig   `toml:"user_service" envPrefix:"SMC_USER_SERVICE_"`
	FormService         ClientConfig   `toml:"form_service" envPrefix:"SMC_FORM_SERVICE_"`
	CatalogService      ClientConfig   `toml:"catalog_service" envPrefix:"SMC_CATALOG_SERVICE_"`
	NotificationService ClientConfig   `toml:"notification_service" envPrefix:"SMC_NOTIFICATION_SERVICE_"`
	PaymentGateway      GatewayConfig  `toml:"payment_gateway"`
	Wizard              WizardConfig   `toml:"wizard"`
	Notifications       NotifyConfig   `toml:"notifications"`
	Temporal            TemporalConfig `toml:"temporal"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port" env:"SMC_HTTP_PORT"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string `toml:"host" env:"SMC_DB_HOST"`
	Port            int    `toml:"port" env:"SMC_DB_PORT"`
	User            string `toml:"user" env:"SMC_DB_USER"`
	Password        string `toml:"password" env:"SMC_DB_PASSWORD"`
	DBName          string `toml:"dbname" env:"SMC_DB_NAME"`
	SSLMode         string `toml:"sslmode" env:"SMC_DB_SSLMODE"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

type LogsConfig struct {
	File  string `toml:"file" env:"SMC_LOG_FILE"`
	Level string `toml:"level" env:"SMC_LOG_LEVEL"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled" env:"SMC_METRICS_ENABLED"`
	ServiceName string `toml:"service_name"`
	Path        string `toml:"path"`
}

type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret" env:"SMC_JWT_SECRET"`
}

// ClientConfig адрес и таймаут (в секундах) внешнего сервиса
type ClientConfig struct {
	URL     string `toml:"url" env:"URL"`
	Timeout int    `toml:"timeout"`
}

// TimeoutDuration таймаут как time.Duration
func (c ClientConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

type GatewayConfig struct {
	URL            string `toml:"url" env:"SMC_PAYMENT_GATEWAY_URL"`
	Timeout        int    `toml:"timeout"`
	APIKey         string `toml:"api_key" env:"SMC_PAYMENT_GATEWAY_API_KEY"`
	PublishableKey string `toml:"publishable_key" env:"SMC_PAYMENT_GATEWAY_KEY"`
}

type WizardConfig struct {
	TTL           int `toml:"ttl"`            // секунды без обращений до удаления мастера
	SweepInterval int `toml:"sweep_interval"` // секунды
	RedirectDelay int `toml:"redirect_delay"` // миллисекунды до сброса после бронирования
}

type NotifyConfig struct {
	AdminUserID int64 `toml:"admin_user_id" env:"SMC_ADMIN_USER_ID"`
}

type TemporalConfig struct {
	HostPort  string `toml:"host_port" env:"SMC_TEMPORAL_HOST_PORT"`
	Namespace string `toml:"namespace" env:"SMC_TEMPORAL_NAMESPACE"`
	TaskQueue string `toml:"task_queue" env:"SMC_TEMPORAL_TASK_QUEUE"`
}

// Load читает конфигурацию из файла и применяет переменные окружения
func Load(path string) (*Config, error) {
	cfg := defaults()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	var errs []error

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("server.http_port out of range: %d", c.Server.HTTPPort))
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		errs = append(errs, errors.New("database.host and database.dbname are required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}

	for name, client := range map[string]ClientConfig{
		"user_service":         c.UserService,
		"form_service":         c.FormService,
		"catalog_service":      c.CatalogService,
		"notification_service": c.NotificationService,
	} {
		if client.URL == "" {
			errs = append(errs, fmt.Errorf("%s.url is required", name))
		}
		if client.Timeout <= 0 {
			errs = append(errs, fmt.Errorf("%s.timeout must be positive", name))
		}
	}

	if c.PaymentGateway.URL == "" || c.PaymentGateway.PublishableKey == "" {
		errs = append(errs, errors.New("payment_gateway.url and payment_gateway.publishable_key are required"))
	}
	if c.Notifications.AdminUserID <= 0 {
		errs = append(errs, errors.New("notifications.admin_user_id is required"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// RedirectDelayDuration задержка перед сбросом мастера после бронирования
func (w WizardConfig) RedirectDelayDuration() time.Duration {
	return time.Duration(w.RedirectDelay) * time.Millisecond
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    30,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled:     true,
			ServiceName: "smc_eventbooking",
			Path:        "/metrics",
		},
		UserService:         ClientConfig{Timeout: 5},
		FormService:         ClientConfig{Timeout: 5},
		CatalogService:      ClientConfig{Timeout: 5},
		NotificationService: ClientConfig{Timeout: 5},
		PaymentGateway: GatewayConfig{
			Timeout: 10,
		},
		Wizard: WizardConfig{
			TTL:           7200,
			SweepInterval: 300,
			RedirectDelay: 3000,
		},
		Temporal: TemporalConfig{
			HostPort:  "localhost:7233",
			Namespace: "default",
			TaskQueue: "smc-eventbooking-reconciliation",
		},
	}
}
