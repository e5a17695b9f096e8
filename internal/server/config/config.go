// Package config собирает настройки сервера из .env, переменных окружения и флагов.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Драйверы хранилища
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Хранилища счетчиков rate limit
const (
	RateLimitMemory = "memory"
	RateLimitBolt   = "bolt"
)

// MailConfig настройки SMTP. Пустой Host включает вывод писем в лог.
type MailConfig struct {
	Host     string `env:"HOST"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM"`
	FromName string `env:"FROM_NAME" envDefault:"Contacts Systems"`
	Port     int    `env:"PORT" envDefault:"587"`
	Workers  int    `env:"WORKERS" envDefault:"2"`
	Queue    int    `env:"QUEUE" envDefault:"100"`
}

// S3Config настройки объектного хранилища аватаров. Пустой Bucket включает локальный каталог.
type S3Config struct {
	Endpoint  string `env:"ENDPOINT"`
	Region    string `env:"REGION" envDefault:"us-east-1"`
	Bucket    string `env:"BUCKET"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	PublicURL string `env:"PUBLIC_URL"`
}

// Config настройки сервера
type Config struct {
	Mail            MailConfig    `envPrefix:"MAIL_"`
	S3              S3Config      `envPrefix:"S3_"`
	Addr            string        `env:"SERVER_ADDRESS" envDefault:":8000"`
	Driver          string        `env:"DB_DRIVER" envDefault:"sqlite"`
	DatabaseDSN     string        `env:"DATABASE_DSN" envDefault:"contactbook.db"`
	SecretKey       string        `env:"SECRET_KEY"`
	BaseURL         string        `env:"BASE_URL" envDefault:"http://localhost:8000"`
	UploadDir       string        `env:"UPLOAD_DIR" envDefault:"uploads"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"text"`
	RateLimitStore  string        `env:"RATE_LIMIT_STORE" envDefault:"memory"`
	RateLimitPath   string        `env:"RATE_LIMIT_PATH" envDefault:"ratelimit.db"`
	AccessTTL       time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTTL      time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`
	ConfirmationTTL time.Duration `env:"CONFIRMATION_TOKEN_TTL" envDefault:"168h"`
	ResetTTL        time.Duration `env:"RESET_TOKEN_TTL" envDefault:"1h"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	ShowVersion     bool

	// TrustProxyHeaders брать IP клиента из X-Forwarded-For/X-Real-IP
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" envDefault:"false"`
}

// Load читает настройки в порядке возрастания приоритета:
// envFile (если существует), переменные окружения, флаги args.
// Переменные окружения процесса не перезаписываются значениями из envFile.
func Load(envFile string, args []string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.parseFlags(args); err != nil {
		return nil, err
	}

	if cfg.ShowVersion {
		return cfg, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseFlags переопределяет настройки флагами командной строки
//
//	-a string       адрес HTTP сервера (например, ":8000")
//	-d string       DSN базы данных (путь к файлу для sqlite)
//	-driver string  sqlite | postgres
//	-version        вывести версию и выйти
func (c *Config) parseFlags(args []string) error {
	flags := flag.NewFlagSet("server", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	flags.StringVar(&c.Addr, "a", c.Addr, "address and port to run server")
	flags.StringVar(&c.DatabaseDSN, "d", c.DatabaseDSN, "database DSN")
	flags.StringVar(&c.Driver, "driver", c.Driver, "database driver: sqlite or postgres")
	flags.BoolVar(&c.ShowVersion, "version", false, "show version information")

	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}

// Validate проверяет обязательные и взаимоисключающие настройки
func (c *Config) Validate() error {
	var errs []error

	if c.SecretKey == "" {
		errs = append(errs, errors.New("SECRET_KEY is required"))
	}
	if c.Driver != DriverSQLite && c.Driver != DriverPostgres {
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.Driver))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database DSN is required"))
	}
	if c.RateLimitStore != RateLimitMemory && c.RateLimitStore != RateLimitBolt {
		errs = append(errs, fmt.Errorf("unknown rate limit store %q", c.RateLimitStore))
	}
	if c.Mail.Host != "" && c.Mail.From == "" {
		errs = append(errs, errors.New("MAIL_FROM is required when MAIL_HOST is set"))
	}
	if c.Mail.Workers < 1 || c.Mail.Queue < 1 {
		errs = append(errs, errors.New("MAIL_WORKERS and MAIL_QUEUE must be positive"))
	}
	for name, d := range map[string]time.Duration{
		"ACCESS_TOKEN_TTL":       c.AccessTTL,
		"REFRESH_TOKEN_TTL":      c.RefreshTTL,
		"CONFIRMATION_TOKEN_TTL": c.ConfirmationTTL,
		"RESET_TOKEN_TTL":        c.ResetTTL,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}

	return errors.Join(errs...)
}
