package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"rtm"`

	// Name der Tabelle, in der die Updates landen.
	UpdatesTable string `envconfig:"UPDATES_TABLE" default:"news_updates"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"4242"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`

	CronSchedule string `envconfig:"CRON_SCHEDULE" default:"0 6 * * *"`

	// Quell-URLs der drei FDA-Tabellen.
	WithdrawalsURL string `envconfig:"WITHDRAWALS_URL" default:"https://www.fda.gov/drugs/resources-information-approved-drugs/withdrawn-cancer-accelerated-approvals"`
	AcceleratedURL string `envconfig:"ACCELERATED_URL" default:"https://www.fda.gov/drugs/resources-information-approved-drugs/ongoing-cancer-accelerated-approvals"`
	ApprovalsURL   string `envconfig:"APPROVALS_URL" default:"https://www.fda.gov/drugs/resources-information-approved-drugs/oncology-cancerhematologic-malignancies-approval-notifications"`

	// Basis für relative Links der Accelerated-Approvals-Tabelle.
	SiteRoot string `envconfig:"SITE_ROOT" default:"https://www.fda.gov"`

	FetchTimeoutSeconds int `envconfig:"FETCH_TIMEOUT_SECONDS" default:"15"`

	// Nur Records der letzten N Tage werden übernommen. Groß genug gesetzt
	// ist der Filter praktisch deaktiviert.
	LookbackDays int `envconfig:"LOOKBACK_DAYS" default:"30"`

	// Quellen-Konfiguration
	EnabledSources string `envconfig:"ENABLED_SOURCES" default:"withdrawals,accelerated,approvals"`

	// SES-Benachrichtigung; ohne Empfänger bleibt sie deaktiviert.
	SESRegion       string `envconfig:"SES_REGION" default:"ap-south-1"`
	NotifySender    string `envconfig:"NOTIFY_SENDER"`
	NotifyRecipient string `envconfig:"NOTIFY_RECIPIENT"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// FetchTimeout gibt das Timeout für einen einzelnen Quellen-Abruf zurück.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
