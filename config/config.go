package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration parameters read from environment variables.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`

	HTTPPort string `envconfig:"HTTP_PORT" default:"8000"`

	// PublicBaseURL is prepended to stored attachment keys when building
	// the absolute pdf_url exposed to clients. Empty falls back to the
	// bucket endpoint.
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL"`

	APISecretKey string `envconfig:"API_SECRET_KEY"`

	// arXiv API access for the scraper.
	ArxivBaseURL    string  `envconfig:"ARXIV_BASE_URL" default:"http://export.arxiv.org/api/query"`
	ArxivPageSize   int     `envconfig:"ARXIV_PAGE_SIZE" default:"100"`
	ArxivMaxResults int     `envconfig:"ARXIV_MAX_RESULTS" default:"300"`
	ArxivRateLimit  float64 `envconfig:"ARXIV_RATE_LIMIT" default:"0.33"`

	// Scheduled scrape-and-import job. Empty disables the cron entry.
	CronSchedule   string `envconfig:"CRON_SCHEDULE" default:""`
	ScrapeCategory string `envconfig:"SCRAPE_CATEGORY" default:"cs.SE"`
	ScrapeEvent    string `envconfig:"SCRAPE_EVENT" default:""`

	// Notification mail. Empty SMTPHost disables sending.
	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser     string `envconfig:"SMTP_USER"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	FromEmail    string `envconfig:"FROM_EMAIL" default:"no-reply@example.com"`

	S3Key    string `envconfig:"S3_KEY" required:"true"`
	S3Secret string `envconfig:"S3_SECRET" required:"true"`
	S3URL    string `envconfig:"S3_URL" required:"true"`
	S3Region string `envconfig:"S3_REGION" required:"true"`
	S3Bucket string `envconfig:"S3_BUCKET" required:"true"`
}

// DSN returns the data source name for the PostgreSQL connection.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// Load reads the configuration from the environment, honoring a .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
