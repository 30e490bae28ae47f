package config

import "github.com/caarlos0/env/v6"

// Config holds runtime settings sourced from the environment. Analysis
// parameters live in AnalysisConfig and are passed explicitly into each
// pipeline call instead.
type Config struct {
	Server struct {
		Port string `env:"SERVER_PORT" envDefault:"5250"`
	}

	Database struct {
		Path string `env:"DATABASE_PATH" envDefault:"database/flipfinder.db"`
	}

	Pipeline struct {
		// Number of concurrent property analyzers
		WorkerCount int `env:"PIPELINE_WORKER_COUNT" envDefault:"4"`

		// Maximum number of retries for failed deal batches
		MaxRetries int `env:"PIPELINE_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"PIPELINE_RETRY_DELAY" envDefault:"5"`

		// Buffer size for the intake and persistence queues
		QueueSize int `env:"PIPELINE_QUEUE_SIZE" envDefault:"16"`
	}

	// Optional path to a YAML file overriding the default analysis parameters
	AnalysisConfigPath string `env:"ANALYSIS_CONFIG_PATH"`

	MLS struct {
		BaseURL      string `env:"MLS_API_URL" envDefault:"https://api.brightmls.com"`
		ClientID     string `env:"MLS_CLIENT_ID"`
		ClientSecret string `env:"MLS_CLIENT_SECRET"`
	}

	Redfin struct {
		BaseURL string `env:"REDFIN_BASE_URL" envDefault:"https://www.redfin.com"`
	}

	SMTP SMTPConfig
}

// SMTPConfig configures outbound deal alert email. An empty Host
// disables notifications.
type SMTPConfig struct {
	Host       string   `env:"SMTP_HOST"`
	Port       int      `env:"SMTP_PORT" envDefault:"587"`
	Username   string   `env:"SMTP_USERNAME"`
	Password   string   `env:"SMTP_PASSWORD"`
	From       string   `env:"NOTIFY_FROM"`
	Recipients []string `env:"NOTIFY_RECIPIENTS" envSeparator:","`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
