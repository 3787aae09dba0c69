package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full service configuration, loaded from config.yaml with
// environment variable overrides (TUTORDESK_SECTION_KEY).
type Config struct {
	Telegram Telegram `mapstructure:"telegram"`
	Database Database `mapstructure:"database"`
	Drive    Drive    `mapstructure:"drive"`
	LLM      LLM      `mapstructure:"llm"`
	Report   Report   `mapstructure:"report"`
	Docgen   Docgen   `mapstructure:"docgen"`
	Render   Render   `mapstructure:"render"`
	Schedule Schedule `mapstructure:"schedule"`
	Logging  Logging  `mapstructure:"logging"`
}

type Telegram struct {
	Token string `mapstructure:"token"`
}

type Database struct {
	// Driver selects "postgres" or "sqlite" (sqlite is for local runs).
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type Drive struct {
	Endpoint  string        `mapstructure:"endpoint"`
	AccessKey string        `mapstructure:"access_key"`
	SecretKey string        `mapstructure:"secret_key"`
	Bucket    string        `mapstructure:"bucket"`
	Region    string        `mapstructure:"region"`
	UseSSL    bool          `mapstructure:"use_ssl"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type LLM struct {
	// Provider selects which backend to use.
	// Values: "openai", "openrouter", "anthropic", "gemini", "mock"
	Provider string `mapstructure:"provider"`

	OpenAI     OpenAI     `mapstructure:"openai"`
	OpenRouter OpenRouter `mapstructure:"openrouter"`
	Anthropic  Anthropic  `mapstructure:"anthropic"`
	Gemini     Gemini     `mapstructure:"gemini"`

	Retry Retry `mapstructure:"retry"`

	// Timeout bounds each generation attempt inside the retry loop.
	Timeout time.Duration `mapstructure:"timeout"`
}

type OpenAI struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type OpenRouter struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type Anthropic struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type Gemini struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type Retry struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	InitialWait time.Duration `mapstructure:"initial_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait"`
	Multiplier  float64       `mapstructure:"multiplier"`
}

type Report struct {
	// TokenBudget is the estimated token size past which the artifact is
	// fully compacted.
	TokenBudget int `mapstructure:"token_budget"`
	// SummaryEvery inserts a progress summary after every Nth section.
	SummaryEvery int `mapstructure:"summary_every"`
}

type Docgen struct {
	// MonthlyCap is the soft per-student generation cap. Zero disables it.
	MonthlyCap int `mapstructure:"monthly_cap"`
}

type Render struct {
	// LatexBin is the pdflatex binary used to compile tex documents.
	LatexBin string `mapstructure:"latex_bin"`
	// FontPath points to a Unicode TTF for plain-text PDFs. The repo does
	// not ship one; deployments with non-Latin output (ru) must install a
	// font such as DejaVu Sans at this path. When the file is absent the
	// renderer warns and falls back to the built-in Latin font.
	FontPath string        `mapstructure:"font_path"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type Schedule struct {
	Interval       time.Duration `mapstructure:"interval"`
	ReminderWindow time.Duration `mapstructure:"reminder_window"`
}

type Logging struct {
	Level   string `mapstructure:"level"`
	Pretty  bool   `mapstructure:"pretty"`
	NoColor bool   `mapstructure:"no_color"`
}

// Load reads config.yaml (./config or cwd) and applies env overrides.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	viper.SetEnvPrefix("tutordesk")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("database.driver", "postgres")
	viper.SetDefault("database.dsn", "host=localhost user=tutordesk password=tutordesk dbname=tutordesk sslmode=disable")

	viper.SetDefault("drive.endpoint", "minio:9000")
	viper.SetDefault("drive.access_key", "minioadmin")
	viper.SetDefault("drive.secret_key", "minioadmin")
	viper.SetDefault("drive.bucket", "tutordesk")
	viper.SetDefault("drive.region", "us-east-1")
	viper.SetDefault("drive.use_ssl", false)
	viper.SetDefault("drive.timeout", "30s")

	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.openai.model", "gpt-4o-mini")
	viper.SetDefault("llm.openrouter.model", "openai/gpt-4o-mini")
	viper.SetDefault("llm.anthropic.model", "claude-haiku")
	viper.SetDefault("llm.gemini.model", "gemini-flash")
	viper.SetDefault("llm.retry.max_attempts", 3)
	viper.SetDefault("llm.retry.initial_wait", "1s")
	viper.SetDefault("llm.retry.max_wait", "10s")
	viper.SetDefault("llm.retry.multiplier", 2.0)
	viper.SetDefault("llm.timeout", "60s")

	viper.SetDefault("report.token_budget", 7000)
	viper.SetDefault("report.summary_every", 5)

	viper.SetDefault("docgen.monthly_cap", 50)

	viper.SetDefault("render.latex_bin", "pdflatex")
	viper.SetDefault("render.font_path", "assets/fonts/DejaVuSans.ttf")
	viper.SetDefault("render.timeout", "60s")

	viper.SetDefault("schedule.interval", "5m")
	viper.SetDefault("schedule.reminder_window", "1h")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.pretty", false)
	viper.SetDefault("logging.no_color", false)
}
