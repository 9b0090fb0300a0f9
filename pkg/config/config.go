package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration.
// It is built once at startup and treated as read-only afterwards.
type Config struct {
	Server    ServerConfig
	Telegram  TelegramConfig
	Access    AccessConfig
	LLM       LLMConfig
	Speech    SpeechConfig
	Pipeline  PipelineConfig
	JWT       JWTConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string        `envconfig:"ENVIRONMENT" default:"development" validate:"oneof=development staging production test"`
	AllowedOrigins  []string      `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	MaxUploadBytes  int64         `envconfig:"MAX_UPLOAD_BYTES" default:"20971520" validate:"gt=0"`
}

// TelegramConfig holds bot configuration. The bot is started only when a
// token is present.
type TelegramConfig struct {
	BotToken    string `envconfig:"BOT_TOKEN"`
	PollTimeout int    `envconfig:"BOT_POLL_TIMEOUT" default:"60" validate:"gte=0"`
	Debug       bool   `envconfig:"BOT_DEBUG" default:"false"`
}

// AccessConfig holds the single-admin allow list
type AccessConfig struct {
	AdminID    int64 `envconfig:"ADMIN_ID" validate:"required_if=CheckAdmin true"`
	CheckAdmin bool  `envconfig:"CHECK_ADMIN" default:"false"`
}

// LLMConfig holds the chat completion endpoint used for extraction
type LLMConfig struct {
	APIKey           string        `envconfig:"LLM_API_KEY" validate:"required"`
	BaseURL          string        `envconfig:"LLM_BASE_URL" default:"https://api.openai.com/v1" validate:"url"`
	Model            string        `envconfig:"LLM_MODEL" default:"gpt-4o-mini" validate:"required"`
	Temperature      float32       `envconfig:"LLM_TEMPERATURE" default:"0" validate:"gte=0,lte=2"`
	MaxRetryElapsed  time.Duration `envconfig:"LLM_MAX_RETRY_ELAPSED" default:"20s"`
	SystemPromptPath string        `envconfig:"SYSTEM_PROMPT_PATH"`
	RecomputeTotal   bool          `envconfig:"RECOMPUTE_TOTAL" default:"true"`
}

// SpeechConfig holds speech recognition configuration
type SpeechConfig struct {
	Recognizer     string `envconfig:"RECOGNIZER" default:"whisper" validate:"oneof=whisper assemblyai"`
	Language       string `envconfig:"SPEECH_LANGUAGE" default:"ru" validate:"required"`
	AssemblyAIKey  string `envconfig:"ASSEMBLYAI_API_KEY" validate:"required_if=Recognizer assemblyai"`
	WhisperAPIKey  string `envconfig:"WHISPER_API_KEY"`
	WhisperBaseURL string `envconfig:"WHISPER_BASE_URL" default:"https://api.openai.com/v1" validate:"url"`
	WhisperModel   string `envconfig:"WHISPER_MODEL" default:"whisper-1"`
	FFmpegPath     string `envconfig:"FFMPEG_PATH" default:"ffmpeg"`
}

// PipelineConfig holds per-stage deadlines
type PipelineConfig struct {
	TranscribeTimeout time.Duration `envconfig:"TRANSCRIBE_TIMEOUT" default:"60s"`
	ExtractTimeout    time.Duration `envconfig:"EXTRACT_TIMEOUT" default:"90s"`
	ExcerptLength     int           `envconfig:"EXCERPT_LENGTH" default:"150" validate:"gt=0"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	AccessSecret string        `envconfig:"JWT_ACCESS_SECRET" default:"your-access-secret-change-in-production" validate:"min=16"`
	AccessExpiry time.Duration `envconfig:"JWT_ACCESS_EXPIRY" default:"720h"`
	Issuer       string        `envconfig:"JWT_ISSUER" default:"cyberon-reporter"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// RateLimitConfig bounds how many reports one user may request per window
type RateLimitConfig struct {
	Requests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"30" validate:"gte=0"`
	Window   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1h"`
}

// DatabaseConfig holds database configuration for run history
type DatabaseConfig struct {
	Enabled     bool   `envconfig:"DB_ENABLED" default:"false"`
	Host        string `envconfig:"DB_HOST" default:"localhost"`
	Port        string `envconfig:"DB_PORT" default:"5432"`
	User        string `envconfig:"DB_USER" default:"postgres"`
	Password    string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name        string `envconfig:"DB_NAME" default:"cyberon_reporter"`
	SSLMode     string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns    int    `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns    int    `envconfig:"DB_MIN_CONNS" default:"2"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`
}

// StorageConfig holds report archive configuration
type StorageConfig struct {
	Enabled         bool          `envconfig:"STORAGE_ENABLED" default:"false"`
	Endpoint        string        `envconfig:"STORAGE_ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string        `envconfig:"STORAGE_ACCESS_KEY" default:"minioadmin"`
	SecretAccessKey string        `envconfig:"STORAGE_SECRET_KEY" default:"minioadmin"`
	BucketName      string        `envconfig:"STORAGE_BUCKET" default:"cyberon-reports"`
	UseSSL          bool          `envconfig:"STORAGE_USE_SSL" default:"false"`
	Region          string        `envconfig:"STORAGE_REGION" default:"us-east-1"`
	PublicURL       string        `envconfig:"STORAGE_PUBLIC_URL"`
	URLExpiry       time.Duration `envconfig:"STORAGE_URL_EXPIRY" default:"24h"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"DEBUG" validate:"oneof=DEBUG INFO WARNING ERROR CRITICAL"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	config.applyFallbacks()

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// applyFallbacks fills keys that may come from legacy or shared variables
func (c *Config) applyFallbacks() {
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = os.Getenv("GIGA_CHAT_TOKEN")
	}
	if c.Speech.WhisperAPIKey == "" {
		c.Speech.WhisperAPIKey = c.LLM.APIKey
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// TelegramEnabled reports whether the bot transport should start
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != ""
}

// IsProduction reports whether the process runs in production
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// GetServerAddr returns the HTTP listen address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
