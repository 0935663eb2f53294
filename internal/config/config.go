package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DBConfig holds database configuration for the user store.
type DBConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Config holds all configuration for the application
type Config struct {
	TelegramBotToken      string
	StabilityAPIKey       string
	AllowedUsers          []string
	AllowedAdmins         []string
	OutputDir             string
	WatermarkPath         string
	WatermarkTransparency int
	GalleryOutput         string
	GallerySchedule       string
	GenerationTimeout     time.Duration
	DB                    DBConfig
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if present; a missing file is fine when the
	// environment is provided by the process manager.
	_ = godotenv.Load()

	config := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		StabilityAPIKey:  os.Getenv("STABILITY_API_KEY"),
		AllowedUsers:     splitIDList(os.Getenv("USER_ID")),
		AllowedAdmins:    splitIDList(os.Getenv("ADMIN_ID")),
		WatermarkPath:    os.Getenv("WATERMARK_PATH"),
	}

	if config.OutputDir = os.Getenv("OUTPUT_DIR"); config.OutputDir == "" {
		config.OutputDir = "./image" // default value
	}

	if config.WatermarkPath == "" {
		config.WatermarkPath = "logo.png" // default value
	}

	if transparency, err := strconv.Atoi(os.Getenv("WATERMARK_TRANSPARENCY")); err == nil {
		config.WatermarkTransparency = transparency
	} else {
		config.WatermarkTransparency = 25 // default value
	}

	if config.GalleryOutput = os.Getenv("GALLERY_OUTPUT"); config.GalleryOutput == "" {
		config.GalleryOutput = "index.html" // default value
	}

	if config.GallerySchedule = os.Getenv("GALLERY_SCHEDULE"); config.GallerySchedule == "" {
		config.GallerySchedule = "0 */10 * * * *" // default value, every 10 minutes
	}

	if timeout, err := strconv.Atoi(os.Getenv("GENERATION_TIMEOUT")); err == nil {
		config.GenerationTimeout = time.Duration(timeout) * time.Second
	} else {
		config.GenerationTimeout = 2 * time.Minute // default value
	}

	// Load database configuration
	dbConfig := DBConfig{
		Host:     os.Getenv("DB_HOST"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Database: os.Getenv("DB_NAME"),
		SSLMode:  os.Getenv("DB_SSL_MODE"),
	}

	// Parse database port
	if port, err := strconv.Atoi(os.Getenv("DB_PORT")); err == nil {
		dbConfig.Port = port
	} else {
		dbConfig.Port = 5432 // default PostgreSQL port
	}

	// Parse connection pool settings
	if maxOpenConns, err := strconv.Atoi(os.Getenv("DB_MAX_OPEN_CONNS")); err == nil {
		dbConfig.MaxOpenConns = maxOpenConns
	} else {
		dbConfig.MaxOpenConns = 25 // default value
	}

	if maxIdleConns, err := strconv.Atoi(os.Getenv("DB_MAX_IDLE_CONNS")); err == nil {
		dbConfig.MaxIdleConns = maxIdleConns
	} else {
		dbConfig.MaxIdleConns = 25 // default value
	}

	if connMaxLifetime, err := strconv.Atoi(os.Getenv("DB_CONN_MAX_LIFETIME")); err == nil {
		dbConfig.ConnMaxLifetime = time.Duration(connMaxLifetime) * time.Second
	} else {
		dbConfig.ConnMaxLifetime = 5 * time.Minute // default value
	}

	config.DB = dbConfig

	// Validate required fields
	if config.TelegramBotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if config.StabilityAPIKey == "" {
		return nil, fmt.Errorf("STABILITY_API_KEY is required")
	}
	if len(config.AllowedUsers) == 0 {
		return nil, fmt.Errorf("USER_ID is required")
	}
	if len(config.AllowedAdmins) == 0 {
		return nil, fmt.Errorf("ADMIN_ID is required")
	}

	return config, nil
}

// UserStoreEnabled reports whether a database was configured for user persistence.
func (c *Config) UserStoreEnabled() bool {
	return c.DB.Host != ""
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Database, c.DB.SSLMode)
}

// splitIDList parses a comma-separated identifier list, dropping empty entries.
func splitIDList(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}
