package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds configuration for the relay server.
type Config struct {
	BindAddr         string
	PortCandidates   []string
	PortAutoFallback bool

	QueueCapacity int

	RecordDir      string // empty disables recording
	NotifyEndpoint string // empty disables transition notifications

	LogLevel string
	LogFile  string
}

// Load reads relay configuration from environment variables and an optional
// .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	cfg := &Config{
		BindAddr:         getEnvOrDefault("WEBCAST_BIND_ADDR", "127.0.0.1:8780"),
		PortCandidates:   getEnvListOrDefault("WEBCAST_PORT_CANDIDATES", []string{"127.0.0.1:8781", "127.0.0.1:8782"}),
		PortAutoFallback: getEnvBoolOrDefault("WEBCAST_PORT_AUTO_FALLBACK", true),
		QueueCapacity:    getEnvIntOrDefault("WEBCAST_QUEUE_CAPACITY", 150),
		RecordDir:        getEnvOrDefault("WEBCAST_RECORD_DIR", ""),
		NotifyEndpoint:   getEnvOrDefault("WEBCAST_NOTIFY_ENDPOINT", ""),
		LogLevel:         strings.ToLower(getEnvOrDefault("WEBCAST_LOG_LEVEL", "info")),
		LogFile:          getEnvOrDefault("WEBCAST_LOG_FILE", "logs/relay.log"),
	}
	if cfg.QueueCapacity < 1 {
		cfg.QueueCapacity = 150
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvListOrDefault(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
