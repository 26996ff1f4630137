package config

import "strconv"

// ScreencasterConfig holds configuration for the screencast publisher tool.
type ScreencasterConfig struct {
	CDPAddress  string
	CDPPort     int
	PageURL     string // page to capture; empty attaches to the first tab
	IngestURL   string
	MaxFPS      int
	JPEGQuality int
	LogLevel    string
	LogFile     string
}

// LoadScreencaster reads screencaster configuration from environment
// variables.
func LoadScreencaster() (*ScreencasterConfig, error) {
	cfg := &ScreencasterConfig{
		CDPAddress:  getEnvOrDefault("CHROMIUM_CDP_ADDRESS", "127.0.0.1"),
		CDPPort:     getEnvIntOrDefault("CHROMIUM_CDP_PORT", 9222),
		PageURL:     getEnvOrDefault("SCREENCASTER_PAGE_URL", ""),
		IngestURL:   getEnvOrDefault("SCREENCASTER_INGEST_URL", "http://127.0.0.1:8780/api/v1/stream/ingest"),
		MaxFPS:      getEnvIntOrDefault("SCREENCASTER_MAX_FPS", 10),
		JPEGQuality: getEnvIntOrDefault("SCREENCASTER_JPEG_QUALITY", 70),
		LogLevel:    getEnvOrDefault("SCREENCASTER_LOG_LEVEL", "info"),
		LogFile:     getEnvOrDefault("SCREENCASTER_LOG_FILE", "logs/screencaster.log"),
	}
	if cfg.MaxFPS < 1 {
		cfg.MaxFPS = 1
	}
	if cfg.JPEGQuality < 1 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = 70
	}
	return cfg, nil
}

// CDPURL returns the CDP HTTP endpoint the screencaster attaches to.
func (c *ScreencasterConfig) CDPURL() string {
	return "http://" + c.CDPAddress + ":" + strconv.Itoa(c.CDPPort)
}
