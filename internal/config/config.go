package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath     string
	RawMailDir string
	OutputDir  string

	GoogleMapsAPIKey  string
	MapsBaseURL       string
	GeocodeRateRPS    int
	MapsTimeoutMs     int
	GeocodeBackfillMs int

	PriceSmallTier float64
	PriceLargeTier float64

	GmailClientID     string
	GmailClientSecret string
	GmailRedirectURI  string
	GmailRefreshToken string

	IMAPHost     string
	IMAPPort     int
	IMAPSecure   bool
	IMAPUser     string
	IMAPPassword string
	IMAPMarkSeen bool

	ListenerProvider     string
	ListenerLabel        string
	ListenerIntervalSec  int
	ListenerFetchMax     int
	ListenerProcessBatch int
	ListenerAutoExport   bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:     getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		RawMailDir: getEnv("MAIL_RAW_DIR", filepath.Join(cwd, "data", "raw")),
		OutputDir:  getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		GoogleMapsAPIKey:  getEnv("GOOGLE_MAPS_API_KEY", ""),
		MapsBaseURL:       getEnv("MAPS_BASE_URL", "https://maps.googleapis.com"),
		GeocodeRateRPS:    getEnvInt("GEOCODE_RATE_LIMIT_RPS", 10),
		MapsTimeoutMs:     getEnvInt("MAPS_TIMEOUT_MS", 10000),
		GeocodeBackfillMs: getEnvInt("GEOCODE_BACKFILL_DELAY_MS", 100),

		PriceSmallTier: getEnvFloat("PRICE_SMALL_TIER", 725),
		PriceLargeTier: getEnvFloat("PRICE_LARGE_TIER", 850),

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRedirectURI:  getEnv("GMAIL_REDIRECT_URI", "https://developers.google.com/oauthplayground"),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),

		IMAPHost:     getEnv("IMAP_HOST", ""),
		IMAPPort:     getEnvInt("IMAP_PORT", 993),
		IMAPSecure:   getEnvBool("IMAP_SECURE", true),
		IMAPUser:     getEnv("IMAP_USER", ""),
		IMAPPassword: getEnv("IMAP_PASSWORD", ""),
		IMAPMarkSeen: getEnvBool("IMAP_MARK_SEEN", false),

		ListenerProvider:     getEnv("RFQ_LISTENER_PROVIDER", "gmail"),
		ListenerLabel:        getEnv("RFQ_LISTENER_LABEL", "INBOX"),
		ListenerIntervalSec:  getEnvInt("RFQ_LISTENER_INTERVAL_SEC", 30),
		ListenerFetchMax:     getEnvInt("RFQ_LISTENER_FETCH_MAX", 20),
		ListenerProcessBatch: getEnvInt("RFQ_LISTENER_PROCESS_BATCH", 20),
		ListenerAutoExport:   getEnvBool("RFQ_LISTENER_AUTO_EXPORT", true),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
