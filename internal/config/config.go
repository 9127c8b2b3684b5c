package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
	BackendRedis  = "redis"
)

type Config struct {
	DataDir         string
	DBPath          string
	Tenant          string
	ThemesDir       string
	DocumentBackend string
	MongoURI        string
	MongoDB         string
	BackupBackend   string
	RedisURL        string
	SettleTimeout   time.Duration
	// SyncSchedule is a cron expression; empty disables scheduled re-sync.
	SyncSchedule string
	LogLevel     string
	LogPretty    bool
}

func Load() Config {
	dataDir := getenv("LIVEEDITOR_DATA_DIR", defaultDataDir())
	return Config{
		DataDir:         dataDir,
		DBPath:          getenv("LIVEEDITOR_DB_PATH", filepath.Join(dataDir, "liveeditor.db")),
		Tenant:          getenv("LIVEEDITOR_TENANT", "default"),
		ThemesDir:       getenv("LIVEEDITOR_THEMES_DIR", filepath.Join(dataDir, "themes")),
		DocumentBackend: strings.ToLower(getenv("LIVEEDITOR_DOCUMENT_BACKEND", BackendSQLite)),
		MongoURI:        getenv("LIVEEDITOR_MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         getenv("LIVEEDITOR_MONGO_DB", "liveeditor"),
		BackupBackend:   strings.ToLower(getenv("LIVEEDITOR_BACKUP_BACKEND", BackendSQLite)),
		RedisURL:        getenv("LIVEEDITOR_REDIS_URL", "redis://localhost:6379/0"),
		SettleTimeout:   time.Duration(getenvInt("LIVEEDITOR_SETTLE_TIMEOUT_MS", 500)) * time.Millisecond,
		SyncSchedule:    getenv("LIVEEDITOR_SYNC_SCHEDULE", ""),
		LogLevel:        getenv("LIVEEDITOR_LOG_LEVEL", "info"),
		LogPretty:       getenvBool("LIVEEDITOR_LOG_PRETTY", false),
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".liveeditor"
	}
	return filepath.Join(home, ".liveeditor")
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
