package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings, loaded once at startup.
type Config struct {
	Environment string
	ServerHost  string
	ServerPort  string
	FrontendURL string
	LogfilePath string
	Debug       bool

	// Registration and game limits
	TotalGameLimit        int
	InProgressGameLimit   int
	RegisteredPlayerLimit int

	// Activity thresholds, in minutes
	PlayerIdleThreshMin     int
	PlayerInactiveThreshMin int
	GameIdleThreshMin       int
	GameInactiveThreshMin   int
	GameRetentionThreshMin  int

	// Sweep schedules, in seconds
	IdlePlayerCheckPeriodSec   int
	IdlePlayerCheckDelaySec    int
	IdleGameCheckPeriodSec     int
	IdleGameCheckDelaySec      int
	ObsoleteGameCheckPeriodSec int
	ObsoleteGameCheckDelaySec  int
}

// Load reads configuration from the environment, falling back to
// defaults for anything unset. A .env file is honored when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerHost:  getEnv("SERVER_HOST", "localhost"),
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		LogfilePath: getEnv("LOGFILE_PATH", ""),
		Debug:       getEnvBool("DEBUG", false),

		TotalGameLimit:        getEnvInt("TOTAL_GAME_LIMIT", 1000),
		InProgressGameLimit:   getEnvInt("IN_PROGRESS_GAME_LIMIT", 25),
		RegisteredPlayerLimit: getEnvInt("REGISTERED_PLAYER_LIMIT", 100),

		PlayerIdleThreshMin:     getEnvInt("PLAYER_IDLE_THRESH_MIN", 15),
		PlayerInactiveThreshMin: getEnvInt("PLAYER_INACTIVE_THRESH_MIN", 30),
		GameIdleThreshMin:       getEnvInt("GAME_IDLE_THRESH_MIN", 10),
		GameInactiveThreshMin:   getEnvInt("GAME_INACTIVE_THRESH_MIN", 20),
		GameRetentionThreshMin:  getEnvInt("GAME_RETENTION_THRESH_MIN", 2880),

		IdlePlayerCheckPeriodSec:   getEnvInt("IDLE_PLAYER_CHECK_PERIOD_SEC", 120),
		IdlePlayerCheckDelaySec:    getEnvInt("IDLE_PLAYER_CHECK_DELAY_SEC", 300),
		IdleGameCheckPeriodSec:     getEnvInt("IDLE_GAME_CHECK_PERIOD_SEC", 120),
		IdleGameCheckDelaySec:      getEnvInt("IDLE_GAME_CHECK_DELAY_SEC", 300),
		ObsoleteGameCheckPeriodSec: getEnvInt("OBSOLETE_GAME_CHECK_PERIOD_SEC", 300),
		ObsoleteGameCheckDelaySec:  getEnvInt("OBSOLETE_GAME_CHECK_DELAY_SEC", 300),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}
