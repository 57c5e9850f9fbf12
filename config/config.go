package config

import (
	"os"
	"strconv"
)

type Config struct {
	APIBaseURL     string
	DBPath         string
	LogFile        string
	PollInterval   int // seconds
	SearchAttempts int
	RequestTimeout int // seconds
}

func Load() *Config {
	cfg := &Config{
		APIBaseURL:     "https://chatiefy.vercel.app/api/v1",
		DBPath:         "chatiefy.db",
		LogFile:        "",
		PollInterval:   2,
		SearchAttempts: 30,
		RequestTimeout: 15,
	}

	if url := os.Getenv("CHATIEFY_API_URL"); url != "" {
		cfg.APIBaseURL = url
	}

	if dbPath := os.Getenv("CHATIEFY_DB_PATH"); dbPath != "" {
		cfg.DBPath = dbPath
	}

	if logFile := os.Getenv("CHATIEFY_LOG_FILE"); logFile != "" {
		cfg.LogFile = logFile
	}

	if intervalStr := os.Getenv("CHATIEFY_POLL_INTERVAL"); intervalStr != "" {
		if interval, err := strconv.Atoi(intervalStr); err == nil && interval > 0 {
			cfg.PollInterval = interval
		}
	}

	if attemptsStr := os.Getenv("CHATIEFY_SEARCH_ATTEMPTS"); attemptsStr != "" {
		if attempts, err := strconv.Atoi(attemptsStr); err == nil && attempts > 0 {
			cfg.SearchAttempts = attempts
		}
	}

	if timeoutStr := os.Getenv("CHATIEFY_REQUEST_TIMEOUT"); timeoutStr != "" {
		if timeout, err := strconv.Atoi(timeoutStr); err == nil && timeout > 0 {
			cfg.RequestTimeout = timeout
		}
	}

	return cfg
}
