package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Root            string
	DefaultLanguage string
	WorkerCount     int
	HTTPAddr        string
	LogLevel        string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	return &Config{
		Root:            getEnv("LABEL_ROOT", ""),
		DefaultLanguage: getEnv("LABEL_DEFAULT_LANGUAGE", "en-US"),
		WorkerCount:     getEnvInt("LABEL_WORKER_COUNT", 8),
		HTTPAddr:        getEnv("LABEL_HTTP_ADDR", ""),
		LogLevel:        getEnv("LABEL_LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
