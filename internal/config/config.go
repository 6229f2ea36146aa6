package config

import (
	"fmt"

	"github.com/caarlos0/env/v9"

	handlerConfig "github.com/iurnickita/sankhyagw/internal/handler/config"
	loggerConfig "github.com/iurnickita/sankhyagw/internal/logger/config"
	sankhyaConfig "github.com/iurnickita/sankhyagw/internal/sankhya/config"
	storeConfig "github.com/iurnickita/sankhyagw/internal/store/config"
)

type Config struct {
	Handler handlerConfig.Config
	Sankhya sankhyaConfig.Config
	Store   storeConfig.Config
	Logger  loggerConfig.Config
}

// GetConfig reads the process environment. Callers load a .env file beforehand if they want one.
func GetConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config parse: %w", err)
	}
	if cfg.Sankhya.MaxAttempts < 1 {
		return Config{}, fmt.Errorf("config parse: SANKHYA_MAX_ATTEMPTS must be at least 1, got %d", cfg.Sankhya.MaxAttempts)
	}
	return cfg, nil
}
