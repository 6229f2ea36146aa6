package config

import "time"

const (
	ProductionURL = "https://api.sankhya.com.br"
	SandboxURL    = "https://api.sandbox.sankhya.com.br"
)

type Config struct {
	ProductionURL  string        `env:"SANKHYA_PRODUCTION_URL" envDefault:"https://api.sankhya.com.br"`
	SandboxURL     string        `env:"SANKHYA_SANDBOX_URL" envDefault:"https://api.sandbox.sankhya.com.br"`
	LoginTimeout   time.Duration `env:"SANKHYA_LOGIN_TIMEOUT" envDefault:"10s"`
	RequestTimeout time.Duration `env:"SANKHYA_REQUEST_TIMEOUT" envDefault:"30s"`
	MaxAttempts    int           `env:"SANKHYA_MAX_ATTEMPTS" envDefault:"3"`
	RetryDelay     time.Duration `env:"SANKHYA_RETRY_DELAY" envDefault:"2s"`

	// TokenCache keeps one bearer token per tenant until it expires or the ERP answers 401.
	TokenCache bool          `env:"SANKHYA_TOKEN_CACHE" envDefault:"false"`
	TokenTTL   time.Duration `env:"SANKHYA_TOKEN_TTL" envDefault:"5m"`
}

// Default mirrors the envDefault values.
func Default() Config {
	return Config{
		ProductionURL:  ProductionURL,
		SandboxURL:     SandboxURL,
		LoginTimeout:   10 * time.Second,
		RequestTimeout: 30 * time.Second,
		MaxAttempts:    3,
		RetryDelay:     2 * time.Second,
		TokenTTL:       5 * time.Minute,
	}
}
