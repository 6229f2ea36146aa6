package config

type Config struct {
	ServerAddr string `env:"RUN_ADDRESS" envDefault:":8080"`
	// AuthSecret signs the HS256 tokens that bind a caller to a tenant.
	AuthSecret string `env:"AUTH_SECRET,notEmpty"`
}
