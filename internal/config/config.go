package config

import "github.com/caarlos0/env/v11"

// Config хранит конфигурацию приложения.
type Config struct {
	Port        string `env:"PORT" envDefault:"3001"`
	DBPath      string `env:"DB_PATH" envDefault:"forum.db"`
	FrontendURL string `env:"FRONTEND_URL"`
}

// Load загружает конфигурацию из переменных окружения.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// AllowedOrigins returns the CORS origin allowlist: local dev origins plus
// the configured frontend URL, if any.
func (c *Config) AllowedOrigins() []string {
	origins := []string{
		"http://localhost:5173",
		"http://localhost:3000",
	}
	if c.FrontendURL != "" {
		origins = append(origins, c.FrontendURL)
	}
	return origins
}
