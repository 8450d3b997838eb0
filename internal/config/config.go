package config

import "github.com/kelseyhightower/envconfig"

// Config holds application configuration loaded from environment variables.
type Config struct {
	DatabaseURL  string `envconfig:"DATABASE_URL" required:"true"`
	Port         string `envconfig:"PORT" default:"3000"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	Domain       string `envconfig:"DOMAIN"`
	SeedUsername string `envconfig:"SEED_USERNAME" default:"user"`
	SeedPassword string `envconfig:"SEED_PASSWORD" default:"MCM alerts"`
	FCMServerKey string `envconfig:"FCM_SERVER_KEY"` // push disabled when empty
	FCMEndpoint  string `envconfig:"FCM_ENDPOINT" default:"https://fcm.googleapis.com/fcm/send"`
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
