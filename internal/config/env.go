package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const EnvProduction = "production"

// Env holds values that differ per deployment. A .env file in the working
// directory is read first; real environment variables win over it.
type Env struct {
	DatabaseURL           string `envconfig:"DATABASE_URL"`
	SupabaseURL           string `envconfig:"NEXT_PUBLIC_SUPABASE_URL"`
	SupabaseAnonKey       string `envconfig:"NEXT_PUBLIC_SUPABASE_ANON_KEY"`
	OpenAIAPIKey          string `envconfig:"OPENAI_API_KEY"`
	KMSKeyID              string `envconfig:"CLOUD_KMS_KEY_ID"`
	KMSToken              string `envconfig:"CLOUD_KMS_TOKEN"`
	JWTSecret             string `envconfig:"JWT_SECRET"`
	Environment           string `envconfig:"ARC_ENV" default:"development"`
	RedisAddr             string `envconfig:"REDIS_ADDR"`
	LocalEncryptionSecret string `envconfig:"LOCAL_ENCRYPTION_SECRET"`
	Port                  int    `envconfig:"PORT"`
}

func (e Env) IsProduction() bool {
	return e.Environment == EnvProduction
}

// LoadEnv reads .env (if present) and decodes the environment.
func LoadEnv() (Env, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Env{}, fmt.Errorf("loading .env: %w", err)
	}
	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return Env{}, fmt.Errorf("reading environment: %w", err)
	}
	return env, nil
}

// Validate reports settings that must be present before serving traffic.
func (e Env) Validate() error {
	var missing []string
	if e.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if e.IsProduction() && e.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment: %v", missing)
	}
	return nil
}
