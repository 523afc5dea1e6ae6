package config

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

var (
	cfg     *APIConfig
	loadErr error
	once    sync.Once
)

// APIConfig represents the root element.
type APIConfig struct {
	XMLName     xml.Name         `xml:"API"`
	RequestDump bool             `xml:"REQUEST_DUMP,attr"`
	Context     ContextConfig    `xml:"CONTEXT"`
	RateLimit   RateLimitConfig  `xml:"RATE_LIMIT"`
	DB          DBConfig         `xml:"DB"`
	Report      ReportConfig     `xml:"REPORT"`
	Encryption  EncryptionConfig `xml:"ENCRYPTION"`
	Cache       CacheConfig      `xml:"CACHE"`
	ThirdParty  ThirdPartyConfig `xml:"THIRD_PARTY"`
	Logging     LoggingConfig    `xml:"LOGGING"`

	// Env holds secrets and deployment values read from the environment.
	Env Env `xml:"-"`
}

// ContextConfig holds basic server settings.
type ContextConfig struct {
	Port           int      `xml:"PORT"`
	Host           string   `xml:"HOST"`
	AllowedOrigins []string `xml:"ALLOWED_ORIGINS>ORIGIN"`
}

type RateLimitConfig struct {
	Enabled           bool    `xml:"ENABLED,attr"`
	RequestsPerSecond float64 `xml:"REQUESTS_PER_SECOND"`
	Burst             int     `xml:"BURST"`
}

// DBConfig holds database connection settings. The DSN itself comes from
// DATABASE_URL.
type DBConfig struct {
	// Initialize runs AutoMigrate on startup.
	Initialize bool         `xml:"INITIALIZE"`
	LogLevel   string       `xml:"LOG_LEVEL"`
	Pool       DBPoolConfig `xml:"POOL"`
}

// DBPoolConfig holds database connection pooling settings.
type DBPoolConfig struct {
	MaxOpenConns    int `xml:"MAX_OPEN_CONNS"`
	MaxIdleConns    int `xml:"MAX_IDLE_CONNS"`
	ConnMaxLifetime int `xml:"CONN_MAX_LIFETIME"`
}

type ReportConfig struct {
	TemplateDir string `xml:"TEMPLATE_DIR"`
}

type EncryptionConfig struct {
	Provider    string `xml:"PROVIDER"`
	KMSEndpoint string `xml:"KMS_ENDPOINT"`
}

type CacheConfig struct {
	CatalogTTLSeconds int `xml:"CATALOG_TTL_SECONDS"`
	RedisDB           int `xml:"REDIS_DB"`
}

type ThirdPartyConfig struct {
	OpenAIModel string `xml:"OPENAI_MODEL"`
	OpenAIURL   string `xml:"OPENAI_URL"`
}

type LoggingConfig struct {
	Dir   string `xml:"DIR"`
	Debug bool   `xml:"DEBUG,attr"`
}

// Defaults returns the settings used when config.xml omits a value.
func Defaults() *APIConfig {
	return &APIConfig{
		Context: ContextConfig{
			Port: 8080,
			Host: "0.0.0.0",
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 5,
			Burst:             20,
		},
		DB: DBConfig{
			LogLevel: "warn",
			Pool: DBPoolConfig{
				MaxOpenConns:    10,
				MaxIdleConns:    5,
				ConnMaxLifetime: 30,
			},
		},
		Cache: CacheConfig{
			CatalogTTLSeconds: 300,
		},
		Logging: LoggingConfig{
			Dir: "logs",
		},
	}
}

// LoadConfig loads the XML configuration once and overlays the environment.
// A missing file is not an error; defaults apply.
func LoadConfig(xmlPath string) (*APIConfig, error) {
	once.Do(func() {
		cfg, loadErr = Load(xmlPath)
	})
	return cfg, loadErr
}

// Load reads a configuration without caching it.
func Load(xmlPath string) (*APIConfig, error) {
	c := Defaults()
	data, err := os.ReadFile(xmlPath)
	switch {
	case err == nil:
		if err := xml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", xmlPath, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading %s: %w", xmlPath, err)
	}

	env, err := LoadEnv()
	if err != nil {
		return nil, err
	}
	c.Env = env
	if env.Port != 0 {
		c.Context.Port = env.Port
	}
	return c, nil
}
