// Package config loads service configuration and builds the components it
// describes.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// HABITUAL_* environment variables (HABITUAL_SERVER_PORT sets server.port,
// HABITUAL_ENGINE_MIN_HABIT_LENGTH sets engine.min_habit_length).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/habitual/pkg/habitual/ingest"
	"github.com/cognicore/habitual/pkg/habitual/internalerr"
	"github.com/cognicore/habitual/pkg/habitual/novelty"
)

// Catalog sources.
const (
	CatalogBuiltin = "builtin"
	CatalogFile    = "file"
	CatalogStore   = "store"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the full service configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Engine  EngineConfig  `koanf:"engine"`
	Catalog CatalogConfig `koanf:"catalog"`
	Store   StoreConfig   `koanf:"store"`
	Log     LogConfig     `koanf:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"min=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"min=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"min=0"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimit       int           `koanf:"rate_limit" validate:"min=0"` // requests per minute per IP; 0 disables
	Redis           RedisConfig   `koanf:"redis"`
}

// RedisConfig moves rate limiting into Redis so that several instances
// share one budget per client. An empty Addr keeps the in-process limiter.
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"min=0"`
}

// EngineConfig holds the recommendation tunables.
type EngineConfig struct {
	Threshold      float64  `koanf:"threshold" validate:"gt=0,lte=1"`
	MinHabitLength int      `koanf:"min_habit_length" validate:"min=0"`
	Vowels         string   `koanf:"vowels"`
	Stopwords      []string `koanf:"stopwords"`
	StopwordsPath  string   `koanf:"stopwords_path"`
	LexiconPath    string   `koanf:"lexicon_path"`
}

// CatalogConfig says where the habit catalog comes from.
type CatalogConfig struct {
	Source string `koanf:"source" validate:"oneof=builtin file store"`
	Path   string `koanf:"path" validate:"required_if=Source file"`
	Name   string `koanf:"name" validate:"required_if=Source store"`
}

// StoreConfig selects the suggestion history backend.
type StoreConfig struct {
	Driver string `koanf:"driver" validate:"oneof=memory sqlite postgres"`
	Path   string `koanf:"path" validate:"required_if=Driver sqlite"`
	DSN    string `koanf:"dsn" validate:"required_if=Driver postgres"`
}

// LogConfig configures internal/logging.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5000,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimit:       120,
		},
		Engine: EngineConfig{
			Threshold:      novelty.DefaultThreshold,
			MinHabitLength: ingest.MinHabitLength,
			Vowels:         ingest.Vowels,
			Stopwords:      []string{},
		},
		Catalog: CatalogConfig{
			Source: CatalogBuiltin,
			Name:   "default",
		},
		Store: StoreConfig{
			Driver: DriverMemory,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

var validate = validator.New()

// Validate checks field constraints. Failures wrap
// internalerr.ErrConfiguration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", internalerr.ErrConfiguration, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", internalerr.ErrConfiguration, err)
	}
	return nil
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}

	return &sl, nil
}
