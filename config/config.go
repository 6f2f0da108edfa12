// Package config loads the process configuration once at startup.
// The resulting Config is treated as immutable and is passed explicitly to
// the server, the insight generator and the recipe client.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config holds every setting read from the environment.
type Config struct {
	// LLMAPIKey authenticates against the text-generation provider. It is not
	// validated; a missing key surfaces as an upstream auth failure.
	LLMAPIKey   string `env:"LLM_API_KEY"`
	SecretKey   string `env:"SECRET_KEY"`
	LLMEndpoint string `env:"LLM_ENDPOINT" envDefault:"https://api.openai.com/v1/chat/completions"`
	LLMModel    string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`

	MealDBBaseURL string `env:"MEALDB_BASE_URL" envDefault:"https://www.themealdb.com/api/json/v1/1"`

	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	Port        string        `env:"PORT" envDefault:"3000"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads an optional .env file from the working directory and then
// parses the environment into a Config. The returned bool reports whether a
// .env file was found.
func Load() (Config, bool, error) {
	found := false
	filename, err := filepath.Abs(".env")
	if err != nil {
		return Config{}, false, errors.Wrap(err, "resolve .env path")
	}
	if _, err := os.Stat(filename); err == nil {
		if err := godotenv.Load(filename); err != nil {
			return Config{}, false, errors.Wrapf(err, "load %s", filename)
		}
		found = true
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, false, errors.Wrapf(err, "stat %s", filename)
	}

	cfg, err := Parse()
	return cfg, found, err
}

// Parse builds a Config from the current environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse environment")
	}
	return cfg, nil
}

// Addr is the listen address derived from Port.
func (c Config) Addr() string {
	return ":" + c.Port
}
