package main

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type config struct {
	Addr            string        `env:"INERTIA_ADDR"             envDefault:":8080"`
	AppName         string        `env:"INERTIA_APP_NAME"         envDefault:"Inertia Demo"`
	AssetVersion    string        `env:"INERTIA_ASSET_VERSION"`
	VersionFile     string        `env:"INERTIA_VERSION_FILE"`
	ViteManifest    string        `env:"INERTIA_VITE_MANIFEST"`
	ViteEntry       string        `env:"INERTIA_VITE_ENTRY"       envDefault:"resources/js/app.tsx"`
	ViteDev         bool          `env:"INERTIA_VITE_DEV"`
	SSRURL          string        `env:"INERTIA_SSR_URL"`
	LogFormat       string        `env:"INERTIA_LOG_FORMAT"       envDefault:"text"`
	LogLevel        string        `env:"INERTIA_LOG_LEVEL"        envDefault:"info"`
	ReadTimeout     time.Duration `env:"INERTIA_READ_TIMEOUT"     envDefault:"10s"`
	WriteTimeout    time.Duration `env:"INERTIA_WRITE_TIMEOUT"    envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"INERTIA_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// loadConfig reads the configuration from the environment, after loading
// the given .env files. Missing .env files are ignored.
func loadConfig(files ...string) (*config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
