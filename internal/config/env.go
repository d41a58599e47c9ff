package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/zalando/go-keyring"
)

// ServerConfig holds the runtime settings of the HTTP service.
// Every field is read from YEARTILES_<NAME>.
type ServerConfig struct {
	BindAddr        string `envconfig:"BIND_ADDR" default:"0.0.0.0"`
	Port            int    `envconfig:"PORT" default:"8080"`
	Store           string `envconfig:"STORE" default:"auto"`
	BlobBaseURL     string `envconfig:"BLOB_BASE_URL"`
	BlobToken       string `envconfig:"BLOB_TOKEN"`
	DataFile        string `envconfig:"DATA_FILE" default:".data/profiles.json"`
	SQLitePath      string `envconfig:"SQLITE_PATH" default:".data/profiles.db"`
	PostgresDSN     string `envconfig:"POSTGRES_DSN"`
	EncodedFallback bool   `envconfig:"ENCODED_FALLBACK" default:"true"`
	PublicURL       string `envconfig:"PUBLIC_URL"`
	Debug           bool   `envconfig:"DEBUG"`
}

// LoadServerConfig parses the environment, then resolves the store backend.
// A missing blob token is looked up in the OS keyring before giving up.
func LoadServerConfig() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrEnvConfig, err)
	}

	if cfg.BlobToken == "" && cfg.BlobBaseURL != "" {
		cfg.BlobToken = tokenFromKeyring()
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	slog.Info(MsgConfigLoaded,
		LogKeyBackend, cfg.Store,
		LogKeyAddr, cfg.BindAddr,
		LogKeyPort, cfg.Port,
		LogKeyComponent, CompConfig)

	return &cfg, nil
}

// ResolveDefaults derives Store when set to "auto" and validates the result.
func (c *ServerConfig) ResolveDefaults() error {
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))

	if c.Store == "" || c.Store == StoreAuto {
		if c.BlobBaseURL != "" && c.BlobToken != "" {
			c.Store = StoreBlob
		} else {
			c.Store = StoreFile
		}
	}

	switch c.Store {
	case StoreBlob, StoreFile, StoreSQLite, StoreEncoded:
	case StorePostgres:
		if c.PostgresDSN == "" {
			return errors.New(ErrPostgresDSN)
		}
	default:
		return fmt.Errorf("%s: %s", ErrUnknownStore, c.Store)
	}

	if c.Port <= 0 {
		return errors.New(ErrPortRequired)
	}
	return nil
}

// ListenAddr returns the host:port pair for net/http.
func (c *ServerConfig) ListenAddr() string {
	return fmt.Sprintf("%s%s%d", c.BindAddr, AddrSeparator, c.Port)
}

func tokenFromKeyring() string {
	token, err := keyring.Get(KeyringService, KeyringBlobUser)
	if err != nil {
		slog.Debug(MsgKeyringMiss, LogKeyError, err, LogKeyComponent, CompConfig)
		return ""
	}
	return token
}
