package profile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tartampluch/go-yeartiles/internal/config"
	"github.com/tartampluch/go-yeartiles/internal/engine"
)

// Options selects and configures a backend explicitly.
type Options struct {
	Backend         string // config.Store* value; "auto" picks blob when configured, else file
	BlobBaseURL     string
	BlobToken       string
	DataFile        string
	SQLitePath      string
	PostgresDSN     string
	EncodedFallback bool
	Clock           engine.Clock
}

// OptionsFromConfig maps the server environment onto store options.
func OptionsFromConfig(cfg *config.ServerConfig) Options {
	return Options{
		Backend:         cfg.Store,
		BlobBaseURL:     cfg.BlobBaseURL,
		BlobToken:       cfg.BlobToken,
		DataFile:        cfg.DataFile,
		SQLitePath:      cfg.SQLitePath,
		PostgresDSN:     cfg.PostgresDSN,
		EncodedFallback: cfg.EncodedFallback,
	}
}

// New builds the configured store. Inline (encoded) ids always resolve;
// failed persistent writes fall back to them when EncodedFallback is set.
func New(ctx context.Context, opts Options) (Store, error) {
	clock := opts.Clock
	if clock == nil {
		clock = engine.RealClock{}
	}

	backend := opts.Backend
	if backend == "" || backend == config.StoreAuto {
		backend = config.StoreFile
		if opts.BlobBaseURL != "" && opts.BlobToken != "" {
			backend = config.StoreBlob
		}
	}

	encoded := NewEncodedStore(clock)

	var primary Store
	switch backend {
	case config.StoreBlob:
		primary = NewBlobStore(opts.BlobBaseURL, opts.BlobToken, clock)
	case config.StoreFile:
		path := opts.DataFile
		if path == "" {
			path = config.DefaultDataFile
		}
		primary = NewFileStore(path, clock)
	case config.StoreSQLite:
		path := opts.SQLitePath
		if path == "" {
			path = config.DefaultSQLitePath
		}
		s, err := OpenSQLite(ctx, path, clock)
		if err != nil {
			return nil, err
		}
		primary = s
	case config.StorePostgres:
		s, err := OpenPostgres(ctx, opts.PostgresDSN, clock)
		if err != nil {
			return nil, err
		}
		primary = s
	case config.StoreEncoded:
		return encoded, nil
	default:
		return nil, fmt.Errorf("%s: %s", config.ErrUnknownStore, backend)
	}

	slog.Info(config.MsgStoreSelected,
		config.LogKeyComponent, config.CompProfile,
		config.LogKeyBackend, primary.Kind(),
		config.LogKeyFallback, opts.EncodedFallback)

	return &chain{primary: primary, encoded: encoded, fallback: opts.EncodedFallback}, nil
}
