// Command yeartiles-lambda serves the wallpaper API behind an API Gateway
// HTTP integration.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/tartampluch/go-yeartiles/internal/config"
	"github.com/tartampluch/go-yeartiles/internal/profile"
	"github.com/tartampluch/go-yeartiles/internal/server"
)

func main() {
	os.Exit(runMain())
}

func runMain() int {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		setupLogging(false)
		slog.Error(config.ErrAppFailed, config.LogKeyComponent, config.CompLambda, config.LogKeyError, err)
		return config.ExitCodeError
	}
	setupLogging(cfg.Debug)

	store, err := profile.New(context.Background(), profile.OptionsFromConfig(cfg))
	if err != nil {
		slog.Error(config.ErrAppFailed, config.LogKeyComponent, config.CompLambda, config.LogKeyError, err)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompLambda,
		config.LogKeyBackend, store.Kind(),
		config.LogKeyVersion, config.Version)

	// Start only returns if the runtime API is unreachable.
	lambda.Start(server.LambdaHandler(server.NewAPIServer(store, nil, nil).Handler()))
	return config.ExitCodeSuccess
}

// setupLogging writes JSON lines to stdout, which CloudWatch collects.
func setupLogging(debugMode bool) {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}
