package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-yeartiles/internal/config"
	"github.com/tartampluch/go-yeartiles/internal/engine"
)

var (
	debugFlag bool
	rootCmd   = &cobra.Command{
		Use:           config.CmdRoot,
		Short:         config.CmdRootShort,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(debugFlag)
		},
	}
)

func main() {
	os.Exit(runMain())
}

func runMain() int {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, config.FlagDebug, false, config.FlagDescDebug)

	rootCmd.AddCommand(&cobra.Command{
		Use:   config.CmdVersion,
		Short: config.CmdVersionShort,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), config.MsgVersionOutput,
				config.AppName, config.Version, runtime.GOOS, runtime.GOARCH)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err)
		fmt.Fprintln(os.Stderr, err)
		return config.ExitCodeError
	}
	return config.ExitCodeSuccess
}

// setupLogging writes JSON logs to stderr so stdout stays free for PNG output.
func setupLogging(debugMode bool) {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	})))
}

// inlineSpecials reads the special days given on the command line.
// The compact form wins over the JSON form, as on the image endpoint.
func inlineSpecials(compact, special string) []engine.SpecialDay {
	if compact != "" {
		return engine.DecodeCompact(compact)
	}
	if special != "" {
		return engine.ParseSpecialDaysJSON(special)
	}
	return []engine.SpecialDay{}
}
