package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-yeartiles/internal/config"
	"github.com/tartampluch/go-yeartiles/internal/locale"
	"github.com/tartampluch/go-yeartiles/internal/render"
)

type renderOptions struct {
	timeZone string
	compact  string
	special  string
	width    int
	height   int
	lang     string
	out      string
}

func init() {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   config.CmdRender,
		Short: config.CmdRenderShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, time.Now())
		},
	}
	cmd.Flags().StringVar(&opts.timeZone, config.FlagTimeZone, config.DefaultTimeZone, config.FlagDescTimeZone)
	cmd.Flags().StringVar(&opts.compact, config.FlagCompact, "", config.FlagDescCompact)
	cmd.Flags().StringVar(&opts.special, config.FlagSpecialJSON, "", config.FlagDescSpecial)
	cmd.Flags().IntVar(&opts.width, config.FlagWidth, config.DefaultWidth, config.FlagDescWidth)
	cmd.Flags().IntVar(&opts.height, config.FlagHeight, config.DefaultHeight, config.FlagDescHeight)
	cmd.Flags().StringVar(&opts.lang, config.FlagLang, config.DefaultLanguage, config.FlagDescLang)
	cmd.Flags().StringVarP(&opts.out, config.FlagOut, "o", config.StdoutPath, config.FlagDescOut)

	rootCmd.AddCommand(cmd)
}

// runRender draws the wallpaper for now and writes it to opts.out.
func runRender(opts renderOptions, now time.Time) error {
	bundle := locale.Load()
	tr := bundle.Translator(bundle.Match(opts.lang))

	png, err := render.Render(now, render.Input{
		TimeZone:     opts.timeZone,
		SpecialDays:  inlineSpecials(opts.compact, opts.special),
		Width:        render.ClampWidth(opts.width),
		Height:       render.ClampHeight(opts.height),
		DaysLeftText: tr.Msg(config.TKeyDaysLeft),
	})
	if err != nil {
		return err
	}

	if opts.out == "" || opts.out == config.StdoutPath {
		_, err = os.Stdout.Write(png)
		return err
	}

	if err := os.WriteFile(opts.out, png, config.FilePermUserRW); err != nil {
		return fmt.Errorf("%s: %w", config.ErrWriteFile, err)
	}
	slog.Info(config.MsgWroteFile,
		config.LogKeyComponent, config.CompRender,
		config.LogKeyFile, opts.out,
		config.LogKeySizeBytes, len(png))
	return nil
}
