package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-yeartiles/internal/config"
	"github.com/tartampluch/go-yeartiles/internal/locale"
	"github.com/tartampluch/go-yeartiles/internal/termview"
)

type previewOptions struct {
	timeZone string
	compact  string
	special  string
	columns  int
	lang     string
}

func init() {
	var opts previewOptions

	cmd := &cobra.Command{
		Use:   config.CmdPreview,
		Short: config.CmdPreviewShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd.OutOrStdout(), opts, time.Now())
		},
	}
	cmd.Flags().StringVar(&opts.timeZone, config.FlagTimeZone, config.DefaultTimeZone, config.FlagDescTimeZone)
	cmd.Flags().StringVar(&opts.compact, config.FlagCompact, "", config.FlagDescCompact)
	cmd.Flags().StringVar(&opts.special, config.FlagSpecialJSON, "", config.FlagDescSpecial)
	cmd.Flags().IntVar(&opts.columns, config.FlagColumns, config.GridColumns, config.FlagDescColumns)
	cmd.Flags().StringVar(&opts.lang, config.FlagLang, config.DefaultLanguage, config.FlagDescLang)

	rootCmd.AddCommand(cmd)
}

func runPreview(w io.Writer, opts previewOptions, now time.Time) error {
	bundle := locale.Load()
	tr := bundle.Translator(bundle.Match(opts.lang))

	_, err := fmt.Fprintln(w, termview.Render(now, termview.Options{
		TimeZone:     opts.timeZone,
		SpecialDays:  inlineSpecials(opts.compact, opts.special),
		Columns:      opts.columns,
		DaysLeftText: tr.Msg(config.TKeyDaysLeft),
	}))
	return err
}
