package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tsawler/spatialtext"
	"github.com/tsawler/spatialtext/config"
	"github.com/tsawler/spatialtext/internal/logging"
)

// globalOptions are the flags shared by every command.
type globalOptions struct {
	configPath string
	logLevel   string
	pages      []int
	gaps       bool

	cfg config.Config
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:          "uss",
		Short:        "Inspect, search and convert spatial strings",
		Long:         "Load OCR output (stored strings, page archives, Vision or Document AI JSON, hOCR) and query its text and geometry",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (overrides the configuration)")
	flags.IntSliceVar(&opts.pages, "pages", nil, "Pages to load, e.g. 1,3")
	flags.BoolVar(&opts.gaps, "gaps", false, "Treat wide horizontal gaps as zone boundaries")

	root.AddCommand(
		newInfoCmd(opts),
		newTextCmd(opts),
		newSegmentCmd(opts, "lines", "Print one line per row", (*spatialtext.Loader).Lines),
		newSegmentCmd(opts, "words", "Print one word per row", (*spatialtext.Loader).Words),
		newSegmentCmd(opts, "paragraphs", "Print paragraphs separated by blank rows", (*spatialtext.Loader).Paragraphs),
		newSegmentCmd(opts, "zones", "Print zones separated by blank rows", (*spatialtext.Loader).Zones),
		newPagesCmd(opts),
		newSearchCmd(opts),
		newFindCmd(opts),
		newConvertCmd(opts),
	)
	return root
}

// setup loads the configuration and applies the log level.
func (o *globalOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logging.SetOutput(cmd.ErrOrStderr())
	if o.gaps {
		cfg.Zones.TreatGapsAsZoneBoundaries = true
	}
	o.cfg = cfg
	return nil
}

// loader opens path with the configuration and page selection applied.
func (o *globalOptions) loader(path string) *spatialtext.Loader {
	l := spatialtext.Open(path).WithConfig(o.cfg)
	if len(o.pages) > 0 {
		l = l.Pages(o.pages...)
	}
	return l
}
