package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/reoring/goshape"
	"github.com/reoring/goshape/i18n"
	"github.com/reoring/goshape/internal/config"
	"github.com/reoring/goshape/internal/logging"
)

// globals are the persistent flags plus the state derived from them.
type globals struct {
	cfgFile   string
	logLevel  string
	logFormat string
	maxDepth  int
	lang      string

	cfg *config.Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:   "goshape",
		Short: "Validate YAML and JSON documents against declarative schemas",
		Long: `goshape decodes YAML or JSON documents and converts them into typed,
validated values using the built-in schemas:

  entries   list of project entries (name, links, runs-on, languages)
  commands  self-referential command tree browsed by the shell command

Settings come from an optional configuration file (--config), GOSHAPE_*
environment variables and the flags below, in increasing precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.init(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVarP(&g.cfgFile, "config", "c", "", "config file path")
	f.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.StringVar(&g.logFormat, "log-format", "", "log format: text, json")
	f.IntVar(&g.maxDepth, "max-depth", 0, "maximum input nesting (0 uses the default, negative disables)")
	f.StringVar(&g.lang, "lang", "en", "message language: en, ja")

	root.AddCommand(
		newValidateCmd(g),
		newSchemaCmd(),
		newWatchCmd(g),
		newShellCmd(g),
	)
	return root
}

// init loads the configuration and overlays flags the user set explicitly.
func (g *globals) init(cmd *cobra.Command) error {
	cfg, err := config.Load(g.cfgFile)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	if f.Changed("log-level") {
		cfg.Log.Level = g.logLevel
	}
	if f.Changed("log-format") {
		cfg.Log.Format = g.logFormat
	}
	if f.Changed("max-depth") {
		cfg.Decode.MaxDepth = g.maxDepth
	}
	log, err := logging.New(logging.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		AddSource: cfg.Log.AddSource,
		Writer:    cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	switch g.lang {
	case "en", "ja":
		i18n.SetLanguage(g.lang)
	default:
		return fmt.Errorf("unsupported language %q", g.lang)
	}
	g.cfg, g.log = cfg, log
	log.Debug("configuration loaded", "file", g.cfgFile, "max_depth", cfg.Decode.MaxDepth, "strict", cfg.Decode.Strict)
	return nil
}

func (g *globals) parseOpt() goshape.ParseOpt {
	return goshape.ParseOpt{MaxDepth: g.cfg.Decode.MaxDepth}
}
