// Package cmd implements the notegraph command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/TFMV/notegraph/config"
	"github.com/TFMV/notegraph/physics"
	"github.com/TFMV/notegraph/ui"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

type rootOptions struct {
	configPath string
	logLevel   string
	debug      bool

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "notegraph",
		Short: "notegraph - force-directed layout for linked notes",
		Long: ui.Brand.Sprint("notegraph") + " - lay out linked records with a force-directed simulation\n" +
			ui.Subtle.Sprint("Settle a graph headlessly or host a live simulation over HTTP"),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
	}
	cmd.SetVersionTemplate("notegraph {{ .Version }}\n")

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML or TOML config file")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(
		layoutCmd(opts),
		serveCmd(opts),
		configCmd(),
	)
	return cmd
}

// setup loads the config and configures logrus from it and the flags.
func (o *rootOptions) setup() error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	o.cfg = cfg

	level := cfg.Log.Level
	if o.logLevel != "" {
		level = o.logLevel
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if o.debug {
		lvl = log.DebugLevel
	}
	log.SetLevel(lvl)
	log.SetOutput(os.Stderr)
	if cfg.Log.JSON {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// simulationOptions translates the config into simulation options.
func (o *rootOptions) simulationOptions() ([]physics.Option, error) {
	interval, err := o.cfg.FrameInterval()
	if err != nil {
		return nil, err
	}
	policy, err := o.cfg.RemovalPolicy()
	if err != nil {
		return nil, err
	}
	return []physics.Option{
		physics.WithParameters(o.cfg.Parameters()),
		physics.WithFrameInterval(interval),
		physics.WithRemovalPolicy(policy),
		physics.WithSeeder(o.cfg.Seeder().Position),
	}, nil
}

// Execute runs the root command.
func Execute() error {
	if err := newRootCmd().Execute(); err != nil {
		ui.Bad.Fprintf(os.Stderr, "notegraph: %v\n", err)
		return err
	}
	return nil
}
