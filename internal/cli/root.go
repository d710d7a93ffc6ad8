// Package cli implements the crstransform command line tool.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mohammed-shakir/crs-transform/internal/api"
	"github.com/mohammed-shakir/crs-transform/internal/app"
	"github.com/mohammed-shakir/crs-transform/internal/core/config"
	"github.com/mohammed-shakir/crs-transform/internal/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose   bool
	Format    string // "json" | "text"
	Precision int
	CRSConfig string
	Provider  string
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "crstransform",
		Short: "Transform coordinates, GeoJSON and CityJSON between coordinate reference systems",
		// main prints the error
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().IntVar(&opts.Precision, "precision", 0, "decimals for metre based targets (default from PRECISION)")
	cmd.PersistentFlags().StringVar(&opts.CRSConfig, "crs-config", "", "crs-config.yaml with excluded transformations")
	cmd.PersistentFlags().StringVar(&opts.Provider, "provider", "", "geodesy provider name")

	cmd.AddCommand(NewCRSsCommand(opts))
	cmd.AddCommand(NewPointCommand(opts))
	cmd.AddCommand(NewTransformCommand(opts))

	return cmd
}

// engine assembles the transformation engine from the environment and the
// global flags.
func (o *RootOptions) engine(errOut io.Writer) (*app.Engine, config.Config, *slog.Logger, error) {
	cfg := config.FromEnv()
	if o.Precision > 0 {
		cfg.Precision = o.Precision
	}
	if o.CRSConfig != "" {
		cfg.CRSConfigPath = o.CRSConfig
	}
	if o.Provider != "" {
		cfg.Provider = o.Provider
	}

	level := "warn"
	if o.Verbose {
		level = "debug"
	}
	zl := logger.Build(logger.Config{Level: level, Console: true, Component: "cli"}, errOut)
	log := logger.NewSlog(&zl)

	e, err := app.NewEngine(cfg, log)
	if err != nil {
		return nil, cfg, nil, err
	}
	return e, cfg, log, nil
}

// handler builds an API handler without response cache.
func (o *RootOptions) handler(errOut io.Writer) (*api.Handler, error) {
	e, cfg, log, err := o.engine(errOut)
	if err != nil {
		return nil, err
	}
	return api.New(api.Config{Precision: cfg.Precision, MaxBodyBytes: cfg.MaxBodyBytes}, e.Selector, nil, log), nil
}
