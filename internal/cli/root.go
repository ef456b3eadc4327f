// Package cli implements the habitual command tree.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/habitual/internal/logging"
	"github.com/cognicore/habitual/internal/metrics"
	"github.com/cognicore/habitual/pkg/habitual/config"
	"github.com/cognicore/habitual/pkg/habitual/recommend"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	logLevel   string
}

// NewRootCmd builds the habitual command with all subcommands attached.
func NewRootCmd(version string) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "habitual",
		Short: "Suggest a new habit from a different category",
		Long: `habitual recommends one habit a user does not have yet.

It finds the category the user's habits lean towards, moves to a different
category and picks a habit that is not too similar to what the user already
does. Suggestions are available over HTTP (serve) or directly (recommend).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default: $HABITUAL_CONFIG or ./habitual.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log.level")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newRecommendCmd(opts))
	root.AddCommand(newCatalogCmd(opts))
	root.AddCommand(newStatsCmd(opts))

	return root
}

// loadConfig reads configuration and initializes logging to the command's
// stderr.
func loadConfig(cmd *cobra.Command, opts *globalOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	logging.Init(logging.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Caller:    cfg.Log.Caller,
		Timestamp: true,
		Output:    cmd.ErrOrStderr(),
	})
	return cfg, nil
}

// session is what every command that touches the engine needs.
type session struct {
	cfg    *config.Config
	comp   *config.Components
	engine *recommend.Engine
}

func (s *session) Close() error {
	return s.comp.Store.Close()
}

func openSession(ctx context.Context, cmd *cobra.Command, opts *globalOptions) (*session, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, err
	}

	comp, err := (&config.Loader{Config: cfg}).Load(ctx)
	if err != nil {
		return nil, err
	}

	eng, err := recommend.NewEngine(comp.Catalog, recommend.Options{
		Policy:   comp.Policy,
		Store:    comp.Store,
		Observer: metrics.EngineObserver{},
	})
	if err != nil {
		comp.Store.Close()
		return nil, fmt.Errorf("build engine: %w", err)
	}

	return &session{cfg: cfg, comp: comp, engine: eng}, nil
}
