package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/CTAG07/wordweaver/pkg/markov"
	"github.com/CTAG07/wordweaver/pkg/registry"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// app carries the state shared by every command once the root command has loaded
// the configuration.
type app struct {
	configPath string
	logLevel   string
	config     *Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "wordweaver",
		Short:         "Generates random words based on the training set distribution",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "./wordweaver.json", "path to the JSON config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error (overrides the config)")

	root.AddCommand(
		newFitCmd(a),
		newGenerateCmd(a),
		newModelsCmd(a),
		newServeCmd(a),
	)
	return root
}

// init loads the configuration and builds the logger.
func (a *app) init(cmd *cobra.Command) error {
	config, err := LoadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if a.logLevel != "" {
		config.LogLevel = a.logLevel
	}
	a.config = config
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: parseLogLevel(config.LogLevel)}))
	if config.defaultWriteErr != nil {
		a.logger.Warn("Failed to write default config file, using defaults",
			slog.String("path", a.configPath),
			slog.Any("error", config.defaultWriteErr),
		)
	}
	return nil
}

// chainOptions returns the markov options derived from the configuration. A
// non-nil seed makes generation reproducible.
func (a *app) chainOptions(seed *uint64) []markov.Option {
	opts := []markov.Option{
		markov.WithTopFraction(a.config.TopFraction),
		markov.WithLogger(a.logger),
	}
	if seed != nil {
		opts = append(opts, markov.WithRand(rand.New(rand.NewPCG(*seed, *seed))))
	}
	return opts
}

// openRegistry opens the configured database, makes sure the schema exists and
// returns a ready Registry. The returned function releases both.
func (a *app) openRegistry() (*registry.Registry, func(), error) {
	path := a.config.DatabasePath
	if dir := filepath.Dir(strings.SplitN(path, "?", 2)[0]); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := initDB(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err = registry.SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to setup registry schema: %w", err)
	}
	reg, err := registry.NewRegistry(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("error creating registry: %w", err)
	}
	reg.SetLogger(a.logger)

	return reg, func() {
		reg.Close()
		if err := db.Close(); err != nil {
			a.logger.Error("Failed to close database", "error", err)
		}
	}, nil
}

// loadChain loads a chain from the registry when model is set, otherwise from the
// weights file.
func (a *app) loadChain(ctx context.Context, model, weightsFile string, seed *uint64) (*markov.Chain, error) {
	if model == "" {
		return markov.Load(weightsFile, a.chainOptions(seed)...)
	}
	reg, closeReg, err := a.openRegistry()
	if err != nil {
		return nil, err
	}
	defer closeReg()
	return reg.LoadModel(ctx, model, a.chainOptions(seed)...)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
