package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	llmcatalog "github.com/kingfs/go-llm-catalog"
	"github.com/kingfs/go-llm-catalog/internal/config"
	"github.com/kingfs/go-llm-catalog/internal/logger"
	"github.com/kingfs/go-llm-catalog/internal/service"
	"github.com/kingfs/go-llm-catalog/internal/store"
)

// app is the state shared by every subcommand once the root has run.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	output string
	user   string
	team   string
}

func newRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "catalog",
		Short:         "Normalize AI model catalogs and evaluate filters against them",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return fmt.Errorf("configure logger: %w", err)
			}
			a.cfg = cfg
			a.log = log
			if a.user == "" {
				a.user = cfg.UserID
			}
			if a.team == "" {
				a.team = cfg.TeamID
			}
			switch a.output {
			case "table", "json", "yaml":
				return nil
			default:
				return fmt.Errorf("unsupported output format %q", a.output)
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&a.output, "output", "o", "table", "Output format (table, json, yaml)")
	cmd.PersistentFlags().StringVar(&a.user, "user", "", "Acting user id (default $CATALOG_USER)")
	cmd.PersistentFlags().StringVar(&a.team, "team", "", "Acting team id (default $CATALOG_TEAM)")

	cmd.AddCommand(
		newSyncCommand(a),
		newModelsCommand(a),
		newFilterCommand(a),
		newRunsCommand(a),
	)
	return cmd
}

func (a *app) caller() (service.Caller, error) {
	if a.user == "" {
		return service.Caller{}, errors.New("no user: pass --user or set CATALOG_USER")
	}
	return service.Caller{UserID: a.user, TeamID: a.team}, nil
}

// withService opens the filter store for the duration of fn.
func (a *app) withService(ctx context.Context, fn func(*service.Service) error) error {
	st, err := store.Open(ctx, a.cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := service.New(st,
		service.WithLogger(a.log),
		service.WithConcurrency(a.cfg.EvalConcurrency),
	)
	return fn(svc)
}

// normalizer builds the pipeline, applying the configured defaults file if any.
func (a *app) normalizer() (*llmcatalog.Normalizer, error) {
	if a.cfg.DefaultsFile == "" {
		return llmcatalog.NewNormalizer(), nil
	}
	f, err := os.Open(a.cfg.DefaultsFile)
	if err != nil {
		return nil, fmt.Errorf("open defaults file: %w", err)
	}
	defer f.Close()

	tables, err := llmcatalog.LoadDefaults(f)
	if err != nil {
		return nil, err
	}
	return llmcatalog.NewNormalizer(llmcatalog.WithDefaults(tables)), nil
}

// loadSnapshot reads the catalog written by the last sync.
func (a *app) loadSnapshot(path string) (llmcatalog.Snapshot, error) {
	if path == "" {
		path = a.cfg.SnapshotPath
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return llmcatalog.Snapshot{}, fmt.Errorf("no catalog at %s, run `catalog sync` first", path)
		}
		return llmcatalog.Snapshot{}, err
	}
	defer f.Close()
	return llmcatalog.ReadSnapshot(f)
}
