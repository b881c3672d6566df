package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	llmcatalog "github.com/kingfs/go-llm-catalog"
	"github.com/kingfs/go-llm-catalog/internal/fetch"
)

func newSyncCommand(a *app) *cobra.Command {
	var (
		out   string
		input string
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch provider listings and write the normalized catalog",
		Example: `  # Fetch every configured source
  catalog sync

  # Normalize a models.dev-shaped file without touching the network
  catalog sync --input api.json --out models.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if out == "" {
				out = a.cfg.SnapshotPath
			}

			var payload llmcatalog.Payload
			if input != "" {
				data, err := os.ReadFile(input)
				if err != nil {
					return fmt.Errorf("read input: %w", err)
				}
				payload = llmcatalog.ParsePayload(data)
			} else {
				client := fetch.NewClient(a.cfg.HTTPTimeout, a.cfg.CacheDir, a.log)
				var err error
				payload, err = client.Fetch(ctx, a.endpoints())
				if err != nil {
					return err
				}
			}

			norm, err := a.normalizer()
			if err != nil {
				return err
			}
			snap := llmcatalog.Snapshot{
				SyncedAt: time.Now().UTC(),
				Models:   norm.Normalize(payload),
			}
			if err := writeSnapshotFile(out, snap); err != nil {
				return err
			}

			a.log.Info().
				Int("providers", len(payload)).
				Int("models", len(snap.Models)).
				Str("path", out).
				Msg("catalog synced")
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d models from %d providers to %s\n", len(snap.Models), len(payload), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Snapshot path (default $CATALOG_SNAPSHOT_PATH)")
	cmd.Flags().StringVar(&input, "input", "", "Normalize a raw payload file instead of fetching")
	return cmd
}

func (a *app) endpoints() []fetch.Endpoint {
	var eps []fetch.Endpoint
	for _, kind := range a.cfg.SourceKinds() {
		switch kind {
		case llmcatalog.KindModelsDev:
			eps = append(eps, fetch.Endpoint{Kind: kind, URL: a.cfg.ModelsDevURL})
		case llmcatalog.KindOpenRouter:
			eps = append(eps, fetch.Endpoint{Kind: kind, URL: a.cfg.OpenRouterURL})
		case llmcatalog.KindHuggingFace:
			eps = append(eps, fetch.Endpoint{Kind: kind, URL: a.cfg.HuggingFaceURL, Limit: a.cfg.HuggingFaceLimit})
		}
	}
	return eps
}

// writeSnapshotFile replaces path atomically.
func writeSnapshotFile(path string, snap llmcatalog.Snapshot) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".models-*.json")
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := llmcatalog.WriteSnapshot(tmp, snap); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
