package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	gs1resolver "github.com/gs1resolver/resolver"
	"github.com/gs1resolver/resolver/authoring"
	"github.com/gs1resolver/resolver/docstore"
	"github.com/gs1resolver/resolver/merge"
	"github.com/gs1resolver/resolver/migrate"
)

// newMigrateCmd reads a v2 export file, converts it, authors each
// converted entry, and writes it directly to the document store —
// the CLI-side companion of spec.md §4.10, unlike the HTTP
// POST /api/migrate-v2 endpoint (which is convert-only, no persistence).
func newMigrateCmd() *cobra.Command {
	var inputPath string
	var configPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Convert and persist a v2 resolver export",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := gs1resolver.DefaultConfig()
			if configPath != "" {
				loaded, err := gs1resolver.LoadConfigFile(configPath)
				if err != nil {
					return fmt.Errorf("loading config: %w", err)
				}
				cfg = loaded
			}

			f, err := os.Open(inputPath)
			if err != nil {
				return fmt.Errorf("opening v2 export: %w", err)
			}
			defer f.Close()

			var v2entries []migrate.V2Entry
			if err := json.NewDecoder(f).Decode(&v2entries); err != nil {
				return fmt.Errorf("parsing v2 export: %w", err)
			}

			store, err := docstore.New(cfg.ResolveDBPath())
			if err != nil {
				return fmt.Errorf("opening document store: %w", err)
			}
			defer store.Close()

			converted := migrate.Batch(v2entries)
			docs, authorErrs := authoring.AuthorBatch(converted)
			for _, aerr := range authorErrs {
				slog.Warn("skipping invalid migrated entry", "error", aerr)
			}

			for _, doc := range docs {
				if _, _, err := merge.ApplyToStore(cmd.Context(), store, doc); err != nil {
					slog.Error("writing migrated document", "document_id", doc.ID, "error", err)
					continue
				}
				slog.Info("migrated document written", "document_id", doc.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "Path to a v2 export JSON file")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file (JSON or YAML)")
	cmd.MarkFlagRequired("input")
	return cmd
}
