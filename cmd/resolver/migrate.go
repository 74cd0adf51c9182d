package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gs1resolver/resolver/migrate"
)

// newMigrateCmd implements the CLI side of spec.md §4.10: read a v2
// export file and print the converted v3 entries to stdout. Like the
// Data-Entry binary's HTTP POST /api/migrate-v2 endpoint, this performs
// no persistence — piping the output into a Data-Entry POST /new call is
// the caller's job.
func newMigrateCmd() *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Convert a v2 resolver export into v3 Entry records",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(inputPath)
			if err != nil {
				return fmt.Errorf("opening v2 export: %w", err)
			}
			defer f.Close()

			var entries []migrate.V2Entry
			if err := json.NewDecoder(f).Decode(&entries); err != nil {
				return fmt.Errorf("parsing v2 export: %w", err)
			}

			converted := migrate.Batch(entries)
			return json.NewEncoder(os.Stdout).Encode(converted)
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "Path to a v2 export JSON file")
	cmd.MarkFlagRequired("input")
	return cmd
}
