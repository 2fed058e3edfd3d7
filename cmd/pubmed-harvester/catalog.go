// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-harvester/internal/catalog"
	"github.com/pdiddy/pubmed-harvester/internal/harvest"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the SQLite record catalog",
	Long: `Catalog reads records previously persisted with harvest --catalog and
prints them as a table or JSON.`,
	RunE: runCatalog,
}

func runCatalog(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("db")

	store, err := catalog.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()

	countOnly, _ := cmd.Flags().GetBool("count")
	if countOnly {
		n, err := store.Count(ctx)
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	}

	records, err := store.List(ctx)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	harvest.FormatTable(records, os.Stdout)
	return nil
}

func init() {
	catalogCmd.Flags().String("db", "output/catalog.db", "path to the SQLite catalog")
	catalogCmd.Flags().Bool("count", false, "print only the record count")
	catalogCmd.Flags().Bool("json", false, "output records as JSON")

	rootCmd.AddCommand(catalogCmd)
}
