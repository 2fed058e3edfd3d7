// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-harvester/internal/catalog"
	"github.com/pdiddy/pubmed-harvester/internal/harvest"
	"github.com/pdiddy/pubmed-harvester/internal/pubmed"
	"github.com/pdiddy/pubmed-harvester/pkg/types"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Search PubMed and extract filtered records for the configured terms",
	Long: `Harvest runs the full retrieval pipeline: for each search term it opens
a history-server session, pages through the matching articles, and keeps
records whose first-author affiliation names one of the configured
institutions and whose publication year falls in the configured range.

Terms, institutions, and the year range come from the config file
(harvest.terms, harvest.institutions, harvest.year_start, harvest.year_end)
or the corresponding flags. Results are deduplicated by PMID and written
as pretty-printed JSON; a YAML run file records the criteria and per-term
summary. Individual term failures are logged and skipped.`,
	RunE: runHarvest,
}

func runHarvest(cmd *cobra.Command, args []string) error {
	criteria, err := harvestCriteria(cmd)
	if err != nil {
		return err
	}
	cfg := harvestConfig(cmd)

	apiKey := secretDefault("ncbi-api-key", viper.GetString("ncbi.api_key"))
	client := pubmed.NewClient(cfg, apiKey, os.Stderr)

	records, summary := harvest.Run(context.Background(), client, criteria, cfg, os.Stderr)

	harvest.FormatTable(records, os.Stdout)

	outputPath, _ := cmd.Flags().GetString("output")
	if err := harvest.WriteDocument(outputPath, records); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not write %s: %v\n", outputPath, err)
	} else {
		fmt.Fprintf(os.Stderr, "Wrote %d records to %s\n", len(records), outputPath)
	}

	runFilePath, _ := cmd.Flags().GetString("run-file")
	if err := harvest.WriteRunFile(runFilePath, criteria, cfg, summary); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not write run file %s: %v\n", runFilePath, err)
	}

	catalogPath, _ := cmd.Flags().GetString("catalog")
	if catalogPath != "" {
		if err := saveToCatalog(catalogPath, records); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not update catalog %s: %v\n", catalogPath, err)
		}
	}

	return nil
}

func saveToCatalog(path string, records []types.Record) error {
	store, err := catalog.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.SaveAll(context.Background(), records)
}

// harvestCriteria builds the search criteria from flags, falling back to the
// config file for anything not set on the command line.
func harvestCriteria(cmd *cobra.Command) (types.Criteria, error) {
	terms, _ := cmd.Flags().GetStringSlice("term")
	if len(terms) == 0 {
		terms = viper.GetStringSlice("harvest.terms")
	}
	institutions, _ := cmd.Flags().GetStringSlice("institution")
	if len(institutions) == 0 {
		institutions = viper.GetStringSlice("harvest.institutions")
	}
	yearStart, _ := cmd.Flags().GetInt("year-start")
	if yearStart == 0 {
		yearStart = viper.GetInt("harvest.year_start")
	}
	yearEnd, _ := cmd.Flags().GetInt("year-end")
	if yearEnd == 0 {
		yearEnd = viper.GetInt("harvest.year_end")
	}

	criteria := types.Criteria{
		Terms:        terms,
		Institutions: institutions,
		YearStart:    yearStart,
		YearEnd:      yearEnd,
	}
	if err := criteria.Validate(); err != nil {
		return types.Criteria{}, err
	}
	return criteria, nil
}

func harvestConfig(cmd *cobra.Command) types.HarvestConfig {
	pageSize, _ := cmd.Flags().GetInt("page-size")
	retries, _ := cmd.Flags().GetInt("retries")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	interval, _ := cmd.Flags().GetDuration("interval")

	cfg := types.HarvestConfig{
		PageSize:        pageSize,
		MaxAttempts:     retries,
		RequestInterval: interval,
	}
	cfg.Timeout = timeout
	cfg.UserAgent = fmt.Sprintf("pubmed-harvester/%s", version)
	return cfg
}

func init() {
	harvestCmd.Flags().StringSlice("term", nil, "search term (repeatable; default: harvest.terms from config)")
	harvestCmd.Flags().StringSlice("institution", nil, "institution name to match in affiliations (repeatable)")
	harvestCmd.Flags().Int("year-start", 0, "first publication year to include")
	harvestCmd.Flags().Int("year-end", 0, "last publication year to include")
	harvestCmd.Flags().String("output", "output/records.json", "path for the JSON result document")
	harvestCmd.Flags().String("run-file", "output/harvest.yaml", "path for the YAML run summary")
	harvestCmd.Flags().String("catalog", "", "path to a SQLite catalog to upsert records into (empty = disabled)")
	harvestCmd.Flags().Int("page-size", 100, "articles fetched per request window")
	harvestCmd.Flags().Int("retries", 3, "attempts per HTTP request")
	harvestCmd.Flags().Duration("timeout", 30*time.Second, "timeout per HTTP request attempt")
	harvestCmd.Flags().Duration("interval", 334*time.Millisecond, "minimum interval between E-utilities requests")

	rootCmd.AddCommand(harvestCmd)
}
