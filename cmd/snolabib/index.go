package main

import (
	"fmt"

	"github.com/manuel-freire/snolabib/internal/config"
	"github.com/manuel-freire/snolabib/internal/reconcile"
	"github.com/manuel-freire/snolabib/internal/storage"
	"github.com/spf13/cobra"
)

func init() {
	indexCmd.Flags().StringVar(&bibFile, "bib-file", "", "Unified bibliography to index")
	indexCmd.MarkFlagRequired("bib-file")
	rootCmd.AddCommand(indexCmd)
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the query index from the unified .bib",
	Long: `Rebuild the SQLite index next to the unified bibliography. The .bib
file stays canonical; the index only serves the search and list
commands and can be deleted at any time.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	records, err := reconcile.LoadUnified(bibFile)
	if err != nil {
		return err
	}

	db, err := storage.OpenDB(config.IndexPath(bibFile))
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.Rebuild(records)
	if err != nil {
		return err
	}
	fmt.Printf("indexed %d entries into %s\n", n, config.IndexPath(bibFile))
	return nil
}

// openIndex rebuilds the index on demand so search and list work
// directly off a fresh unified .bib.
func openIndex(bibFile string) (*storage.DB, error) {
	records, err := reconcile.LoadUnified(bibFile)
	if err != nil {
		return nil, err
	}
	db, err := storage.OpenDB(config.IndexPath(bibFile))
	if err != nil {
		return nil, err
	}
	if _, err := db.Rebuild(records); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
