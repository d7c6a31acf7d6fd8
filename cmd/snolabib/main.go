// Package main provides the snolabib CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "snolabib",
	Short: "Build a filterable web bibliography from DBLP",
	Long: `snolabib downloads author bibliographies from DBLP and prepares them
for inclusion in a website.

The pipeline has four stages, runnable separately or all at once:

  download  fetch each author's BibTeX export from DBLP
  filter    merge, deduplicate, and year-window into one unified .bib
  render    format the unified .bib as HTML via citeproc-java
  fix       join rendered items back to records and build the final page

The resulting page is self-contained and supports filtering by author,
year, and venue, depending on the template used. An optional SQLite
index over the unified .bib backs the search and list commands.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.Version = Version
}
