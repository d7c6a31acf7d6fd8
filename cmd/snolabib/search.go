package main

import (
	"fmt"

	"github.com/manuel-freire/snolabib/internal/storage"
	"github.com/spf13/cobra"
)

var (
	searchVenue       string
	searchContributor string
)

func init() {
	searchCmd.Flags().StringVar(&bibFile, "bib-file", "", "Unified bibliography to query")
	searchCmd.Flags().IntVar(&firstYear, "first-year", 0, "Only entries from this year on")
	searchCmd.Flags().IntVar(&lastYear, "last-year", 0, "Only entries up to this year")
	searchCmd.Flags().StringVar(&searchVenue, "venue", "", "Only entries from this venue (e.g. conf/its)")
	searchCmd.Flags().StringVar(&searchContributor, "contributor", "", "Only entries contributed by this DBLP id")
	searchCmd.MarkFlagRequired("bib-file")
	rootCmd.AddCommand(searchCmd)

	listCmd.Flags().StringVar(&bibFile, "bib-file", "", "Unified bibliography to query")
	listCmd.MarkFlagRequired("bib-file")
	rootCmd.AddCommand(listCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Search the unified bibliography",
	Long: `Search the unified bibliography by title or author text, optionally
narrowed by year window, venue, or contributor.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := storage.Query{
			FirstYear:   firstYear,
			LastYear:    lastYear,
			Venue:       searchVenue,
			Contributor: searchContributor,
		}
		if len(args) == 1 {
			q.Text = args[0]
		}
		return runQuery(q)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all entries in the unified bibliography",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(storage.Query{})
	},
}

func runQuery(q storage.Query) error {
	db, err := openIndex(bibFile)
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := db.Select(q)
	if err != nil {
		return err
	}
	for _, e := range entries {
		title := e.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("%d  %-24s %s\n", e.Year, e.Venue, title)
		fmt.Printf("      %s  [%s]\n", e.Identity, e.Authors)
	}
	fmt.Printf("%d entries\n", len(entries))
	return nil
}
