package main

import (
	"github.com/spf13/cobra"
)

func init() {
	first, last := defaultYearWindow()
	allCmd.Flags().StringVar(&authorsFile, "authors-file", "", "JSON file mapping usernames to DBLP ids and names")
	allCmd.Flags().StringVar(&bibFile, "bib-file", "", "Unified bibliography to write")
	allCmd.Flags().StringVar(&htmlFile, "html-file", "", "HTML fragment file to write")
	allCmd.Flags().StringVar(&outputFile, "output-file", "", "Final page to write")
	allCmd.Flags().StringVar(&templateFile, "template-file", "", "Page template (default \"template.html\")")
	allCmd.Flags().StringVar(&citeprocPath, "citeproc", "", "Path to the citeproc-java executable")
	allCmd.Flags().StringVar(&workDir, "work-dir", "", "Directory for per-author .bib files (default \".\")")
	allCmd.Flags().IntVar(&firstYear, "first-year", first, "First year of retained publications")
	allCmd.Flags().IntVar(&lastYear, "last-year", last, "Last year of retained publications")
	allCmd.Flags().IntVar(&delayMillis, "delay-ms", 0, "Pause between DBLP requests in milliseconds (default 1000)")
	allCmd.MarkFlagRequired("authors-file")
	allCmd.MarkFlagRequired("bib-file")
	allCmd.MarkFlagRequired("html-file")
	allCmd.MarkFlagRequired("output-file")
	rootCmd.AddCommand(allCmd)
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Run download, filter, render, and fix in order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, step := range []func(*cobra.Command, []string) error{
			runDownload, runFilter, runRender, runFix,
		} {
			if err := step(cmd, args); err != nil {
				return err
			}
		}
		return nil
	},
}
