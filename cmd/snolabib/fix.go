package main

import (
	"fmt"
	"os"

	"github.com/manuel-freire/snolabib/internal/linker"
	"github.com/manuel-freire/snolabib/internal/reconcile"
	"github.com/manuel-freire/snolabib/internal/roster"
	"github.com/spf13/cobra"
)

func init() {
	fixCmd.Flags().StringVar(&authorsFile, "authors-file", "", "JSON file mapping usernames to DBLP ids and names")
	fixCmd.Flags().StringVar(&bibFile, "bib-file", "", "Unified bibliography written by filter")
	fixCmd.Flags().StringVar(&htmlFile, "html-file", "", "Rendered HTML fragments written by render")
	fixCmd.Flags().StringVar(&templateFile, "template-file", "", "Page template (default \"template.html\")")
	fixCmd.Flags().StringVar(&outputFile, "output-file", "", "Final page to write")
	fixCmd.MarkFlagRequired("authors-file")
	fixCmd.MarkFlagRequired("bib-file")
	fixCmd.MarkFlagRequired("html-file")
	fixCmd.MarkFlagRequired("output-file")
	rootCmd.AddCommand(fixCmd)
}

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Join rendered items to records and build the final page",
	Long: `Join the rendered HTML items back to their unified records by url,
attach the data attributes that make the page filterable by year,
author, and venue, remove placeholder urls, sort newest first, and
splice everything into the page template.`,
	Args: cobra.NoArgs,
	RunE: runFix,
}

func runFix(cmd *cobra.Command, args []string) error {
	records, err := reconcile.LoadUnified(bibFile)
	if err != nil {
		return err
	}

	r, err := roster.Load(authorsFile)
	if err != nil {
		return err
	}

	rendered, err := os.ReadFile(htmlFile)
	if err != nil {
		return fmt.Errorf("reading rendered fragments %s: %w", htmlFile, err)
	}

	fmt.Printf("fixing refs in %s against %s...\n", htmlFile, bibFile)
	res, err := linker.Link(records, string(rendered))
	if err != nil {
		return err
	}

	rep := res.Report
	fmt.Printf("  %d records (%d without url), %d fragments (%d without link)\n",
		rep.Records, rep.RecordsWithoutLink, rep.Fragments, rep.FragmentsWithoutLink)
	for _, link := range rep.UnmatchedFragments {
		fmt.Fprintf(os.Stderr, "  fragment url not in bibliography: %s\n", link)
	}
	for _, id := range rep.UnmatchedRecords {
		fmt.Fprintf(os.Stderr, "  record never rendered: %s\n", id)
	}

	tmplPath := resolveTemplate()
	tmpl, err := linker.LoadTemplate(tmplPath)
	if err != nil {
		return err
	}
	page, err := linker.Assemble(tmpl, r.ListingHTML(), res.Items)
	if err != nil {
		return err
	}
	if err := linker.WriteOutput(outputFile, page); err != nil {
		return err
	}

	fmt.Printf("fixed %d references, could not fix %d; output written to %s\n",
		rep.Matched, len(rep.UnmatchedFragments), outputFile)
	return nil
}
