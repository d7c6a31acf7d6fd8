package main

import (
	"fmt"
	"os"

	"github.com/manuel-freire/snolabib/internal/config"
	"github.com/manuel-freire/snolabib/internal/reconcile"
	"github.com/manuel-freire/snolabib/internal/roster"
	"github.com/spf13/cobra"
)

func init() {
	first, last := defaultYearWindow()
	filterCmd.Flags().StringVar(&authorsFile, "authors-file", "", "JSON file mapping usernames to DBLP ids and names")
	filterCmd.Flags().StringVar(&bibFile, "bib-file", "", "Unified bibliography to write")
	filterCmd.Flags().StringVar(&workDir, "work-dir", "", "Directory holding per-author .bib files (default \".\")")
	filterCmd.Flags().IntVar(&firstYear, "first-year", first, "First year of retained publications")
	filterCmd.Flags().IntVar(&lastYear, "last-year", last, "Last year of retained publications")
	filterCmd.MarkFlagRequired("authors-file")
	filterCmd.MarkFlagRequired("bib-file")
	rootCmd.AddCommand(filterCmd)
}

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Merge author bibliographies into one unified .bib",
	Long: `Merge the downloaded per-author bibliographies into a single
deduplicated file, keeping only publications inside the year window.

Records shared by several roster authors are stored once, with every
contributor's DBLP id collected into an injected dblpid field. Records
with neither url nor doi get a placeholder url so they can be matched
to rendered output later; the fix command strips it again.`,
	Args: cobra.NoArgs,
	RunE: runFilter,
}

func runFilter(cmd *cobra.Command, args []string) error {
	r, err := roster.Load(authorsFile)
	if err != nil {
		return err
	}

	fmt.Printf("filtering author bibliographies, retaining years %d..%d:\n", firstYear, lastYear)
	dir := resolveWorkDir()
	rc := reconcile.New(firstYear, lastYear)
	for _, username := range r.Usernames() {
		a, _ := r.Get(username)
		path := config.BibPath(dir, username)
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading author bibliography %s: %w", path, err)
		}
		rc.AddOrigin(a.ID, string(data))
	}

	rep := rc.Report()
	for _, origin := range rep.Origins {
		fmt.Printf("  %s: %d/%d in window, %d new, %d duplicate, %d malformed\n",
			origin.Origin, origin.Selected, origin.Total, origin.Retained,
			origin.Duplicates, origin.Malformed)
	}
	for _, msg := range rep.Errors {
		fmt.Fprintf(os.Stderr, "  bad record: %s\n", msg)
	}

	out, err := os.Create(bibFile)
	if err != nil {
		return fmt.Errorf("writing unified bibliography %s: %w", bibFile, err)
	}
	if _, err := rc.WriteTo(out); err != nil {
		out.Close()
		os.Remove(bibFile) // do not leave a partial collection behind
		return fmt.Errorf("writing unified bibliography %s: %w", bibFile, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("writing unified bibliography %s: %w", bibFile, err)
	}

	fmt.Printf("chose %d items from %d, avoiding %d duplicates\n",
		rep.Retained, rep.Total, rep.Duplicates)
	return nil
}
