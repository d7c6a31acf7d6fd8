package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/manuel-freire/snolabib/internal/config"
	"github.com/manuel-freire/snolabib/internal/dblp"
	"github.com/manuel-freire/snolabib/internal/roster"
	"github.com/spf13/cobra"
)

func init() {
	downloadCmd.Flags().StringVar(&authorsFile, "authors-file", "", "JSON file mapping usernames to DBLP ids and names")
	downloadCmd.Flags().StringVar(&workDir, "work-dir", "", "Directory for per-author .bib files (default \".\")")
	downloadCmd.Flags().IntVar(&delayMillis, "delay-ms", 0, "Pause between DBLP requests in milliseconds (default 1000)")
	downloadCmd.MarkFlagRequired("authors-file")
	rootCmd.AddCommand(downloadCmd)
}

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Fetch author bibliographies from DBLP",
	Long: `Fetch each roster author's BibTeX export from DBLP and write it to
<work-dir>/<username>.bib, with LaTeX escapes replaced by Unicode.

Requests are paced so as not to hammer DBLP's free service.`,
	Args: cobra.NoArgs,
	RunE: runDownload,
}

func runDownload(cmd *cobra.Command, args []string) error {
	r, err := roster.Load(authorsFile)
	if err != nil {
		return err
	}

	dir := resolveWorkDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating work dir %s: %w", dir, err)
	}
	client := dblp.NewClient(dblp.WithDelay(resolveDelay()))
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Printf("downloading %d author bibliographies from DBLP...\n", r.Len())
	for _, username := range r.Usernames() {
		a, _ := r.Get(username)
		fmt.Printf("  %s (%s)...", username, a.ID)
		start := time.Now()
		text, err := client.FetchAuthor(ctx, a)
		if err != nil {
			fmt.Println()
			return err
		}
		path := config.BibPath(dir, username)
		if err := os.WriteFile(path, []byte(text), 0644); err != nil {
			fmt.Println()
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Printf(" done in %.1fs\n", time.Since(start).Seconds())
	}
	return nil
}
