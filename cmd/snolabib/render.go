package main

import (
	"context"
	"fmt"

	"github.com/manuel-freire/snolabib/internal/render"
	"github.com/spf13/cobra"
)

func init() {
	renderCmd.Flags().StringVar(&bibFile, "bib-file", "", "Unified bibliography to render")
	renderCmd.Flags().StringVar(&htmlFile, "html-file", "", "HTML fragment file to write")
	renderCmd.Flags().StringVar(&citeprocPath, "citeproc", "", "Path to the citeproc-java executable")
	renderCmd.MarkFlagRequired("bib-file")
	renderCmd.MarkFlagRequired("html-file")
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Format the unified .bib as HTML fragments",
	Long: `Format the unified bibliography as ieee-with-url HTML using the
citeproc-java tool, then rewrite the output into one <li> item per
entry with DOIs and URLs hyperlinked.

citeproc-java 2.0.0 can be downloaded from
https://github.com/michel-kraemer/citeproc-java/releases`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func runRender(cmd *cobra.Command, args []string) error {
	tool := render.NewTool(resolveCiteproc())
	fmt.Printf("formatting %s as ieee html via %s...\n", bibFile, tool.Executable)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := tool.Generate(ctx, bibFile, htmlFile); err != nil {
		return err
	}
	fmt.Printf("wrote rendered fragments to %s\n", htmlFile)
	return nil
}
