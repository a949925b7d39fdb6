package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mermaidviz/internal/config"
	"mermaidviz/internal/mapping"
)

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Rebuild index.html from saved diagram mappings",
	Args:  cobra.NoArgs,
	RunE:  runGallery,
}

func init() {
	galleryCmd.Flags().StringP("output-dir", "o", config.DefaultOutputDir, "directory holding "+mapping.FileName)
}

func runGallery(cmd *cobra.Command, _ []string) error {
	dir, err := resolveOutputDir(cmd)
	if err != nil {
		return err
	}
	mappings, err := mapping.Load(dir)
	if err != nil {
		return err
	}
	path, err := mapping.WriteIndex(mappings, dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d document(s))\n", path, len(mappings))
	return nil
}
