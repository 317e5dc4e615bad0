package main

import (
	"github.com/spf13/cobra"

	"github.com/agenthands/docket/internal/consolidate"
)

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Merge per-document fragment folders into corpus files",
	RunE:  runConsolidate,
}

var (
	consolidateSource string
	consolidateOut    string
	consolidatePrefix string
)

func init() {
	consolidateCmd.Flags().StringVar(&consolidateSource, "source", "", "Directory holding one folder per document")
	consolidateCmd.Flags().StringVar(&consolidateOut, "out", "", "Directory for the merged files")
	consolidateCmd.Flags().StringVar(&consolidatePrefix, "prefix", "", "Only merge folders whose name starts with this prefix")
}

func runConsolidate(cmd *cobra.Command, args []string) error {
	opts := consolidate.Options{
		SourceDir:    cfg.Consolidate.SourceDir,
		OutputDir:    cfg.Consolidate.OutputDir,
		FolderPrefix: cfg.Consolidate.FolderPrefix,
		Communities:  cfg.Consolidate.Communities,
	}
	if cmd.Flags().Changed("source") {
		opts.SourceDir = consolidateSource
	}
	if cmd.Flags().Changed("out") {
		opts.OutputDir = consolidateOut
	}
	if cmd.Flags().Changed("prefix") {
		opts.FolderPrefix = consolidatePrefix
	}

	c, err := consolidate.NewConsolidator(opts, logger)
	if err != nil {
		return err
	}
	_, err = c.Run(cmd.Context())
	return err
}
