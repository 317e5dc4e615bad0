package main

import (
	"github.com/spf13/cobra"

	"github.com/agenthands/docket/internal/config"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a PDF tree for duplicates and extract entities",
	Long: `Fingerprints every PDF under the root, groups exact, near and partial
duplicates, writes the duplicate report and extracts people, organizations,
emails and URLs from each canonical document.`,
	RunE: runScan,
}

var scanFlags struct {
	root           string
	out            string
	near           float64
	partial        float64
	lshThreshold   float64
	numPerm        int
	minPages       int
	move           bool
	noMove         bool
	organize       bool
	noOrganize     bool
	dryRun         bool
	targetRoot     string
	singletonsOnly bool
	skipReport     bool
	fragmentsDir   string
	identities     string
	sqlite         string
	dataset        string
}

func init() {
	f := scanCmd.Flags()
	f.StringVar(&scanFlags.root, "root", "", "Directory to scan for PDFs")
	f.StringVar(&scanFlags.out, "out", "", "Path of the JSON duplicate report")
	f.Float64Var(&scanFlags.near, "near", 0, "Minimum similarity for a near duplicate")
	f.Float64Var(&scanFlags.partial, "partial", 0, "Minimum similarity for a partial duplicate")
	f.Float64Var(&scanFlags.lshThreshold, "lsh-threshold", 0, "Jaccard threshold the LSH index is tuned for")
	f.IntVar(&scanFlags.numPerm, "num-perm", 0, "Number of MinHash permutations")
	f.IntVar(&scanFlags.minPages, "min-pages", 0, "Ignore PDFs with fewer pages")
	f.BoolVar(&scanFlags.move, "move", false, "Move files when organizing")
	f.BoolVar(&scanFlags.noMove, "no-move", false, "Copy files when organizing")
	f.BoolVar(&scanFlags.organize, "organize", false, "Place grouped files and singletons into folders")
	f.BoolVar(&scanFlags.noOrganize, "no-organize", false, "Leave files where they are")
	f.BoolVar(&scanFlags.dryRun, "dry-run", false, "Log organizer actions without touching files")
	f.StringVar(&scanFlags.targetRoot, "target-root", "", "Root of the organized folders (default: scan root)")
	f.BoolVar(&scanFlags.singletonsOnly, "singletons-only", false, "Only organize singletons")
	f.BoolVar(&scanFlags.skipReport, "skip-report", false, "Do not write the duplicate report")
	f.StringVar(&scanFlags.fragmentsDir, "fragments-dir", "", "Write per-document fragment folders here")
	f.StringVar(&scanFlags.identities, "identities", "", "JSON file of known identities")
	f.StringVar(&scanFlags.sqlite, "sqlite", "", "SQLite database for documents and known identities")
	f.StringVar(&scanFlags.dataset, "dataset", "", "Dataset name used in document ids")
}

// applyScanFlags overrides configuration with the flags set on the command
// line.
func applyScanFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("root") {
		cfg.Scan.Root = scanFlags.root
	}
	if f.Changed("out") {
		cfg.Output.ReportPath = scanFlags.out
	}
	if f.Changed("near") {
		cfg.Dedupe.NearThreshold = scanFlags.near
	}
	if f.Changed("partial") {
		cfg.Dedupe.PartialThreshold = scanFlags.partial
	}
	if f.Changed("lsh-threshold") {
		cfg.Dedupe.LSHThreshold = scanFlags.lshThreshold
	}
	if f.Changed("num-perm") {
		cfg.Dedupe.NumPerm = scanFlags.numPerm
	}
	if f.Changed("min-pages") {
		cfg.Scan.MinPages = scanFlags.minPages
	}
	if f.Changed("move") {
		cfg.Organize.Move = scanFlags.move
	}
	if f.Changed("no-move") && scanFlags.noMove {
		cfg.Organize.Move = false
	}
	if f.Changed("organize") {
		cfg.Organize.Enabled = scanFlags.organize
	}
	if f.Changed("no-organize") && scanFlags.noOrganize {
		cfg.Organize.Enabled = false
	}
	if f.Changed("dry-run") {
		cfg.Organize.DryRun = scanFlags.dryRun
	}
	if f.Changed("target-root") {
		cfg.Organize.TargetRoot = scanFlags.targetRoot
	}
	if f.Changed("singletons-only") {
		cfg.Organize.SingletonsOnly = scanFlags.singletonsOnly
	}
	if f.Changed("skip-report") {
		cfg.Output.SkipReport = scanFlags.skipReport
	}
	if f.Changed("fragments-dir") {
		cfg.Output.FragmentsDir = scanFlags.fragmentsDir
	}
	if f.Changed("identities") {
		cfg.Extraction.IdentitiesPath = scanFlags.identities
	}
	if f.Changed("sqlite") {
		cfg.Store.SQLitePath = scanFlags.sqlite
	}
	if f.Changed("dataset") {
		cfg.Output.Dataset = scanFlags.dataset
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	applyScanFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.pipeline.Scan(ctx, scanOptions(cfg))
	if err != nil {
		logger.Error().Err(err).Str("root", cfg.Scan.Root).Msg("scan failed")
		return err
	}

	logger.Info().
		Str("run_id", res.Report.RunID).
		Int("canonical_documents", len(res.Documents)).
		Int("organizer_actions", len(res.Actions)).
		Msg("done")
	return nil
}
