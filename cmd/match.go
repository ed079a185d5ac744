package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/andresmejia3/bbtface/internal/gallery"
	"github.com/andresmejia3/bbtface/internal/types"
	"github.com/andresmejia3/bbtface/internal/utils"
	"github.com/spf13/cobra"
)

var matchOpts Options

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank stored faces against a probe descriptor",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runMatch(cmd.Context(), matchOpts)
	},
}

func init() {
	matchCmd.Flags().StringVarP(&matchOpts.DescriptorPath, "file", "f", "", "Path to a JSON file holding the probe descriptor")
	matchCmd.Flags().StringVarP(&matchOpts.Descriptor, "descriptor", "v", "", "Probe descriptor as a JSON array")
	matchCmd.Flags().Float64VarP(&matchOpts.MatchThreshold, "threshold", "t", 0, "Face matching threshold (lower is stricter, default $MATCH_THRESHOLD)")
	matchCmd.Flags().IntVarP(&matchOpts.Limit, "limit", "n", 5, "Maximum number of matches to show (0 for all)")
	matchCmd.Flags().StringVarP(&matchOpts.Section, "section", "s", "", "Only compare against this gallery section")
	matchCmd.Flags().IntVarP(&matchOpts.Workers, "workers", "w", 0, "Goroutines used for ranking (default $MATCH_WORKERS)")
	matchCmd.Flags().BoolVar(&matchOpts.DBSide, "db-side", false, "Let pgvector rank instead of ranking in-process")
	matchCmd.MarkFlagsMutuallyExclusive("file", "descriptor")
	matchCmd.MarkFlagsOneRequired("file", "descriptor")
	rootCmd.AddCommand(matchCmd)
}

// validateMatchFlags fills defaults from the config and rejects unusable values.
func validateMatchFlags(opts *Options) error {
	if opts.MatchThreshold == 0 && cfg != nil {
		opts.MatchThreshold = cfg.Match.Threshold
	}
	if opts.MatchThreshold < 0 || opts.MatchThreshold > 2 {
		return fmt.Errorf("threshold must be between 0.0 and 2.0, got %f", opts.MatchThreshold)
	}
	if opts.DBSide && opts.Section != "" {
		return errors.New("--section is not supported with --db-side")
	}
	if opts.Limit < 0 {
		return fmt.Errorf("limit must be >= 0, got %d", opts.Limit)
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
		if cfg != nil {
			opts.Workers = cfg.Match.Workers
		}
	}
	return nil
}

func loadProbe(opts Options) (types.Descriptor, error) {
	if opts.DescriptorPath != "" {
		return utils.ReadDescriptor(opts.DescriptorPath)
	}
	if opts.Descriptor != "" {
		return utils.ParseDescriptor(opts.Descriptor)
	}
	return nil, errors.New("no probe descriptor given")
}

func runMatch(ctx context.Context, opts Options) error {
	if err := validateMatchFlags(&opts); err != nil {
		utils.ShowError("Invalid flags", err)
		return err
	}

	probe, err := loadProbe(opts)
	if err != nil {
		utils.ShowError("Failed to read probe descriptor", err)
		return err
	}
	dim := 0
	if cfg != nil {
		dim = cfg.Match.Dim
	}
	if err := gallery.Validate(probe, dim); err != nil {
		utils.ShowError("Probe descriptor is unusable", err)
		return err
	}

	if opts.DBSide {
		limit := opts.Limit
		if limit == 0 {
			limit = 1000
		}
		fmt.Fprintln(os.Stderr, "🗄️  Searching database...")
		matches, err := DB.NearestByDistance(ctx, probe, limit)
		if err != nil {
			utils.ShowError("Database search failed", err)
			return err
		}
		kept := matches[:0]
		for _, m := range matches {
			if m.Distance < opts.MatchThreshold {
				kept = append(kept, m)
			}
		}
		printMatches(os.Stdout, kept)
		return nil
	}

	faces, err := DB.ListFaces(ctx, opts.Section)
	if err != nil {
		utils.ShowError("Failed to load gallery", err)
		return err
	}
	fmt.Fprintf(os.Stderr, "🔍 Comparing against %d stored faces...\n", len(faces))

	res := gallery.Match(probe, faces, gallery.Options{
		Threshold: opts.MatchThreshold,
		Limit:     opts.Limit,
		Workers:   opts.Workers,
	})

	printMatches(os.Stdout, res.Matches)
	printSkipped(os.Stderr, res.Skipped)
	return nil
}

func printMatches(out io.Writer, matches []types.FaceMatch) {
	if len(matches) == 0 {
		fmt.Fprintln(out, "❌ No match found in database.")
		return
	}

	best := matches[0]
	fmt.Fprintf(out, "✅ Best Match: %s (ID: %d, distance %.4f)\n\n", best.Label, best.ID, best.Distance)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "RANK\tID\tLABEL\tSECTION\tDISTANCE\tSIMILARITY")
	fmt.Fprintln(w, "----\t--\t-----\t-------\t--------\t----------")
	for i, m := range matches {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%.4f\t%.4f\n", i+1, m.ID, m.Label, m.Section, m.Distance, m.Similarity)
	}
	w.Flush()
}

func printSkipped(out io.Writer, skipped []types.SkippedFace) {
	if len(skipped) == 0 {
		return
	}
	fmt.Fprintf(out, "\n⚠️  Skipped %d stored face(s):\n", len(skipped))
	for _, s := range skipped {
		fmt.Fprintf(out, "   %d (%s): %s\n", s.ID, s.Label, s.Reason)
	}
}
