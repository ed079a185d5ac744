package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/andresmejia3/bbtface/internal/gallery"
	"github.com/andresmejia3/bbtface/internal/types"
	"github.com/andresmejia3/bbtface/internal/utils"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var importSection string

var importCmd = &cobra.Command{
	Use:   "import <faces.yaml|faces.json>",
	Short: "Load labeled face descriptors into the database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runImport(cmd.Context(), args[0])
	},
}

func init() {
	importCmd.Flags().StringVarP(&importSection, "section", "s", "", "Section to assign to faces that don't name one")
	rootCmd.AddCommand(importCmd)
}

func runImport(ctx context.Context, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		utils.ShowError("Input file does not exist", err)
		return err
	}

	faces, err := utils.ReadFaces(path)
	if err != nil {
		utils.ShowError("Failed to parse face file", err)
		return err
	}

	valid, rejected := filterFaces(faces, cfg.Match.Dim, importSection)
	for _, r := range rejected {
		fmt.Fprintf(os.Stderr, "⚠️  Skipping %s\n", r)
	}
	if len(valid) == 0 {
		fmt.Println("❌ No valid faces to import.")
		return nil
	}

	bar := progressbar.NewOptions(len(valid),
		progressbar.OptionSetDescription("📥 Importing faces"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
	)
	if err := DB.InsertFaces(ctx, valid, func() { bar.Add(1) }); err != nil {
		utils.ShowError("Failed to store faces", err)
		return err
	}
	bar.Finish()

	fmt.Fprintf(os.Stderr, "\n🏁 Imported %d face(s), skipped %d.\n", len(valid), len(rejected))
	return nil
}

// filterFaces drops faces that could never be matched and fills in the default section.
func filterFaces(faces []types.Face, dim int, section string) ([]types.Face, []string) {
	var valid []types.Face
	var rejected []string
	for i, f := range faces {
		if f.Label == "" {
			rejected = append(rejected, fmt.Sprintf("entry %d: missing label", i))
			continue
		}
		if err := gallery.Validate(f.Descriptor, dim); err != nil {
			rejected = append(rejected, fmt.Sprintf("entry %d (%s): %v", i, f.Label, err))
			continue
		}
		if f.Section == "" {
			f.Section = section
		}
		valid = append(valid, f)
	}
	return valid, rejected
}
