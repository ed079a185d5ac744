package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/andresmejia3/bbtface/internal/types"
	"github.com/andresmejia3/bbtface/internal/utils"
	"github.com/spf13/cobra"
)

var listSection string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored faces",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runList(cmd.Context(), listSection)
	},
}

func init() {
	listCmd.Flags().StringVarP(&listSection, "section", "s", "", "Only list faces in this section")
	rootCmd.AddCommand(listCmd)
}

func runList(ctx context.Context, section string) error {
	faces, err := DB.ListFaces(ctx, section)
	if err != nil {
		utils.ShowError("Failed to list faces", err)
		return err
	}

	if len(faces) == 0 {
		fmt.Println("No faces found in database.")
		return nil
	}

	printFaces(os.Stdout, faces)
	return nil
}

func printFaces(out io.Writer, faces []types.Face) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tLABEL\tSECTION\tDIM")
	fmt.Fprintln(w, "--\t-----\t-------\t---")

	for _, f := range faces {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", f.ID, f.Label, f.Section, len(f.Descriptor))
	}
	w.Flush()
}
