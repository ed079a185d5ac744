package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/andresmejia3/bbtface/internal/utils"
	"github.com/spf13/cobra"
)

var (
	resetLabel string
	resetYes   bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete stored faces",
	Long:  "Drops the faces table. Use --label to delete only the faces stored under one label.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		reader := bufio.NewReader(os.Stdin)

		if resetLabel != "" {
			if !resetYes && !confirm(reader, os.Stdout, fmt.Sprintf("⚠️  Delete every face labeled '%s'?", resetLabel)) {
				return nil
			}
			n, err := DB.DeleteLabel(cmd.Context(), resetLabel)
			if err != nil {
				utils.ShowError("Failed to delete label", err)
				return err
			}
			fmt.Printf("🗑️  Deleted %d face(s) labeled '%s'\n", n, resetLabel)
			return nil
		}

		if !resetYes && !confirm(reader, os.Stdout, "⚠️  Are you sure you want to DROP all database tables?") {
			return nil
		}
		fmt.Println("🗑️  Clearing Database...")
		if err := DB.Reset(cmd.Context()); err != nil {
			utils.ShowError("Failed to reset database", err)
			return err
		}
		fmt.Println("✨ Reset Complete.")
		return nil
	},
}

func init() {
	resetCmd.Flags().StringVarP(&resetLabel, "label", "l", "", "Only delete faces with this label")
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

func confirm(r *bufio.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	res, _ := r.ReadString('\n')
	res = strings.TrimSpace(strings.ToLower(res))
	return res == "y" || res == "yes"
}
