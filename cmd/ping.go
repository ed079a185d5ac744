package cmd

import (
	"fmt"

	"github.com/andresmejia3/bbtface/internal/utils"
	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that PostgreSQL is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		now, err := DB.Ping(cmd.Context())
		if err != nil {
			utils.ShowError("Database connection error", err)
			return err
		}
		fmt.Printf("✅ Connected to PostgreSQL at: %s\n", now.Local().Format("2006-01-02 15:04:05 MST"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
