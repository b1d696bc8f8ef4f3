package cmd

import (
	"fmt"
	"os"

	"github.com/edclient/edgo/internal/config"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved username and device tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Clear(); err != nil {
			return fmt.Errorf("clearing config: %w", err)
		}
		storePath, err := config.StorePath()
		if err == nil {
			if rmErr := os.Remove(storePath); rmErr != nil && !os.IsNotExist(rmErr) {
				return fmt.Errorf("clearing credential cache: %w", rmErr)
			}
		}
		fmt.Println("Logged out.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
