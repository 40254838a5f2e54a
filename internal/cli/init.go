package cli

import (
	"fmt"

	"github.com/telefetch/telefetch/internal/core/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create telefetch config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(); err != nil {
			return err
		}

		fmt.Printf("Saved %s\n", config.SavePath())
		fmt.Println("Set your bot token there (telegram.token) or export BOT_TOKEN.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
