package cli

import (
	"fmt"

	"github.com/telefetch/telefetch/internal/updater"
	"github.com/spf13/cobra"
)

var checkOnly bool

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update telefetch to the latest release",
	RunE: func(cmd *cobra.Command, args []string) error {
		if checkOnly {
			release, available, err := updater.CheckUpdate()
			if err != nil {
				return err
			}
			if !available {
				fmt.Println("Already up to date")
				return nil
			}
			fmt.Printf("New version available: %s\n", release.Version())
			fmt.Println("Run 'telefetch update' to install it")
			return nil
		}
		return updater.Update()
	},
}

func init() {
	updateCmd.Flags().BoolVar(&checkOnly, "check", false, "check for updates without installing")

	rootCmd.AddCommand(updateCmd)
}
