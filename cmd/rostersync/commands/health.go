package commands

import (
	"fmt"

	"rostersync-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Checks connectivity and the stored credential against the sync api.",
	Run: func(cmd *cobra.Command, args []string) {
		service, database := openService(loadConfig())
		defer database.Close()

		err := service.CheckHealth(cmd.Context(), getPassphrase())
		if err != nil {
			serviceutil.Fatal("health check failed", err)
		}
		fmt.Println("ok")
	},
}
