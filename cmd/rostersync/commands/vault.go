package commands

import (
	"fmt"

	"rostersync-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	vaultCmd.AddCommand(setTokenCmd)
	rootCmd.AddCommand(vaultCmd)
}

var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Manages the encrypted sync credential.",
}

var setTokenCmd = &cobra.Command{
	Use:   "set-token <endpoint> <token>",
	Short: "Encrypts the api token under the passphrase and stores it with the endpoint.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		passphrase := getPassphrase()
		if passphrase == "" {
			serviceutil.Fatal("a passphrase is required", fmt.Errorf("set --passphrase or $ROSTERSYNC_PASSPHRASE"))
		}

		service, database := openService(loadConfig())
		defer database.Close()

		err := service.SetCredential(cmd.Context(), args[0], args[1], passphrase)
		if err != nil {
			serviceutil.Fatal("failed to store credential", err)
		}
		fmt.Println("credential stored")
	},
}
