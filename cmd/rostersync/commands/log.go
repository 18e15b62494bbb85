package commands

import (
	"time"

	"rostersync-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(logCmd)
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Prints the rolling log of past sync runs, newest first.",
	Run: func(cmd *cobra.Command, args []string) {
		service, database := openService(loadConfig())
		defer database.Close()

		entries, err := service.Store().Log(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to read sync log", err)
		}

		t := newTable(table.Row{"Time", "Summary"})
		for _, entry := range entries {
			t.AppendRow(table.Row{entry.Time.Format(time.ANSIC), entry.Summary})
		}
		t.Render()
	},
}
