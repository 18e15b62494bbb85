package commands

import (
	"fmt"
	"time"

	"rostersync-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

var (
	syncURL    *string
	syncSource *string
)

func init() {
	syncURL = syncCmd.Flags().String("url", "", "The URL the document was downloaded from, used for classification.")
	syncSource = syncCmd.Flags().String("source", "", "Force a source kind instead of classifying.")
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync <path/to/page.html|export.csv>",
	Short: "Parses a roster document, diffs it against the last run and pushes the changes.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		source := *syncSource
		if source == "" {
			source = cfg.Source
		}

		records, err := extractRecords(cmd.Context(), args[0], *syncURL, source)
		if err != nil {
			serviceutil.Fatal("failed to extract records", err)
		}
		fmt.Printf("extracted %d records\n", len(records))

		service, database := openService(cfg)
		defer database.Close()

		t1 := time.Now()
		outcome, err := service.Sync(
			cmd.Context(), records, getPassphrase(),
			func(sent, total int) {
				fmt.Printf("pushed %d/%d changed records\n", sent, total)
			},
		)
		if err != nil {
			serviceutil.Fatal("sync failed", err)
		}

		fmt.Printf(
			"done in %.1fs: %d sent, %d failed\n",
			time.Since(t1).Seconds(), outcome.SuccessCount, outcome.FailedCount,
		)
		for _, e := range outcome.Errors {
			fmt.Println("batch error:", e)
		}
	},
}
