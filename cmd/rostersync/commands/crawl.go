package commands

import (
	"bytes"
	"fmt"
	"net/url"

	"rostersync-backend/lib/scrapers/detail"
	"rostersync-backend/lib/scrapers/rosterpage"
	"rostersync-backend/lib/serviceutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var crawlSource *string

func init() {
	crawlSource = crawlCmd.Flags().String("source", "", "Force a source kind instead of classifying.")
	rootCmd.AddCommand(crawlCmd)
}

var crawlCmd = &cobra.Command{
	Use:   "crawl <roster-url>",
	Short: "Fetches a live roster page and crawls every linked student detail page.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		base, err := url.Parse(args[0])
		if err != nil {
			serviceutil.Fatal("invalid roster url", err)
		}

		client, err := detail.NewClient(detail.ClientOptions{
			BaseUrl: base.Scheme + "://" + base.Host,
		})
		if err != nil {
			serviceutil.Fatal("failed to initialize client", err)
		}

		res, err := client.Http.R().SetContext(ctx).Get(args[0])
		if err != nil {
			serviceutil.Fatal("failed to fetch roster page", err)
		}
		doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
		if err != nil {
			serviceutil.Fatal("failed to parse roster page", err)
		}

		srcKind, _ := rosterpage.Classify(ctx, doc, base)
		if *crawlSource != "" {
			srcKind = rosterpage.SourceKind(*crawlSource)
		}
		cfg := rosterpage.ConfigFor(srcKind)

		links := detail.ExtractLinks(ctx, doc, base, cfg)
		fmt.Printf("found %d detail links\n", len(links))

		records := client.Crawl(ctx, links, func(current, total int, displayName string) {
			fmt.Printf("[%d/%d] %s\n", current, total, displayName)
		})
		detail.EnrichFromRoster(records, rosterpage.Parse(ctx, doc, cfg))

		t := newTable(table.Row{"Id", "Last", "First", "Guardian", "Phone", "Counselor", "Periods"})
		for _, r := range records {
			t.AppendRow(table.Row{
				r.SourcedID, r.LastName, r.FirstName,
				r.GuardianName, r.GuardianPhone, r.Counselor, len(r.Schedule),
			})
		}
		t.Render()
	},
}
