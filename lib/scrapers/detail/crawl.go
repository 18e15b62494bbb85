package detail

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"rostersync-backend/lib/fieldmatch"
	"rostersync-backend/lib/sis"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ProgressFunc is invoked exactly once per link, before its fetch, in
// submission order.
type ProgressFunc func(current, total int, displayName string)

// Crawl fetches every link's detail page sequentially and scrapes it
// into a DeepRecord. A failure on one page is logged and skipped, the
// rest of the queue always runs. Cancelling ctx stops the crawl before
// the next item; records scraped so far are returned.
func (c *Client) Crawl(ctx context.Context, links []Link, onProgress ProgressFunc) []sis.DeepRecord {
	ctx, span := tracer.Start(ctx, "Crawl")
	defer span.End()
	span.SetAttributes(attribute.Int("links", len(links)))

	var records []sis.DeepRecord
	for i, link := range links {
		if i > 0 {
			select {
			case <-time.After(interItemDelay):
			case <-ctx.Done():
			}
		}
		if ctx.Err() != nil {
			slog.WarnContext(ctx, "crawl cancelled",
				"completed", i, "total", len(links))
			break
		}

		if onProgress != nil {
			onProgress(i+1, len(links), link.DisplayName)
		}

		record, err := c.fetchDetail(ctx, link)
		if err != nil {
			span.RecordError(err)
			slog.WarnContext(ctx, "failed to crawl detail page",
				"id", link.ID, "url", link.URL, "err", err)
			continue
		}
		records = append(records, record)
	}

	span.SetAttributes(attribute.Int("records", len(records)))
	return records
}

// EnrichFromRoster backfills list-view fields (grade level, email,
// home room) into crawled records. Detail pages rarely repeat what the
// roster already showed, so the two passes complement each other; the
// crawl's values win on conflict. Records are matched by SourcedID,
// which the roster parser and the link extractor recover from the same
// profile hrefs.
func EnrichFromRoster(records []sis.DeepRecord, roster []sis.Record) {
	byID := make(map[string]sis.Record, len(roster))
	for _, r := range roster {
		byID[r.SourcedID] = r
	}
	for i := range records {
		if r, ok := byID[records[i].SourcedID]; ok {
			records[i].Record = sis.Merge(records[i].Record, r)
		}
	}
}

func (c *Client) fetchDetail(ctx context.Context, link Link) (sis.DeepRecord, error) {
	ctx, span := tracer.Start(ctx, "fetchDetail")
	defer span.End()
	span.SetAttributes(attribute.String("id", link.ID))

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(link.URL)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch detail page")
		return sis.DeepRecord{}, err
	}
	if res.StatusCode() >= 400 {
		err := fmt.Errorf("status %d fetching %s", res.StatusCode(), link.URL)
		span.SetStatus(codes.Error, "detail page returned an error status")
		return sis.DeepRecord{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse html")
		return sis.DeepRecord{}, err
	}

	var record sis.DeepRecord
	scrapeDetail(doc, &record)
	// identity always comes from the link, the page rarely repeats it
	record.SourcedID = link.ID
	if record.FirstName == "" && record.LastName == "" {
		first, last := fieldmatch.SplitCombinedName(link.DisplayName)
		record.Set(sis.FieldFirstName, first)
		record.Set(sis.FieldLastName, last)
	}
	return record, nil
}
