package detail

import (
	"context"
	"net/url"
	"strings"

	"rostersync-backend/lib/htmlutil"
	"rostersync-backend/lib/scrapers/rosterpage"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
)

// Link is a crawlable pointer to one student's detail page.
type Link struct {
	ID          string
	DisplayName string
	URL         string
}

// targets outside a row/list ancestor must carry one of these keywords
// to count, which filters out navigation chrome that happens to have a
// numeric segment
var targetKeywords = []string{"student", "person", "user"}

// ExtractLinks scans a roster document for detail-page links. Hrefs are
// resolved against base, matched against the source's id patterns, and
// deduped by extracted id with the first occurrence winning.
func ExtractLinks(ctx context.Context, doc *goquery.Document, base *url.URL, cfg rosterpage.SourceConfig) []Link {
	ctx, span := tracer.Start(ctx, "ExtractLinks")
	defer span.End()
	span.SetAttributes(attribute.String("source", string(cfg.Kind)))

	if doc == nil {
		return nil
	}

	seen := map[string]bool{}
	var links []Link
	add := func(anchor htmlutil.Anchor, requireKeyword bool) {
		id := rosterpage.ExtractID(anchor.Href, cfg)
		if id == "" || seen[id] {
			return
		}
		if requireKeyword && !hasTargetKeyword(anchor.Href) {
			return
		}
		seen[id] = true
		links = append(links, Link{
			ID:          id,
			DisplayName: anchor.Name,
			URL:         anchor.Href,
		})
	}

	// anchors inside row/list structure are trusted as roster entries
	doc.Find("tr, li, [role=row], [role=listitem]").Each(func(_ int, row *goquery.Selection) {
		for _, anchor := range htmlutil.GetAnchors(ctx, row.Find("a[href]"), base) {
			add(anchor, false)
		}
	})
	// everything else needs a student/person/user keyword in the target
	for _, anchor := range htmlutil.GetAnchors(ctx, doc.Find("a[href]"), base) {
		add(anchor, true)
	}

	span.SetAttributes(attribute.Int("links", len(links)))
	return links
}

func hasTargetKeyword(target string) bool {
	target = strings.ToLower(target)
	for _, keyword := range targetKeywords {
		if strings.Contains(target, keyword) {
			return true
		}
	}
	return false
}
