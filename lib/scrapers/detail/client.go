// Package detail crawls per-student detail pages to enrich roster
// records with the fields list views never show. The crawl is strictly
// sequential with a fixed inter-request delay: detail pages live behind
// shared authenticated sessions, and concurrent requests against one
// session corrupt it on several SIS platforms.
package detail

import (
	"net/http/cookiejar"
	"net/url"
	"time"

	"rostersync-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("rostersync.scrapers.detail")

const (
	// delay between consecutive detail fetches, never after the last
	interItemDelay = 800 * time.Millisecond
	// independent timeout per detail fetch
	fetchTimeout = 10 * time.Second
)

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client
}

type ClientOptions struct {
	BaseUrl string
}

func NewClient(opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(fetchTimeout)

	telemetry.InstrumentResty(client, "scrapers/detail/http")

	return &Client{
		BaseUrl: baseUrl,
		Http:    client,
	}, nil
}
