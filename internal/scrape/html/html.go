package html

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"rfpwatch/internal/domain"
	"rfpwatch/internal/scrape/types"
	"rfpwatch/internal/scrape/util"

	"github.com/PuerkitoBio/goquery"
)

// Selectors locate a posting and its fields inside a listing page. Field
// selectors are evaluated relative to the item. Link's href is used.
type Selectors struct {
	Item         string
	Organization string
	Region       string
	Sector       string
	Link         string
}

type Config struct {
	Name               string
	URL                string
	Selectors          Selectors
	Timeout            time.Duration
	InsecureSkipVerify bool
	Defaults           types.SourceDefaults
}

type Fetcher struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(cfg Config, limiter *util.HostLimiter) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Selectors.Link == "" {
		cfg.Selectors.Link = "a"
	}
	return &Fetcher{
		cfg:     cfg,
		hc:      util.NewHTTPClient(cfg.Timeout, cfg.InsecureSkipVerify),
		limiter: limiter,
	}
}

func (f *Fetcher) Name() string { return f.cfg.Name }

func (f *Fetcher) Fetch(ctx context.Context) ([]domain.RawFragment, error) {
	if f.limiter != nil {
		if err := f.limiter.WaitURL(ctx, f.cfg.URL); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s build request: %w", f.cfg.Name, err)
	}
	req.Header.Set("User-Agent", util.UserAgent)

	res, err := f.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s get page: %w", f.cfg.Name, err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("%s page status %d", f.cfg.Name, res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%s parse html: %w", f.cfg.Name, err)
	}

	// redirects may have moved us; relative links resolve against the final page
	base := res.Request.URL
	sel := f.cfg.Selectors

	var out []domain.RawFragment
	doc.Find(sel.Item).Each(func(_ int, item *goquery.Selection) {
		href, _ := item.Find(sel.Link).First().Attr("href")
		link := util.ResolveURL(base, href)
		if link == "" {
			return
		}

		frag := domain.RawFragment{
			Source:       f.cfg.Name,
			Organization: fieldText(item, sel.Organization),
			Region:       fieldText(item, sel.Region),
			Sector:       fieldText(item, sel.Sector),
			Link:         link,
			Text:         util.CleanText(item.Text()),
		}
		f.cfg.Defaults.Apply(&frag)
		out = append(out, frag)
	})
	return out, nil
}

func fieldText(item *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return util.CleanText(item.Find(selector).First().Text())
}
