package feed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"rfpwatch/internal/domain"
	"rfpwatch/internal/scrape/types"
	"rfpwatch/internal/scrape/util"

	"github.com/mmcdole/gofeed"
)

type Config struct {
	Name               string
	URL                string
	Keywords           []string // keep entries whose title/description mention any of these
	Timeout            time.Duration
	InsecureSkipVerify bool
	Defaults           types.SourceDefaults
}

// Fetcher reads an RSS/Atom feed of postings.
type Fetcher struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(cfg Config, limiter *util.HostLimiter) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
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
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	res, err := f.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s get feed: %w", f.cfg.Name, err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("%s feed status %d", f.cfg.Name, res.StatusCode)
	}

	parsed, err := gofeed.NewParser().Parse(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%s parse feed: %w", f.cfg.Name, err)
	}

	var out []domain.RawFragment
	for _, it := range parsed.Items {
		if it == nil {
			continue
		}
		title := util.CleanText(it.Title)
		desc := util.HTMLText(it.Description)
		if !util.ContainsAny(title+" "+desc, f.cfg.Keywords) {
			continue
		}

		frag := domain.RawFragment{
			Source:       f.cfg.Name,
			Organization: authorName(it),
			Link:         strings.TrimSpace(it.Link),
			Text:         desc,
		}
		if frag.Organization == "" {
			frag.Organization = title
		}
		if len(it.Categories) > 0 {
			frag.Sector = util.CleanText(it.Categories[0])
		}
		if frag.Text == "" {
			frag.Text = title
		}
		f.cfg.Defaults.Apply(&frag)
		out = append(out, frag)
	}
	return out, nil
}

func authorName(it *gofeed.Item) string {
	for _, a := range it.Authors {
		if a != nil && strings.TrimSpace(a.Name) != "" {
			return util.CleanText(a.Name)
		}
	}
	if it.Author != nil { //nolint:staticcheck // older feeds only populate Author
		return util.CleanText(it.Author.Name) //nolint:staticcheck
	}
	return ""
}
