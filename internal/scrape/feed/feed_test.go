package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"rfpwatch/internal/scrape/types"

	"github.com/stretchr/testify/require"
)

const rss = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
<channel>
  <title>RFP feed</title>
  <item>
    <title>Cybersecurity Audit Services</title>
    <link>https://rfp.example.com/1</link>
    <dc:creator>City of Halifax</dc:creator>
    <category>Government</category>
    <description>&lt;p&gt;Deadline: 2026-03-15, Budget approx $250k for compliance review&lt;/p&gt;</description>
  </item>
  <item>
    <title>Landscaping Services</title>
    <link>https://rfp.example.com/2</link>
    <description>Due 2026-04-01</description>
  </item>
  <item>
    <title>Risk assessment due June 5, 2026</title>
    <link>https://rfp.example.com/3</link>
  </item>
</channel>
</rss>`

func TestFetchFiltersByKeywordAndMapsFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rss))
	}))
	defer srv.Close()

	f := New(Config{
		Name:     "rfpmart",
		URL:      srv.URL,
		Keywords: []string{"risk", "compliance", "audit", "cybersecurity"},
	}, nil)

	frags, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, frags, 2)

	first := frags[0]
	require.Equal(t, "rfpmart", first.Source)
	require.Equal(t, "City of Halifax", first.Organization)
	require.Equal(t, types.Unknown, first.Region)
	require.Equal(t, "Government", first.Sector)
	require.Equal(t, "https://rfp.example.com/1", first.Link)
	require.Equal(t, "Deadline: 2026-03-15, Budget approx $250k for compliance review", first.Text)

	second := frags[1]
	require.Equal(t, "Risk assessment due June 5, 2026", second.Organization)
	require.Equal(t, types.Unknown, second.Sector)
	require.Equal(t, "Risk assessment due June 5, 2026", second.Text)
}

func TestFetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	frags, err := New(Config{Name: "rfpmart", URL: srv.URL}, nil).Fetch(context.Background())
	require.Error(t, err)
	require.Empty(t, frags)
}

func TestFetchMalformedFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not a feed"))
	}))
	defer srv.Close()

	_, err := New(Config{Name: "rfpmart", URL: srv.URL}, nil).Fetch(context.Background())
	require.Error(t, err)
}
