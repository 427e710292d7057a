package html

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

const listing = `<html><body>
<div class="rfp-item">
  <div class="organization">Town of Banff</div>
  <div class="category">Municipal</div>
  <p>Enterprise risk review. Closing March 20, 2026. Budget $40k.</p>
  <a href="/rfp/banff-risk">details</a>
</div>
<div class="rfp-item">
  <div class="organization">No Link Org</div>
  <p>Deadline 2026-01-01</p>
</div>
<div class="rfp-item">
  <div class="organization">Alberta Energy</div>
  <a href="https://other.example.com/rfp/9">details</a>
</div>
</body></html>`

func TestFetchExtractsItemsWithLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listing))
	}))
	defer srv.Close()

	f := New(Config{
		Name: "rfpdb",
		URL:  srv.URL + "/view/all",
		Selectors: Selectors{
			Item:         "div.rfp-item",
			Organization: "div.organization",
			Sector:       "div.category",
			Link:         "a",
		},
	}, nil)

	frags, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, frags, 2)

	require.Equal(t, "Town of Banff", frags[0].Organization)
	require.Equal(t, "Municipal", frags[0].Sector)
	require.Equal(t, "Unknown", frags[0].Region)
	require.Equal(t, srv.URL+"/rfp/banff-risk", frags[0].Link)
	require.Contains(t, frags[0].Text, "Closing March 20, 2026")

	require.Equal(t, "https://other.example.com/rfp/9", frags[1].Link)
	require.Equal(t, "Unknown", frags[1].Sector)
}

func TestFetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := New(Config{Name: "findrfp", URL: srv.URL, Selectors: Selectors{Item: "div"}}, nil).Fetch(context.Background())
	require.ErrorContains(t, err, "status 403")
}
