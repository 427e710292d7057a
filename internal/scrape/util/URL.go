package util

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/purell"
)

// CanonicalizeURL strips tracking parameters and applies safe URL
// normalization. Unparseable or relative input is returned trimmed.
func CanonicalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}

	q := u.Query()
	for k := range q {
		if isTrackingParam(k) {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()

	return purell.NormalizeURL(u, purell.FlagsSafe|purell.FlagRemoveFragment|purell.FlagSortQuery)
}

// ResolveURL makes href absolute against base.
func ResolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

func isTrackingParam(k string) bool {
	lk := strings.ToLower(k)
	return strings.HasPrefix(lk, "utm_") ||
		lk == "gclid" || lk == "fbclid" || lk == "msclkid" ||
		lk == "mc_cid" || lk == "mc_eid" ||
		lk == "mkt_tok"
}
