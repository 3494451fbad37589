package engine

import (
	"net/url"
	"sort"
	"strings"
)

// visitedSet is the cycle guard of a single walk. It is never shared
// between walks, so it needs no locking.
type visitedSet struct {
	seen map[string]struct{}
}

func newVisitedSet() *visitedSet {
	return &visitedSet{seen: make(map[string]struct{})}
}

// Has reports whether the URL (after canonicalization) was already visited.
func (v *visitedSet) Has(rawURL string) bool {
	_, ok := v.seen[CanonicalizeURL(rawURL)]
	return ok
}

// Add marks a URL as visited.
func (v *visitedSet) Add(rawURL string) {
	v.seen[CanonicalizeURL(rawURL)] = struct{}{}
}

// Len returns the number of distinct pages visited.
func (v *visitedSet) Len() int {
	return len(v.seen)
}

// CanonicalizeURL normalizes a URL so equivalent page links compare equal:
// - lowercases scheme and host
// - removes fragment
// - sorts query parameters
// - removes default ports (80 for http, 443 for https)
//
// Trailing slashes are kept: "/a" and "/a/" may be different pages.
func CanonicalizeURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return rawURL
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	host := u.Hostname()
	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		u.Host = host
	}

	if u.RawQuery != "" {
		params := u.Query()
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var sorted []string
		for _, k := range keys {
			vals := params[k]
			sort.Strings(vals)
			for _, v := range vals {
				sorted = append(sorted, url.QueryEscape(k)+"="+url.QueryEscape(v))
			}
		}
		u.RawQuery = strings.Join(sorted, "&")
	}

	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}
