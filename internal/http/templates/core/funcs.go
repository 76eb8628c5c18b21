// Package core holds the template helpers shared by every page.
package core

import (
	"html/template"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/dustin/go-humanize"
	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
	"golang.org/x/net/publicsuffix"
)

// Deps holds optional dependencies for constructing the core template func map.
type Deps struct {
	// Now is the clock used by "ago". Defaults to time.Now.
	Now func() time.Time
}

// Funcs returns sprig's functions plus the forum helpers:
//
//	ago        unix seconds rendered relative to now ("3 hours ago")
//	markdown   sanitized HTML from a markdown body
//	linkDomain registrable domain of a link ("go.dev")
func Funcs(deps Deps) template.FuncMap {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	policy := bluemonday.UGCPolicy()

	funcs := sprig.FuncMap()
	funcs["ago"] = func(unix int64) string { return Ago(unix, now()) }
	funcs["markdown"] = func(body string) template.HTML { return Markdown(policy, body) }
	funcs["linkDomain"] = LinkDomain
	return funcs
}

// Ago renders unix seconds relative to now. Zero renders as "".
func Ago(unix int64, now time.Time) string {
	if unix <= 0 {
		return ""
	}
	return humanize.RelTime(time.Unix(unix, 0), now, "ago", "from now")
}

// Markdown renders body and sanitizes the result with policy.
func Markdown(policy *bluemonday.Policy, body string) template.HTML {
	unsafe := blackfriday.Run([]byte(body))
	// #nosec G203 - output of the UGC sanitizer
	return template.HTML(policy.SanitizeBytes(unsafe))
}

// LinkDomain returns the registrable domain of raw, falling back to the host
// for IPs and unknown suffixes, and "" when raw is not an absolute URL.
func LinkDomain(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	host := u.Hostname()
	if net.ParseIP(host) != nil {
		return host
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}
