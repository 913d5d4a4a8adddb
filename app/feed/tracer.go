package feed

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Tracer resolves the destination URL of an article page. News aggregators
// link RSS entries to interstitial pages that forward to the original
// publisher via a meta refresh; pages hosting the content directly resolve
// to themselves.
type Tracer struct{}

func NewTracer() *Tracer {
	return &Tracer{}
}

// Run inspects the HTML fetched from pageURL and returns the destination
// URL: a meta refresh target if present, otherwise an off-site canonical or
// og:url reference, otherwise pageURL itself.
func (t *Tracer) Run(pageURL string, data []byte) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse page URL: %w", err)
	}

	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var refresh, canonical, ogURL string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				if strings.EqualFold(attr(n, "http-equiv"), "refresh") {
					refresh = refreshTarget(attr(n, "content"))
				}
				if strings.EqualFold(attr(n, "property"), "og:url") {
					ogURL = attr(n, "content")
				}
			case "link":
				if strings.EqualFold(attr(n, "rel"), "canonical") {
					canonical = attr(n, "href")
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if dest := t.resolve(base, refresh); dest != "" {
		return dest, nil
	}
	// Canonical and og:url count only when they lead off the current page;
	// pages hosting the content directly reference themselves.
	for _, candidate := range []string{canonical, ogURL} {
		if dest := t.resolve(base, candidate); dest != "" && !sameResource(base, dest) {
			return dest, nil
		}
	}

	return pageURL, nil
}

func (t *Tracer) resolve(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	parsed, err := base.Parse(ref)
	if err != nil {
		return ""
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ""
	}

	return parsed.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

// refreshTarget extracts the url= portion of a meta refresh content value,
// e.g. "0; url=https://example.com/article".
func refreshTarget(content string) string {
	for _, part := range strings.Split(content, ";") {
		part = strings.TrimSpace(part)
		if len(part) > 4 && strings.EqualFold(part[:4], "url=") {
			return strings.Trim(part[4:], `'" `)
		}
	}
	return ""
}

func sameResource(base *url.URL, dest string) bool {
	parsed, err := url.Parse(dest)
	if err != nil {
		return false
	}
	return strings.EqualFold(parsed.Host, base.Host) &&
		strings.TrimSuffix(parsed.Path, "/") == strings.TrimSuffix(base.Path, "/")
}
