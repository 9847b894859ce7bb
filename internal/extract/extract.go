// Package extract turns raw listing pages into article candidates.
// Page structure across the target sites is uncontrolled, so every
// field is resolved through an ordered selector cascade: the first
// selector that yields an element wins. One specialized profile exists
// for NARC; everything else goes through the generic profile.
package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/krishisewa/agrinews/internal/dates"
)

// titleSentinel marks candidates whose title could not be resolved.
const titleSentinel = "No title"

const defaultPageLimit = 10

// Candidate is an article extracted from a listing page, not yet
// categorized or persisted. URL is the canonical key; candidates
// without one never leave this package.
type Candidate struct {
	Title       string
	Content     string
	ImageURL    string
	Source      string
	PublishDate time.Time
	URL         string
}

// Profile is an extraction selector set. Each field holds selectors
// ordered by specificity; Containers locates the repeated article
// blocks on the page.
type Profile struct {
	Name       string
	Containers []string
	Title      []string
	Link       []string
	Content    []string
	Image      []string
	Date       []string
}

var narcProfile = Profile{
	Name:       "narc",
	Containers: []string{"div.news-item", "article", "div.post"},
	Title:      []string{"h2", "h3", "a"},
	Link:       []string{"a"},
	Content:    []string{"p", "div.excerpt"},
	Image:      []string{"img"},
	Date:       []string{"time", "span.date"},
}

var genericProfile = Profile{
	Name:       "generic",
	Containers: []string{"article", ".post", ".news-item", ".entry", ".story", `div[class*="news"]`, `div[class*="article"]`, `div[class*="post"]`},
	Title:      []string{"h1", "h2", "h3", ".title", ".headline"},
	Link:       []string{"a"},
	Content:    []string{"p", ".excerpt", ".summary", ".content"},
	Image:      []string{"img"},
	Date:       []string{"time", ".date", ".published", ".timestamp"},
}

var profiles = map[string]Profile{
	"narc": narcProfile,
}

// ProfileFor returns the specialized profile registered under name, or
// the generic profile when none exists.
func ProfileFor(name string) Profile {
	if p, ok := profiles[name]; ok {
		return p
	}
	return genericProfile
}

// Extract parses a listing page and returns up to limit candidates.
// Containers without a resolvable link are dropped silently: they are
// navigation blocks and other page noise, not errors. Dates that fail
// to parse default to now. A non-positive limit defaults to 10.
func Extract(page []byte, baseURL, sourceName string, profile Profile, now time.Time, limit int) ([]Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %s: %w", baseURL, err)
	}

	if limit <= 0 {
		limit = defaultPageLimit
	}

	containers := findContainers(doc, profile.Containers)

	var candidates []Candidate
	containers.EachWithBreak(func(i int, item *goquery.Selection) bool {
		if i >= limit {
			return false
		}

		link := firstAttr(item, profile.Link, "href")
		if link == "" {
			return true
		}

		c := Candidate{
			Title:       titleSentinel,
			Source:      sourceName,
			PublishDate: now,
			URL:         resolveURL(base, link),
		}

		if title := firstText(item, profile.Title); title != "" {
			c.Title = title
		}
		c.Content = firstText(item, profile.Content)
		if src := firstAttr(item, profile.Image, "src"); src != "" {
			c.ImageURL = resolveURL(base, src)
		}
		if parsed, ok := dates.Parse(firstText(item, profile.Date)); ok {
			c.PublishDate = parsed
		}

		candidates = append(candidates, c)
		return true
	})

	return candidates, nil
}

// findContainers walks the container cascade until a selector yields
// matches.
func findContainers(doc *goquery.Document, selectors []string) *goquery.Selection {
	var containers *goquery.Selection
	for _, sel := range selectors {
		containers = doc.Find(sel)
		if containers.Length() > 0 {
			return containers
		}
	}
	return containers
}

func firstText(item *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		found := item.Find(sel).First()
		if found.Length() == 0 {
			continue
		}
		if text := strings.TrimSpace(found.Text()); text != "" {
			return text
		}
	}
	return ""
}

func firstAttr(item *goquery.Selection, selectors []string, attr string) string {
	for _, sel := range selectors {
		found := item.Find(sel).First()
		if found.Length() == 0 {
			continue
		}
		if value, ok := found.Attr(attr); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func resolveURL(base *url.URL, ref string) string {
	parsed, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(parsed).String()
}
