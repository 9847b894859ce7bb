// Package scrape collects article candidates from the configured
// sources, scraping listing pages or parsing RSS feeds as configured.
package scrape

import (
	"context"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"

	"github.com/krishisewa/agrinews/internal/config"
	"github.com/krishisewa/agrinews/internal/extract"
	"github.com/krishisewa/agrinews/internal/fetch"
)

// Scraper walks the source list sequentially, pausing between sources
// so the target sites are not hammered.
type Scraper struct {
	client      *fetch.Client
	feedParser  *gofeed.Parser
	delay       time.Duration
	perSource   int
	enrichLimit int
	fetchFull   bool
	now         func() time.Time
}

// New creates a Scraper from the scrape config section.
func New(cfg config.Scrape, client *fetch.Client) *Scraper {
	return &Scraper{
		client:      client,
		feedParser:  gofeed.NewParser(),
		delay:       time.Duration(cfg.DelaySeconds) * time.Second,
		perSource:   cfg.PerSourceLimit,
		enrichLimit: cfg.EnrichLimit,
		fetchFull:   cfg.FetchFullContent,
		now:         time.Now,
	}
}

// CollectAll gathers candidates from every source. A failing source is
// logged and skipped; it never aborts the run.
func (s *Scraper) CollectAll(ctx context.Context, sources []config.Source) []extract.Candidate {
	var all []extract.Candidate

	for i, src := range sources {
		if i > 0 && s.delay > 0 {
			select {
			case <-time.After(s.delay):
			case <-ctx.Done():
				return all
			}
		}

		var candidates []extract.Candidate
		var err error
		if src.FeedURL != "" {
			candidates, err = s.collectFeed(ctx, src)
		} else {
			candidates, err = s.collectPage(ctx, src)
		}
		if err != nil {
			log.Printf("Skipping source %s: %v", src.Name, err)
			continue
		}

		log.Printf("Collected %d candidates from %s", len(candidates), src.Name)
		all = append(all, candidates...)
	}

	if s.fetchFull {
		s.enrich(ctx, all)
	}
	return all
}

func (s *Scraper) collectPage(ctx context.Context, src config.Source) ([]extract.Candidate, error) {
	page, err := s.client.Get(ctx, src.URL)
	if err != nil {
		return nil, err
	}
	return extract.Extract(page, src.URL, src.Name, extract.ProfileFor(src.Profile), s.now(), s.perSource)
}

func (s *Scraper) collectFeed(ctx context.Context, src config.Source) ([]extract.Candidate, error) {
	body, err := s.client.Get(ctx, src.FeedURL)
	if err != nil {
		return nil, err
	}

	feed, err := s.feedParser.ParseString(string(body))
	if err != nil {
		return nil, err
	}

	var candidates []extract.Candidate
	for _, item := range feed.Items {
		if s.perSource > 0 && len(candidates) >= s.perSource {
			break
		}
		c := s.feedCandidate(item, src.Name)
		if c == nil {
			continue
		}
		candidates = append(candidates, *c)
	}
	return candidates, nil
}

func (s *Scraper) feedCandidate(item *gofeed.Item, source string) *extract.Candidate {
	link := item.Link
	if link == "" {
		link = item.GUID
	}
	title := strings.TrimSpace(item.Title)
	if link == "" || title == "" {
		return nil
	}

	published := s.now()
	if item.PublishedParsed != nil {
		published = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		published = *item.UpdatedParsed
	}

	content := item.Content
	if content == "" {
		content = item.Description
	}

	var image string
	if item.Image != nil {
		image = item.Image.URL
	}

	return &extract.Candidate{
		Title:       title,
		Content:     flattenHTML(content),
		ImageURL:    image,
		Source:      source,
		PublishDate: published,
		URL:         link,
	}
}

// enrich replaces empty candidate bodies with readable article text,
// bounded so a run never turns into a full-site crawl.
func (s *Scraper) enrich(ctx context.Context, candidates []extract.Candidate) {
	fetched := 0
	for i := range candidates {
		if candidates[i].Content != "" {
			continue
		}
		if s.enrichLimit > 0 && fetched >= s.enrichLimit {
			return
		}
		fetched++

		body, err := s.client.Get(ctx, candidates[i].URL)
		if err != nil {
			log.Printf("Content fetch failed for %s: %v", candidates[i].URL, err)
			continue
		}

		pageURL, err := url.Parse(candidates[i].URL)
		if err != nil {
			continue
		}
		article, err := readability.FromReader(strings.NewReader(string(body)), pageURL)
		if err != nil {
			log.Printf("Readability failed for %s: %v", candidates[i].URL, err)
			continue
		}

		text := strings.Join(strings.Fields(article.TextContent), " ")
		if text != "" {
			candidates[i].Content = text
		}
	}
}

// flattenHTML reduces a feed entry's HTML body to whitespace-normalized
// plain text.
func flattenHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
