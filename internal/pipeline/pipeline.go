// Package pipeline runs one full scrape-categorize-persist pass over
// the configured sources.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/krishisewa/agrinews/internal/classify"
	"github.com/krishisewa/agrinews/internal/config"
	"github.com/krishisewa/agrinews/internal/database"
	"github.com/krishisewa/agrinews/internal/extract"
	"github.com/krishisewa/agrinews/internal/fetch"
	"github.com/krishisewa/agrinews/internal/scrape"
)

// Collector gathers article candidates from the configured sources.
type Collector interface {
	CollectAll(ctx context.Context, sources []config.Source) []extract.Candidate
}

// Stats summarizes a pipeline run. New/Updated/Errors are per-run
// counters; the aggregate fields come from the store after the run.
type Stats struct {
	New         int
	Updated     int
	Errors      int
	Deactivated int
	Duration    time.Duration
	TotalActive int
	TodayCount  int
	Categories  []database.CategoryCount
}

// Pipeline orchestrates collect, categorize, upsert, and stale expiry.
type Pipeline struct {
	cfg         *config.Config
	db          *database.DB
	collector   Collector
	categorizer classify.Categorizer
	now         func() time.Time
}

// New wires a pipeline from config. The categorizer may come up in
// degraded mode; that is decided here, once, not per call.
func New(cfg *config.Config, db *database.DB) *Pipeline {
	client := fetch.NewClient(time.Duration(cfg.Scrape.TimeoutSeconds) * time.Second)
	return &Pipeline{
		cfg:         cfg,
		db:          db,
		collector:   scrape.New(cfg.Scrape, client),
		categorizer: classify.New(cfg.Classifier),
		now:         time.Now,
	}
}

// Run executes one pass. An unreachable store aborts the run before
// any fetching; everything after that point is per-candidate isolated.
func (p *Pipeline) Run(ctx context.Context) (*Stats, error) {
	start := p.now()
	log.Println("Starting news collection run...")

	if err := p.db.Ping(); err != nil {
		return nil, fmt.Errorf("store unreachable: %w", err)
	}

	candidates := p.collector.CollectAll(ctx, p.cfg.Sources)
	log.Printf("Collected %d candidates from %d sources", len(candidates), len(p.cfg.Sources))

	stats := &Stats{}
	for _, c := range candidates {
		if c.URL == "" {
			stats.Errors++
			log.Printf("Dropping candidate without URL from %s", c.Source)
			continue
		}
		category := p.categorizer.Categorize(ctx, c.Title, c.Content)

		isNew, err := p.db.UpsertArticle(database.Article{
			Title:       c.Title,
			Content:     c.Content,
			ImageURL:    c.ImageURL,
			Source:      c.Source,
			PublishDate: c.PublishDate,
			URL:         c.URL,
		}, category)
		if err != nil {
			stats.Errors++
			log.Printf("Failed to save article %s: %v", c.URL, err)
			continue
		}
		if isNew {
			stats.New++
		} else {
			stats.Updated++
		}
	}

	deactivated, err := p.db.DeactivateStale(p.cfg.Scrape.RetentionDays)
	if err != nil {
		stats.Errors++
		log.Printf("Stale deactivation failed: %v", err)
	}
	stats.Deactivated = deactivated
	stats.Duration = p.now().Sub(start)

	if agg, err := p.db.GetStats(p.now()); err != nil {
		log.Printf("Failed to read store statistics: %v", err)
	} else {
		stats.TotalActive = agg.TotalActive
		stats.TodayCount = agg.TodayCount
		stats.Categories = agg.Categories
	}

	p.logSummary(stats)
	return stats, nil
}

func (p *Pipeline) logSummary(s *Stats) {
	log.Printf("Run complete in %s: %d new, %d updated, %d errors, %d deactivated",
		s.Duration.Round(time.Millisecond), s.New, s.Updated, s.Errors, s.Deactivated)
	log.Printf("Store: %d active articles, %d from today", s.TotalActive, s.TodayCount)
	for _, c := range s.Categories {
		log.Printf("  %-22s %d", c.Category, c.Count)
	}
}
