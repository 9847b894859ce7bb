package extract

import (
	"strings"
	"testing"
	"time"
)

var testNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

func extractGeneric(t *testing.T, html string) []Candidate {
	t.Helper()
	candidates, err := Extract([]byte(html), "https://example.com/news", "Test Source", genericProfile, testNow, 0)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	return candidates
}

func TestTitleCascadePrefersH1(t *testing.T) {
	html := `<article>
		<h1>Primary headline</h1>
		<h2>Secondary headline</h2>
		<a href="/story/1">read</a>
	</article>`

	candidates := extractGeneric(t, html)
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].Title != "Primary headline" {
		t.Errorf("expected h1 to win, got %q", candidates[0].Title)
	}
}

func TestTitleCascadeFallsBackToH2(t *testing.T) {
	html := `<article>
		<h2>Only headline</h2>
		<a href="/story/2">read</a>
	</article>`

	candidates := extractGeneric(t, html)
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].Title != "Only headline" {
		t.Errorf("expected h2 fallback, got %q", candidates[0].Title)
	}
}

func TestTitleSentinelWhenUnresolvable(t *testing.T) {
	html := `<article><a href="/story/3"><img src="x.jpg"></a></article>`

	candidates := extractGeneric(t, html)
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].Title != "No title" {
		t.Errorf("expected sentinel title, got %q", candidates[0].Title)
	}
}

func TestContainerCascade(t *testing.T) {
	// No <article> on the page; the cascade should land on .post.
	html := `<div class="post">
		<h2>Post headline</h2>
		<a href="/story/4">read</a>
	</div>`

	candidates := extractGeneric(t, html)
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate from .post fallback, got %d", len(candidates))
	}
}

func TestRelativeURLsResolved(t *testing.T) {
	html := `<article>
		<h2>Headline</h2>
		<a href="/story/5">read</a>
		<img src="/images/photo.jpg">
	</article>`

	candidates := extractGeneric(t, html)
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].URL != "https://example.com/story/5" {
		t.Errorf("expected absolute link, got %q", candidates[0].URL)
	}
	if candidates[0].ImageURL != "https://example.com/images/photo.jpg" {
		t.Errorf("expected absolute image, got %q", candidates[0].ImageURL)
	}
}

func TestLinklessContainerDroppedSilently(t *testing.T) {
	html := `<article><h2>Navigation block</h2></article>
		<article><h2>Real story</h2><a href="/story/6">read</a></article>`

	candidates := extractGeneric(t, html)
	if len(candidates) != 1 {
		t.Fatalf("expected linkless container dropped, got %d candidates", len(candidates))
	}
	if candidates[0].Title != "Real story" {
		t.Errorf("expected surviving candidate, got %q", candidates[0].Title)
	}
}

func TestPerPageLimit(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 15; i++ {
		sb.WriteString(`<article><h2>Story</h2><a href="/story/` + string(rune('a'+i)) + `">read</a></article>`)
	}

	candidates := extractGeneric(t, sb.String())
	if len(candidates) != 10 {
		t.Errorf("expected page cap of 10, got %d", len(candidates))
	}
}

func TestDateParsedFromContainer(t *testing.T) {
	html := `<article>
		<h2>Dated story</h2>
		<a href="/story/7">read</a>
		<span class="date">2024-03-15</span>
	</article>`

	candidates := extractGeneric(t, html)
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	got := candidates[0].PublishDate
	if got.Year() != 2024 || got.Month() != time.March || got.Day() != 15 {
		t.Errorf("expected parsed date, got %v", got)
	}
}

func TestDateDefaultsToNow(t *testing.T) {
	html := `<article>
		<h2>Undated story</h2>
		<a href="/story/8">read</a>
		<span class="date">sometime recently</span>
	</article>`

	candidates := extractGeneric(t, html)
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if !candidates[0].PublishDate.Equal(testNow) {
		t.Errorf("expected fetch-time fallback, got %v", candidates[0].PublishDate)
	}
}

func TestNarcProfileSelectors(t *testing.T) {
	html := `<div class="news-item">
		<h2>NARC release</h2>
		<a href="/news/release-1">more</a>
		<p>Wheat variety trials concluded.</p>
		<span class="date">2024-02-10</span>
	</div>`

	candidates, err := Extract([]byte(html), "https://narc.gov.np/news", "Nepal Agricultural Research Council", ProfileFor("narc"), testNow, 0)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	c := candidates[0]
	if c.Title != "NARC release" {
		t.Errorf("unexpected title %q", c.Title)
	}
	if c.URL != "https://narc.gov.np/news/release-1" {
		t.Errorf("unexpected url %q", c.URL)
	}
	if c.Content != "Wheat variety trials concluded." {
		t.Errorf("unexpected content %q", c.Content)
	}
}

func TestProfileForUnknownFallsBackToGeneric(t *testing.T) {
	if ProfileFor("does-not-exist").Name != "generic" {
		t.Error("expected generic profile for unknown name")
	}
	if ProfileFor("narc").Name != "narc" {
		t.Error("expected narc profile by name")
	}
}
