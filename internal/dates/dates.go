// Package dates turns loosely formatted date text from scraped pages
// into timestamps. Source sites mix ISO dates, slash dates, and
// Bikram Sambat month names, often buried in surrounding text, so
// parsing is best-effort by design.
package dates

import (
	"regexp"
	"time"

	"github.com/araddon/dateparse"
)

// datePatterns are tried in order; the first matching substring is
// handed to the generic parser. A substring that fails to parse does
// not abort the scan, the next pattern gets its chance.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),                                                                                                // YYYY-MM-DD
	regexp.MustCompile(`\d{2}/\d{2}/\d{4}`),                                                                                                // MM/DD/YYYY
	regexp.MustCompile(`\d{2}-\d{2}-\d{4}`),                                                                                                // DD-MM-YYYY
	regexp.MustCompile(`\d{1,2}\s+(?:Baisakh|Jestha|Asar|Shrawan|Bhadra|Ashoj|Kartik|Mangsir|Poush|Magh|Falgun|Chaitra)\s+\d{4}`), // Nepali months
}

// Parse extracts the first recognizable date from text. The second
// return is false when no pattern matched or every matched substring
// failed to parse; callers supply their own fallback (usually the
// fetch time).
func Parse(text string) (time.Time, bool) {
	if text == "" {
		return time.Time{}, false
	}

	for _, pattern := range datePatterns {
		match := pattern.FindString(text)
		if match == "" {
			continue
		}
		parsed, err := dateparse.ParseAny(match)
		if err != nil {
			continue
		}
		return parsed, true
	}

	return time.Time{}, false
}
