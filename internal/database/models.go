package database

import "time"

// Article is a persisted news record. PublishDate is stored as RFC3339
// UTC text so lexicographic comparison in SQL matches time order.
type Article struct {
	ID          string
	Title       string
	Content     string
	ImageURL    string
	Source      string
	PublishDate time.Time
	Category    string
	URL         string
	IsActive    bool
	CreatedAt   *string
	UpdatedAt   *string
}

// Category is a row from the news_category reference table.
type Category struct {
	ID          string
	Title       string
	Description string
}

// CategoryCount pairs a category with its active-article count.
type CategoryCount struct {
	Category string
	Count    int
}

// Stats contains aggregate store statistics for reporting. They are
// computed fresh on each call, never cached between runs.
type Stats struct {
	TotalActive int
	TodayCount  int
	Categories  []CategoryCount
}
