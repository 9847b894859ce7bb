package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const timeLayout = time.RFC3339

// UpsertArticle inserts the article or, when its URL is already known,
// overwrites the existing row in place. Re-sighted articles are forced
// active again. Returns true when a new row was created.
func (db *DB) UpsertArticle(a Article, category string) (bool, error) {
	var id string
	err := db.conn.QueryRow("SELECT id FROM news WHERE url = ?", a.URL).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		_, err = db.conn.Exec(
			`INSERT INTO news (id, title, content, image_url, source, publish_date, category, url, is_active)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1)`,
			uuid.NewString(), a.Title, a.Content, a.ImageURL, a.Source,
			formatTime(a.PublishDate), category, a.URL,
		)
		if err != nil {
			return false, fmt.Errorf("inserting article: %w", err)
		}
		return true, nil
	case err != nil:
		return false, fmt.Errorf("looking up article: %w", err)
	}

	_, err = db.conn.Exec(
		`UPDATE news SET title = ?, content = ?, image_url = ?, source = ?,
			publish_date = ?, category = ?, is_active = 1, updated_at = datetime('now')
		WHERE id = ?`,
		a.Title, a.Content, a.ImageURL, a.Source,
		formatTime(a.PublishDate), category, id,
	)
	if err != nil {
		return false, fmt.Errorf("updating article: %w", err)
	}
	return false, nil
}

// DeactivateStale flips is_active off for active articles whose publish
// date fell outside the retention window. Idempotent; returns how many
// rows changed. Rows are never deleted.
func (db *DB) DeactivateStale(retentionDays int) (int, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	result, err := db.conn.Exec(
		`UPDATE news SET is_active = 0, updated_at = datetime('now')
		WHERE publish_date < ? AND is_active = 1`,
		formatTime(cutoff),
	)
	if err != nil {
		return 0, fmt.Errorf("deactivating stale articles: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// GetActiveArticles returns active articles newest first, optionally
// filtered to one category. A non-positive limit defaults to 10.
func (db *DB) GetActiveArticles(category string, limit int) ([]Article, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `SELECT id, title, content, image_url, source, publish_date, category, url, is_active, created_at, updated_at
		FROM news WHERE is_active = 1`
	var args []any
	if category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}
	query += " ORDER BY publish_date DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

// GetArticleByURL returns the article with the given canonical URL, or
// nil when unknown.
func (db *DB) GetArticleByURL(url string) (*Article, error) {
	row := db.conn.QueryRow(
		`SELECT id, title, content, image_url, source, publish_date, category, url, is_active, created_at, updated_at
		FROM news WHERE url = ?`, url,
	)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetCategoryCounts returns active-article counts per category, largest
// first.
func (db *DB) GetCategoryCounts() ([]CategoryCount, error) {
	rows, err := db.conn.Query(
		`SELECT category, COUNT(*) AS count FROM news
		WHERE is_active = 1 GROUP BY category ORDER BY count DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []CategoryCount
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// CountActive returns the number of active articles.
func (db *DB) CountActive() (int, error) {
	var n int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM news WHERE is_active = 1").Scan(&n)
	return n, err
}

// CountToday returns the number of articles published on the given day
// (UTC), active or not.
func (db *DB) CountToday(now time.Time) (int, error) {
	day := now.UTC().Format("2006-01-02")
	var n int
	err := db.conn.QueryRow(
		"SELECT COUNT(*) FROM news WHERE substr(publish_date, 1, 10) = ?", day,
	).Scan(&n)
	return n, err
}

// GetStats aggregates the reporting numbers in one call.
func (db *DB) GetStats(now time.Time) (*Stats, error) {
	active, err := db.CountActive()
	if err != nil {
		return nil, err
	}
	today, err := db.CountToday(now)
	if err != nil {
		return nil, err
	}
	counts, err := db.GetCategoryCounts()
	if err != nil {
		return nil, err
	}
	return &Stats{TotalActive: active, TodayCount: today, Categories: counts}, nil
}

// GetCategories returns the news_category reference rows.
func (db *DB) GetCategories() ([]Category, error) {
	rows, err := db.conn.Query("SELECT id, title, description FROM news_category ORDER BY title")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []Category
	for rows.Next() {
		var c Category
		var desc sql.NullString
		if err := rows.Scan(&c.ID, &c.Title, &desc); err != nil {
			return nil, err
		}
		c.Description = desc.String
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func scanArticles(rows *sql.Rows) ([]Article, error) {
	var articles []Article
	for rows.Next() {
		a, err := scanArticleRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		articles = append(articles, *a)
	}
	return articles, rows.Err()
}

func scanArticle(row *sql.Row) (*Article, error) {
	return scanArticleRow(row.Scan)
}

func scanArticleRow(scan func(...any) error) (*Article, error) {
	var a Article
	var content, imageURL, publishDate sql.NullString
	var active int
	if err := scan(&a.ID, &a.Title, &content, &imageURL, &a.Source,
		&publishDate, &a.Category, &a.URL, &active, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Content = content.String
	a.ImageURL = imageURL.String
	a.PublishDate = parseTime(publishDate.String)
	a.IsActive = active != 0
	return &a, nil
}
