package database

import (
	"database/sql"

	"github.com/google/uuid"
)

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// categorySeed is display metadata for the news_category reference
// table. The classifier keeps its own description table; this one only
// feeds UI consumers of the API.
var categorySeed = []struct {
	Title       string
	Description string
}{
	{"crop_pests", "Crop diseases, pests, and plant health"},
	{"market_prices", "Commodity prices and market trends"},
	{"weather_advisory", "Weather forecasts and climate advisories"},
	{"policy_update", "Government policies and regulations"},
	{"technology_innovation", "New agricultural technologies and methods"},
	{"fertilizer_seeds", "Fertilizers, seeds, and agricultural inputs"},
	{"irrigation_water", "Irrigation systems and water management"},
	{"livestock_dairy", "Livestock farming and dairy production"},
	{"organic_farming", "Organic and sustainable farming practices"},
	{"uncategorized", "Articles without a confident category"},
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS news (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    content TEXT,
    image_url TEXT,
    source TEXT NOT NULL,
    publish_date TEXT,
    category TEXT DEFAULT 'uncategorized',
    url TEXT UNIQUE NOT NULL,
    is_active INTEGER DEFAULT 1,
    created_at TEXT DEFAULT (datetime('now')),
    updated_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS news_category (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    created_at TEXT DEFAULT (datetime('now')),
    updated_at TEXT DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_news_url ON news(url);
CREATE INDEX IF NOT EXISTS idx_news_category ON news(category);
CREATE INDEX IF NOT EXISTS idx_news_publish_date ON news(publish_date);
`)
			if err != nil {
				return err
			}

			for _, c := range categorySeed {
				_, err := tx.Exec(
					`INSERT INTO news_category (id, title, description)
					SELECT ?, ?, ?
					WHERE NOT EXISTS (SELECT 1 FROM news_category WHERE title = ?)`,
					uuid.NewString(), c.Title, c.Description, c.Title,
				)
				if err != nil {
					return err
				}
			}
			return nil
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
