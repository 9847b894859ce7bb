package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/krishisewa/agrinews/internal/database"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedArticles(t *testing.T, db *database.DB, n int, category string) {
	t.Helper()
	base := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		_, err := db.UpsertArticle(database.Article{
			Title:       fmt.Sprintf("%s story %d", category, i),
			Content:     "body",
			Source:      "Test Source",
			PublishDate: base.AddDate(0, 0, i),
			URL:         fmt.Sprintf("https://example.com/%s/%d", category, i),
		}, category)
		if err != nil {
			t.Fatalf("seeding article: %v", err)
		}
	}
}

func get(t *testing.T, srv *Server, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response from %s: %v", path, err)
	}
	return rec, body
}

func TestNewsRoute(t *testing.T) {
	db := openTestDB(t)
	seedArticles(t, db, 3, "crop_pests")
	srv := New(db)

	rec, body := get(t, srv, "/api/news")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if body["success"] != true {
		t.Error("expected success=true")
	}
	if body["count"].(float64) != 3 {
		t.Errorf("count = %v, want 3", body["count"])
	}

	articles := body["articles"].([]any)
	first := articles[0].(map[string]any)
	if first["title"] != "crop_pests story 2" {
		t.Errorf("expected newest first, got %v", first["title"])
	}
	if _, err := time.Parse(time.RFC3339, first["publish_date"].(string)); err != nil {
		t.Errorf("publish_date not ISO-8601: %v", first["publish_date"])
	}
}

func TestNewsRouteCategoryFilter(t *testing.T) {
	db := openTestDB(t)
	seedArticles(t, db, 2, "crop_pests")
	seedArticles(t, db, 1, "market_prices")
	srv := New(db)

	_, body := get(t, srv, "/api/news?category=market_prices")
	if body["count"].(float64) != 1 {
		t.Errorf("count = %v, want 1", body["count"])
	}
	articles := body["articles"].([]any)
	if articles[0].(map[string]any)["category"] != "market_prices" {
		t.Error("expected only market_prices articles")
	}
}

func TestNewsRouteDefaultLimit(t *testing.T) {
	db := openTestDB(t)
	seedArticles(t, db, 15, "policy_update")
	srv := New(db)

	_, body := get(t, srv, "/api/news")
	if body["count"].(float64) != 10 {
		t.Errorf("count = %v, want default limit 10", body["count"])
	}

	_, body = get(t, srv, "/api/news?limit=15")
	if body["count"].(float64) != 15 {
		t.Errorf("count = %v, want 15", body["count"])
	}
}

func TestNewsRouteBadLimit(t *testing.T) {
	db := openTestDB(t)
	srv := New(db)

	rec, body := get(t, srv, "/api/news?limit=abc")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if body["success"] != false {
		t.Error("expected success=false")
	}
}

func TestNewsRouteEmptyStore(t *testing.T) {
	db := openTestDB(t)
	srv := New(db)

	rec, body := get(t, srv, "/api/news")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if body["count"].(float64) != 0 {
		t.Errorf("count = %v, want 0", body["count"])
	}
	if _, ok := body["articles"].([]any); !ok {
		t.Error("expected articles to be an empty array, not null")
	}
}

func TestCategoriesRoute(t *testing.T) {
	db := openTestDB(t)
	seedArticles(t, db, 3, "crop_pests")
	seedArticles(t, db, 1, "market_prices")
	srv := New(db)

	rec, body := get(t, srv, "/api/categories")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	categories := body["categories"].([]any)
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(categories))
	}
	first := categories[0].(map[string]any)
	if first["category"] != "crop_pests" || first["count"].(float64) != 3 {
		t.Errorf("expected crop_pests=3 first, got %v", first)
	}
}

func TestInternalErrorPayloadDoesNotLeak(t *testing.T) {
	db := openTestDB(t)
	srv := New(db)
	db.Close()

	rec, body := get(t, srv, "/api/news")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if body["success"] != false {
		t.Error("expected success=false")
	}
	if body["error"] != "failed to fetch news" {
		t.Errorf("expected generic error message, got %v", body["error"])
	}
}

func TestHealthRoute(t *testing.T) {
	db := openTestDB(t)
	srv := New(db)

	rec, body := get(t, srv, "/health")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
}

func TestNewsRouteRejectsPost(t *testing.T) {
	db := openTestDB(t)
	srv := New(db)

	req := httptest.NewRequest("POST", "/api/news", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}
