// Package server exposes the stored articles through a JSON read API.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/krishisewa/agrinews/internal/database"
)

const defaultNewsLimit = 10

// Server is the HTTP server for the read API.
type Server struct {
	db  *database.DB
	mux *http.ServeMux
}

// New creates a new Server.
func New(db *database.DB) *Server {
	s := &Server{db: db, mux: http.NewServeMux()}
	s.routes()
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/news", s.handleNews)
	s.mux.HandleFunc("/api/categories", s.handleCategories)
	s.mux.HandleFunc("/health", s.handleHealth)
}

// newsArticle is the wire shape of one article. PublishDate is an
// ISO-8601 string, empty when unknown.
type newsArticle struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	ImageURL    string `json:"image_url"`
	Source      string `json:"source"`
	PublishDate string `json:"publish_date"`
	Category    string `json:"category"`
	URL         string `json:"url"`
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	category := r.URL.Query().Get("category")
	limit := defaultNewsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	articles, err := s.db.GetActiveArticles(category, limit)
	if err != nil {
		log.Printf("Error querying news: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch news")
		return
	}

	out := make([]newsArticle, 0, len(articles))
	for _, a := range articles {
		var published string
		if !a.PublishDate.IsZero() {
			published = a.PublishDate.Format(time.RFC3339)
		}
		out = append(out, newsArticle{
			ID:          a.ID,
			Title:       a.Title,
			Content:     a.Content,
			ImageURL:    a.ImageURL,
			Source:      a.Source,
			PublishDate: published,
			Category:    a.Category,
			URL:         a.URL,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"count":    len(out),
		"articles": out,
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	counts, err := s.db.GetCategoryCounts()
	if err != nil {
		log.Printf("Error querying categories: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch categories")
		return
	}

	categories := make([]map[string]any, 0, len(counts))
	for _, c := range counts {
		categories = append(categories, map[string]any{
			"category": c.Category,
			"count":    c.Count,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"categories": categories,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// writeError sends a structured error payload. Internal error text is
// never forwarded to the client.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}

// Serve starts the HTTP server on the given port.
func Serve(db *database.DB, port int) error {
	srv := New(db)
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("API listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
