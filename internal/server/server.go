package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"minerva_rss/internal/db"
	"minerva_rss/internal/models"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server хранит зависимости HTTP-обработчиков режима периодического запуска.
type Server struct {
	db *db.Database
}

// NewServer создаёт новый экземпляр Server с переданной базой данных.
func NewServer(database *db.Database) *Server {
	return &Server{db: database}
}

// Handler собирает маршруты сервера вместе с middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.HealthCheck)
	mux.HandleFunc("GET /api/articles/{limit}", s.GetArticles)
	mux.Handle("GET /metrics", promhttp.Handler())
	return LoggingMiddleware(RequestIDMiddleware(mux))
}

// HealthCheck отвечает 200 OK, если база доступна, иначе 503.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Pool.Ping(r.Context()); err != nil {
		http.Error(w, "DB unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Write([]byte("OK"))
}

// GetArticles возвращает JSON-массив последних limit статей,
// отсортированных по дате публикации.
func (s *Server) GetArticles(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.PathValue("limit"))
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	rows, err := s.db.Pool.Query(r.Context(), `
        SELECT title, url, summary, author, published_date,
               feed_name, domain, has_full_content
        FROM articles
        ORDER BY published_date DESC
        LIMIT $1
    `, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	articles := []map[string]interface{}{}
	for rows.Next() {
		var (
			article models.Article
			hasFull bool
		)
		if err := rows.Scan(
			&article.Title,
			&article.URL,
			&article.Summary,
			&article.Author,
			&article.PublishedDate,
			&article.FeedName,
			&article.Domain,
			&hasFull,
		); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		articles = append(articles, map[string]interface{}{
			"title":            article.Title,
			"url":              article.URL,
			"summary":          article.Summary,
			"author":           article.Author,
			"published_date":   article.PublishedDate,
			"feed_name":        article.FeedName,
			"domain":           article.Domain,
			"has_full_content": hasFull,
		})
	}

	if err := rows.Err(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(articles); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
