// internal/server/handlers/article.go

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"newsradar/internal/domain/article"
	"newsradar/internal/service/analysis"
)

// ArticleHandler handles article-related HTTP requests
type ArticleHandler struct {
	store article.Store
}

// NewArticleHandler creates a new article handler
func NewArticleHandler(store article.Store) *ArticleHandler {
	return &ArticleHandler{
		store: store,
	}
}

// ListArticles returns articles matching the query filters.
// GET /api/v1/articles?category=&search=&analyzed=&actionable=&sort=&limit=&offset=
func (h *ArticleHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := article.ListFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		SortBy:   q.Get("sort"),
	}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))

	if raw := q.Get("analyzed"); raw != "" {
		analyzed, err := strconv.ParseBool(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid analyzed filter")
			return
		}
		filter.Analyzed = &analyzed
	}
	if raw := q.Get("actionable"); raw != "" {
		actionable, err := strconv.ParseBool(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid actionable filter")
			return
		}
		filter.Actionable = &actionable
	}

	articles, err := h.store.ListArticles(r.Context(), filter)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list articles")
		return
	}
	if articles == nil {
		articles = []article.Article{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"articles": articles,
		"count":    len(articles),
	})
}

// GetArticle returns a full article record by ID
func (h *ArticleHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid article ID")
		return
	}

	a, err := h.store.GetArticle(r.Context(), id)
	if err != nil {
		if errors.Is(err, article.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Article not found")
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to get article")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, a)
}

// GetStats returns dashboard statistics for the article table
func (h *ArticleHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to get stats")
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}

// GetCategories returns both the classifier's category set and the legacy
// keyword taxonomy
func (h *ArticleHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"categories":        analysis.ClassifierCategories,
		"legacy_categories": analysis.LegacyCategories,
	})
}
