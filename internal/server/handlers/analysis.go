// internal/server/handlers/analysis.go

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"newsradar/internal/domain/article"
)

// backgroundTimeout bounds a detached analysis run.
const backgroundTimeout = 10 * time.Minute

// AnalysisHandler triggers article analysis runs
type AnalysisHandler struct {
	store    article.Store
	analyzer article.Analyzer
	batch    article.BatchAnalyzer
	log      *logrus.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(store article.Store, analyzer article.Analyzer, batch article.BatchAnalyzer, log *logrus.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		store:    store,
		analyzer: analyzer,
		batch:    batch,
		log:      log,
	}
}

// AnalyzeArticle starts analysis of one article in the background. The
// request only validates that the article exists; the enrichment itself
// runs detached and its completion is announced on the event feed.
// POST /api/v1/articles/{id}/analyze?force=true
func (h *AnalysisHandler) AnalyzeArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid article ID")
		return
	}

	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

	a, err := h.store.GetArticle(r.Context(), id)
	if err != nil {
		if errors.Is(err, article.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Article not found")
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to load article")
		}
		return
	}

	if a.Analyzed() && !force {
		respondWithJSON(w, http.StatusOK, map[string]string{
			"status":     "already_analyzed",
			"article_id": id,
		})
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()

		if _, err := h.analyzer.Analyze(ctx, id, force); err != nil &&
			!errors.Is(err, article.ErrAnalysisInFlight) {
			h.log.WithError(err).WithField("article_id", id).Error("background analysis failed")
		}
	}()

	respondWithJSON(w, http.StatusAccepted, map[string]string{
		"status":     "accepted",
		"article_id": id,
	})
}

// AnalyzeAll starts a backlog analysis run in the background.
// POST /api/v1/analyze-all?limit=50
func (h *AnalysisHandler) AnalyzeAll(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()

		result, err := h.batch.AnalyzeBacklog(ctx, limit)
		if err != nil {
			h.log.WithError(err).Error("backlog analysis failed")
			return
		}
		h.log.WithFields(logrus.Fields{
			"completed": result.Completed,
			"failed":    result.Failed,
		}).Info("backlog analysis finished")
	}()

	respondWithJSON(w, http.StatusAccepted, map[string]string{
		"status": "accepted",
	})
}
