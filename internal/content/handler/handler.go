// Package handler serves topic, article and site statistics endpoints.
package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/content"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/searcher/engine"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/pagination"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/response"
)

// ArticleDetail pairs an article with its topic. Topic is nil if the
// article's topic is unknown.
type ArticleDetail struct {
	Article content.Article `json:"article"`
	Topic   *content.Topic  `json:"topic"`
}

type TopicDetail struct {
	Topic    content.Topic     `json:"topic"`
	Articles []content.Article `json:"articles"`
}

type Handler struct {
	catalog *content.Catalog
	engine  *engine.Engine
	cfg     config.CatalogConfig
}

func New(catalog *content.Catalog, eng *engine.Engine, cfg config.CatalogConfig) *Handler {
	return &Handler{catalog: catalog, engine: eng, cfg: cfg}
}

// ListArticles serves GET /api/articles?topic=&sort=&page=&limit=.
func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit, err := pagination.Params(q, h.cfg.DefaultLimit, h.cfg.MaxLimit)
	if err != nil {
		response.Error(w, err)
		return
	}
	mode, err := content.ParseSortMode(q.Get("sort"))
	if err != nil {
		response.Error(w, apperrors.InvalidInput("Parameter 'sort' must be one of: latest, oldest, title").WithField("sort"))
		return
	}

	var articles []content.Article
	if topic := q.Get("topic"); topic != "" {
		articles = h.engine.ByTopic(topic)
	} else {
		articles = h.catalog.Articles()
	}
	sorted := content.SortArticles(articles, mode)
	response.Page(w, pagination.Paginate(sorted, page, limit), "")
}

// GetArticle serves GET /api/articles/{slug}.
func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	article, ok := h.catalog.ArticleBySlug(slug)
	if !ok {
		response.NotFound(w, "Article not found", slug)
		return
	}
	detail := ArticleDetail{Article: article}
	if topic, ok := h.catalog.TopicBySlug(article.TopicSlug); ok {
		detail.Topic = &topic
	}
	response.OK(w, http.StatusOK, detail)
}

// Latest serves GET /api/articles/latest?count=.
func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	count := h.cfg.DefaultLatestCount
	if raw := strings.TrimSpace(r.URL.Query().Get("count")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > h.cfg.MaxLimit {
			response.Error(w, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
				"Parameter 'count' must be an integer from 0 to %d", h.cfg.MaxLimit).WithField("count"))
			return
		}
		count = n
	}
	response.List(w, h.engine.Latest(count))
}

// ListTopics serves GET /api/topics.
func (h *Handler) ListTopics(w http.ResponseWriter, r *http.Request) {
	response.List(w, h.catalog.Topics())
}

// GetTopic serves GET /api/topics/{slug}.
func (h *Handler) GetTopic(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	topic, ok := h.catalog.TopicBySlug(slug)
	if !ok {
		response.NotFound(w, "Topic not found", slug)
		return
	}
	response.OK(w, http.StatusOK, TopicDetail{Topic: topic, Articles: h.engine.ByTopic(slug)})
}

// Stats serves GET /api/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	response.OK(w, http.StatusOK, h.catalog.Stats())
}
