// Package web is the HTTP presentation layer: an index form, a
// recommendations page, and a JSON feedback endpoint over the bandit
// core and its collaborators.
package web

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"news-recommender/bandit"
	"news-recommender/catalog"
	"news-recommender/clicklog"
)

//go:embed templates/*.html
var templateFS embed.FS

// ClickJournal persists accepted clicks across restarts.
type ClickJournal interface {
	AppendClick(userID, articleID string) error
}

// Server handles HTTP requests for recommendations and feedback.
type Server struct {
	store   *bandit.Store
	sampler *bandit.Sampler
	catalog *catalog.Catalog
	journal ClickJournal

	mu     sync.Mutex // guards clicks
	clicks *clicklog.Snapshot

	router *gin.Engine
}

// New creates a Server over the belief store, sampler, catalog, click
// snapshot, and journal. journal may be nil to disable persistence.
func New(store *bandit.Store, sampler *bandit.Sampler, cat *catalog.Catalog, clicks *clicklog.Snapshot, journal ClickJournal) *Server {
	s := &Server{
		store:   store,
		sampler: sampler,
		catalog: cat,
		journal: journal,
		clicks:  clicks,
	}

	router := gin.Default()
	router.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.GET("/", s.index)
	router.POST("/", s.recommend)
	router.POST("/update_preferences", s.updatePreferences)

	s.router = router
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", nil)
}

func (s *Server) recommend(c *gin.Context) {
	userID := c.PostForm("user_id")
	if userID == "" {
		c.HTML(http.StatusBadRequest, "error.html", gin.H{"message": "user_id is required"})
		return
	}

	params := s.store.Current()

	articles, err := s.sampler.RecommendTopArticles(userID, params, s.catalog)
	if err != nil {
		s.renderError(c, err)
		return
	}
	categories, err := bandit.MostViewedCategories(userID, params)
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.HTML(http.StatusOK, "recommendations.html", gin.H{
		"UserID":     userID,
		"Articles":   articles,
		"Categories": categories,
	})
}

func (s *Server) renderError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, bandit.ErrUnknownUser) {
		status = http.StatusNotFound
	}
	c.HTML(status, "error.html", gin.H{"message": err.Error()})
}

type feedbackRequest struct {
	UserID    *string `json:"user_id" binding:"required"`
	ArticleID *string `json:"article_id" binding:"required"`
	Liked     *bool   `json:"liked" binding:"required"`
}

func (s *Server) updatePreferences(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id, article_id and liked are required"})
		return
	}

	if !*req.Liked {
		// No negative signal is modeled; the event is accepted and ignored.
		c.JSON(http.StatusOK, gin.H{"status": "success"})
		return
	}

	userID, articleID := *req.UserID, *req.ArticleID

	s.mu.Lock()
	added := s.clicks.RecordClick(userID, articleID)
	s.mu.Unlock()

	if added {
		if s.journal != nil {
			if err := s.journal.AppendClick(userID, articleID); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
		}

		// An article id the catalog cannot resolve still lands in the
		// history, but changes no beliefs; a full rebuild skips it the
		// same way.
		if category, ok := s.catalog.CategoryOf(articleID); ok {
			if err := s.store.Bump(userID, category); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
		}
		slog.Info("click recorded", "user_id", userID, "article_id", articleID)
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Rebuild recomputes every user's beliefs from the current history
// snapshot and installs the result atomically. Used by the daily batch
// rebuild; equivalent to the incremental bumps it replaces.
func (s *Server) Rebuild() {
	s.mu.Lock()
	history := s.clicks.HistoryByUser()
	params := bandit.Reinitialize(history, s.catalog.CategoryByID(), s.store.Categories())
	s.mu.Unlock()

	s.store.Install(params)
	slog.Info("beliefs rebuilt", "users", len(params))
}
