package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nitesh/headline_scraper/internal/service"
	"github.com/nitesh/headline_scraper/internal/store"
	"github.com/nitesh/headline_scraper/pkg/models"
)

// Scraper is the part of service.Service the routes use.
type Scraper interface {
	Scrape(ctx context.Context) (service.ScrapeResult, error)
	Articles(ctx context.Context, f store.Filter) ([]byte, error)
	Article(ctx context.Context, id string) (*models.Article, error)
	AddComment(ctx context.Context, id string, in models.CommentInput) (*models.Article, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type Handler struct {
	svc Scraper
}

func NewHandler(svc Scraper) *Handler {
	return &Handler{svc: svc}
}

func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.GET("/", h.Index)
	r.GET("/scrape", h.Scrape)
	r.GET("/articles", h.Articles)
	r.GET("/articles/:id", h.Article)
	r.POST("/articles/:id", h.AddComment)
	// GET so it can be triggered from a browser
	r.GET("/delete", h.DeleteAll)
}

// Index: GET /
func (h *Handler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"routes": []string{
			"GET /scrape",
			"GET /articles",
			"GET /articles/:id",
			"POST /articles/:id",
			"GET /delete",
		},
	})
}

// Scrape: GET /scrape
// Responds once every record has been stored or rejected. Per-record
// failures are reported only through the X-Scrape-* headers.
func (h *Handler) Scrape(c *gin.Context) {
	res, err := h.svc.Scrape(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("X-Scrape-Found", strconv.Itoa(res.Found))
	c.Header("X-Scrape-Saved", strconv.Itoa(res.Saved))
	c.Header("X-Scrape-Failed", strconv.Itoa(res.Failed))
	c.String(http.StatusOK, "Scrape Complete")
}

// Articles: GET /articles?user=alice&limit=20
func (h *Handler) Articles(c *gin.Context) {
	f := store.Filter{User: c.Query("user")}
	if s := c.Query("limit"); s != "" {
		l, err := strconv.Atoi(s)
		if err != nil || l < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit parameter"})
			return
		}
		f.Limit = l
	}

	body, err := h.svc.Articles(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// Article: GET /articles/:id
func (h *Handler) Article(c *gin.Context) {
	a, err := h.svc.Article(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// AddComment: POST /articles/:id
// Body: form or JSON with title and body.
func (h *Handler) AddComment(c *gin.Context) {
	var in models.CommentInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment: " + err.Error()})
		return
	}
	a, err := h.svc.AddComment(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// DeleteAll: GET /delete
func (h *Handler) DeleteAll(c *gin.Context) {
	n, err := h.svc.DeleteAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deletedCount": n})
}

func writeError(c *gin.Context, err error) {
	var verr *store.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
