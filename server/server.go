// Package server exposes read-only HTTP endpoints over committed submissions.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/babushkian/OTBot/layout"
	"github.com/babushkian/OTBot/model"
	"github.com/babushkian/OTBot/notify"
	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type Submissions interface {
	GetByID(ctx context.Context, id string) (*model.Submission, error)
	GetByStatus(ctx context.Context, status model.Status) ([]*model.Submission, error)
}

type Locations interface {
	List(ctx context.Context) ([]model.Location, error)
}

type Renderer interface {
	Render(title string, subs ...*model.Submission) (notify.Document, error)
}

type SubmissionHandler struct {
	submissions Submissions
	locations   Locations
	renderer    Renderer
	target      float64
}

func NewSubmissionHandler(submissions Submissions, locations Locations, renderer Renderer, target float64) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions, locations: locations, renderer: renderer, target: target}
}

var statuses = []model.Status{model.StatusPendingReview, model.StatusActive, model.StatusCorrected, model.StatusRejected}

func (h *SubmissionHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	wanted := statuses
	if s := c.Query("status"); s != "" {
		status := model.Status(s)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
			return
		}
		wanted = []model.Status{status}
	}

	subs := make([]*model.Submission, 0)
	for _, status := range wanted {
		found, err := h.submissions.GetByStatus(ctx, status)
		if err != nil {
			log.Error().Err(err).Str("status", string(status)).Msg("list submissions failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list submissions"})
			return
		}
		subs = append(subs, found...)
	}
	c.JSON(http.StatusOK, gin.H{"submissions": subs, "count": len(subs)})
}

func (h *SubmissionHandler) Get(c *gin.Context) {
	sub, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *SubmissionHandler) Layout(c *gin.Context) {
	sub, ok := h.load(c)
	if !ok {
		return
	}
	rows, err := layout.Pack(sub.Photos, h.target)
	if err != nil {
		if errors.Is(err, model.ErrEmptyInput) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "submission has no photos"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to lay out photos"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"submission_id": sub.ID, "target_ratio": h.target, "rows": rows})
}

func (h *SubmissionHandler) Report(c *gin.Context) {
	sub, ok := h.load(c)
	if !ok {
		return
	}
	doc, err := h.renderer.Render("Violation report", sub)
	if err != nil {
		log.Error().Err(err).Str("submission", sub.ID).Msg("render report failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render report"})
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+doc.Name+`"`)
	c.Data(http.StatusOK, doc.ContentType+"; charset=utf-8", doc.Data)
}

func (h *SubmissionHandler) Locations(c *gin.Context) {
	locs, err := h.locations.List(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("list locations failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list locations"})
		return
	}
	if locs == nil {
		locs = []model.Location{}
	}
	c.JSON(http.StatusOK, gin.H{"locations": locs})
}

func (h *SubmissionHandler) load(c *gin.Context) (*model.Submission, bool) {
	id := c.Param("id")
	sub, err := h.submissions.GetByID(c.Request.Context(), id)
	if err != nil {
		log.Error().Err(err).Str("submission", id).Msg("get submission failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load submission"})
		return nil, false
	}
	if sub == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "submission not found"})
		return nil, false
	}
	return sub, true
}

// SetupRoutes registers all endpoints on router.
func SetupRoutes(router *gin.Engine, h *SubmissionHandler) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.GET("/locations", h.Locations)
		api.GET("/submissions", h.List)
		api.GET("/submissions/:id", h.Get)
		api.GET("/submissions/:id/layout", h.Layout)
		api.GET("/submissions/:id/report", h.Report)
	}
}

// Run serves h on addr until ctx is done.
func Run(ctx context.Context, addr string, h *SubmissionHandler) error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	SetupRoutes(router, h)

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "http server")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown http server")
	}
	log.Info().Msg("HTTP server stopped")
	return nil
}
