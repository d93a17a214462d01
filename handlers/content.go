package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vedicroots/vedicroots/backend/cms-services/internal/content"
	"github.com/vedicroots/vedicroots/backend/cms-services/pkg/logger"
	"github.com/vedicroots/vedicroots/backend/cms-services/pkg/metrics"
)

// ContentHandler exposes the CMS content API over the content store.
type ContentHandler struct {
	store *content.Store
}

func NewContentHandler(store *content.Store) *ContentHandler {
	return &ContentHandler{store: store}
}

// Register mounts the content routes. Reads are public; every mutation goes
// through the guard chain (auth first, so guards behind it see the identity).
func (h *ContentHandler) Register(r *gin.Engine, guards ...gin.HandlerFunc) {
	cms := r.Group("/api/cms")
	cms.GET("/content/:domain", h.GetDocument)
	cms.GET("/homepage", h.domainAlias(content.DomainHomepage, h.GetDocument))

	mut := cms.Group("")
	mut.Use(guards...)
	mut.PUT("/content/:domain", h.ReplaceDocument)
	mut.PUT("/content/:domain/section", h.UpdateSection)
	mut.POST("/content/:domain/reset", h.ResetDocument)

	// homepage shortcuts used by the admin frontend
	mut.PUT("/homepage", h.domainAlias(content.DomainHomepage, h.ReplaceDocument))
	mut.PUT("/section", h.domainAlias(content.DomainHomepage, h.UpdateSection))
	mut.POST("/reset", h.domainAlias(content.DomainHomepage, h.ResetDocument))
}

// domainAlias pins the domain path parameter so the homepage routes share the
// generic handlers.
func (h *ContentHandler) domainAlias(domain string, next gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Params = append(c.Params, gin.Param{Key: "domain", Value: domain})
		next(c)
	}
}

func (h *ContentHandler) GetDocument(c *gin.Context) {
	domain := c.Param("domain")
	d, err := h.store.Get(c.Request.Context(), domain)
	if err != nil {
		h.writeError(c, domain, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": d})
}

// replaceRequest is the full-document write shape. Version is optional; when
// present the write is rejected on mismatch instead of silently overwriting.
type replaceRequest struct {
	Sections map[string]json.RawMessage `json:"sections" binding:"required"`
	Version  int64                      `json:"version"`
}

func (h *ContentHandler) ReplaceDocument(c *gin.Context) {
	domain := c.Param("domain")
	var req replaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "document body with sections required"})
		return
	}
	d, err := h.store.Replace(c.Request.Context(), domain, req.Sections, req.Version)
	if err != nil {
		h.writeError(c, domain, err)
		return
	}
	metrics.ContentUpdates.WithLabelValues(domain, "replace").Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "content updated", "data": d})
}

type sectionRequest struct {
	Section string          `json:"section"`
	Data    json.RawMessage `json:"data"`
	Version int64           `json:"version"`
}

func (h *ContentHandler) UpdateSection(c *gin.Context) {
	domain := c.Param("domain")
	var req sectionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Section == "" || len(req.Data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "section and data are required"})
		return
	}
	d, err := h.store.UpdateSection(c.Request.Context(), domain, req.Section, req.Data, req.Version)
	if err != nil {
		h.writeError(c, domain, err)
		return
	}
	metrics.ContentUpdates.WithLabelValues(domain, "section").Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "section updated", "data": d})
}

func (h *ContentHandler) ResetDocument(c *gin.Context) {
	domain := c.Param("domain")
	d, err := h.store.Reset(c.Request.Context(), domain)
	if err != nil {
		h.writeError(c, domain, err)
		return
	}
	metrics.ContentUpdates.WithLabelValues(domain, "reset").Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "content reset to defaults", "data": d})
}

// writeError maps store errors onto the API taxonomy: 400 for validation, 404
// for unknown content, 409 for version conflicts and a generic 500 otherwise.
func (h *ContentHandler) writeError(c *gin.Context, domain string, err error) {
	switch {
	case errors.Is(err, content.ErrInvalidSection):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid section name"})
	case errors.Is(err, content.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "content not found"})
	case errors.Is(err, content.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": "version conflict, reload and retry"})
	default:
		logger.Errorf("content operation failed (domain=%s): %v", domain, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal error"})
	}
}
