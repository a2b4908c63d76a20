package certificates

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"barangay-abis/backend/internal/auth"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, admin auth.Authorizer) {
	c := rg.Group("/certificates")
	{
		c.POST("", auth.RequireAdmin(admin), h.Upload)
		c.GET("/download/:trackingNumber", h.Download)
		c.GET("/:trackingNumber", h.Lookup)
	}
}

func (h *Handler) Upload(c *gin.Context) {
	trackingNumber := c.PostForm("trackingNumber")
	file, err := c.FormFile("certificate")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "certificate file required"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	uploadedBy := "unknown"
	if c.GetHeader(auth.AdminKeyHeader) != "" {
		uploadedBy = "admin"
	}

	cert, err := h.service.Upload(c.Request.Context(), trackingNumber, uploadedBy, FileUpload{
		Name:        file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
		Content:     f,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "certificate": cert})
}

func (h *Handler) Lookup(c *gin.Context) {
	meta, err := h.service.Lookup(c.Request.Context(), c.Param("trackingNumber"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meta)
}

func (h *Handler) Download(c *gin.Context) {
	url, _, err := h.service.ResolveDownload(c.Request.Context(), c.Param("trackingNumber"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
