package settings

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
	s := rg.Group("/settings")
	{
		s.GET("", h.All)
		s.POST("/qr", auth.RequireAdmin(admin), h.UploadQR)
		s.GET("/:key", h.Get)
		s.POST("/:key", auth.RequireAdmin(admin), h.Set)
	}
}

func (h *Handler) Get(c *gin.Context) {
	setting, err := h.service.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, setting)
}

func (h *Handler) Set(c *gin.Context) {
	var req struct {
		Value interface{} `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	setting, err := h.service.Set(c.Request.Context(), c.Param("key"), req.Value)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, setting)
}

func (h *Handler) All(c *gin.Context) {
	all, err := h.service.All(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, all)
}

func (h *Handler) UploadQR(c *gin.Context) {
	file, err := c.FormFile("qr")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "qr image required"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	setting, err := h.service.UploadQR(c.Request.Context(), FileUpload{
		Name:        file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
		Content:     f,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, setting)
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
