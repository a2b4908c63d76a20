package reports

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"barangay-abis/backend/internal/auth"
	"barangay-abis/backend/internal/documents"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, admin auth.Authorizer) {
	r := rg.Group("/reports", auth.RequireAdmin(admin))
	{
		r.GET("/documents/csv", h.DocumentsCSV)
		r.GET("/documents/xlsx", h.DocumentsXLSX)
		r.GET("/blotter/csv", h.BlotterCSV)
		r.GET("/blotter/xlsx", h.BlotterXLSX)
		r.GET("/document/:id/pdf", h.DocumentPDF)
	}
}

func (h *Handler) DocumentsCSV(c *gin.Context) {
	exp, err := h.service.DocumentsExport(c.Request.Context(), FormatCSV)
	h.respond(c, exp, err)
}

func (h *Handler) DocumentsXLSX(c *gin.Context) {
	exp, err := h.service.DocumentsExport(c.Request.Context(), FormatXLSX)
	h.respond(c, exp, err)
}

func (h *Handler) BlotterCSV(c *gin.Context) {
	exp, err := h.service.BlotterExport(c.Request.Context(), FormatCSV)
	h.respond(c, exp, err)
}

func (h *Handler) BlotterXLSX(c *gin.Context) {
	exp, err := h.service.BlotterExport(c.Request.Context(), FormatXLSX)
	h.respond(c, exp, err)
}

func (h *Handler) DocumentPDF(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	exp, err := h.service.DocumentPDF(c.Request.Context(), id)
	h.respond(c, exp, err)
}

func (h *Handler) respond(c *gin.Context, exp *Export, err error) {
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exp.Filename))
	c.Data(http.StatusOK, exp.ContentType, exp.Content)
}
