package documents

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"barangay-abis/backend/internal/auth"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, admin auth.Authorizer) {
	docs := rg.Group("/documents")
	{
		docs.GET("", h.List)
		docs.POST("", h.Create)
		docs.GET("/track/by-number/:trackingNumber", h.TrackByNumber)
		docs.GET("/download/:trackingNumber", h.Download)
		docs.GET("/:id", h.Get)
		docs.PATCH("/:id", auth.RequireAdmin(admin), h.Patch)
		docs.DELETE("/:id", auth.RequireAdmin(admin), h.Delete)
		docs.POST("/:id/set_status", auth.RequireAdmin(admin), h.SetStatus)
		docs.POST("/:id/certificate", auth.RequireAdmin(admin), h.AttachCertificate)
		docs.POST("/:id/crime_record", auth.RequireAdmin(admin), h.SetCrimeRecord)
		docs.POST("/:id/certify", auth.RequireAdmin(admin), h.IncrementCertification)
		docs.PATCH("/:id/payment", h.UpdatePayment)
	}
}

func (h *Handler) List(c *gin.Context) {
	docs, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Views(docs))
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc.AsView())
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	doc, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc.AsView())
}

func (h *Handler) Patch(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	doc, err := h.service.Patch(c.Request.Context(), id, updates)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc.AsView())
}

func (h *Handler) SetStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Status Status `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	doc, err := h.service.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc.AsView())
}

func (h *Handler) AttachCertificate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
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

	doc, err := h.service.AttachCertificate(c.Request.Context(), id, FileUpload{
		Name:        file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
		Content:     f,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc.AsView())
}

func (h *Handler) SetCrimeRecord(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Status CrimeRecordStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	doc, err := h.service.SetCrimeRecord(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc.AsView())
}

func (h *Handler) IncrementCertification(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	doc, err := h.service.IncrementCertification(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc.AsView())
}

func (h *Handler) UpdatePayment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req PaymentUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	doc, err := h.service.UpdatePayment(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc.AsView())
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) TrackByNumber(c *gin.Context) {
	doc, err := h.service.TrackByNumber(c.Request.Context(), c.Param("trackingNumber"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc.AsView())
}

func (h *Handler) Download(c *gin.Context) {
	res, err := h.service.ResolveDownload(c.Request.Context(), c.Param("trackingNumber"))
	if err != nil {
		respondError(c, err)
		return
	}
	if res.RedirectURL != "" {
		c.Redirect(http.StatusFound, res.RedirectURL)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+res.Filename+`"`)
	c.Data(http.StatusOK, "application/pdf", res.PDF)
}

func parseID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return primitive.NilObjectID, false
	}
	return id, true
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, ErrDuplicateTracking):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
