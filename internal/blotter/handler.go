package blotter

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"barangay-abis/backend/internal/auth"
)

type Handler struct {
	service  Service
	adminKey string
	baseURL  string
}

func NewHandler(service Service, adminKey, baseURL string) *Handler {
	return &Handler{service: service, adminKey: adminKey, baseURL: baseURL}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, admin auth.Authorizer) {
	b := rg.Group("/blotter")
	{
		b.POST("", auth.RequireAdmin(admin), h.Create)
		b.GET("", auth.RequireAdmin(admin), h.List)
		b.GET("/pending", auth.RequireAdmin(admin), h.ListPending)
		b.GET("/download/attachment/:filename", h.DownloadAttachment)
		b.GET("/:id", h.Get)
		b.PATCH("/:id", auth.RequireAdmin(admin), h.Patch)
		b.DELETE("/:id", auth.RequireAdmin(admin), h.Delete)
		b.POST("/:id/certificate", auth.RequireAdmin(admin), h.AttachCertificate)
		b.POST("/:id/crime_record", auth.RequireAdmin(admin), h.SetCrimeRecord)
		b.POST("/:id/certify", auth.RequireAdmin(admin), h.IncrementCertification)
		b.PATCH("/:id/payment", h.UpdatePayment)
	}
}

func (h *Handler) Create(c *gin.Context) {
	files, closeFiles, err := formFiles(c, "attachments")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer closeFiles()

	req := CreateRequest{
		Title:           c.PostForm("title"),
		Description:     c.PostForm("description"),
		ReporterName:    c.PostForm("reporterName"),
		ReporterContact: c.PostForm("reporterContact"),
		Status:          Status(c.PostForm("status")),
		ShowReporter:    parseBool(c.PostForm("showReporter")),
		Files:           files,
	}
	if raw := c.PostForm("incidentDate"); raw != "" {
		if when, err := parseDate(raw); err == nil {
			req.IncidentDate = &when
		}
	}

	b, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *Handler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), "")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) ListPending(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), StatusPending)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Get resolves the caller's visibility tier: admin and token holders see the
// full record, everyone else a redacted projection.
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	b, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	isAdmin := auth.IsAdminRequest(h.adminKey, c)
	if HasFullAccess(b, isAdmin, auth.RequestToken(c)) {
		c.JSON(http.StatusOK, b)
		return
	}
	c.JSON(http.StatusOK, Redact(b, h.origin(c)))
}

func (h *Handler) Patch(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var updates map[string]interface{}
	var files []FileUpload
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		var closeFiles func()
		var err error
		files, closeFiles, err = formFiles(c, "attachments")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		defer closeFiles()
		updates = formUpdates(c)
	} else if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.service.Patch(c.Request.Context(), id, updates, files)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
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

func (h *Handler) DownloadAttachment(c *gin.Context) {
	rawID := c.Query("blotterId")
	if rawID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "blotterId required"})
		return
	}
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid blotterId"})
		return
	}

	res, err := h.service.ResolveAttachment(c.Request.Context(), id, c.Param("filename"),
		auth.IsAdminRequest(h.adminKey, c), auth.RequestToken(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if res.RedirectURL != "" {
		c.Redirect(http.StatusFound, res.RedirectURL)
		return
	}
	c.File(res.LocalPath)
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

	b, err := h.service.AttachCertificate(c.Request.Context(), id, FileUpload{
		Name:        file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
		Content:     f,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) SetCrimeRecord(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.service.SetCrimeRecord(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) IncrementCertification(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	b, err := h.service.IncrementCertification(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
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
	b, err := h.service.UpdatePayment(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// formFiles opens every uploaded part up front; the returned closer releases
// them once the service call finishes.
func formFiles(c *gin.Context, field string) ([]FileUpload, func(), error) {
	noop := func() {}
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, err
	}

	var uploads []FileUpload
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}
	for _, fh := range form.File[field] {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, noop, err
		}
		opened = append(opened, f)
		uploads = append(uploads, FileUpload{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Content:     f,
		})
	}
	return uploads, closeAll, nil
}

func formUpdates(c *gin.Context) map[string]interface{} {
	updates := map[string]interface{}{}
	if c.Request.MultipartForm == nil {
		return updates
	}
	for key, values := range c.Request.MultipartForm.Value {
		if len(values) == 0 {
			continue
		}
		if key == "showReporter" {
			updates[key] = parseBool(values[0])
			continue
		}
		updates[key] = values[0]
	}
	return updates
}

func parseBool(raw string) bool {
	b, err := strconv.ParseBool(raw)
	return err == nil && b
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

// origin is the base for legacy local attachment links: the configured public
// URL when one is set, else whatever host the request arrived on.
func (h *Handler) origin(c *gin.Context) string {
	if h.baseURL != "" {
		return strings.TrimSuffix(h.baseURL, "/")
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
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
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized"})
	case errors.Is(err, ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
