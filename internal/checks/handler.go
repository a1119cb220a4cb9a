package checks

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"padhaihub-backend/internal/extract"
	"padhaihub-backend/internal/shared/server/middleware"
	"padhaihub-backend/internal/shared/server/respond"
)

// DefaultMaxUploadBytes caps uploaded files at 10 MB.
const DefaultMaxUploadBytes = 10 << 20

const (
	msgNoText        = "No readable text found. The document appears to be image-based, scanned, or encrypted."
	msgEmptyDocument = "The uploaded document is empty."
	msgUnsupported   = "Only PDF, DOCX or plain text files are supported."
	msgExtractFailed = "The document could not be read. It may be corrupt or too large once unpacked."
	msgAITimeout     = "AI service timed out, please retry"
	msgAIUnavailable = "AI service is unavailable, please try again later"
)

var allowedTypes = map[string]struct{}{
	extract.MimePDF:  {},
	extract.MimeDOCX: {},
	extract.MimeText: {},
	"text/markdown":  {},
}

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches check routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/checks", h.create)
	rg.GET("/checks/:id", h.get)
	rg.GET("/checks", h.list)
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+1<<20)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
			respond.Error(c, http.StatusBadRequest, "validation_error", h.tooLargeMessage(), nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	if fileHeader.Size > h.MaxUploadBytes {
		respond.Error(c, http.StatusBadRequest, "validation_error", h.tooLargeMessage(), nil)
		return
	}

	declared := fileHeader.Header.Get("Content-Type")
	normalized := extract.NormalizeMimeType(declared, fileHeader.Filename, nil)
	if _, ok := allowedTypes[normalized]; !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", msgUnsupported, gin.H{"mimeType": normalized})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	check, err := h.Svc.Run(c.Request.Context(), RunInput{
		UserID:       userID,
		FileName:     fileHeader.Filename,
		DeclaredType: normalized,
		Body:         file,
		RequestID:    middleware.RequestIDFromContext(c),
	})
	if check.ID != "" {
		c.Set(middleware.CheckIDKey, check.ID)
		c.Set(middleware.CheckStatusKey, string(check.Status))
	}
	if err != nil {
		h.writeRunError(c, check, err)
		return
	}

	respond.Created(c, toResponse(check))
}

func (h *Handler) writeRunError(c *gin.Context, check Check, err error) {
	var details gin.H
	if check.ID != "" {
		details = gin.H{"checkId": check.ID}
	}
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid upload", details)
	case errors.Is(err, ErrNoText):
		respond.Error(c, http.StatusBadRequest, "no_text_found", msgNoText, details)
	case errors.Is(err, ErrEmptyDocument):
		respond.Error(c, http.StatusBadRequest, "empty_document", msgEmptyDocument, details)
	case errors.Is(err, ErrUnsupportedType):
		respond.Error(c, http.StatusBadRequest, "unsupported_type", msgUnsupported, details)
	case errors.Is(err, ErrExtractFailed):
		respond.Error(c, http.StatusBadRequest, "extract_failed", msgExtractFailed, details)
	case errors.Is(err, ErrAITimeout):
		respond.Error(c, http.StatusGatewayTimeout, "ai_timeout", msgAITimeout, details)
	case errors.Is(err, ErrAIUnavailable):
		respond.Error(c, http.StatusBadGateway, "ai_unavailable", msgAIUnavailable, details)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to run check", details)
	}
}

func (h *Handler) tooLargeMessage() string {
	return fmt.Sprintf("file exceeds the %d MB limit", h.MaxUploadBytes>>20)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	check, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "check not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch check", nil)
		}
		return
	}
	c.Set(middleware.CheckIDKey, check.ID)
	respond.OK(c, toResponse(check))
}

func (h *Handler) list(c *gin.Context) {
	if middleware.IsGuest(c) {
		respond.Error(c, http.StatusUnauthorized, "login_required", "Login required to view history", nil)
		return
	}
	userID := middleware.UserIDFromContext(c)

	limit := 20
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	limit = min(max(limit, 1), 50)

	offset := 0
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = max(parsed, 0)
		}
	}

	items, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list checks", nil)
		}
		return
	}

	resp := make([]CheckSummary, 0, len(items))
	for _, item := range items {
		resp = append(resp, toSummary(item))
	}
	respond.OK(c, resp)
}
