package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"lexaid-server/internal/domain/document"
	"lexaid-server/internal/infrastructure/auth"
	"lexaid-server/internal/interfaces/httpserver/responses"
	"lexaid-server/internal/utils/platformerrors"
)

// DocumentHandler exposes HTTP entrypoints for the document API.
type DocumentHandler struct {
	service document.Service
	log     zerolog.Logger
}

// NewDocumentHandler constructs the handler.
func NewDocumentHandler(service document.Service, log zerolog.Logger) *DocumentHandler {
	return &DocumentHandler{
		service: service,
		log:     log.With().Str("handler", "document").Logger(),
	}
}

// Upload handles POST /v1/documents
// @Summary Upload a document
// @Description Uploads a legal document and queues it for simplification
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document file"
// @Param metadata formData string false "JSON metadata, may include webhook_url"
// @Success 201 {object} responses.DocumentPayload
// @Failure 400 {object} responses.ErrorResponse
// @Failure 401 {object} responses.ErrorResponse
// @Router /v1/documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "file is required", "document-upload-missing-file")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "failed to read uploaded file", "document-upload-open-error")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "failed to read uploaded file", "document-upload-read-error")
		return
	}

	var metadata json.RawMessage
	if raw := c.PostForm("metadata"); raw != "" {
		if !json.Valid([]byte(raw)) {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "metadata must be valid JSON", "document-upload-invalid-metadata")
			return
		}
		metadata = json.RawMessage(raw)
	}

	doc, err := h.service.Upload(
		c.Request.Context(),
		auth.Subject(c),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		data,
		metadata,
	)
	if err != nil {
		responses.HandleError(c, err, "failed to upload document")
		return
	}

	c.JSON(http.StatusCreated, responses.FromDocument(doc))
}

// List handles GET /v1/documents
// @Summary List documents
// @Description Lists the caller's documents, newest first
// @Tags Documents
// @Produce json
// @Success 200 {object} responses.DocumentListResponse
// @Router /v1/documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	documents := h.service.List(c.Request.Context(), auth.Subject(c))
	c.JSON(http.StatusOK, responses.FromDocuments(documents))
}

// Get handles GET /v1/documents/:document_id
// @Summary Get a document
// @Description Fetches a document including its simplification state
// @Tags Documents
// @Produce json
// @Param document_id path string true "Document ID"
// @Success 200 {object} responses.DocumentPayload
// @Failure 401 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/documents/{document_id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	documentID := c.Param("document_id")

	doc, err := h.service.Get(c.Request.Context(), auth.Subject(c), documentID)
	if err != nil {
		responses.HandleError(c, err, "failed to get document")
		return
	}

	c.JSON(http.StatusOK, responses.FromDocument(doc))
}

// Requeue handles PATCH /v1/documents/:document_id
// @Summary Re-run simplification
// @Description Puts a completed or failed document back through the pipeline
// @Tags Documents
// @Produce json
// @Param document_id path string true "Document ID"
// @Success 200 {object} responses.DocumentPayload
// @Failure 401 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Router /v1/documents/{document_id} [patch]
func (h *DocumentHandler) Requeue(c *gin.Context) {
	documentID := c.Param("document_id")

	doc, err := h.service.Requeue(c.Request.Context(), auth.Subject(c), documentID)
	if err != nil {
		responses.HandleError(c, err, "failed to requeue document")
		return
	}

	c.JSON(http.StatusOK, responses.FromDocument(doc))
}

// Delete handles DELETE /v1/documents/:document_id
// @Summary Delete a document
// @Description Deletes a document and its stored file
// @Tags Documents
// @Produce json
// @Param document_id path string true "Document ID"
// @Success 200 {object} map[string]any
// @Failure 401 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/documents/{document_id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	documentID := c.Param("document_id")

	if err := h.service.Delete(c.Request.Context(), auth.Subject(c), documentID); err != nil {
		responses.HandleError(c, err, "failed to delete document")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":      documentID,
		"object":  "document.deleted",
		"deleted": true,
	})
}
