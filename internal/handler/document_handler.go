package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/veridoc-app/veridoc/internal/idgen"
	"github.com/veridoc-app/veridoc/internal/pkg/response"
	"github.com/veridoc-app/veridoc/internal/service"
)

// StagingFilePrefix marks staged upload files so the sweep job can tell them
// apart from unrelated temp files.
const StagingFilePrefix = "veridoc-upload-"

type DocumentHandler struct {
	docs       *service.DocumentService
	stagingDir string
}

func NewDocumentHandler(docs *service.DocumentService, stagingDir string) *DocumentHandler {
	return &DocumentHandler{docs: docs, stagingDir: stagingDir}
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Aucun fichier fourni")
		return
	}

	options := service.DefaultUploadOptions()
	if raw := c.PostForm("options"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &options); err != nil {
			response.Error(c, http.StatusBadRequest, msgInvalid)
			return
		}
	}

	staged := filepath.Join(h.stagingDir, StagingFilePrefix+idgen.RandomHex(8)+".pdf")
	// Registered before the copy: a failed SaveUploadedFile can still leave a
	// partial file behind, and removing a never-created one is harmless.
	defer os.Remove(staged)
	if err := c.SaveUploadedFile(file, staged); err != nil {
		handleError(c, fmt.Errorf("stage upload: %w", err))
		return
	}

	doc, err := h.docs.CreateFromUpload(c.Request.Context(), currentActor(c), service.UploadInput{
		Name:        filepath.Base(file.Filename),
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
		StagedPath:  staged,
		Options:     options,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, doc)
}

func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.docs.List(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docs)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.docs.Get(c.Request.Context(), pathID(c, "id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc)
}

func (h *DocumentHandler) Sign(c *gin.Context) {
	doc, err := h.docs.Sign(c.Request.Context(), currentActor(c), pathID(c, "id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc)
}

func (h *DocumentHandler) Download(c *gin.Context) {
	doc, content, err := h.docs.Download(c.Request.Context(), currentActor(c), pathID(c, "id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Name))
	c.Data(http.StatusOK, doc.ContentType, content)
}

func (h *DocumentHandler) AuditLogs(c *gin.Context) {
	logs, err := h.docs.AuditLogs(c.Request.Context(), pathID(c, "id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs)
}

func (h *DocumentHandler) Verify(c *gin.Context) {
	result, err := h.docs.Verify(c.Request.Context(), pathID(c, "id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
