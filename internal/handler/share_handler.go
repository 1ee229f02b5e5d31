package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veridoc-app/veridoc/internal/pkg/response"
	"github.com/veridoc-app/veridoc/internal/service"
)

type ShareHandler struct {
	shares *service.ShareService
}

func NewShareHandler(shares *service.ShareService) *ShareHandler {
	return &ShareHandler{shares: shares}
}

type addShareRequest struct {
	UserID     int64  `json:"userId"`
	Permission string `json:"permission"`
}

func (h *ShareHandler) List(c *gin.Context) {
	details, err := h.shares.List(c.Request.Context(), pathID(c, "id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details)
}

func (h *ShareHandler) Add(c *gin.Context) {
	var req addShareRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == 0 {
		response.Error(c, http.StatusBadRequest, msgInvalid)
		return
	}
	share, err := h.shares.Add(c.Request.Context(), currentActor(c), pathID(c, "id"), req.UserID, req.Permission)
	if err != nil {
		handleError(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, share)
}

// Remove is idempotent: revoking an absent grant still returns 204.
func (h *ShareHandler) Remove(c *gin.Context) {
	err := h.shares.Remove(c.Request.Context(), currentActor(c), pathID(c, "documentId"), pathID(c, "userId"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
