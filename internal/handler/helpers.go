package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/veridoc-app/veridoc/internal/middleware"
	"github.com/veridoc-app/veridoc/internal/pdfcheck"
	"github.com/veridoc-app/veridoc/internal/pkg/errs"
	"github.com/veridoc-app/veridoc/internal/pkg/response"
	"github.com/veridoc-app/veridoc/internal/service"
)

const (
	msgNotFound = "Document introuvable"
	msgInvalid  = "Requête invalide"
	msgInternal = "Une erreur interne est survenue"
)

func currentActor(c *gin.Context) service.Actor {
	return service.Actor{
		UserID:    middleware.ActorID(c),
		CompanyID: middleware.CompanyID(c),
	}
}

// pathID assumes the format was already checked by the DocumentID middleware.
func pathID(c *gin.Context, name string) int64 {
	id, _ := strconv.ParseInt(c.Param(name), 10, 64)
	return id
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	var rejection *pdfcheck.RejectionError
	switch {
	case errs.IsNotFound(err):
		response.Error(c, http.StatusNotFound, msgNotFound)
	case errors.As(err, &rejection):
		response.Error(c, http.StatusBadRequest, rejection.Reason)
	case errors.Is(err, errs.ErrInvalid):
		response.Error(c, http.StatusBadRequest, msgInvalid)
	default:
		logutil.GetLogger(c.Request.Context()).Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		response.Error(c, http.StatusInternalServerError, msgInternal)
	}
}
