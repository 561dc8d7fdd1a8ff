package httphandlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gitlab.com/TitanInd/otcescrow/internal/config"
)

func (h *HTTPHandler) GetConfig(ctx *gin.Context) {
	if h.config == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "config not exposed"})
		return
	}
	ctx.JSON(http.StatusOK, ConfigResponse{
		Version: config.BuildVersion,
		Config:  h.config.GetSanitized(),
	})
}
