package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/deeddesk-go/preview"
	"github.com/moyoez/deeddesk-go/tool"
)

type PreviewController struct {
	registry *preview.Registry
}

func NewPreviewController(registry *preview.Registry) *PreviewController {
	return &PreviewController{registry: registry}
}

// HandlePreview streams the bytes behind a live preview handle. Revoked handles are 404.
// GET /api/self/v1/preview/:token
func (ctrl *PreviewController) HandlePreview(c *gin.Context) {
	file, err := ctrl.registry.Lookup(c.Param("token"))
	if err != nil {
		if errors.Is(err, preview.ErrHandleNotFound) {
			c.JSON(http.StatusNotFound, tool.FastReturnError(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, tool.FastReturnError(err.Error()))
		return
	}
	if file.Content == nil {
		c.JSON(http.StatusNotFound, tool.FastReturnError("preview has no content"))
		return
	}

	src, err := file.Content.Open()
	if err != nil {
		tool.DefaultLogger.Errorf("[Preview] Failed to open %s: %v", file.Name, err)
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Failed to open file"))
		return
	}
	defer func() {
		if err := src.Close(); err != nil {
			tool.DefaultLogger.Errorf("Failed to close %s: %v", file.Name, err)
		}
	}()

	contentType := file.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, file.Size, contentType, src, map[string]string{
		"Cache-Control": "no-store",
	})
}
