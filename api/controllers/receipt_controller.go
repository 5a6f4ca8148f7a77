package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/deeddesk-go/api/models"
	"github.com/moyoez/deeddesk-go/tool"
)

// HandleReceipt returns the receipt of a settled upload while it is cached.
// GET /api/self/v1/uploads/:id
func HandleReceipt(c *gin.Context) {
	id := c.Param("id")
	receipt, ok := models.LookupReceipt(id)
	if !ok {
		c.JSON(http.StatusNotFound, tool.FastReturnError("Upload not found or expired"))
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(receipt))
}
