package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"github.com/moyoez/deeddesk-go/tool"
)

const (
	defaultQRSize = 200
	maxQRSize     = 512
)

// GenerateQRCode returns a PNG QR code, e.g. to open the upload page from a phone.
// GET ?size=200x200&data=<url-encoded-content>; without data it encodes this server's state URL.
func GenerateQRCode(c *gin.Context) {
	data := strings.TrimSpace(c.Query("data"))
	if data == "" {
		data = "http://" + c.Request.Host + "/api/self/v1/state"
	}

	size := parseSize(c.Query("size"))
	if size <= 0 {
		size = defaultQRSize
	}
	size = min(size, maxQRSize)

	png, err := qrcode.Encode(data, qrcode.Medium, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Failed to encode QR code: "+err.Error()))
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// parseSize accepts "200x200" or "200".
func parseSize(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if before, _, ok := strings.Cut(s, "x"); ok {
		s = strings.TrimSpace(before)
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
