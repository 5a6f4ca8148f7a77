package tool

import (
	"github.com/gin-gonic/gin"
)

func FastReturnError(msg string) gin.H {
	return gin.H{
		"error": msg,
	}
}

func FastReturnSuccessWithData(data any) gin.H {
	return gin.H{
		"data": data,
	}
}

// FastReturnErrorWithData keeps the rendered state next to the error so the page can re-render.
func FastReturnErrorWithData(msg string, data any) gin.H {
	return gin.H{
		"error": msg,
		"data":  data,
	}
}
