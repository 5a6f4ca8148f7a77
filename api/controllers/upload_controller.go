package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"

	"github.com/moyoez/deeddesk-go/tool"
	"github.com/moyoez/deeddesk-go/types"
	"github.com/moyoez/deeddesk-go/uploader"
)

const (
	// FilesFieldName is the multipart field browsers post picked files under.
	FilesFieldName = "files"
	// MaxMultipartMemory is kept in memory before gin spills parts to temp files.
	MaxMultipartMemory = 32 << 20
)

// UploadController exposes the upload manager actions to the local web UI.
type UploadController struct {
	manager *uploader.Manager
}

func NewUploadController(manager *uploader.Manager) *UploadController {
	return &UploadController{manager: manager}
}

// HandleState returns the render snapshot.
// GET /api/self/v1/state
func (ctrl *UploadController) HandleState(c *gin.Context) {
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(ctrl.manager.Snapshot()))
}

// HandleAddFiles adds multipart parts posted under "files". Parts that are not images
// are dropped silently. Optional "lastModified" values (unix millis) pair with the parts by position.
// POST /api/self/v1/files
func (ctrl *UploadController) HandleAddFiles(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		tool.DefaultLogger.Errorf("[Files] Failed to parse multipart form: %v", err)
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Invalid multipart form"))
		return
	}
	headers := form.File[FilesFieldName]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("No files in field \""+FilesFieldName+"\""))
		return
	}
	lastModified := form.Value["lastModified"]

	candidates := make([]types.RawFile, 0, len(headers))
	for i, fh := range headers {
		src, err := fh.Open()
		if err != nil {
			tool.DefaultLogger.Errorf("[Files] Failed to open part %s: %v", fh.Filename, err)
			c.JSON(http.StatusBadRequest, tool.FastReturnError("Failed to read file: "+fh.Filename))
			return
		}
		data, err := io.ReadAll(src)
		if closeErr := src.Close(); closeErr != nil {
			tool.DefaultLogger.Errorf("Failed to close part %s: %v", fh.Filename, closeErr)
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, tool.FastReturnError("Failed to read file: "+fh.Filename))
			return
		}

		modified := time.Now().UnixMilli()
		if i < len(lastModified) {
			if v, err := strconv.ParseInt(lastModified[i], 10, 64); err == nil && v > 0 {
				modified = v
			}
		}
		candidates = append(candidates, tool.RawFileFromBytes(fh.Filename, fh.Header.Get("Content-Type"), modified, data))
	}

	added := ctrl.manager.AddFiles(candidates)
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(gin.H{
		"added":    added,
		"dropped":  len(candidates) - added,
		"snapshot": ctrl.manager.Snapshot(),
	}))
}

// HandleAddPaths adds files from the local disk, given as file:// urls or plain paths.
// POST /api/self/v1/files/paths
func (ctrl *UploadController) HandleAddPaths(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Failed to read request body"))
		return
	}
	var request types.FilePathsRequest
	if err := sonic.Unmarshal(body, &request); err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Invalid request body"))
		return
	}
	if len(request.FileUrls) == 0 {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("fileUrls must not be empty"))
		return
	}

	candidates := make([]types.RawFile, 0, len(request.FileUrls))
	failed := make(map[string]string)
	for _, raw := range request.FileUrls {
		path, err := tool.ParseFileURL(raw)
		if err != nil {
			failed[raw] = err.Error()
			continue
		}
		file, err := tool.RawFileFromPath(path)
		if err != nil {
			failed[raw] = err.Error()
			continue
		}
		candidates = append(candidates, file)
	}
	if len(candidates) == 0 {
		c.JSON(http.StatusBadRequest, tool.FastReturnErrorWithData("None of the files could be read", gin.H{"failed": failed}))
		return
	}

	added := ctrl.manager.AddFiles(candidates)
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(gin.H{
		"added":    added,
		"dropped":  len(candidates) - added,
		"failed":   failed,
		"snapshot": ctrl.manager.Snapshot(),
	}))
}

// HandleRemove removes the file at :index.
// DELETE /api/self/v1/files/:index
func (ctrl *UploadController) HandleRemove(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("index must be an integer"))
		return
	}
	if !ctrl.manager.RemoveAt(index) {
		c.JSON(http.StatusNotFound, tool.FastReturnErrorWithData(fmt.Sprintf("No file at index %d", index), ctrl.manager.Snapshot()))
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(ctrl.manager.Snapshot()))
}

// DELETE /api/self/v1/files
func (ctrl *UploadController) HandleClear(c *gin.Context) {
	ctrl.manager.Clear()
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(ctrl.manager.Snapshot()))
}

// POST /api/self/v1/reset
func (ctrl *UploadController) HandleReset(c *gin.Context) {
	ctrl.manager.Reset()
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(ctrl.manager.Snapshot()))
}

// HandleSubmit starts an upload of the current selection and returns without waiting
// for it; progress arrives over notify-ws or by polling /state and /uploads/:id.
// POST /api/self/v1/submit
func (ctrl *UploadController) HandleSubmit(c *gin.Context) {
	res := ctrl.manager.StartSubmit(c.Request.Context())
	err := uploader.ErrFor(res.Reason)
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, tool.FastReturnSuccessWithData(gin.H{
			"receiptId": res.ReceiptID,
			"state":     res.State,
		}))
	case errors.Is(err, uploader.ErrNoFiles):
		c.JSON(http.StatusBadRequest, tool.FastReturnErrorWithData(err.Error(), ctrl.manager.Snapshot()))
	case errors.Is(err, uploader.ErrUploadInProgress):
		c.JSON(http.StatusConflict, tool.FastReturnErrorWithData(err.Error(), ctrl.manager.Snapshot()))
	default:
		tool.DefaultLogger.Warnf("[Submit] Rejected: %v", err)
		c.JSON(http.StatusServiceUnavailable, tool.FastReturnError(err.Error()))
	}
}

// HandleStatus reports that the service is up and where uploads go.
// GET /api/self/v1/status
func (ctrl *UploadController) HandleStatus(notifyWSEnabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := ctrl.manager.Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"running":           true,
			"notify_ws_enabled": notifyWSEnabled,
			"uploadUrl":         snap.UploadURL,
			"phase":             snap.State.Phase,
			"fileCount":         snap.FileCount,
		})
	}
}
