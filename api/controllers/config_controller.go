package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/deeddesk-go/tool"
	"github.com/moyoez/deeddesk-go/types"
	"github.com/moyoez/deeddesk-go/uploader"
)

type ConfigController struct {
	manager *uploader.Manager
}

func NewConfigController(manager *uploader.Manager) *ConfigController {
	return &ConfigController{manager: manager}
}

func (ctrl *ConfigController) response() types.ConfigResponse {
	cfg := tool.GetCurrentConfig()
	return types.ConfigResponse{
		APIBaseURL:            cfg.APIBaseURL,
		UploadEndpoint:        cfg.UploadEndpoint,
		UploadURL:             ctrl.manager.UploadURL(),
		ListenPort:            cfg.ListenPort,
		RequestTimeoutSeconds: cfg.RequestTimeoutSeconds,
		FormFields:            cfg.FormFields,
		ReceiptTTLMinutes:     cfg.ReceiptTTLMinutes,
		SubmitRatePerSecond:   cfg.SubmitRatePerSecond,
		NotifySocketEnabled:   cfg.NotifySocketPath != "",
	}
}

// HandleConfigGet returns the effective configuration.
// GET /api/self/v1/config
func (ctrl *ConfigController) HandleConfigGet(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.response())
}

// HandleConfigPatch changes the upload target or form fields, applies them to the
// manager and persists them to config.yaml.
// PATCH /api/self/v1/config
func (ctrl *ConfigController) HandleConfigPatch(c *gin.Context) {
	var body types.ConfigPatchRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError(err.Error()))
		return
	}

	_, err := tool.UpdateConfig(func(cfg *types.AppConfig) {
		if body.APIBaseURL != nil {
			cfg.APIBaseURL = *body.APIBaseURL
		}
		if body.UploadEndpoint != nil {
			cfg.UploadEndpoint = *body.UploadEndpoint
		}
		if body.FormFields != nil {
			cfg.FormFields = *body.FormFields
		}
	}, func(cfg types.AppConfig) {
		uploadURL := ctrl.manager.SetEndpoint(cfg.APIBaseURL, cfg.UploadEndpoint)
		ctrl.manager.SetFormFields(cfg.FormFields)
		tool.DefaultLogger.Infof("[Config] Upload target is now %s", uploadURL)
	})
	if err != nil {
		tool.DefaultLogger.Errorf("[Config] %v", err)
		c.JSON(http.StatusInternalServerError, tool.FastReturnError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, ctrl.response())
}
