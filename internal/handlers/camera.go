package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/tupyy/hcam-agent/api/v1"
	"github.com/tupyy/hcam-agent/pkg/camapi"
)

// GetCameraStatus reads a fresh camera status
// (GET /camera/status)
func (h *Handler) GetCameraStatus(c *gin.Context) {
	st, text, err := h.camera.DescribeStatus(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}

	var resp v1.CameraStatus
	resp.FromCamStatus(st, text)
	c.JSON(http.StatusOK, resp)
}

// GetCameraSettings returns the current camera settings
// (GET /camera/settings)
func (h *Handler) GetCameraSettings(c *gin.Context) {
	settings, err := h.camera.GetCurrentSettings(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v1.Settings(settings))
}

// ConfigureCamera sends requested settings and returns the allowed ones
// (POST /camera/configure)
func (h *Handler) ConfigureCamera(c *gin.Context) {
	var req v1.Settings
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	allowed, err := h.captureSrv.Configure(c.Request.Context(), camapi.Settings(req))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v1.Settings(allowed))
}

// GetCameraWatch returns the last status seen by the watcher
// (GET /camera/watch)
func (h *Handler) GetCameraWatch(c *gin.Context) {
	last := h.watcher.Last()
	if last == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "camera status not observed yet"})
		return
	}

	var resp v1.CameraStatus
	resp.FromModel(*last)
	c.JSON(http.StatusOK, resp)
}
