package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/tupyy/hcam-agent/api/v1"
)

// StartSession starts a capture session in the background
// (POST /sessions)
func (h *Handler) StartSession(c *gin.Context) {
	var req v1.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	// the session outlives the request
	s, err := h.captureSrv.Start(c.Request.Context(), req.ToModel())
	if err != nil {
		abort(c, err)
		return
	}

	var resp v1.Session
	resp.FromModel(*s)
	c.JSON(http.StatusAccepted, resp)
}

// GetCurrentSession returns the running or last session
// (GET /sessions/current)
func (h *Handler) GetCurrentSession(c *gin.Context) {
	s, err := h.captureSrv.Current()
	if err != nil {
		abort(c, err)
		return
	}

	var resp v1.Session
	resp.FromModel(*s)
	c.JSON(http.StatusOK, resp)
}

// StopSession stops the running session
// (DELETE /sessions/current)
func (h *Handler) StopSession(c *gin.Context) {
	s, err := h.captureSrv.Stop(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}

	var resp v1.Session
	resp.FromModel(*s)
	c.JSON(http.StatusOK, resp)
}
