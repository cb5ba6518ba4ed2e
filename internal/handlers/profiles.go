package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/tupyy/hcam-agent/api/v1"
	"github.com/tupyy/hcam-agent/internal/models"
	"github.com/tupyy/hcam-agent/pkg/camapi"
)

// ListProfiles returns every stored profile
// (GET /profiles)
func (h *Handler) ListProfiles(c *gin.Context) {
	profiles, err := h.profiles.List(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}

	resp := v1.ProfileList{Profiles: make([]v1.Profile, 0, len(profiles))}
	for _, p := range profiles {
		var item v1.Profile
		item.FromModel(p)
		resp.Profiles = append(resp.Profiles, item)
	}
	c.JSON(http.StatusOK, resp)
}

// (GET /profiles/{name})
func (h *Handler) GetProfile(c *gin.Context, name string) {
	p, err := h.profiles.Get(c.Request.Context(), name)
	if err != nil {
		abort(c, err)
		return
	}

	var resp v1.Profile
	resp.FromModel(*p)
	c.JSON(http.StatusOK, resp)
}

// PutProfile creates or replaces a profile
// (PUT /profiles/{name})
func (h *Handler) PutProfile(c *gin.Context, name string) {
	var req v1.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	if err := h.profiles.Save(ctx, &models.Profile{Name: name, Settings: camapi.Settings(req.Settings)}); err != nil {
		abort(c, err)
		return
	}

	p, err := h.profiles.Get(ctx, name)
	if err != nil {
		abort(c, err)
		return
	}

	var resp v1.Profile
	resp.FromModel(*p)
	c.JSON(http.StatusOK, resp)
}

// (DELETE /profiles/{name})
func (h *Handler) DeleteProfile(c *gin.Context, name string) {
	if err := h.profiles.Delete(c.Request.Context(), name); err != nil {
		abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
