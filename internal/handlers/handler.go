package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tupyy/hcam-agent/internal/models"
	"github.com/tupyy/hcam-agent/internal/services"
	"github.com/tupyy/hcam-agent/internal/session"
	"github.com/tupyy/hcam-agent/internal/store"
	"github.com/tupyy/hcam-agent/pkg/camapi"
)

type Camera interface {
	DescribeStatus(ctx context.Context) (*camapi.CamStatus, string, error)
	GetCurrentSettings(ctx context.Context) (camapi.Settings, error)
}

type Watcher interface {
	Last() *models.CameraStatus
}

type ProfileStore interface {
	List(ctx context.Context) ([]models.Profile, error)
	Get(ctx context.Context, name string) (*models.Profile, error)
	Save(ctx context.Context, p *models.Profile) error
	Delete(ctx context.Context, name string) error
}

type CaptureService interface {
	Configure(ctx context.Context, requested camapi.Settings) (camapi.Settings, error)
	Start(ctx context.Context, req models.CaptureRequest) (*models.CaptureSession, error)
	Stop(ctx context.Context) (*models.CaptureSession, error)
	Current() (*models.CaptureSession, error)
}

// Handler implements the agent API.
type Handler struct {
	camera     Camera
	watcher    Watcher
	profiles   ProfileStore
	captureSrv CaptureService
}

func New(camera Camera, watcher Watcher, profiles ProfileStore, captureSrv CaptureService) *Handler {
	return &Handler{
		camera:     camera,
		watcher:    watcher,
		profiles:   profiles,
		captureSrv: captureSrv,
	}
}

// abort maps err to a status code and writes the error body.
func abort(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, services.ErrNoSession):
		code = http.StatusNotFound
	case errors.Is(err, services.ErrSessionInProgress):
		code = http.StatusConflict
	case errors.Is(err, session.ErrInvalidOptions):
		code = http.StatusBadRequest
	case errors.Is(err, session.ErrProtocolViolation), errors.Is(err, session.ErrOperationRejected):
		code = http.StatusConflict
	case isCameraError(err):
		code = http.StatusBadGateway
	}

	if code >= http.StatusInternalServerError {
		zap.S().Named("http").Errorw("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

func isCameraError(err error) bool {
	var httpErr *camapi.HTTPError
	if errors.As(err, &httpErr) {
		return true
	}
	return errors.Is(err, camapi.ErrMissingState) ||
		errors.Is(err, camapi.ErrUnknownState) ||
		errors.Is(err, camapi.ErrUnknownStatus) ||
		errors.Is(err, camapi.ErrUnexpectedValue)
}
