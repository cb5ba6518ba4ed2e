package v1

import (
	"github.com/gin-gonic/gin"
)

// ServerInterface is implemented by the agent handlers.
type ServerInterface interface {
	// (GET /camera/status)
	GetCameraStatus(c *gin.Context)
	// (GET /camera/settings)
	GetCameraSettings(c *gin.Context)
	// (POST /camera/configure)
	ConfigureCamera(c *gin.Context)
	// (GET /camera/watch)
	GetCameraWatch(c *gin.Context)
	// (GET /profiles)
	ListProfiles(c *gin.Context)
	// (GET /profiles/{name})
	GetProfile(c *gin.Context, name string)
	// (PUT /profiles/{name})
	PutProfile(c *gin.Context, name string)
	// (DELETE /profiles/{name})
	DeleteProfile(c *gin.Context, name string)
	// (POST /sessions)
	StartSession(c *gin.Context)
	// (GET /sessions/current)
	GetCurrentSession(c *gin.Context)
	// (DELETE /sessions/current)
	StopSession(c *gin.Context)
}

// RegisterHandlers mounts every agent endpoint on router.
func RegisterHandlers(router gin.IRouter, si ServerInterface) {
	router.GET("/camera/status", si.GetCameraStatus)
	router.GET("/camera/settings", si.GetCameraSettings)
	router.POST("/camera/configure", si.ConfigureCamera)
	router.GET("/camera/watch", si.GetCameraWatch)

	router.GET("/profiles", si.ListProfiles)
	router.GET("/profiles/:name", func(c *gin.Context) {
		si.GetProfile(c, c.Param("name"))
	})
	router.PUT("/profiles/:name", func(c *gin.Context) {
		si.PutProfile(c, c.Param("name"))
	})
	router.DELETE("/profiles/:name", func(c *gin.Context) {
		si.DeleteProfile(c, c.Param("name"))
	})

	router.POST("/sessions", si.StartSession)
	router.GET("/sessions/current", si.GetCurrentSession)
	router.DELETE("/sessions/current", si.StopSession)
}
