package simulator

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tupyy/hcam-agent/pkg/camapi"
)

// Handler returns an http.Handler serving the camera endpoints.
func (d *Device) Handler() http.Handler {
	engine := gin.New()
	d.Register(engine)
	return engine
}

// Register mounts the camera endpoints on router.
func (d *Device) Register(router gin.IRoutes) {
	router.Use(func(c *gin.Context) {
		d.record(c.Request.URL.RequestURI())
		c.Next()
	})

	router.POST("/configure_camera", d.handleConfigure)
	router.POST("/run", d.handleRun)
	router.POST("/save_favorite", d.handleSaveFavorite)

	router.GET("/trigger", func(c *gin.Context) {
		d.respond(c, func() any { return int(d.trigger(c.Query("base_filename"))) })
	})
	router.GET("/cancel", func(c *gin.Context) {
		d.respond(c, func() any { return int(d.cancel()) })
	})
	router.GET("/save", func(c *gin.Context) {
		d.respond(c, func() any { return int(d.save()) })
	})
	router.GET("/save_stop", func(c *gin.Context) {
		discard := c.Query("discard_unsaved") == "1"
		d.respond(c, func() any { return int(d.saveStop(discard)) })
	})
	router.GET("/get_camstatus", func(c *gin.Context) {
		d.respond(c, func() any { return d.status() })
	})
	router.GET("/get_current_settings", func(c *gin.Context) {
		d.respond(c, func() any { return copySettings(d.current) })
	})
	router.GET("/get_saved_settings", func(c *gin.Context) {
		id := c.Query("id")
		d.respond(c, func() any {
			if id == "" {
				return copySettings(d.saved)
			}
			if fav, ok := d.favorites[id]; ok {
				return copySettings(fav)
			}
			return camapi.Settings{}
		})
	})
	router.GET("/pretrigger_buffer_fill_level", func(c *gin.Context) {
		d.respond(c, func() any { return d.fillLevel() })
	})
	router.GET("/get_caminfo", func(c *gin.Context) {
		d.respond(c, func() any {
			return map[string]any{
				"model_number":           "SC2+",
				"serial_number":          d.opts.SerialNumber,
				"hardware_revision":      "1",
				"hardware_configuration": "simulated",
				"fpga_version":           "0.0.0",
				"ir_filter":              1,
				"mac_addr":               "02:00:00:00:00:01",
			}
		})
	})
	router.GET("/get_storage_dir", func(c *gin.Context) {
		d.respond(c, func() any {
			if d.opts.StorageDir == "" {
				return nil
			}
			return d.opts.StorageDir
		})
	})
	router.GET("/get_storage_info", func(c *gin.Context) {
		d.respond(c, func() any {
			return map[string]any{
				"available_space": d.availableFree,
				"storage_size":    d.opts.StorageSize,
				"mount_point":     d.opts.StorageDir,
			}
		})
	})
	router.GET("/get_favorite", func(c *gin.Context) {
		id := c.Query("id")
		d.respond(c, func() any {
			if fav, ok := d.favorites[id]; ok {
				return copySettings(fav)
			}
			return camapi.Settings{}
		})
	})
	router.GET("/get_favorite_ids", func(c *gin.Context) {
		d.respond(c, func() any { return d.favoriteIDs() })
	})
	router.GET("/delete_favorite", func(c *gin.Context) {
		id := c.Query("id")
		d.respond(c, func() any {
			if _, ok := d.favorites[id]; !ok {
				return int(camapi.StatusInvalidParameter)
			}
			delete(d.favorites, id)
			return int(camapi.StatusOkay)
		})
	})
}

func (d *Device) respond(c *gin.Context, fn func() any) {
	d.mu.Lock()
	v := fn()
	d.mu.Unlock()
	c.JSON(http.StatusOK, v)
}

func (d *Device) handleConfigure(c *gin.Context) {
	var requested camapi.Settings
	if err := c.ShouldBindJSON(&requested); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d.respond(c, func() any { return d.configure(requested) })
}

func (d *Device) handleRun(c *gin.Context) {
	var settings camapi.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d.respond(c, func() any { return int(d.run(settings)) })
}

func (d *Device) handleSaveFavorite(c *gin.Context) {
	var settings camapi.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d.respond(c, func() any {
		id, ok := settings["id"]
		if !ok || id == nil {
			return int(camapi.StatusInvalidParameter)
		}
		key := fmt.Sprint(id)
		if n, ok := settings.Int("id"); ok {
			key = fmt.Sprint(n)
		}
		d.favorites[key] = copySettings(settings)
		return int(camapi.StatusOkay)
	})
}
