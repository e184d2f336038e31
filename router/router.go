package router

import (
	"ImageHosting/config"
	"ImageHosting/internal/handler"
	"ImageHosting/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

// InitRouter builds API routes around an ImageHandler.
func InitRouter(h *handler.ImageHandler) *gin.Engine {
	r := gin.Default()
	r.HandleMethodNotAllowed = true
	r.Use(utils.CORSMiddleware())

	r.POST("/upload/",
		utils.RateLimitMiddleware(config.AppConfig.UploadRate, config.AppConfig.UploadBurst),
		h.Upload,
	)

	api := r.Group("/api")
	{
		api.GET("/images/", h.ListGrid)
		api.GET("/images-list/", h.ListTable)
		api.DELETE("/delete/:id", h.Delete)
	}

	r.GET("/images/:name", h.Serve)

	// The original surface answers 405 for anything it does not route,
	// including unknown paths.
	methodNotAllowed := func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	}
	r.NoRoute(methodNotAllowed)
	r.NoMethod(methodNotAllowed)

	return r
}
