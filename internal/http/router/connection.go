package router

import (
	"github.com/gin-gonic/gin"

	"tradematch.app/linkup/internal/http/handler"
)

// ConnectionRouter mounts the connection routes. Everything except the schema
// runs behind auth.
func ConnectionRouter(rg *gin.RouterGroup, h *handler.ConnectionHandler, auth gin.HandlerFunc) {
	rg.GET("/schema", h.Schema)

	authed := rg.Group("", auth)
	{
		authed.POST("", h.Create)
		authed.GET("", h.List)
		authed.GET("/:id", h.Get)
		authed.PATCH("/:id/status", h.UpdateStatus)
	}
}
