package v1

import (
	"github.com/gin-gonic/gin"

	"lexaid-server/internal/interfaces/httpserver/handlers"
)

func registerDocumentRoutes(router gin.IRoutes, handler *handlers.DocumentHandler) {
	router.POST("/documents", handler.Upload)
	router.GET("/documents", handler.List)
	router.GET("/documents/:document_id", handler.Get)
	router.PATCH("/documents/:document_id", handler.Requeue)
	router.DELETE("/documents/:document_id", handler.Delete)
}
