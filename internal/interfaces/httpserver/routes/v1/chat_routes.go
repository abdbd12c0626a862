package v1

import (
	"github.com/gin-gonic/gin"

	"lexaid-server/internal/interfaces/httpserver/handlers"
)

func registerChatRoutes(router gin.IRoutes, handler *handlers.ChatHandler) {
	router.POST("/conversations", handler.Create)
	router.GET("/conversations", handler.List)
	router.GET("/conversations/:conversation_id/messages", handler.ListMessages)
	router.POST("/conversations/:conversation_id/messages", handler.AppendMessage)
	router.DELETE("/conversations/:conversation_id", handler.Delete)
}
