package routes

import (
	"github.com/gin-gonic/gin"

	"tutor-server/internal/interfaces/httpserver/handlers/chathandler"
)

// Register wires the conversation routes. Paths are part of the widget
// contract and are not versioned.
func Register(engine *gin.Engine, chatHandler *chathandler.ChatHandler) {
	chat := engine.Group("/chat")
	{
		chat.GET("/:id", chatHandler.GetHistory)
		chat.POST("/:id", chatHandler.PostMessage)
		chat.POST("/:id/reset", chatHandler.Reset)
	}
}
