package route

import (
	"github.com/gofiber/fiber/v2"

	chatController "classku_backend/internals/features/chat/controller"
	"classku_backend/internals/middlewares"
)

// ChatRoutes: the AI assistant, available to any logged-in user.
func ChatRoutes(r fiber.Router) {
	ctrl := chatController.NewChatController()
	r.Post("/chat", middlewares.ChatRateLimiter(), ctrl.Complete)
}
