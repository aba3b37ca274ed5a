package controller

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"classku_backend/internals/configs"
	dto "classku_backend/internals/features/chat/dto"
	service "classku_backend/internals/features/chat/service"
	helper "classku_backend/internals/helpers"
)

type ChatController struct {
	Validator *validator.Validate
	Service   *service.ChatService
}

func NewChatController() *ChatController {
	return &ChatController{
		Validator: validator.New(),
		Service:   service.NewChatService(configs.ChatEndpoint, configs.ChatAPIKey),
	}
}

// POST /chat
// Stateless: the client carries its own history. Upstream failures never
// surface as a 5xx here, the answer degrades to a canned reply instead.
func (ctrl *ChatController) Complete(c *fiber.Ctx) error {
	var body dto.ChatRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.Validator.Struct(&body); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	reply, err := ctrl.Service.Complete(c.UserContext(), body.Messages)
	if err != nil {
		log.Printf("[WARN] chat upstream degraded: %v", err)
		return helper.JsonOK(c, "ok", dto.ChatResponse{
			Reply:    service.FallbackMessage,
			Degraded: true,
		})
	}
	return helper.JsonOK(c, "ok", dto.ChatResponse{Reply: reply})
}
