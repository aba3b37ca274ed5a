package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	userController "classku_backend/internals/features/users/user/controller"
)

// UserRoutes: profile endpoints for the logged-in user.
// Mounted under an auth-guarded group.
func UserRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := userController.NewUserController(db)

	g := r.Group("/me")
	g.Get("/", ctrl.Me)
	g.Patch("/", ctrl.UpdateMe)
	g.Post("/avatar", ctrl.UploadAvatar)
}
