package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	authController "classku_backend/internals/features/users/auth/controller"
	"classku_backend/internals/middlewares"
	authMw "classku_backend/internals/middlewares/auth"
)

// AuthRoutes: public auth endpoints + logout (needs a valid token).
func AuthRoutes(app *fiber.App, db *gorm.DB) {
	ctrl := authController.NewAuthController(db)

	g := app.Group("/api/auth")
	g.Post("/register", middlewares.RegisterRateLimiter(), ctrl.Register)
	g.Post("/login", middlewares.LoginRateLimiter(), ctrl.Login)
	g.Post("/login-google", middlewares.LoginRateLimiter(), ctrl.LoginGoogle)
	g.Post("/refresh", ctrl.Refresh)
	g.Post("/logout", authMw.AuthMiddleware(db), ctrl.Logout)
}
