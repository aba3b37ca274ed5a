package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"classku_backend/internals/constants"
	chatRoute "classku_backend/internals/features/chat/route"
	authRoute "classku_backend/internals/features/users/auth/route"
	userRoute "classku_backend/internals/features/users/user/route"
	authMiddleware "classku_backend/internals/middlewares/auth"
	routeDetails "classku_backend/internals/route/details"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// ===================== PUBLIC =====================
	log.Println("[INFO] Setting up AuthRoutes...")
	authRoute.AuthRoutes(app, db)

	// ===================== PRIVATE (any logged-in user) =====================
	log.Println("[INFO] Setting up /api/u group...")
	user := app.Group("/api/u", authMiddleware.AuthMiddleware(db))
	userRoute.UserRoutes(user, db)
	routeDetails.ClassroomUserRoutes(user, db)
	chatRoute.ChatRoutes(user)

	// ===================== TEACHER =====================
	log.Println("[INFO] Setting up /api/t group...")
	teacher := app.Group("/api/t",
		authMiddleware.AuthMiddleware(db),
		authMiddleware.OnlyRoles("Instructor access required", constants.RoleTeacher, constants.RoleAdmin),
	)
	routeDetails.ClassroomTeacherRoutes(teacher, db)
}
