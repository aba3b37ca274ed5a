package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	assignmentController "classku_backend/internals/features/classroom/assignments/controller"
)

// AssignmentUserRoutes: student endpoints, mounted under /api/u.
// Students only ever see published assignments in their enrolled courses.
func AssignmentUserRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := assignmentController.NewAssignmentController(db)

	g := r.Group("/assignments")
	g.Get("/:id", ctrl.GetByID)

	r.Get("/courses/:course_id/assignments", ctrl.ListByCourse)
}
