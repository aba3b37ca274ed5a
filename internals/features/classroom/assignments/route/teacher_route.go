package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	assignmentController "classku_backend/internals/features/classroom/assignments/controller"
)

// AssignmentTeacherRoutes: instructor endpoints, mounted under /api/t.
func AssignmentTeacherRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := assignmentController.NewAssignmentController(db)

	g := r.Group("/assignments")
	g.Post("/", ctrl.Create)
	g.Get("/:id", ctrl.GetByID)
	g.Patch("/:id", ctrl.Patch)
	g.Delete("/:id", ctrl.Delete)
	g.Post("/:id/publish", ctrl.Publish)
	g.Post("/:id/rubric/import", ctrl.ImportRubric)

	r.Get("/courses/:course_id/assignments", ctrl.ListByCourse)
}
