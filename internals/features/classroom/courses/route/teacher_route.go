package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	courseController "classku_backend/internals/features/classroom/courses/controller"
)

// CourseTeacherRoutes: instructor endpoints, mounted under /api/t.
func CourseTeacherRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := courseController.NewCourseController(db)
	enrollCtrl := courseController.NewEnrollmentController(db)

	g := r.Group("/courses")
	g.Post("/", ctrl.Create)
	g.Get("/", ctrl.ListMine)
	g.Get("/:id", ctrl.GetByID)
	g.Patch("/:id", ctrl.Patch)
	g.Delete("/:id", ctrl.Delete)
	g.Post("/:id/entry-code", ctrl.RegenerateEntryCode)
	g.Get("/:id/students", enrollCtrl.ListStudents)
	g.Delete("/:id/students/:student_id", enrollCtrl.RemoveStudent)
}
