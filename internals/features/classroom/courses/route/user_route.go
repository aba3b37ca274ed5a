package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	courseController "classku_backend/internals/features/classroom/courses/controller"
)

// CourseUserRoutes: student endpoints, mounted under /api/u.
func CourseUserRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := courseController.NewCourseController(db)
	enrollCtrl := courseController.NewEnrollmentController(db)

	g := r.Group("/courses")
	g.Post("/enroll", enrollCtrl.Enroll)
	g.Get("/", enrollCtrl.ListMine)
	g.Get("/:id", ctrl.GetByID)
}
