package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	submissionController "classku_backend/internals/features/classroom/submissions/controller"
)

// SubmissionUserRoutes: student endpoints, mounted under /api/u.
func SubmissionUserRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := submissionController.NewSubmissionController(db)

	g := r.Group("/submissions")
	g.Post("/", ctrl.Submit)
	g.Get("/", ctrl.ListMine)
	g.Get("/:id", ctrl.GetByID)
}
