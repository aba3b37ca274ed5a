package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	submissionController "classku_backend/internals/features/classroom/submissions/controller"
)

// SubmissionTeacherRoutes: grading endpoints, mounted under /api/t.
func SubmissionTeacherRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := submissionController.NewGradingController(db)

	r.Get("/assignments/:assignment_id/submissions", ctrl.ListByAssignment)

	g := r.Group("/submissions")
	g.Get("/:id", ctrl.GetByID)
	g.Post("/:id/grade", ctrl.Grade)
	g.Post("/:id/return", ctrl.Return)
	g.Put("/:id/plagiarism", ctrl.SetPlagiarismScore)
}
