package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	assignmentRoute "classku_backend/internals/features/classroom/assignments/route"
	courseRoute "classku_backend/internals/features/classroom/courses/route"
	submissionRoute "classku_backend/internals/features/classroom/submissions/route"
)

// ClassroomTeacherRoutes: instructor endpoints, role-gated by the caller.
func ClassroomTeacherRoutes(r fiber.Router, db *gorm.DB) {
	courseRoute.CourseTeacherRoutes(r, db)
	assignmentRoute.AssignmentTeacherRoutes(r, db)
	submissionRoute.SubmissionTeacherRoutes(r, db)
}
