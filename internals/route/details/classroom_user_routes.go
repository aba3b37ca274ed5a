package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	assignmentRoute "classku_backend/internals/features/classroom/assignments/route"
	courseRoute "classku_backend/internals/features/classroom/courses/route"
	submissionRoute "classku_backend/internals/features/classroom/submissions/route"
)

// ClassroomUserRoutes: everything a logged-in student can reach.
func ClassroomUserRoutes(r fiber.Router, db *gorm.DB) {
	courseRoute.CourseUserRoutes(r, db)
	assignmentRoute.AssignmentUserRoutes(r, db)
	submissionRoute.SubmissionUserRoutes(r, db)
}
