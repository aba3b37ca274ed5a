package constants

const (
	RoleUser    = "user"    // student
	RoleTeacher = "teacher" // course instructor
	RoleAdmin   = "admin"
)
