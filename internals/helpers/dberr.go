package helper

import "strings"

// IsDuplicateKey reports whether err is a unique-constraint violation.
// We match on the message because the simple-protocol pgx path does not
// surface a typed pq/pgconn error through GORM.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	le := strings.ToLower(err.Error())
	return strings.Contains(le, "duplicate key") || strings.Contains(le, "unique constraint")
}
