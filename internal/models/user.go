package models

const (
	RoleAdmin   = "admin"
	RoleTrainer = "trainer"
	RoleStudent = "student"
)

// User is the slice of the account directory this service reads. The
// directory is owned by the user service; only the fields needed for
// quiz access checks are decoded here.
type User struct {
	ID    string `bson:"_id,omitempty" json:"_id"`
	Name  string `bson:"name" json:"name"`
	Role  string `bson:"role" json:"role"`
	Grade int    `bson:"grade,omitempty" json:"grade,omitempty"`
}
