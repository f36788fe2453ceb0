package models

const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
)

type User struct {
	Model
	Name         string `json:"name" gorm:"not null"`
	Email        string `json:"email,omitempty" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"not null"`
	Role         string `json:"role,omitempty" gorm:"not null;default:student"` // student, instructor
}

// PublicUser is the profile shape exposed to other users.
type PublicUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func IsValidRole(role string) bool {
	return role == RoleStudent || role == RoleInstructor
}
