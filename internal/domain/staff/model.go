package staff

import (
	"time"

	"github.com/google/uuid"
)

// Roles recognized by the service. Admin is the privileged role exempt
// from field-level and finalization locks.
var ValidRoles = map[string]bool{
	"admin":      true,
	"nurse":      true,
	"or_nurse":   true,
	"anesthesia": true,
}

// User maps to the staff_user table.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         string    `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
