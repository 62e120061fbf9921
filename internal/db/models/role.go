package models

import "time"

const (
	// RoleAdmin is the seeded administrator role holding every permission.
	RoleAdmin = "admin"
	// RoleMember is the seeded default role of new accounts.
	RoleMember = "member"
)

// Role represents a role in the role-based access control (RBAC) system.
// Roles are collections of permissions assigned to users.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint `gorm:"primaryKey"`
	// Name is the unique name of the role (e.g., "admin", "member").
	Name string `gorm:"unique;size:100;not null"`
	// Description provides a human-readable description of the role's purpose.
	Description string `gorm:"size:255"`
	// IsSystem marks seeded roles that cannot be deleted.
	IsSystem  bool `gorm:"default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Role model.
func (Role) TableName() string {
	return "roles"
}
