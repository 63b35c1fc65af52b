package models

import (
	"time"
)

// Roles
const (
	RoleAdmin       = "admin"
	RoleVeterinaire = "veterinaire"
	RoleConsultant  = "consultant"
)

// AdminSeatCounterName is the Counter row claimed by the signup that becomes the first admin
const AdminSeatCounterName = "adminSeat"

// Permissions checked by the route guards
const (
	PermRecordsRead   = "records:read"
	PermRecordsWrite  = "records:write"
	PermRecordsDelete = "records:delete"
	PermHorsesStatus  = "horses:status"
	PermFilesWrite    = "files:write"
)

var rolePermissions = map[string][]string{
	RoleAdmin: {
		PermRecordsRead, PermRecordsWrite, PermRecordsDelete, PermHorsesStatus, PermFilesWrite,
	},
	RoleVeterinaire: {
		PermRecordsRead, PermRecordsWrite, PermHorsesStatus, PermFilesWrite,
	},
	RoleConsultant: {
		PermRecordsRead,
	},
}

// User is the local principal mirrored from the identity provider
type User struct {
	ID        string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Role      string    `gorm:"size:30;not null;default:consultant" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// Permissions returns the permission set of role; unknown roles have none
func Permissions(role string) []string {
	return rolePermissions[role]
}

// Can reports whether the user's role grants perm
func (u *User) Can(perm string) bool {
	for _, p := range rolePermissions[u.Role] {
		if p == perm {
			return true
		}
	}
	return false
}
