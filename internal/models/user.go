// Package models defines domain models for the cricket prediction system.
package models

import (
	"time"
)

// Role constants.
const (
	RoleUser     = "USER"
	RoleSubAdmin = "SUB_ADMIN"
	RoleAdmin    = "ADMIN"
	// RoleMasterAdmin is a legacy role still present in older databases.
	RoleMasterAdmin = "MASTER_ADMIN"
)

// User represents a registered player or administrator.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Username   string    `gorm:"uniqueIndex;not null;size:255" json:"username"`
	Email      string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Role       string    `gorm:"size:50;not null;default:USER" json:"role"`
	IsApproved bool      `gorm:"not null;default:false" json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Predictions []Prediction `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for User model.
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds a full administrator role.
// Administrators publish results, resolve revotes and are never ranked.
func (u *User) IsAdmin() bool {
	return IsAdminRole(u.Role)
}

// IsAdminRole reports whether role is ADMIN or the legacy MASTER_ADMIN.
func IsAdminRole(role string) bool {
	return role == RoleAdmin || role == RoleMasterAdmin
}

// CanManageFixtures reports whether role may create tournaments and matches.
func CanManageFixtures(role string) bool {
	return IsAdminRole(role) || role == RoleSubAdmin
}

// RankedRoles returns the roles that appear on leaderboards.
func RankedRoles() []string {
	return []string{RoleUser, RoleSubAdmin}
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleSubAdmin, RoleAdmin, RoleMasterAdmin:
		return true
	}
	return false
}
