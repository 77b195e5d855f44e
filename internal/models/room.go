package models

import (
	"time"
)

// RoomType constants.
const (
	RoomTypePublic  = "PUBLIC"
	RoomTypeRequest = "REQUEST"
	RoomTypePrivate = "PRIVATE"
)

// Room is a user-defined group that scopes a private leaderboard.
type Room struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"not null;size:255" json:"name"`
	Type       string    `gorm:"size:20;not null;default:PUBLIC" json:"type"`
	AdminID    uint      `gorm:"not null;index" json:"admin_id"`
	Admin      *User     `gorm:"foreignKey:AdminID" json:"admin,omitempty"`
	InviteCode *string   `gorm:"uniqueIndex;size:64" json:"invite_code,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Members []RoomMember `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
}

// TableName specifies the table name for Room model.
func (Room) TableName() string {
	return "rooms"
}

// RoomMember links a user to a room; unapproved rows are pending requests.
type RoomMember struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	RoomID     uint      `gorm:"not null;uniqueIndex:idx_room_member" json:"room_id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_room_member;index" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	IsApproved bool      `gorm:"not null;default:false" json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for RoomMember model.
func (RoomMember) TableName() string {
	return "room_members"
}

// ValidRoomType reports whether t is PUBLIC, REQUEST or PRIVATE.
func ValidRoomType(t string) bool {
	return t == RoomTypePublic || t == RoomTypeRequest || t == RoomTypePrivate
}
