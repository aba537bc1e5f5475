package models

import (
	"time"
)

// SessionRecord is a portal session persisted in SQL.
type SessionRecord struct {
	BaseModel
	UserID    string    `gorm:"size:64;index" json:"userId"`
	Role      Role      `gorm:"size:20" json:"role"`
	UserData  string    `gorm:"type:text" json:"-"` // JSON encoded User
	Token     string    `gorm:"type:text;not null" json:"-"`
	ExpiresAt time.Time `gorm:"index" json:"expiresAt"`
}

// TableName keeps sessions out of the backend's naming space.
func (SessionRecord) TableName() string {
	return "portal_sessions"
}
