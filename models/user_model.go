package models

import (
	"time"

	"timber-portal/types"

	"gorm.io/gorm"
)

const (
	RoleProducer   = "producer"
	RoleOrgAdmin   = "org-admin"
	RoleSuperAdmin = "super-admin"
)

type User struct {
	gorm.Model
	Username       string            `json:"username" gorm:"unique"`
	Password       string            `json:"-"`
	Name           string            `json:"name"`
	Email          string            `json:"email" gorm:"unique" validate:"required,email"`
	Role           string            `json:"role" validate:"required,oneof=producer org-admin super-admin"`
	OrganisationID types.SnowflakeID `json:"organisation_id" gorm:"index;default:null"`
	IsActive       bool              `json:"is_active" gorm:"default:true"`
	CreatedBy      int
	UpdatedBy      int
	DeletedBy      int
}

type UserSession struct {
	gorm.Model
	SessionID      string    `json:"session_id" gorm:"uniqueIndex;not null"`
	UserID         uint      `json:"user_id" gorm:"index;not null"`
	IsActive       bool      `json:"is_active" gorm:"default:true"`
	ExpiresAt      time.Time `json:"expires_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

type LoginLog struct {
	gorm.Model
	UserID    uint       `json:"user_id" gorm:"index"`
	SessionID string     `json:"session_id" gorm:"index"`
	IPAddress string     `json:"ip_address"`
	UserAgent string     `json:"user_agent"`
	LoginAt   time.Time  `json:"login_at"`
	LogoutAt  *time.Time `json:"logout_at"`
}
