package model

import "time"

type Role string

const (
	RoleUser   Role = "USER"
	RoleSeller Role = "SELLER"
	RoleAdmin  Role = "ADMIN"
)

type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`
	FullName     string `gorm:"type:varchar(255)" json:"full_name"`
	Phone        string `gorm:"type:varchar(32)" json:"phone"`
	Role         Role   `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`

	//出品できるのは管理者が承認した出品者だけ
	IsVerifiedSeller bool `gorm:"not null;default:false" json:"is_verified_seller"`

	//Telegram連携済みの管理者だけ外部通知を受け取る
	TelegramChatID string `gorm:"type:varchar(64)" json:"-"`

	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
