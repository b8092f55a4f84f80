package model

import "time"

// 通知の種類タグ
type NotificationType string

const (
	NotificationTypeNewOrder    NotificationType = "NEW_ORDER"
	NotificationTypeOrderStatus NotificationType = "ORDER_STATUS"
	NotificationTypeNewReview   NotificationType = "NEW_REVIEW"
)

// アプリ内通知。配送（Telegram）が失敗してもこの行が正。
type Notification struct {
	ID      int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID  int64            `gorm:"not null;index" json:"user_id"`
	Title   string           `gorm:"type:varchar(255);not null" json:"title"`
	Message string           `gorm:"type:text;not null" json:"message"`
	Type    NotificationType `gorm:"type:varchar(50);not null;index" json:"type"`
	IsRead  bool             `gorm:"not null;default:false" json:"is_read"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
