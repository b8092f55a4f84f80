package model

import "time"

// 完了済み注文に対して1回だけ作成できる。作成後の更新・削除はない。
type Review struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64  `gorm:"not null;index" json:"product_id"`
	OrderID   int64  `gorm:"not null;uniqueIndex:uniq_review_order_buyer" json:"order_id"`
	BuyerID   int64  `gorm:"not null;uniqueIndex:uniq_review_order_buyer" json:"buyer_id"`
	Rating    int    `gorm:"not null" json:"rating"`
	Comment   string `gorm:"type:text" json:"comment"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
