package model

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	SellerID    int64  `gorm:"not null;index" json:"seller_id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	//最小通貨単位の整数
	Price int64 `gorm:"not null" json:"price"`

	//注文作成時に減算される手持ち在庫。常に0以上。
	StockQuantity int64 `gorm:"not null;default:0" json:"stock_quantity"`

	//累計の注文件数（数量ではなく件数）。増えるだけ。
	OrderCount int64 `gorm:"not null;default:0" json:"order_count"`

	IsActive  bool           `gorm:"not null;default:false" json:"is_active"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
