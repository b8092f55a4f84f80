package model

import "time"

// 在庫が動いた理由
type StockAdjustmentReason string

const (
	//注文作成での引き当て
	StockReasonOrderReserve StockAdjustmentReason = "ORDER_RESERVE"

	//キャンセル時の在庫戻し（設定で有効な場合のみ）
	StockReasonOrderRestock StockAdjustmentReason = "ORDER_RESTOCK"

	//出品者/管理者による手動補正
	StockReasonManualSet StockAdjustmentReason = "MANUAL_SET"
)

// 在庫変動の履歴
type StockAdjustment struct {
	ID          int64                 `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID   int64                 `gorm:"not null;index" json:"product_id"`
	OrderID     *int64                `gorm:"index" json:"order_id,omitempty"`
	ActorUserID int64                 `gorm:"not null;index" json:"actor_user_id"`
	Delta       int64                 `gorm:"not null" json:"delta"`
	Reason      StockAdjustmentReason `gorm:"type:varchar(50);not null" json:"reason"`
	CreatedAt   time.Time             `gorm:"not null;autoCreateTime" json:"created_at"`
}
