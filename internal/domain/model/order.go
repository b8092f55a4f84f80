package model

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// 終端ステータスかどうか。終端からは管理者の直接上書きでしか動かせない。
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// 文字列がステータスとして妥当か
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return OrderStatus(s), true
	default:
		return "", false
	}
}

// 出品者/管理者が注文に対して実行できる操作の閉じた集合。
type TransitionAction string

const (
	ActionAgree           TransitionAction = "agree"
	ActionReject          TransitionAction = "reject"
	ActionClientWent      TransitionAction = "client_went"
	ActionClientNotWent   TransitionAction = "client_not_went"
	ActionProductGiven    TransitionAction = "product_given"
	ActionProductNotGiven TransitionAction = "product_not_given"
)

// 未知のトークンはここで弾く
func ParseTransitionAction(s string) (TransitionAction, bool) {
	switch TransitionAction(s) {
	case ActionAgree, ActionReject, ActionClientWent, ActionClientNotWent,
		ActionProductGiven, ActionProductNotGiven:
		return TransitionAction(s), true
	default:
		return "", false
	}
}

type Order struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	BuyerID   int64 `gorm:"not null;index" json:"buyer_id"`
	ProductID int64 `gorm:"not null;index" json:"product_id"`

	Quantity int64 `gorm:"not null" json:"quantity"`

	//作成時の price × quantity のスナップショット。以後再計算しない。
	TotalAmount int64 `gorm:"not null" json:"total_amount"`

	Status OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	//三値フラグ（nil = 未設定）
	IsAgree         *bool `gorm:"column:is_agree" json:"is_agree"`
	IsClientWent    *bool `gorm:"column:is_client_went" json:"is_client_went"`
	IsClientClaimed *bool `gorm:"column:is_client_claimed" json:"is_client_claimed"`

	BuyerFullName string `gorm:"type:varchar(255);not null" json:"buyer_full_name"`
	BuyerPhone    string `gorm:"type:varchar(32);not null" json:"buyer_phone"`
	Address       string `gorm:"type:text" json:"address"`

	//出品者が受取場所を指定する
	PickupAddress string `gorm:"type:text" json:"pickup_address"`
	SellerNote    string `gorm:"type:text" json:"seller_note"`
	ClientNote    string `gorm:"type:text" json:"client_note"`

	IdempotencyKey string `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
