package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"marketplace/internal/domain/model"
	"marketplace/internal/notify"
	repo "marketplace/internal/repository"
)

type OrderUsecase struct {
	tx         repo.TransactionManager
	dispatcher *notify.Dispatcher
}

func NewOrderUsecase(tx repo.TransactionManager, dispatcher *notify.Dispatcher) *OrderUsecase {
	return &OrderUsecase{tx: tx, dispatcher: dispatcher}
}

type PlaceOrderInput struct {
	ProductID      int64
	Quantity       int64
	BuyerFullName  string
	BuyerPhone     string
	Address        string
	IdempotencyKey string
}

type OrderOutput struct {
	ID              int64     `json:"id"`
	BuyerID         int64     `json:"buyer_id"`
	ProductID       int64     `json:"product_id"`
	Quantity        int64     `json:"quantity"`
	TotalAmount     int64     `json:"total_amount"`
	Status          string    `json:"status"`
	IsAgree         *bool     `json:"is_agree"`
	IsClientWent    *bool     `json:"is_client_went"`
	IsClientClaimed *bool     `json:"is_client_claimed"`
	BuyerFullName   string    `json:"buyer_full_name"`
	BuyerPhone      string    `json:"buyer_phone"`
	Address         string    `json:"address"`
	PickupAddress   string    `json:"pickup_address"`
	SellerNote      string    `json:"seller_note"`
	ClientNote      string    `json:"client_note"`
	CreatedAt       time.Time `json:"created_at"`
}

// PlaceOrder は在庫を引き当ててPENDINGの注文を作る。
// total_amountは作成時点のprice×quantityで確定し、以後は再計算しない。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, buyerID int64, in PlaceOrderInput) (OrderOutput, error) {
	if buyerID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, KindUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid quantity")
	}
	if strings.TrimSpace(in.BuyerFullName) == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid buyer_full_name")
	}
	if strings.TrimSpace(in.BuyerPhone) == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid buyer_phone")
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" || len(key) > 255 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid idempotency_key")
	}

	var out OrderOutput
	var ev notify.Event
	var targets []notify.ExternalTarget
	created := false

	//引き当てと注文作成は1トランザクション
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら既存の注文を返す
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, buyerID, key)
		if err != nil {
			return errDependency()
		}
		if found {
			out = toOrderOutput(existing)
			return nil
		}

		p, err := r.Products().FindByID(ctx, in.ProductID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, KindProductNotFound, "product not found")
		}
		if err != nil {
			return errDependency()
		}
		if !p.IsActive {
			return NewHTTPError(http.StatusConflict, KindProductUnavailable, "product unavailable")
		}

		//在庫引き当て（条件付きUPDATE、足りなければfalse）
		ok, err := r.Stock().Reserve(ctx, in.ProductID, in.Quantity)
		if err != nil {
			return errDependency()
		}
		if !ok {
			//UIが数量を直せるように現在の在庫を返す
			msg := fmt.Sprintf("insufficient stock: %d available", p.StockQuantity)
			return NewHTTPError(http.StatusConflict, KindInsufficientStock, msg)
		}

		now := time.Now()
		order := model.Order{
			BuyerID:        buyerID,
			ProductID:      in.ProductID,
			Quantity:       in.Quantity,
			TotalAmount:    p.Price * in.Quantity,
			Status:         model.OrderStatusPending,
			BuyerFullName:  in.BuyerFullName,
			BuyerPhone:     in.BuyerPhone,
			Address:        in.Address,
			IdempotencyKey: key,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			//同時に同じキーが入った場合はもう一度検索して同じ結果を返す
			ex2, found2, err2 := r.Orders().FindByIdempotencyKey(ctx, buyerID, key)
			if err2 == nil && found2 {
				out = toOrderOutput(ex2)
				return nil
			}
			return NewHTTPError(http.StatusConflict, KindInvalidRequest, "idempotency conflict")
		}

		//在庫変動履歴
		if err := r.Stock().CreateAdjustment(ctx, model.StockAdjustment{
			ProductID:   in.ProductID,
			OrderID:     &orderID,
			ActorUserID: buyerID,
			Delta:       -in.Quantity,
			Reason:      model.StockReasonOrderReserve,
			CreatedAt:   now,
		}); err != nil {
			return errDependency()
		}

		//通知行（出品者＋管理者）はtx内で確定する
		admins, err := r.Users().ListAdmins(ctx)
		if err != nil {
			return errDependency()
		}

		recipients := []int64{p.SellerID}
		for _, a := range admins {
			if a.ID != p.SellerID {
				recipients = append(recipients, a.ID)
			}
		}

		ev = notify.Event{
			Type:    model.NotificationTypeNewOrder,
			Title:   fmt.Sprintf("New order #%d", orderID),
			Message: fmt.Sprintf("%s x%d for %s (order #%d)", p.Name, in.Quantity, in.BuyerFullName, orderID),
		}
		if err := u.dispatcher.Record(ctx, r.Notifications(), recipients, ev); err != nil {
			return errDependency()
		}

		targets = notify.AdminTargets(admins)
		created = true

		order.ID = orderID
		out = toOrderOutput(order)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}

	//外部配送はコミット後のベストエフォート
	if created {
		u.dispatcher.Deliver(ctx, targets, ev)
	}

	return out, nil
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, buyerID int64) ([]OrderOutput, error) {
	if buyerID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, KindUnauthorized, "unauthorized")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByBuyerID(ctx, buyerID, 1, 50)
		if err != nil {
			return errDependency()
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			outs = append(outs, toOrderOutput(o))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, buyerID int64, orderID int64) (OrderOutput, error) {
	if buyerID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, KindUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, KindOrderNotFound, "order not found")
		}
		if err != nil {
			return errDependency()
		}
		if o.BuyerID != buyerID {
			//他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, KindOrderNotFound, "order not found")
		}

		out = toOrderOutput(o)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func toOrderOutput(o model.Order) OrderOutput {
	return OrderOutput{
		ID:              o.ID,
		BuyerID:         o.BuyerID,
		ProductID:       o.ProductID,
		Quantity:        o.Quantity,
		TotalAmount:     o.TotalAmount,
		Status:          string(o.Status),
		IsAgree:         o.IsAgree,
		IsClientWent:    o.IsClientWent,
		IsClientClaimed: o.IsClientClaimed,
		BuyerFullName:   o.BuyerFullName,
		BuyerPhone:      o.BuyerPhone,
		Address:         o.Address,
		PickupAddress:   o.PickupAddress,
		SellerNote:      o.SellerNote,
		ClientNote:      o.ClientNote,
		CreatedAt:       o.CreatedAt,
	}
}
