package usecase

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"marketplace/internal/domain/model"
	"marketplace/internal/notify"
	repo "marketplace/internal/repository"
)

// 出品者/管理者が注文を進める操作（状態遷移）を担当する。
type SellerOrderUsecase struct {
	tx              repo.TransactionManager
	dispatcher      *notify.Dispatcher
	restockOnCancel bool
}

// restockOnCancelはキャンセル時に在庫を戻すかどうか（RESTOCK_ON_CANCEL）。
func NewSellerOrderUsecase(tx repo.TransactionManager, dispatcher *notify.Dispatcher, restockOnCancel bool) *SellerOrderUsecase {
	return &SellerOrderUsecase{tx: tx, dispatcher: dispatcher, restockOnCancel: restockOnCancel}
}

type TransitionInput struct {
	Action        string
	Note          string
	PickupAddress string
}

// Transition は注文を1段階進める。
// 前提チェック・フラグ更新・在庫戻し・通知行まで1トランザクションで行う。
func (u *SellerOrderUsecase) Transition(ctx context.Context, actorID int64, orderID int64, in TransitionInput) error {
	if actorID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, KindUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid id")
	}

	//未知のトークンはここで弾く（何も変更しない）
	action, ok := model.ParseTransitionAction(in.Action)
	if !ok {
		return NewHTTPError(http.StatusBadRequest, KindInvalidAction, "unknown action")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//行ロックで同じ注文への同時遷移を直列化する。
		//後から来た方はcommit後の状態を読むので、前提チェックが二重実行を弾く。
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, KindOrderNotFound, "order not found")
		}
		if err != nil {
			return errDependency()
		}

		p, err := r.Products().FindByID(ctx, o.ProductID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, KindProductNotFound, "product not found")
		}
		if err != nil {
			return errDependency()
		}

		actor, err := r.Users().FindByID(ctx, actorID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusUnauthorized, KindUnauthorized, "unauthorized")
		}
		if err != nil {
			return errDependency()
		}

		//その商品の出品者（承認済み）か管理者だけ
		isAdmin := actor.Role == model.RoleAdmin
		if !isAdmin && (p.SellerID != actorID || !actor.IsVerifiedSeller) {
			return NewHTTPError(http.StatusForbidden, KindAuthorizationDenied, "not allowed")
		}

		//終端（COMPLETED/CANCELLED）はフラグ操作では動かせない。
		//動かせるのは管理者の直接上書きだけ。
		if o.Status.IsTerminal() {
			return NewHTTPError(http.StatusConflict, KindInvalidAction, "order already finalized")
		}

		statusChanged := false

		switch action {
		case model.ActionAgree:
			if o.Status != model.OrderStatusPending {
				return NewHTTPError(http.StatusConflict, KindInvalidAction, "agree requires pending order")
			}
			v := true
			o.IsAgree = &v
			o.PickupAddress = in.PickupAddress
			o.SellerNote = in.Note

		case model.ActionReject:
			if o.Status != model.OrderStatusPending {
				return NewHTTPError(http.StatusConflict, KindInvalidAction, "reject requires pending order")
			}
			v := false
			o.IsAgree = &v
			o.SellerNote = in.Note
			o.Status = model.OrderStatusCancelled
			statusChanged = true

			if err := u.restock(ctx, r, o, actorID); err != nil {
				return err
			}

		case model.ActionClientWent:
			v := true
			o.IsClientWent = &v
			o.ClientNote = in.Note

		case model.ActionClientNotWent:
			v := false
			o.IsClientWent = &v
			o.ClientNote = in.Note

		case model.ActionProductGiven:
			v := true
			o.IsClientClaimed = &v
			o.SellerNote = in.Note
			o.Status = model.OrderStatusCompleted
			statusChanged = true

		case model.ActionProductNotGiven:
			v := false
			o.IsClientClaimed = &v
			o.SellerNote = in.Note
		}

		o.UpdatedAt = time.Now()
		if err := r.Orders().Update(ctx, o); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, KindOrderNotFound, "order not found")
			}
			return errDependency()
		}

		//ステータスが動いたときだけ購入者に通知行を残す
		if statusChanged {
			ev := notify.Event{
				Type:    model.NotificationTypeOrderStatus,
				Title:   fmt.Sprintf("Order #%d %s", o.ID, string(o.Status)),
				Message: fmt.Sprintf("Your order for %s is now %s", p.Name, string(o.Status)),
			}
			if err := u.dispatcher.Record(ctx, r.Notifications(), []int64{o.BuyerID}, ev); err != nil {
				return errDependency()
			}
		}

		return nil
	})
}

// キャンセルでの在庫戻し。設定で無効なら引き当てたまま（仕様未確定のため既定はfalse）。
func (u *SellerOrderUsecase) restock(ctx context.Context, r repo.TxRepos, o model.Order, actorID int64) error {
	if !u.restockOnCancel {
		return nil
	}
	if err := r.Stock().Release(ctx, o.ProductID, o.Quantity); err != nil {
		return errDependency()
	}
	if err := r.Stock().CreateAdjustment(ctx, model.StockAdjustment{
		ProductID:   o.ProductID,
		OrderID:     &o.ID,
		ActorUserID: actorID,
		Delta:       o.Quantity,
		Reason:      model.StockReasonOrderRestock,
		CreatedAt:   time.Now(),
	}); err != nil {
		return errDependency()
	}
	return nil
}

// 自分の商品に入った注文の一覧
func (u *SellerOrderUsecase) ListSellerOrders(ctx context.Context, sellerID int64, page int, limit int) ([]OrderOutput, error) {
	if sellerID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, KindUnauthorized, "unauthorized")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListBySellerID(ctx, sellerID, page, limit)
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
