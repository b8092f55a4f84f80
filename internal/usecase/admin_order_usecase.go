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

// 管理者の注文一覧と直接上書き。上書きは終端ステータスも動かせる唯一の経路。
type AdminOrderUsecase struct {
	tx              repo.TransactionManager
	dispatcher      *notify.Dispatcher
	restockOnCancel bool
}

func NewAdminOrderUsecase(tx repo.TransactionManager, dispatcher *notify.Dispatcher, restockOnCancel bool) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, dispatcher: dispatcher, restockOnCancel: restockOnCancel}
}

type AdminOverrideStatusInput struct {
	Status string
}

// 注文一覧
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) ([]OrderOutput, error) {
	// page/limitの最低限チェック
	if f.Page < 1 {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid limit")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListAdmin(ctx, f)
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

// OverrideStatus は管理者による無条件のステータス上書き。
// 通常のフラグ遷移と違って終端からも動かせる。監査ログを必ず残す。
func (u *AdminOrderUsecase) OverrideStatus(ctx context.Context, actorAdminUserID int64, orderID int64, in AdminOverrideStatusInput) error {
	if actorAdminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, KindUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid id")
	}

	newStatus, ok := model.ParseOrderStatus(strings.TrimSpace(in.Status))
	if !ok {
		return NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid status")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//同じ注文への同時上書き・遷移と直列化する
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, KindOrderNotFound, "order not found")
		}
		if err != nil {
			return errDependency()
		}

		// すでに同じなら何もしない（200）
		if o.Status == newStatus {
			return nil
		}

		//CANCELLEDに入るときだけ在庫戻し（設定で有効な場合）
		//CANCELLEDから出るときの再引き当てはしない
		if newStatus == model.OrderStatusCancelled && u.restockOnCancel {
			if err := r.Stock().Release(ctx, o.ProductID, o.Quantity); err != nil {
				return errDependency()
			}
			if err := r.Stock().CreateAdjustment(ctx, model.StockAdjustment{
				ProductID:   o.ProductID,
				OrderID:     &o.ID,
				ActorUserID: actorAdminUserID,
				Delta:       o.Quantity,
				Reason:      model.StockReasonOrderRestock,
				CreatedAt:   time.Now(),
			}); err != nil {
				return errDependency()
			}
		}

		beforeStatus := string(o.Status)
		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, KindOrderNotFound, "order not found")
			}
			return errDependency()
		}

		//監査ログ（UPDATE_ORDER_STATUS）
		beforeJSON := `{"status":"` + beforeStatus + `"}`
		afterJSON := `{"status":"` + string(newStatus) + `"}`
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminUserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   beforeJSON,
			AfterJSON:    afterJSON,
			CreatedAt:    time.Now(),
		}); err != nil {
			return errDependency()
		}

		//購入者への通知行
		ev := notify.Event{
			Type:    model.NotificationTypeOrderStatus,
			Title:   fmt.Sprintf("Order #%d %s", o.ID, string(newStatus)),
			Message: fmt.Sprintf("Your order #%d was updated to %s", o.ID, string(newStatus)),
		}
		if err := u.dispatcher.Record(ctx, r.Notifications(), []int64{o.BuyerID}, ev); err != nil {
			return errDependency()
		}

		return nil
	})
}
