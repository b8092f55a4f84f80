package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

// 出品者の商品管理（作成・更新・在庫補正）。
// 承認済み出品者であることはミドルウェアで確認済み。
type SellerProductUsecase struct {
	tx repo.TransactionManager
}

func NewSellerProductUsecase(tx repo.TransactionManager) *SellerProductUsecase {
	return &SellerProductUsecase{tx: tx}
}

type SellerProductInput struct {
	Name        string
	Description string
	Price       int64
	Stock       int64
	IsActive    bool
}

func (u *SellerProductUsecase) Create(ctx context.Context, sellerID int64, in SellerProductInput) (ProductOutput, error) {
	if sellerID <= 0 {
		return ProductOutput{}, NewHTTPError(http.StatusUnauthorized, KindUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.Name) == "" {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid name")
	}
	if in.Price <= 0 {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid price")
	}
	if in.Stock < 0 {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid stock")
	}

	var out ProductOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		created, err := r.Products().Create(ctx, model.Product{
			SellerID:      sellerID,
			Name:          strings.TrimSpace(in.Name),
			Description:   in.Description,
			Price:         in.Price,
			StockQuantity: in.Stock,
			IsActive:      in.IsActive,
		})
		if err != nil {
			return errDependency()
		}

		//初期在庫も履歴に残す
		if in.Stock > 0 {
			if err := r.Stock().CreateAdjustment(ctx, model.StockAdjustment{
				ProductID:   created.ID,
				ActorUserID: sellerID,
				Delta:       in.Stock,
				Reason:      model.StockReasonManualSet,
				CreatedAt:   time.Now(),
			}); err != nil {
				return errDependency()
			}
		}

		out = toProductOutput(created, created.StockQuantity)
		return nil
	})

	if err != nil {
		return ProductOutput{}, err
	}
	return out, nil
}

func (u *SellerProductUsecase) Update(ctx context.Context, sellerID int64, productID int64, in SellerProductInput) error {
	if sellerID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, KindUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid id")
	}
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid name")
	}
	if in.Price <= 0 {
		return NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid price")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, productID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, KindProductNotFound, "product not found")
		}
		if err != nil {
			return errDependency()
		}
		//他人の商品は触れない
		if p.SellerID != sellerID {
			return NewHTTPError(http.StatusForbidden, KindAuthorizationDenied, "not allowed")
		}

		p.Name = strings.TrimSpace(in.Name)
		p.Description = in.Description
		p.Price = in.Price
		p.IsActive = in.IsActive

		if err := r.Products().Update(ctx, p); err != nil {
			return errDependency()
		}
		return nil
	})
}

// SetStock は在庫の現在値を直接設定する（補正）。履歴も残す。
func (u *SellerProductUsecase) SetStock(ctx context.Context, sellerID int64, productID int64, newStock int64) error {
	if sellerID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, KindUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid id")
	}
	if newStock < 0 {
		return NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid stock")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, productID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, KindProductNotFound, "product not found")
		}
		if err != nil {
			return errDependency()
		}
		if p.SellerID != sellerID {
			return NewHTTPError(http.StatusForbidden, KindAuthorizationDenied, "not allowed")
		}

		if err := r.Stock().SetStock(ctx, productID, newStock); err != nil {
			return errDependency()
		}

		if err := r.Stock().CreateAdjustment(ctx, model.StockAdjustment{
			ProductID:   productID,
			ActorUserID: sellerID,
			Delta:       newStock - p.StockQuantity,
			Reason:      model.StockReasonManualSet,
			CreatedAt:   time.Now(),
		}); err != nil {
			return errDependency()
		}
		return nil
	})
}
