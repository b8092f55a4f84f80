package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

type ReviewRepository interface {
	Create(ctx context.Context, rv model.Review) (model.Review, error)

	//（注文, 購入者）の組で既にレビュー済みか
	ExistsForOrder(ctx context.Context, orderID int64, buyerID int64) (bool, error)

	ListByProductID(ctx context.Context, productID int64, page int, limit int) ([]model.Review, int64, error)
}
