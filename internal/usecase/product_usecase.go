package usecase

import (
	"context"
	"net/http"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

// 公開カタログ。残在庫（表示用）を付けて返す。
type ProductUsecase struct {
	products repo.ProductRepository
	stock    repo.StockRepository
}

func NewProductUsecase(products repo.ProductRepository, stock repo.StockRepository) *ProductUsecase {
	return &ProductUsecase{products: products, stock: stock}
}

type ListProductsInput struct {
	Page     int
	Limit    int
	Q        string
	MinPrice *int64
	MaxPrice *int64
	Sort     string
}

type ProductOutput struct {
	ID          int64  `json:"id"`
	SellerID    int64  `json:"seller_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`

	//stock_quantity − COMPLETED注文の消費量。表示・絞り込み専用で、
	//引き当ての判定には使わない。
	RemainingStock int64 `json:"remaining_stock"`

	OrderCount int64     `json:"order_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// List は公開商品一覧。残在庫が0以下の商品は隠す。
func (u *ProductUsecase) List(ctx context.Context, in ListProductsInput) ([]ProductOutput, error) {
	q := repo.ProductListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Q:        in.Q,
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
		Sort:     in.Sort,
	}

	items, _, err := u.products.ListPublic(ctx, q)
	if err != nil {
		return []ProductOutput{}, errDependency()
	}

	outs := make([]ProductOutput, 0, len(items))
	for _, p := range items {
		remaining, err := u.remainingStock(ctx, p)
		if err != nil {
			return []ProductOutput{}, err
		}
		if remaining <= 0 {
			continue
		}
		outs = append(outs, toProductOutput(p, remaining))
	}
	return outs, nil
}

func (u *ProductUsecase) Detail(ctx context.Context, productID int64) (ProductOutput, error) {
	if productID <= 0 {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid id")
	}

	p, err := u.products.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return ProductOutput{}, NewHTTPError(http.StatusNotFound, KindProductNotFound, "product not found")
	}
	if err != nil {
		return ProductOutput{}, errDependency()
	}

	remaining, err := u.remainingStock(ctx, p)
	if err != nil {
		return ProductOutput{}, err
	}

	return toProductOutput(p, remaining), nil
}

func (u *ProductUsecase) remainingStock(ctx context.Context, p model.Product) (int64, error) {
	consumed, err := u.stock.CompletedQuantity(ctx, p.ID)
	if err != nil {
		return 0, errDependency()
	}
	return p.StockQuantity - consumed, nil
}

func toProductOutput(p model.Product, remaining int64) ProductOutput {
	return ProductOutput{
		ID:             p.ID,
		SellerID:       p.SellerID,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		RemainingStock: remaining,
		OrderCount:     p.OrderCount,
		CreatedAt:      p.CreatedAt,
	}
}
