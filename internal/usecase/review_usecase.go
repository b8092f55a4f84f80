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

// レビュー投稿のゲート。完了済みの自分の注文にだけ、1回だけ投稿できる。
type ReviewUsecase struct {
	tx         repo.TransactionManager
	reviews    repo.ReviewRepository
	dispatcher *notify.Dispatcher
}

func NewReviewUsecase(tx repo.TransactionManager, reviews repo.ReviewRepository, dispatcher *notify.Dispatcher) *ReviewUsecase {
	return &ReviewUsecase{tx: tx, reviews: reviews, dispatcher: dispatcher}
}

type SubmitReviewInput struct {
	ProductID int64
	OrderID   int64
	Rating    int
	Comment   string
}

type ReviewOutput struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	OrderID   int64     `json:"order_id"`
	BuyerID   int64     `json:"buyer_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *ReviewUsecase) SubmitReview(ctx context.Context, buyerID int64, in SubmitReviewInput) (ReviewOutput, error) {
	if buyerID <= 0 {
		return ReviewOutput{}, NewHTTPError(http.StatusUnauthorized, KindUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 || in.OrderID <= 0 {
		return ReviewOutput{}, NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid id")
	}
	//評価は1〜5
	if in.Rating < 1 || in.Rating > 5 {
		return ReviewOutput{}, NewHTTPError(http.StatusBadRequest, KindInvalidRating, "rating must be between 1 and 5")
	}

	var out ReviewOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, in.OrderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, KindOrderNotFound, "order not found")
		}
		if err != nil {
			return errDependency()
		}

		//自分の注文で、対象商品の注文で、完了済みであること
		if o.BuyerID != buyerID || o.ProductID != in.ProductID {
			return NewHTTPError(http.StatusConflict, KindOrderNotEligible, "order not eligible for review")
		}
		if o.Status != model.OrderStatusCompleted {
			return NewHTTPError(http.StatusConflict, KindOrderNotEligible, "order not completed")
		}

		//（注文, 購入者）につき1件だけ
		exists, err := r.Reviews().ExistsForOrder(ctx, in.OrderID, buyerID)
		if err != nil {
			return errDependency()
		}
		if exists {
			return NewHTTPError(http.StatusConflict, KindDuplicateReview, "review already exists")
		}

		created, err := r.Reviews().Create(ctx, model.Review{
			ProductID: in.ProductID,
			OrderID:   in.OrderID,
			BuyerID:   buyerID,
			Rating:    in.Rating,
			Comment:   in.Comment,
			CreatedAt: time.Now(),
		})
		if err != nil {
			return errDependency()
		}

		//出品者に通知行。商品が消えている場合だけ通知を飛ばさない。
		p, err := r.Products().FindByID(ctx, in.ProductID)
		if err != nil && err != repo.ErrNotFound {
			return errDependency()
		}
		if err == nil {
			ev := notify.Event{
				Type:    model.NotificationTypeNewReview,
				Title:   fmt.Sprintf("New review for %s", p.Name),
				Message: fmt.Sprintf("Order #%d was rated %d/5", in.OrderID, in.Rating),
			}
			if err := u.dispatcher.Record(ctx, r.Notifications(), []int64{p.SellerID}, ev); err != nil {
				return errDependency()
			}
		}

		out = toReviewOutput(created)
		return nil
	})

	if err != nil {
		return ReviewOutput{}, err
	}
	return out, nil
}

// 商品の公開レビュー一覧
func (u *ReviewUsecase) ListProductReviews(ctx context.Context, productID int64, page int, limit int) ([]ReviewOutput, int64, error) {
	if productID <= 0 {
		return []ReviewOutput{}, 0, NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid id")
	}

	items, total, err := u.reviews.ListByProductID(ctx, productID, page, limit)
	if err != nil {
		return []ReviewOutput{}, 0, errDependency()
	}

	outs := make([]ReviewOutput, 0, len(items))
	for _, rv := range items {
		outs = append(outs, toReviewOutput(rv))
	}
	return outs, total, nil
}

func toReviewOutput(rv model.Review) ReviewOutput {
	return ReviewOutput{
		ID:        rv.ID,
		ProductID: rv.ProductID,
		OrderID:   rv.OrderID,
		BuyerID:   rv.BuyerID,
		Rating:    rv.Rating,
		Comment:   rv.Comment,
		CreatedAt: rv.CreatedAt,
	}
}
