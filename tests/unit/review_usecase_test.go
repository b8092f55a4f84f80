package unit

import (
	"context"
	"errors"
	"testing"

	"marketplace/internal/domain/model"
	"marketplace/internal/notify"
	repo "marketplace/internal/repository"
	"marketplace/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func reviewTxMock(orders *OrderRepoMock, products *ProductRepoMock, reviews *ReviewRepoMock, notifications *NotificationRepoMock) *TxManagerMock {
	tx := &TxManagerMock{Repos: &TxReposStub{
		orders:        orders,
		products:      products,
		reviews:       reviews,
		notifications: notifications,
	}}
	tx.On("WithinTx", mock.Anything).Return(nil)
	return tx
}

func TestReviewUsecase_SubmitReview_InvalidRating(t *testing.T) {
	tx := &TxManagerMock{}
	uc := usecase.NewReviewUsecase(tx, &ReviewRepoMock{}, notify.NewDispatcher(nil))

	for _, rating := range []int{0, 6, -1} {
		_, err := uc.SubmitReview(context.Background(), 1, usecase.SubmitReviewInput{
			ProductID: 10,
			OrderID:   101,
			Rating:    rating,
		})
		assertErrContains(t, err, "rating must be between 1 and 5")
	}
	tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestReviewUsecase_SubmitReview_OrderNotFound(t *testing.T) {
	ordersRepo := &OrderRepoMock{}
	tx := reviewTxMock(ordersRepo, &ProductRepoMock{}, &ReviewRepoMock{}, &NotificationRepoMock{})

	ordersRepo.On("FindByID", mock.Anything, int64(101)).Return(model.Order{}, repo.ErrNotFound)

	uc := usecase.NewReviewUsecase(tx, &ReviewRepoMock{}, notify.NewDispatcher(nil))

	_, err := uc.SubmitReview(context.Background(), 1, usecase.SubmitReviewInput{
		ProductID: 10,
		OrderID:   101,
		Rating:    4,
	})

	assertErrContains(t, err, "order not found")
}

// 他人の注文にはレビューできない
func TestReviewUsecase_SubmitReview_NotBuyer(t *testing.T) {
	ordersRepo := &OrderRepoMock{}
	reviewsRepo := &ReviewRepoMock{}
	tx := reviewTxMock(ordersRepo, &ProductRepoMock{}, reviewsRepo, &NotificationRepoMock{})

	ordersRepo.On("FindByID", mock.Anything, int64(101)).
		Return(model.Order{ID: 101, BuyerID: 2, ProductID: 10, Status: model.OrderStatusCompleted}, nil)

	uc := usecase.NewReviewUsecase(tx, reviewsRepo, notify.NewDispatcher(nil))

	_, err := uc.SubmitReview(context.Background(), 1, usecase.SubmitReviewInput{
		ProductID: 10,
		OrderID:   101,
		Rating:    4,
	})

	assertErrContains(t, err, "order not eligible")
	reviewsRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 完了していない注文にはレビューできない
func TestReviewUsecase_SubmitReview_OrderNotCompleted(t *testing.T) {
	ordersRepo := &OrderRepoMock{}
	reviewsRepo := &ReviewRepoMock{}
	tx := reviewTxMock(ordersRepo, &ProductRepoMock{}, reviewsRepo, &NotificationRepoMock{})

	ordersRepo.On("FindByID", mock.Anything, int64(101)).
		Return(model.Order{ID: 101, BuyerID: 1, ProductID: 10, Status: model.OrderStatusPending}, nil)

	uc := usecase.NewReviewUsecase(tx, reviewsRepo, notify.NewDispatcher(nil))

	_, err := uc.SubmitReview(context.Background(), 1, usecase.SubmitReviewInput{
		ProductID: 10,
		OrderID:   101,
		Rating:    4,
	})

	assertErrContains(t, err, "order not completed")
	reviewsRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 同じ注文への2件目は拒否
func TestReviewUsecase_SubmitReview_Duplicate(t *testing.T) {
	ordersRepo := &OrderRepoMock{}
	reviewsRepo := &ReviewRepoMock{}
	tx := reviewTxMock(ordersRepo, &ProductRepoMock{}, reviewsRepo, &NotificationRepoMock{})

	ordersRepo.On("FindByID", mock.Anything, int64(101)).
		Return(model.Order{ID: 101, BuyerID: 1, ProductID: 10, Status: model.OrderStatusCompleted}, nil)
	reviewsRepo.On("ExistsForOrder", mock.Anything, int64(101), int64(1)).Return(true, nil)

	uc := usecase.NewReviewUsecase(tx, reviewsRepo, notify.NewDispatcher(nil))

	_, err := uc.SubmitReview(context.Background(), 1, usecase.SubmitReviewInput{
		ProductID: 10,
		OrderID:   101,
		Rating:    4,
	})

	assertErrContains(t, err, "review already exists")
	reviewsRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 通知用の商品取得でDBが落ちたら操作全体を失敗させる
func TestReviewUsecase_SubmitReview_ProductLookupFailure(t *testing.T) {
	ordersRepo := &OrderRepoMock{}
	productsRepo := &ProductRepoMock{}
	reviewsRepo := &ReviewRepoMock{}
	notificationsRepo := &NotificationRepoMock{}
	tx := reviewTxMock(ordersRepo, productsRepo, reviewsRepo, notificationsRepo)

	ordersRepo.On("FindByID", mock.Anything, int64(101)).
		Return(model.Order{ID: 101, BuyerID: 1, ProductID: 10, Status: model.OrderStatusCompleted}, nil)
	reviewsRepo.On("ExistsForOrder", mock.Anything, int64(101), int64(1)).Return(false, nil)
	reviewsRepo.On("Create", mock.Anything, mock.Anything).
		Return(model.Review{ID: 7, ProductID: 10, OrderID: 101, BuyerID: 1, Rating: 4}, nil)
	productsRepo.On("FindByID", mock.Anything, int64(10)).
		Return(model.Product{}, errors.New("connection reset"))

	uc := usecase.NewReviewUsecase(tx, reviewsRepo, notify.NewDispatcher(nil))

	_, err := uc.SubmitReview(context.Background(), 1, usecase.SubmitReviewInput{
		ProductID: 10,
		OrderID:   101,
		Rating:    4,
	})

	assertErrContains(t, err, "dependency unavailable")
	notificationsRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 商品が消えている場合は通知だけ飛ばしてレビューは成立する
func TestReviewUsecase_SubmitReview_ProductGoneSkipsNotification(t *testing.T) {
	ordersRepo := &OrderRepoMock{}
	productsRepo := &ProductRepoMock{}
	reviewsRepo := &ReviewRepoMock{}
	notificationsRepo := &NotificationRepoMock{}
	tx := reviewTxMock(ordersRepo, productsRepo, reviewsRepo, notificationsRepo)

	ordersRepo.On("FindByID", mock.Anything, int64(101)).
		Return(model.Order{ID: 101, BuyerID: 1, ProductID: 10, Status: model.OrderStatusCompleted}, nil)
	reviewsRepo.On("ExistsForOrder", mock.Anything, int64(101), int64(1)).Return(false, nil)
	reviewsRepo.On("Create", mock.Anything, mock.Anything).
		Return(model.Review{ID: 7, ProductID: 10, OrderID: 101, BuyerID: 1, Rating: 4}, nil)
	productsRepo.On("FindByID", mock.Anything, int64(10)).
		Return(model.Product{}, repo.ErrNotFound)

	uc := usecase.NewReviewUsecase(tx, reviewsRepo, notify.NewDispatcher(nil))

	out, err := uc.SubmitReview(context.Background(), 1, usecase.SubmitReviewInput{
		ProductID: 10,
		OrderID:   101,
		Rating:    4,
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(7), out.ID)
	notificationsRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReviewUsecase_SubmitReview_Success(t *testing.T) {
	ordersRepo := &OrderRepoMock{}
	productsRepo := &ProductRepoMock{}
	reviewsRepo := &ReviewRepoMock{}
	notificationsRepo := &NotificationRepoMock{}
	tx := reviewTxMock(ordersRepo, productsRepo, reviewsRepo, notificationsRepo)

	ordersRepo.On("FindByID", mock.Anything, int64(101)).
		Return(model.Order{ID: 101, BuyerID: 1, ProductID: 10, Status: model.OrderStatusCompleted}, nil)
	reviewsRepo.On("ExistsForOrder", mock.Anything, int64(101), int64(1)).Return(false, nil)
	reviewsRepo.On("Create", mock.Anything, mock.MatchedBy(func(rv model.Review) bool {
		return rv.ProductID == 10 && rv.OrderID == 101 && rv.BuyerID == 1 && rv.Rating == 5
	})).Return(model.Review{ID: 7, ProductID: 10, OrderID: 101, BuyerID: 1, Rating: 5, Comment: "great"}, nil)
	productsRepo.On("FindByID", mock.Anything, int64(10)).
		Return(model.Product{ID: 10, SellerID: 2, Name: "Handmade mug"}, nil)
	notificationsRepo.On("Create", mock.Anything, mock.MatchedBy(func(n model.Notification) bool {
		return n.UserID == 2 && n.Type == model.NotificationTypeNewReview
	})).Return(nil)

	uc := usecase.NewReviewUsecase(tx, reviewsRepo, notify.NewDispatcher(nil))

	out, err := uc.SubmitReview(context.Background(), 1, usecase.SubmitReviewInput{
		ProductID: 10,
		OrderID:   101,
		Rating:    5,
		Comment:   "great",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(7), out.ID)
	assert.Equal(t, 5, out.Rating)
	notificationsRepo.AssertExpectations(t)
}
