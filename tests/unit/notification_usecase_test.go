package unit

import (
	"context"
	"testing"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
	"marketplace/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNotificationUsecase_ListMy(t *testing.T) {
	notificationsRepo := &NotificationRepoMock{}
	notificationsRepo.On("ListByUserID", mock.Anything, int64(1), 1, 20).Return([]model.Notification{
		{ID: 5, UserID: 1, Title: "New order #101", Type: model.NotificationTypeNewOrder},
		{ID: 6, UserID: 1, Title: "Order #101 COMPLETED", Type: model.NotificationTypeOrderStatus, IsRead: true},
	}, int64(2), nil)
	notificationsRepo.On("CountUnread", mock.Anything, int64(1)).Return(int64(1), nil)

	uc := usecase.NewNotificationUsecase(notificationsRepo)

	out, err := uc.ListMy(context.Background(), 1, 1, 20)

	assert.NoError(t, err)
	assert.Equal(t, int64(2), out.Total)
	assert.Equal(t, int64(1), out.UnreadCount)
	if assert.Len(t, out.Items, 2) {
		assert.False(t, out.Items[0].IsRead)
		assert.True(t, out.Items[1].IsRead)
	}
}

// 他人の通知を既読にしようとしても「存在しない扱い」
func TestNotificationUsecase_MarkRead_NotOwned(t *testing.T) {
	notificationsRepo := &NotificationRepoMock{}
	notificationsRepo.On("MarkRead", mock.Anything, int64(5), int64(2)).Return(repo.ErrNotFound)

	uc := usecase.NewNotificationUsecase(notificationsRepo)

	err := uc.MarkRead(context.Background(), 2, 5)

	assertErrContains(t, err, "not found")
}

func TestNotificationUsecase_MarkRead_Success(t *testing.T) {
	notificationsRepo := &NotificationRepoMock{}
	notificationsRepo.On("MarkRead", mock.Anything, int64(5), int64(1)).Return(nil)

	uc := usecase.NewNotificationUsecase(notificationsRepo)

	err := uc.MarkRead(context.Background(), 1, 5)

	assert.NoError(t, err)
}
