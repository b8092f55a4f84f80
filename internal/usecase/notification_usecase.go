package usecase

import (
	"context"
	"net/http"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

// 自分宛の通知の閲覧と既読化
type NotificationUsecase struct {
	notifications repo.NotificationRepository
}

func NewNotificationUsecase(notifications repo.NotificationRepository) *NotificationUsecase {
	return &NotificationUsecase{notifications: notifications}
}

type NotificationOutput struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type NotificationListOutput struct {
	Items       []NotificationOutput `json:"items"`
	Total       int64                `json:"total"`
	UnreadCount int64                `json:"unread_count"`
}

func (u *NotificationUsecase) ListMy(ctx context.Context, userID int64, page int, limit int) (NotificationListOutput, error) {
	if userID <= 0 {
		return NotificationListOutput{}, NewHTTPError(http.StatusUnauthorized, KindUnauthorized, "unauthorized")
	}

	items, total, err := u.notifications.ListByUserID(ctx, userID, page, limit)
	if err != nil {
		return NotificationListOutput{}, errDependency()
	}

	unread, err := u.notifications.CountUnread(ctx, userID)
	if err != nil {
		return NotificationListOutput{}, errDependency()
	}

	outs := make([]NotificationOutput, 0, len(items))
	for _, n := range items {
		outs = append(outs, toNotificationOutput(n))
	}

	return NotificationListOutput{Items: outs, Total: total, UnreadCount: unread}, nil
}

func (u *NotificationUsecase) MarkRead(ctx context.Context, userID int64, notificationID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, KindUnauthorized, "unauthorized")
	}
	if notificationID <= 0 {
		return NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid id")
	}

	err := u.notifications.MarkRead(ctx, notificationID, userID)
	if err == repo.ErrNotFound {
		//他人の通知は「存在しない扱い」にする
		return NewHTTPError(http.StatusNotFound, KindInvalidRequest, "not found")
	}
	if err != nil {
		return errDependency()
	}
	return nil
}

func toNotificationOutput(n model.Notification) NotificationOutput {
	return NotificationOutput{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      string(n.Type),
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}
