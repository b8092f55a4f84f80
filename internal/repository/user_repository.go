package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

// ユーザーの保存・取得を約束
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	Update(ctx context.Context, user *model.User) error

	//通知ファンアウト先（管理者全員）
	ListAdmins(ctx context.Context) ([]model.User, error)
}
