package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

// 在庫台帳。引き当て・戻し・補正はすべて条件付きUPDATEで行う約束。
type StockRepository interface {
	// 在庫が足りるときだけ減算し、同時に order_count を+1する。
	// 足りなければ false（行は変更されない）。
	Reserve(ctx context.Context, productID int64, qty int64) (bool, error)

	// 在庫戻し（キャンセル時、設定で有効な場合のみ）
	Release(ctx context.Context, productID int64, qty int64) error

	// 在庫の現在値を設定（出品者/管理者の補正用）
	SetStock(ctx context.Context, productID int64, newStock int64) error

	// COMPLETED注文が消費した数量の合計。表示用の残在庫の計算に使う。
	CompletedQuantity(ctx context.Context, productID int64) (int64, error)

	// 変動履歴を1件保存
	CreateAdjustment(ctx context.Context, adj model.StockAdjustment) error
}
