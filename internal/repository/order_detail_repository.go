package repository

import (
	"context"

	"app/internal/domain/model"
)

// 注文明細（order_idがnilの行はカート行）を保存・取得する窓口。
type OrderDetailRepository interface {
	FindByID(ctx context.Context, orderDetailID int64) (model.OrderDetail, error)

	//カート行の取得（order_id IS NULL）
	FindCartLine(ctx context.Context, userID int64, productID int64) (model.OrderDetail, error)
	ListCart(ctx context.Context, userID int64) ([]model.OrderDetail, error)

	Create(ctx context.Context, d model.OrderDetail) (model.OrderDetail, error)
	UpdateQuantity(ctx context.Context, orderDetailID int64, qty int64) error
	DeleteByID(ctx context.Context, orderDetailID int64) error

	//その明細行がそのユーザーのものか
	IsOwnedByUser(ctx context.Context, orderDetailID int64, userID int64) (bool, error)

	//カート行を注文に付け替える（チェックアウト）
	AttachToOrder(ctx context.Context, orderDetailIDs []int64, orderID int64) error

	//（明細ID・ユーザー・商品）が全部一致する行を1件取得。フィードバック資格判定用
	FindLine(ctx context.Context, orderDetailID int64, userID int64, productID int64) (model.OrderDetail, error)

	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderDetail, error)
}
