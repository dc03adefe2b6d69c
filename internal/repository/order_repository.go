package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)

	//ステータス履歴と明細を含めて、そのユーザーの注文を1件取得
	FindByIDForUser(ctx context.Context, orderID int64, userID int64) (model.Order, error)

	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)

	//ステータスイベントを履歴に追記する（上書きしない）
	AppendStatus(ctx context.Context, orderID int64, status model.OrderStatus) error

	//履歴にstatusのイベントがあるか
	HasStatus(ctx context.Context, orderID int64, status model.OrderStatus) (bool, error)

	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
}
