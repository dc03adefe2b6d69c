package repository

import (
	"context"

	"app/internal/domain/model"
)

// フィードバックの保存・取得を約束。
type FeedbackRepository interface {
	Create(ctx context.Context, f model.Feedback) (model.Feedback, error)
	FindByID(ctx context.Context, feedbackID int64) (model.Feedback, error)
	Update(ctx context.Context, f model.Feedback) error
	Delete(ctx context.Context, feedbackID int64) error

	ListByProductID(ctx context.Context, productID int64) ([]model.Feedback, error)
	ListByUserID(ctx context.Context, userID int64) ([]model.Feedback, error)

	//新しい順にcount件
	ListRecent(ctx context.Context, count int) ([]model.Feedback, error)

	//その注文明細×商品に既にフィードバックがあるか
	ExistsForOrderDetail(ctx context.Context, orderDetailID int64, productID int64) (bool, error)
}
