package repository

import (
	"context"

	"app/internal/domain/model"
)

// 商品ごとの星バケツの保存・取得・件数の増減。
type RatingCategoryRepository interface {
	//5バケツをまとめて作る。既にあれば何もしない（create-if-absent）
	EnsureForProduct(ctx context.Context, productID int64) error

	//星の昇順で返す
	ListByProductID(ctx context.Context, productID int64) ([]model.RatingCategory, error)

	FindByProductAndStars(ctx context.Context, productID int64, stars int) (model.RatingCategory, error)

	//件数を+1
	IncrementTotal(ctx context.Context, id int64) error

	//件数を-1。0未満にはしない
	DecrementTotal(ctx context.Context, id int64) error
}
