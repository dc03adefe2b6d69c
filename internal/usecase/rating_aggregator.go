package usecase

import (
	"context"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 商品のフィードバック集計値（feedback_total / average_rating）を更新する唯一の入口。
// フィードバックの作成・編集・削除トランザクションの最後に必ず呼ぶ。
// totalDeltaは作成なら+1、削除なら-1、編集なら0。0未満にはしない。
//
// 平均は保存済みの値を信用せず、毎回バケツの現在値から出し直す。
// 商品が存在しない場合は何もしない（存在確認は呼び出し側が先に済ませている前提）。
func recomputeProductStats(ctx context.Context, r repo.TxRepos, productID int64, totalDelta int64) error {
	p, err := r.Products().FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	total := p.FeedbackTotal + totalDelta
	if total < 0 {
		total = 0
	}

	buckets, err := r.RatingCategories().ListByProductID(ctx, productID)
	if err != nil {
		return err
	}

	return r.Products().UpdateFeedbackStats(ctx, productID, total, model.AverageRating(buckets))
}
