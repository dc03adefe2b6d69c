package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type FeedbackGormRepository struct {
	db *gorm.DB
}

// DI
func NewFeedbackGormRepository(db *gorm.DB) *FeedbackGormRepository {
	return &FeedbackGormRepository{db: db}
}

func (r *FeedbackGormRepository) Create(ctx context.Context, f model.Feedback) (model.Feedback, error) {
	if err := r.db.WithContext(ctx).Create(&f).Error; err != nil {
		return model.Feedback{}, err
	}
	return f, nil
}

func (r *FeedbackGormRepository) FindByID(ctx context.Context, feedbackID int64) (model.Feedback, error) {
	var f model.Feedback
	err := r.db.WithContext(ctx).First(&f, feedbackID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Feedback{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Feedback{}, err
	}
	return f, nil
}

func (r *FeedbackGormRepository) Update(ctx context.Context, f model.Feedback) error {
	res := r.db.WithContext(ctx).Model(&model.Feedback{}).
		Where("id = ?", f.ID).
		Updates(map[string]interface{}{
			"content":            f.Content,
			"rating":             f.Rating,
			"rating_category_id": f.RatingCategoryID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *FeedbackGormRepository) Delete(ctx context.Context, feedbackID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Feedback{}, feedbackID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *FeedbackGormRepository) ListByProductID(ctx context.Context, productID int64) ([]model.Feedback, error) {
	var items []model.Feedback
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at desc").Order("id desc").
		Find(&items).Error; err != nil {
		return []model.Feedback{}, err
	}
	return items, nil
}

func (r *FeedbackGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Feedback, error) {
	var items []model.Feedback
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").Order("id desc").
		Find(&items).Error; err != nil {
		return []model.Feedback{}, err
	}
	return items, nil
}

// 新しい順にcount件
func (r *FeedbackGormRepository) ListRecent(ctx context.Context, count int) ([]model.Feedback, error) {
	var items []model.Feedback
	if err := r.db.WithContext(ctx).
		Order("created_at desc").Order("id desc").
		Limit(count).
		Find(&items).Error; err != nil {
		return []model.Feedback{}, err
	}
	return items, nil
}

// その注文明細×商品に既にフィードバックがあるか
func (r *FeedbackGormRepository) ExistsForOrderDetail(ctx context.Context, orderDetailID int64, productID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Feedback{}).
		Where("order_detail_id = ? AND product_id = ?", orderDetailID, productID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
