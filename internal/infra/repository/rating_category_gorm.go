package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RatingCategoryGormRepository struct {
	db *gorm.DB
}

// DI
func NewRatingCategoryGormRepository(db *gorm.DB) *RatingCategoryGormRepository {
	return &RatingCategoryGormRepository{db: db}
}

// 5バケツをゼロ件でまとめて作る。
// (product_id, stars)のユニーク制約に乗せたON CONFLICT DO NOTHINGなので、
// 既にあっても同時に2リクエスト来ても安全。
func (r *RatingCategoryGormRepository) EnsureForProduct(ctx context.Context, productID int64) error {
	buckets := model.NewRatingBuckets(productID)

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "stars"}},
			DoNothing: true,
		}).
		Create(&buckets).Error
}

// 星の昇順で返す
func (r *RatingCategoryGormRepository) ListByProductID(ctx context.Context, productID int64) ([]model.RatingCategory, error) {
	var buckets []model.RatingCategory

	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("stars asc").
		Find(&buckets).Error; err != nil {
		return []model.RatingCategory{}, err
	}

	return buckets, nil
}

func (r *RatingCategoryGormRepository) FindByProductAndStars(ctx context.Context, productID int64, stars int) (model.RatingCategory, error) {
	var b model.RatingCategory
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND stars = ?", productID, stars).
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.RatingCategory{}, repo.ErrNotFound
	}
	if err != nil {
		return model.RatingCategory{}, err
	}
	return b, nil
}

// 件数+1。1文で済ませて同時更新でも取りこぼさない
func (r *RatingCategoryGormRepository) IncrementTotal(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Model(&model.RatingCategory{}).
		Where("id = ?", id).
		Update("total_ratings", gorm.Expr("total_ratings + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 件数-1。0未満にはしない
func (r *RatingCategoryGormRepository) DecrementTotal(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Model(&model.RatingCategory{}).
		Where("id = ?", id).
		Update("total_ratings", gorm.Expr("GREATEST(total_ratings - 1, 0)"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
