package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderDetailGormRepository struct {
	db *gorm.DB
}

// DI
func NewOrderDetailGormRepository(db *gorm.DB) *OrderDetailGormRepository {
	return &OrderDetailGormRepository{db: db}
}

func (r *OrderDetailGormRepository) FindByID(ctx context.Context, orderDetailID int64) (model.OrderDetail, error) {
	var d model.OrderDetail
	err := r.db.WithContext(ctx).First(&d, orderDetailID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.OrderDetail{}, repo.ErrNotFound
	}
	if err != nil {
		return model.OrderDetail{}, err
	}
	return d, nil
}

// カート行（order_id IS NULL）を1件取得
func (r *OrderDetailGormRepository) FindCartLine(ctx context.Context, userID int64, productID int64) (model.OrderDetail, error) {
	var d model.OrderDetail

	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND product_id = ? AND order_id IS NULL", userID, productID).
		First(&d).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.OrderDetail{}, repo.ErrNotFound
	}
	if err != nil {
		return model.OrderDetail{}, err
	}
	return d, nil
}

// ユーザーのカート行を一覧
func (r *OrderDetailGormRepository) ListCart(ctx context.Context, userID int64) ([]model.OrderDetail, error) {
	var items []model.OrderDetail

	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND order_id IS NULL", userID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.OrderDetail{}, err
	}

	return items, nil
}

func (r *OrderDetailGormRepository) Create(ctx context.Context, d model.OrderDetail) (model.OrderDetail, error) {
	if err := r.db.WithContext(ctx).Create(&d).Error; err != nil {
		return model.OrderDetail{}, err
	}
	return d, nil
}

// 明細の数量を更新
func (r *OrderDetailGormRepository) UpdateQuantity(ctx context.Context, orderDetailID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.OrderDetail{}).
		Where("id = ?", orderDetailID).
		Update("quantity", qty)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 明細を削除
func (r *OrderDetailGormRepository) DeleteByID(ctx context.Context, orderDetailID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.OrderDetail{}, orderDetailID)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// その明細行がそのユーザーのものか
func (r *OrderDetailGormRepository) IsOwnedByUser(ctx context.Context, orderDetailID int64, userID int64) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).Model(&model.OrderDetail{}).
		Where("id = ? AND user_id = ?", orderDetailID, userID).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// カート行を注文に付け替える（チェックアウト）
func (r *OrderDetailGormRepository) AttachToOrder(ctx context.Context, orderDetailIDs []int64, orderID int64) error {
	if len(orderDetailIDs) == 0 {
		return nil
	}

	res := r.db.WithContext(ctx).Model(&model.OrderDetail{}).
		Where("id IN ? AND order_id IS NULL", orderDetailIDs).
		Update("order_id", orderID)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != int64(len(orderDetailIDs)) {
		return repo.ErrNotFound
	}
	return nil
}

// （明細ID・ユーザー・商品）が全部一致する行を1件取得
func (r *OrderDetailGormRepository) FindLine(ctx context.Context, orderDetailID int64, userID int64, productID int64) (model.OrderDetail, error) {
	var d model.OrderDetail

	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND product_id = ?", orderDetailID, userID, productID).
		First(&d).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.OrderDetail{}, repo.ErrNotFound
	}
	if err != nil {
		return model.OrderDetail{}, err
	}
	return d, nil
}

func (r *OrderDetailGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderDetail, error) {
	var items []model.OrderDetail

	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.OrderDetail{}, err
	}

	return items, nil
}
