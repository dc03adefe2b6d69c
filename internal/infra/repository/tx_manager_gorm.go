package repository

import (
	"context"

	repo "app/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	orders           repo.OrderRepository
	orderDetails     repo.OrderDetailRepository
	products         repo.ProductRepository
	ratingCategories repo.RatingCategoryRepository
	feedbacks        repo.FeedbackRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository                    { return r.orders }
func (r *txReposGorm) OrderDetails() repo.OrderDetailRepository        { return r.orderDetails }
func (r *txReposGorm) Products() repo.ProductRepository                { return r.products }
func (r *txReposGorm) RatingCategories() repo.RatingCategoryRepository { return r.ratingCategories }
func (r *txReposGorm) Feedbacks() repo.FeedbackRepository              { return r.feedbacks }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			orders:           NewOrderGormRepository(tx),
			orderDetails:     NewOrderDetailGormRepository(tx),
			products:         NewProductGormRepository(tx),
			ratingCategories: NewRatingCategoryGormRepository(tx),
			feedbacks:        NewFeedbackGormRepository(tx),
		}
		return fn(r)
	})
}
