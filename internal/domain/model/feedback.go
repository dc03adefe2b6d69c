package model

import "time"

// 商品に対するユーザーのレビュー。必ず注文明細1行に紐付く。
// 同じ（ユーザー・商品・注文明細）の組に2件目は作れない。
type Feedback struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID           int64     `gorm:"not null;uniqueIndex:idx_feedback_triple" json:"user_id"`
	ProductID        int64     `gorm:"not null;uniqueIndex:idx_feedback_triple;index" json:"product_id"`
	OrderDetailID    int64     `gorm:"not null;uniqueIndex:idx_feedback_triple" json:"order_detail_id"`
	RatingCategoryID int64     `gorm:"not null;index" json:"rating_category_id"`
	Content          string    `gorm:"type:text" json:"content"`
	Rating           int       `gorm:"not null" json:"rating"`
	CreatedAt        time.Time `gorm:"not null" json:"created_at"`
}
