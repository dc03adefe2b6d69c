package model

import "time"

// 注文の明細1行。
// OrderIDがnilの行は「まだ注文になっていないカートの行」として扱う。
// カートと注文明細は同じテーブルを共有する。
type OrderDetail struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID           *int64    `gorm:"index" json:"order_id"`
	UserID            int64     `gorm:"not null;index" json:"user_id"`
	ProductID         int64     `gorm:"not null;index" json:"product_id"`
	Quantity          int64     `gorm:"not null" json:"quantity"`
	UnitPriceSnapshot int64     `gorm:"not null;column:unit_price_snapshot" json:"unit_price_snapshot"`
	CreatedAt         time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// カート行かどうか（注文に紐付いていなければカート）
func (d OrderDetail) IsCartLine() bool {
	return d.OrderID == nil
}
