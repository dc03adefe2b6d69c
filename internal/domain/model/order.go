package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

// ステータスは上書きではなく履歴（イベント）として積む。
// DELIVEREDのイベントを持つ注文だけがフィードバック対象になる。
type OrderStatusEvent struct {
	ID        int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64       `gorm:"not null;index" json:"order_id"`
	Status    OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
}

type Order struct {
	ID              int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          int64  `gorm:"not null;index" json:"user_id"`
	ShippingAddress string `gorm:"type:varchar(500);not null" json:"shipping_address"`
	TotalPrice      int64  `gorm:"not null" json:"total_price"`

	Statuses []OrderStatusEvent `gorm:"foreignKey:OrderID" json:"statuses"`
	Details  []OrderDetail      `gorm:"foreignKey:OrderID" json:"details"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// ステータス履歴にstatusが含まれるか
func (o Order) HasStatus(status OrderStatus) bool {
	for _, s := range o.Statuses {
		if s.Status == status {
			return true
		}
	}
	return false
}
