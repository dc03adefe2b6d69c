package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type OrderUsecase struct {
	tx repo.TransactionManager
}

func NewOrderUsecase(tx repo.TransactionManager) *OrderUsecase {
	return &OrderUsecase{tx: tx}
}

type PlaceOrderInput struct {
	ShippingAddress string
}

type OrderItemOutput struct {
	OrderDetailID int64 `json:"order_detail_id"`
	ProductID     int64 `json:"product_id"`
	Price         int64 `json:"price"`
	Quantity      int64 `json:"quantity"`
}

type OrderStatusOutput struct {
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type OrderOutput struct {
	ID              int64               `json:"id"`
	UserID          int64               `json:"user_id"`
	ShippingAddress string              `json:"shipping_address"`
	Status          string              `json:"status"`
	Statuses        []OrderStatusOutput `json:"statuses"`
	TotalPrice      int64               `json:"total_price"`
	CreatedAt       time.Time           `json:"created_at"`
	Items           []OrderItemOutput   `json:"items"`
}

// チェックアウト。カート行（order_id IS NULL）をそのまま注文の明細に付け替える。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	address := strings.TrimSpace(in.ShippingAddress)
	if address == "" || len(address) > 500 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid shipping_address")
	}

	var out OrderOutput

	//注文処理はトランザクション
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//カート行取得
		lines, err := r.OrderDetails().ListCart(ctx, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(lines) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart empty")
		}

		//在庫を確定時に再チェックして減らす
		var total int64 = 0
		lineIDs := make([]int64, 0, len(lines))

		for _, line := range lines {
			p, err := r.Products().FindByID(ctx, line.ProductID)
			if err == repo.ErrNotFound || (err == nil && !p.IsActive) {
				return NewHTTPError(http.StatusBadRequest, "invalid")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			//在庫減算（足りないなら false）
			ok, err := r.Products().DecreaseStockIfEnough(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusBadRequest, "out of stock")
			}

			total += line.UnitPriceSnapshot * line.Quantity
			lineIDs = append(lineIDs, line.ID)
		}

		//注文作成
		now := time.Now()
		orderID, err := r.Orders().Create(ctx, model.Order{
			UserID:          userID,
			ShippingAddress: address,
			TotalPrice:      total,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//カート行を注文に付け替え
		if err := r.OrderDetails().AttachToOrder(ctx, lineIDs, orderID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//最初のステータスイベント
		if err := r.Orders().AppendStatus(ctx, orderID, model.OrderStatusPending); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		created := model.Order{
			ID:              orderID,
			UserID:          userID,
			ShippingAddress: address,
			TotalPrice:      total,
			Statuses: []model.OrderStatusEvent{
				{OrderID: orderID, Status: model.OrderStatusPending, CreatedAt: now},
			},
			Details:   lines,
			CreatedAt: now,
		}
		out = toOrderOutput(created)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	//ページングはまずは固定で取る
	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByUserID(ctx, userID, 1, 50)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			outs = append(outs, toOrderOutput(o))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//他人の注文は「存在しない扱い」にする
		o, err := r.Orders().FindByIDForUser(ctx, orderID, userID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 現在のステータス=履歴の最後のイベント
func currentStatus(events []model.OrderStatusEvent) string {
	if len(events) == 0 {
		return ""
	}
	return string(events[len(events)-1].Status)
}

func toOrderOutput(o model.Order) OrderOutput {
	items := make([]OrderItemOutput, 0, len(o.Details))
	for _, d := range o.Details {
		items = append(items, OrderItemOutput{
			OrderDetailID: d.ID,
			ProductID:     d.ProductID,
			Price:         d.UnitPriceSnapshot,
			Quantity:      d.Quantity,
		})
	}

	statuses := make([]OrderStatusOutput, 0, len(o.Statuses))
	for _, s := range o.Statuses {
		statuses = append(statuses, OrderStatusOutput{
			Status:    string(s.Status),
			CreatedAt: s.CreatedAt,
		})
	}

	return OrderOutput{
		ID:              o.ID,
		UserID:          o.UserID,
		ShippingAddress: o.ShippingAddress,
		Status:          currentStatus(o.Statuses),
		Statuses:        statuses,
		TotalPrice:      o.TotalPrice,
		CreatedAt:       o.CreatedAt,
		Items:           items,
	}
}
