package usecase_test

import (
	"context"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestOrderUsecase_PlaceOrder_EmptyCart(t *testing.T) {
	tx := newTxRepos()
	uc := usecase.NewOrderUsecase(txManagerStub{repos: tx})

	tx.details.On("ListCart", mock.Anything, int64(1)).Return([]model.OrderDetail{}, nil)

	_, err := uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{ShippingAddress: "Tokyo"})
	assertErrContains(t, err, "cart empty")
}

func TestOrderUsecase_PlaceOrder_OutOfStock(t *testing.T) {
	tx := newTxRepos()
	uc := usecase.NewOrderUsecase(txManagerStub{repos: tx})

	tx.details.On("ListCart", mock.Anything, int64(1)).Return([]model.OrderDetail{
		{ID: 100, UserID: 1, ProductID: 20, Quantity: 5, UnitPriceSnapshot: 500},
	}, nil)
	tx.products.On("FindByID", mock.Anything, int64(20)).Return(model.Product{ID: 20, IsActive: true, Stock: 2}, nil)
	tx.products.On("DecreaseStockIfEnough", mock.Anything, int64(20), int64(5)).Return(false, nil)

	_, err := uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{ShippingAddress: "Tokyo"})
	assertErrContains(t, err, "out of stock")

	tx.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderUsecase_PlaceOrder_Success(t *testing.T) {
	ctx := context.Background()
	tx := newTxRepos()
	uc := usecase.NewOrderUsecase(txManagerStub{repos: tx})

	lines := []model.OrderDetail{
		{ID: 100, UserID: 1, ProductID: 20, Quantity: 2, UnitPriceSnapshot: 500},
		{ID: 101, UserID: 1, ProductID: 21, Quantity: 1, UnitPriceSnapshot: 300},
	}
	tx.details.On("ListCart", mock.Anything, int64(1)).Return(lines, nil)

	tx.products.On("FindByID", mock.Anything, int64(20)).Return(model.Product{ID: 20, IsActive: true, Stock: 10}, nil)
	tx.products.On("FindByID", mock.Anything, int64(21)).Return(model.Product{ID: 21, IsActive: true, Stock: 10}, nil)
	tx.products.On("DecreaseStockIfEnough", mock.Anything, int64(20), int64(2)).Return(true, nil)
	tx.products.On("DecreaseStockIfEnough", mock.Anything, int64(21), int64(1)).Return(true, nil)

	tx.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.UserID == 1 && o.ShippingAddress == "Tokyo" && o.TotalPrice == 1300
	})).Return(int64(10), nil)

	tx.details.On("AttachToOrder", mock.Anything, []int64{100, 101}, int64(10)).Return(nil)
	tx.orders.On("AppendStatus", mock.Anything, int64(10), model.OrderStatusPending).Return(nil)

	out, err := uc.PlaceOrder(ctx, 1, usecase.PlaceOrderInput{ShippingAddress: "Tokyo"})
	assert.NoError(t, err)
	assert.Equal(t, int64(10), out.ID)
	assert.Equal(t, int64(1300), out.TotalPrice)
	assert.Equal(t, "PENDING", out.Status)
	assert.Equal(t, 2, len(out.Items))

	tx.orders.AssertExpectations(t)
	tx.details.AssertExpectations(t)
	tx.products.AssertExpectations(t)
}

func TestOrderUsecase_PlaceOrder_InvalidAddress(t *testing.T) {
	tx := newTxRepos()
	uc := usecase.NewOrderUsecase(txManagerStub{repos: tx})

	_, err := uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{ShippingAddress: "   "})
	assertErrContains(t, err, "invalid shipping_address")
}

func TestOrderUsecase_GetMyOrderDetail_OtherUsers_NotFound(t *testing.T) {
	tx := newTxRepos()
	uc := usecase.NewOrderUsecase(txManagerStub{repos: tx})

	tx.orders.On("FindByIDForUser", mock.Anything, int64(10), int64(1)).Return(model.Order{}, repo.ErrNotFound)

	_, err := uc.GetMyOrderDetail(context.Background(), 1, 10)
	assertErrContains(t, err, "not found")
}

func TestOrderUsecase_ListMyOrders_StatusIsLastEvent(t *testing.T) {
	tx := newTxRepos()
	uc := usecase.NewOrderUsecase(txManagerStub{repos: tx})

	orders := []model.Order{
		{
			ID: 10, UserID: 1,
			Statuses: []model.OrderStatusEvent{
				{OrderID: 10, Status: model.OrderStatusPending},
				{OrderID: 10, Status: model.OrderStatusShipped},
				{OrderID: 10, Status: model.OrderStatusDelivered},
			},
		},
	}
	tx.orders.On("ListByUserID", mock.Anything, int64(1), 1, 50).Return(orders, int64(1), nil)

	out, err := uc.ListMyOrders(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(out))
	assert.Equal(t, "DELIVERED", out[0].Status)
	assert.Equal(t, 3, len(out[0].Statuses))
}
