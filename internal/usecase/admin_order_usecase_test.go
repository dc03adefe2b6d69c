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

func pendingOrder(orderID int64) model.Order {
	return model.Order{
		ID: orderID,
		Statuses: []model.OrderStatusEvent{
			{OrderID: orderID, Status: model.OrderStatusPending},
		},
	}
}

func TestAdminOrderUsecase_UpdateStatus_InvalidStatus(t *testing.T) {
	tx := newTxRepos()
	uc := usecase.NewAdminOrderUsecase(txManagerStub{repos: tx}, new(AuditRepoMock))

	err := uc.UpdateStatus(context.Background(), 99, 10, usecase.AdminUpdateOrderStatusInput{Status: "UNKNOWN"})
	assertErrContains(t, err, "invalid status")
}

func TestAdminOrderUsecase_UpdateStatus_NotFound(t *testing.T) {
	tx := newTxRepos()
	uc := usecase.NewAdminOrderUsecase(txManagerStub{repos: tx}, new(AuditRepoMock))

	tx.orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{}, repo.ErrNotFound)

	err := uc.UpdateStatus(context.Background(), 99, 10, usecase.AdminUpdateOrderStatusInput{Status: "PAID"})
	assertErrContains(t, err, "not found")
}

func TestAdminOrderUsecase_UpdateStatus_NoopWhenAlreadySet(t *testing.T) {
	tx := newTxRepos()
	auditRepo := new(AuditRepoMock)
	uc := usecase.NewAdminOrderUsecase(txManagerStub{repos: tx}, auditRepo)

	tx.orders.On("FindByID", mock.Anything, int64(10)).Return(pendingOrder(10), nil)

	err := uc.UpdateStatus(context.Background(), 99, 10, usecase.AdminUpdateOrderStatusInput{Status: "PENDING"})
	assert.NoError(t, err)

	//同じイベントは積まない
	tx.orders.AssertNotCalled(t, "AppendStatus", mock.Anything, mock.Anything, mock.Anything)
	auditRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAdminOrderUsecase_UpdateStatus_AppendsEventAndAudits(t *testing.T) {
	tx := newTxRepos()
	auditRepo := new(AuditRepoMock)
	uc := usecase.NewAdminOrderUsecase(txManagerStub{repos: tx}, auditRepo)

	tx.orders.On("FindByID", mock.Anything, int64(10)).Return(pendingOrder(10), nil)
	tx.orders.On("AppendStatus", mock.Anything, int64(10), model.OrderStatusDelivered).Return(nil)

	auditRepo.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateOrderStatus && l.ActorUserID == 99 && l.ResourceID == 10
	})).Return(nil)

	err := uc.UpdateStatus(context.Background(), 99, 10, usecase.AdminUpdateOrderStatusInput{Status: "DELIVERED"})
	assert.NoError(t, err)

	tx.orders.AssertExpectations(t)
	auditRepo.AssertExpectations(t)
}

func TestAdminOrderUsecase_UpdateStatus_CancelRestocks(t *testing.T) {
	tx := newTxRepos()
	auditRepo := new(AuditRepoMock)
	uc := usecase.NewAdminOrderUsecase(txManagerStub{repos: tx}, auditRepo)

	tx.orders.On("FindByID", mock.Anything, int64(10)).Return(pendingOrder(10), nil)
	tx.details.On("ListByOrderID", mock.Anything, int64(10)).Return([]model.OrderDetail{
		{ID: 100, ProductID: 20, Quantity: 2},
		{ID: 101, ProductID: 21, Quantity: 1},
	}, nil)
	tx.products.On("IncreaseStock", mock.Anything, int64(20), int64(2)).Return(nil)
	tx.products.On("IncreaseStock", mock.Anything, int64(21), int64(1)).Return(nil)
	tx.orders.On("AppendStatus", mock.Anything, int64(10), model.OrderStatusCanceled).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := uc.UpdateStatus(context.Background(), 99, 10, usecase.AdminUpdateOrderStatusInput{Status: "CANCELED"})
	assert.NoError(t, err)

	tx.products.AssertExpectations(t)
}

func TestAdminOrderUsecase_UpdateStatus_CannotCancelDelivered(t *testing.T) {
	tx := newTxRepos()
	uc := usecase.NewAdminOrderUsecase(txManagerStub{repos: tx}, new(AuditRepoMock))

	order := pendingOrder(10)
	order.Statuses = append(order.Statuses, model.OrderStatusEvent{OrderID: 10, Status: model.OrderStatusDelivered})
	tx.orders.On("FindByID", mock.Anything, int64(10)).Return(order, nil)

	err := uc.UpdateStatus(context.Background(), 99, 10, usecase.AdminUpdateOrderStatusInput{Status: "CANCELED"})
	assertErrContains(t, err, "cannot cancel delivered order")
}

func TestAdminOrderUsecase_UpdateStatus_CanceledIsTerminal(t *testing.T) {
	tx := newTxRepos()
	uc := usecase.NewAdminOrderUsecase(txManagerStub{repos: tx}, new(AuditRepoMock))

	order := pendingOrder(10)
	order.Statuses = append(order.Statuses, model.OrderStatusEvent{OrderID: 10, Status: model.OrderStatusCanceled})
	tx.orders.On("FindByID", mock.Anything, int64(10)).Return(order, nil)

	err := uc.UpdateStatus(context.Background(), 99, 10, usecase.AdminUpdateOrderStatusInput{Status: "SHIPPED"})
	assertErrContains(t, err, "cannot change canceled order")
}
