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

func newFeedbackUsecase(tx txRepos) (*usecase.FeedbackUsecase, *FeedbackRepoMock, *OrderDetailRepoMock, *OrderRepoMock, *ProductRepoMock, *RatingCategoryRepoMock, *AuditRepoMock) {
	fbRepo := new(FeedbackRepoMock)
	odRepo := new(OrderDetailRepoMock)
	orderRepo := new(OrderRepoMock)
	productRepo := new(ProductRepoMock)
	rcRepo := new(RatingCategoryRepoMock)
	auditRepo := new(AuditRepoMock)

	uc := usecase.NewFeedbackUsecase(txManagerStub{repos: tx}, fbRepo, odRepo, orderRepo, productRepo, rcRepo, auditRepo)
	return uc, fbRepo, odRepo, orderRepo, productRepo, rcRepo, auditRepo
}

func deliveredOrder(orderID, userID, detailID, productID int64) model.Order {
	return model.Order{
		ID:     orderID,
		UserID: userID,
		Statuses: []model.OrderStatusEvent{
			{OrderID: orderID, Status: model.OrderStatusPending},
			{OrderID: orderID, Status: model.OrderStatusDelivered},
		},
		Details: []model.OrderDetail{
			{ID: detailID, OrderID: &orderID, UserID: userID, ProductID: productID, Quantity: 1},
		},
	}
}

func fiveBuckets(productID int64, counts [5]int64) []model.RatingCategory {
	buckets := model.NewRatingBuckets(productID)
	for i := range buckets {
		buckets[i].ID = int64(i + 1)
		buckets[i].TotalRatings = counts[i]
	}
	return buckets
}

// =====================
// Create
// =====================

func TestFeedbackUsecase_Create_InvalidRating(t *testing.T) {
	tx := newTxRepos()
	uc, _, _, _, _, _, _ := newFeedbackUsecase(tx)

	for _, rating := range []int{0, -1, 6} {
		_, err := uc.Create(context.Background(), 1, usecase.CreateFeedbackInput{
			OrderID: 10, ProductID: 20, Rating: rating,
		})
		assertErrContains(t, err, "invalid rating")
	}

	//不正入力ではDBに触らない
	tx.orders.AssertNotCalled(t, "FindByIDForUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestFeedbackUsecase_Create_OrderNotFound(t *testing.T) {
	tx := newTxRepos()
	uc, _, _, _, _, _, _ := newFeedbackUsecase(tx)

	tx.orders.On("FindByIDForUser", mock.Anything, int64(10), int64(1)).Return(model.Order{}, repo.ErrNotFound)

	_, err := uc.Create(context.Background(), 1, usecase.CreateFeedbackInput{
		OrderID: 10, ProductID: 20, Rating: 5,
	})
	assertErrContains(t, err, "order not found")
}

func TestFeedbackUsecase_Create_NotDeliveredYet(t *testing.T) {
	tx := newTxRepos()
	uc, _, _, _, _, _, _ := newFeedbackUsecase(tx)

	order := deliveredOrder(10, 1, 100, 20)
	order.Statuses = []model.OrderStatusEvent{
		{OrderID: 10, Status: model.OrderStatusPending},
		{OrderID: 10, Status: model.OrderStatusShipped},
	}
	tx.orders.On("FindByIDForUser", mock.Anything, int64(10), int64(1)).Return(order, nil)

	_, err := uc.Create(context.Background(), 1, usecase.CreateFeedbackInput{
		OrderID: 10, ProductID: 20, Rating: 5,
	})
	assertErrContains(t, err, "order not delivered yet")

	//未配達で弾いたら何も書かない
	tx.feedbacks.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	tx.ratings.AssertNotCalled(t, "IncrementTotal", mock.Anything, mock.Anything)
	tx.products.AssertNotCalled(t, "UpdateFeedbackStats", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFeedbackUsecase_Create_ProductNotInOrder(t *testing.T) {
	tx := newTxRepos()
	uc, _, _, _, _, _, _ := newFeedbackUsecase(tx)

	tx.orders.On("FindByIDForUser", mock.Anything, int64(10), int64(1)).Return(deliveredOrder(10, 1, 100, 20), nil)

	_, err := uc.Create(context.Background(), 1, usecase.CreateFeedbackInput{
		OrderID: 10, ProductID: 999, Rating: 5,
	})
	assertErrContains(t, err, "product not in order")
}

func TestFeedbackUsecase_Create_Duplicate(t *testing.T) {
	tx := newTxRepos()
	uc, _, _, _, _, _, _ := newFeedbackUsecase(tx)

	tx.orders.On("FindByIDForUser", mock.Anything, int64(10), int64(1)).Return(deliveredOrder(10, 1, 100, 20), nil)
	tx.feedbacks.On("ExistsForOrderDetail", mock.Anything, int64(100), int64(20)).Return(true, nil)

	_, err := uc.Create(context.Background(), 1, usecase.CreateFeedbackInput{
		OrderID: 10, ProductID: 20, Rating: 5,
	})
	assertErrContains(t, err, "feedback already exists")
}

func TestFeedbackUsecase_Create_Success_FirstFiveStar(t *testing.T) {
	ctx := context.Background()
	tx := newTxRepos()
	uc, _, _, _, _, _, _ := newFeedbackUsecase(tx)

	tx.orders.On("FindByIDForUser", mock.Anything, int64(10), int64(1)).Return(deliveredOrder(10, 1, 100, 20), nil)
	tx.feedbacks.On("ExistsForOrderDetail", mock.Anything, int64(100), int64(20)).Return(false, nil)
	tx.ratings.On("EnsureForProduct", mock.Anything, int64(20)).Return(nil)

	bucket := model.RatingCategory{ID: 5, ProductID: 20, Stars: 5, Name: "5 Star"}
	tx.ratings.On("FindByProductAndStars", mock.Anything, int64(20), 5).Return(bucket, nil)

	tx.feedbacks.On("Create", mock.Anything, mock.MatchedBy(func(f model.Feedback) bool {
		return f.UserID == 1 && f.ProductID == 20 && f.OrderDetailID == 100 &&
			f.RatingCategoryID == 5 && f.Rating == 5 && f.Content == "great"
	})).Return(model.Feedback{ID: 7, UserID: 1, ProductID: 20, OrderDetailID: 100, RatingCategoryID: 5, Rating: 5, Content: "great"}, nil)

	tx.ratings.On("IncrementTotal", mock.Anything, int64(5)).Return(nil)

	//集計の出し直し: 5 Starに1件 → total=1, avg=5.0
	tx.products.On("FindByID", mock.Anything, int64(20)).Return(model.Product{ID: 20, FeedbackTotal: 0}, nil)
	tx.ratings.On("ListByProductID", mock.Anything, int64(20)).Return(fiveBuckets(20, [5]int64{0, 0, 0, 0, 1}), nil)
	tx.products.On("UpdateFeedbackStats", mock.Anything, int64(20), int64(1), 5.0).Return(nil)

	out, err := uc.Create(ctx, 1, usecase.CreateFeedbackInput{
		OrderID: 10, ProductID: 20, Content: "great", Rating: 5,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(7), out.ID)
	assert.Equal(t, 5, out.Rating)

	tx.orders.AssertExpectations(t)
	tx.feedbacks.AssertExpectations(t)
	tx.ratings.AssertExpectations(t)
	tx.products.AssertExpectations(t)
}

// =====================
// Update
// =====================

func TestFeedbackUsecase_Update_NotOwner_NotFound(t *testing.T) {
	tx := newTxRepos()
	uc, _, _, _, _, _, _ := newFeedbackUsecase(tx)

	tx.feedbacks.On("FindByID", mock.Anything, int64(7)).Return(model.Feedback{ID: 7, UserID: 2, ProductID: 20, Rating: 5}, nil)

	_, err := uc.Update(context.Background(), 1, 7, usecase.UpdateFeedbackInput{Rating: 4})
	assertErrContains(t, err, "feedback not found")
}

func TestFeedbackUsecase_Update_RatingChange_MovesBuckets(t *testing.T) {
	ctx := context.Background()
	tx := newTxRepos()
	uc, _, _, _, _, _, _ := newFeedbackUsecase(tx)

	//rating 5 → 2 へ変更
	tx.feedbacks.On("FindByID", mock.Anything, int64(7)).Return(model.Feedback{
		ID: 7, UserID: 1, ProductID: 20, OrderDetailID: 100, RatingCategoryID: 5, Rating: 5,
	}, nil)

	tx.ratings.On("DecrementTotal", mock.Anything, int64(5)).Return(nil)
	tx.ratings.On("FindByProductAndStars", mock.Anything, int64(20), 2).Return(model.RatingCategory{ID: 2, ProductID: 20, Stars: 2}, nil)
	tx.ratings.On("IncrementTotal", mock.Anything, int64(2)).Return(nil)

	tx.feedbacks.On("Update", mock.Anything, mock.MatchedBy(func(f model.Feedback) bool {
		return f.ID == 7 && f.Rating == 2 && f.RatingCategoryID == 2
	})).Return(nil)

	//編集では件数は動かない: total=1のまま、2 Starに1件 → avg=2.0
	tx.products.On("FindByID", mock.Anything, int64(20)).Return(model.Product{ID: 20, FeedbackTotal: 1}, nil)
	tx.ratings.On("ListByProductID", mock.Anything, int64(20)).Return(fiveBuckets(20, [5]int64{0, 1, 0, 0, 0}), nil)
	tx.products.On("UpdateFeedbackStats", mock.Anything, int64(20), int64(1), 2.0).Return(nil)

	out, err := uc.Update(ctx, 1, 7, usecase.UpdateFeedbackInput{Content: "changed my mind", Rating: 2})
	assert.NoError(t, err)
	assert.Equal(t, 2, out.Rating)

	tx.ratings.AssertExpectations(t)
	tx.products.AssertExpectations(t)
}

func TestFeedbackUsecase_Update_SameRating_SkipsBuckets(t *testing.T) {
	ctx := context.Background()
	tx := newTxRepos()
	uc, _, _, _, _, _, _ := newFeedbackUsecase(tx)

	tx.feedbacks.On("FindByID", mock.Anything, int64(7)).Return(model.Feedback{
		ID: 7, UserID: 1, ProductID: 20, RatingCategoryID: 3, Rating: 3,
	}, nil)
	tx.feedbacks.On("Update", mock.Anything, mock.Anything).Return(nil)

	tx.products.On("FindByID", mock.Anything, int64(20)).Return(model.Product{ID: 20, FeedbackTotal: 1}, nil)
	tx.ratings.On("ListByProductID", mock.Anything, int64(20)).Return(fiveBuckets(20, [5]int64{0, 0, 1, 0, 0}), nil)
	tx.products.On("UpdateFeedbackStats", mock.Anything, int64(20), int64(1), 3.0).Return(nil)

	_, err := uc.Update(ctx, 1, 7, usecase.UpdateFeedbackInput{Content: "edited", Rating: 3})
	assert.NoError(t, err)

	tx.ratings.AssertNotCalled(t, "DecrementTotal", mock.Anything, mock.Anything)
	tx.ratings.AssertNotCalled(t, "IncrementTotal", mock.Anything, mock.Anything)
}

func TestFeedbackUsecase_Update_RecomputeTwice_SameAggregates(t *testing.T) {
	ctx := context.Background()
	tx := newTxRepos()
	uc, _, _, _, _, _, _ := newFeedbackUsecase(tx)

	tx.feedbacks.On("FindByID", mock.Anything, int64(7)).Return(model.Feedback{
		ID: 7, UserID: 1, ProductID: 20, RatingCategoryID: 3, Rating: 3,
	}, nil)
	tx.feedbacks.On("Update", mock.Anything, mock.Anything).Return(nil)

	//バケツが動かなければ、何回出し直しても同じ集計値になる
	tx.products.On("FindByID", mock.Anything, int64(20)).Return(model.Product{ID: 20, FeedbackTotal: 2}, nil)
	tx.ratings.On("ListByProductID", mock.Anything, int64(20)).Return(fiveBuckets(20, [5]int64{0, 0, 1, 0, 1}), nil)
	tx.products.On("UpdateFeedbackStats", mock.Anything, int64(20), int64(2), 4.0).Return(nil).Twice()

	for i := 0; i < 2; i++ {
		_, err := uc.Update(ctx, 1, 7, usecase.UpdateFeedbackInput{Content: "edited", Rating: 3})
		assert.NoError(t, err)
	}

	tx.products.AssertExpectations(t)
}

// =====================
// Delete
// =====================

func TestFeedbackUsecase_Delete_Owner_RewindsAggregates(t *testing.T) {
	ctx := context.Background()
	tx := newTxRepos()
	uc, _, _, _, _, _, auditRepo := newFeedbackUsecase(tx)

	tx.feedbacks.On("FindByID", mock.Anything, int64(7)).Return(model.Feedback{
		ID: 7, UserID: 1, ProductID: 20, RatingCategoryID: 5, Rating: 5,
	}, nil)
	tx.ratings.On("DecrementTotal", mock.Anything, int64(5)).Return(nil)
	tx.feedbacks.On("Delete", mock.Anything, int64(7)).Return(nil)

	//最後の1件を消す → total=0, avg=0
	tx.products.On("FindByID", mock.Anything, int64(20)).Return(model.Product{ID: 20, FeedbackTotal: 1}, nil)
	tx.ratings.On("ListByProductID", mock.Anything, int64(20)).Return(fiveBuckets(20, [5]int64{0, 0, 0, 0, 0}), nil)
	tx.products.On("UpdateFeedbackStats", mock.Anything, int64(20), int64(0), 0.0).Return(nil)

	err := uc.Delete(ctx, 1, false, 7)
	assert.NoError(t, err)

	//本人削除は監査ログなし
	auditRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	tx.products.AssertExpectations(t)
}

func TestFeedbackUsecase_Delete_TotalNeverGoesNegative(t *testing.T) {
	ctx := context.Background()
	tx := newTxRepos()
	uc, _, _, _, _, _, _ := newFeedbackUsecase(tx)

	tx.feedbacks.On("FindByID", mock.Anything, int64(7)).Return(model.Feedback{
		ID: 7, UserID: 1, ProductID: 20, RatingCategoryID: 5, Rating: 5,
	}, nil)
	tx.ratings.On("DecrementTotal", mock.Anything, int64(5)).Return(nil)
	tx.feedbacks.On("Delete", mock.Anything, int64(7)).Return(nil)

	//集計が既に0でも-1にしない
	tx.products.On("FindByID", mock.Anything, int64(20)).Return(model.Product{ID: 20, FeedbackTotal: 0}, nil)
	tx.ratings.On("ListByProductID", mock.Anything, int64(20)).Return(fiveBuckets(20, [5]int64{0, 0, 0, 0, 0}), nil)
	tx.products.On("UpdateFeedbackStats", mock.Anything, int64(20), int64(0), 0.0).Return(nil)

	err := uc.Delete(ctx, 1, false, 7)
	assert.NoError(t, err)

	tx.products.AssertExpectations(t)
}

func TestFeedbackUsecase_Delete_AdminModeration_WritesAuditLog(t *testing.T) {
	ctx := context.Background()
	tx := newTxRepos()
	uc, _, _, _, _, _, auditRepo := newFeedbackUsecase(tx)

	//管理者(ID=99)が他人(ID=1)のフィードバックを削除
	tx.feedbacks.On("FindByID", mock.Anything, int64(7)).Return(model.Feedback{
		ID: 7, UserID: 1, ProductID: 20, RatingCategoryID: 5, Rating: 5,
	}, nil)
	tx.ratings.On("DecrementTotal", mock.Anything, int64(5)).Return(nil)
	tx.feedbacks.On("Delete", mock.Anything, int64(7)).Return(nil)
	tx.products.On("FindByID", mock.Anything, int64(20)).Return(model.Product{ID: 20, FeedbackTotal: 1}, nil)
	tx.ratings.On("ListByProductID", mock.Anything, int64(20)).Return(fiveBuckets(20, [5]int64{0, 0, 0, 0, 0}), nil)
	tx.products.On("UpdateFeedbackStats", mock.Anything, int64(20), int64(0), 0.0).Return(nil)

	auditRepo.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionDeleteFeedback && l.ActorUserID == 99 && l.ResourceID == 7
	})).Return(nil)

	err := uc.Delete(ctx, 99, true, 7)
	assert.NoError(t, err)

	auditRepo.AssertExpectations(t)
}

func TestFeedbackUsecase_Delete_OtherUsers_NotFound(t *testing.T) {
	tx := newTxRepos()
	uc, _, _, _, _, _, _ := newFeedbackUsecase(tx)

	tx.feedbacks.On("FindByID", mock.Anything, int64(7)).Return(model.Feedback{ID: 7, UserID: 2}, nil)

	err := uc.Delete(context.Background(), 1, false, 7)
	assertErrContains(t, err, "feedback not found")
}

// =====================
// CanProvideFeedback
// =====================

func TestFeedbackUsecase_CanProvideFeedback_True(t *testing.T) {
	tx := newTxRepos()
	uc, fbRepo, odRepo, orderRepo, _, _, _ := newFeedbackUsecase(tx)

	orderID := int64(10)
	odRepo.On("FindLine", mock.Anything, int64(100), int64(1), int64(20)).Return(model.OrderDetail{
		ID: 100, OrderID: &orderID, UserID: 1, ProductID: 20,
	}, nil)
	orderRepo.On("HasStatus", mock.Anything, orderID, model.OrderStatusDelivered).Return(true, nil)
	fbRepo.On("ExistsForOrderDetail", mock.Anything, int64(100), int64(20)).Return(false, nil)

	can, err := uc.CanProvideFeedback(context.Background(), 1, 20, 100)
	assert.NoError(t, err)
	assert.True(t, can)
}

func TestFeedbackUsecase_CanProvideFeedback_False_WhenAlreadyExists(t *testing.T) {
	tx := newTxRepos()
	uc, fbRepo, odRepo, orderRepo, _, _, _ := newFeedbackUsecase(tx)

	orderID := int64(10)
	odRepo.On("FindLine", mock.Anything, int64(100), int64(1), int64(20)).Return(model.OrderDetail{
		ID: 100, OrderID: &orderID, UserID: 1, ProductID: 20,
	}, nil)
	orderRepo.On("HasStatus", mock.Anything, orderID, model.OrderStatusDelivered).Return(true, nil)
	fbRepo.On("ExistsForOrderDetail", mock.Anything, int64(100), int64(20)).Return(true, nil)

	can, err := uc.CanProvideFeedback(context.Background(), 1, 20, 100)
	assert.NoError(t, err)
	assert.False(t, can)
}

func TestFeedbackUsecase_CanProvideFeedback_False_WhenCartLine(t *testing.T) {
	tx := newTxRepos()
	uc, _, odRepo, _, _, _, _ := newFeedbackUsecase(tx)

	//order_idがnil=まだ注文になっていない
	odRepo.On("FindLine", mock.Anything, int64(100), int64(1), int64(20)).Return(model.OrderDetail{
		ID: 100, OrderID: nil, UserID: 1, ProductID: 20,
	}, nil)

	can, err := uc.CanProvideFeedback(context.Background(), 1, 20, 100)
	assert.NoError(t, err)
	assert.False(t, can)
}

func TestFeedbackUsecase_CanProvideFeedback_False_WhenNotDelivered(t *testing.T) {
	tx := newTxRepos()
	uc, _, odRepo, orderRepo, _, _, _ := newFeedbackUsecase(tx)

	orderID := int64(10)
	odRepo.On("FindLine", mock.Anything, int64(100), int64(1), int64(20)).Return(model.OrderDetail{
		ID: 100, OrderID: &orderID, UserID: 1, ProductID: 20,
	}, nil)
	orderRepo.On("HasStatus", mock.Anything, orderID, model.OrderStatusDelivered).Return(false, nil)

	can, err := uc.CanProvideFeedback(context.Background(), 1, 20, 100)
	assert.NoError(t, err)
	assert.False(t, can)
}

func TestFeedbackUsecase_CanProvideFeedback_False_WhenLineMissing(t *testing.T) {
	tx := newTxRepos()
	uc, _, odRepo, _, _, _, _ := newFeedbackUsecase(tx)

	odRepo.On("FindLine", mock.Anything, int64(100), int64(1), int64(20)).Return(model.OrderDetail{}, repo.ErrNotFound)

	can, err := uc.CanProvideFeedback(context.Background(), 1, 20, 100)
	assert.NoError(t, err)
	assert.False(t, can)
}

// =====================
// GetProductRating
// =====================

func TestFeedbackUsecase_GetProductRating_BucketsAndTotals(t *testing.T) {
	tx := newTxRepos()
	uc, _, _, _, productRepo, rcRepo, _ := newFeedbackUsecase(tx)

	productRepo.On("FindByID", mock.Anything, int64(20)).Return(model.Product{
		ID: 20, FeedbackTotal: 6, AverageRating: 4.0,
	}, nil)
	rcRepo.On("ListByProductID", mock.Anything, int64(20)).Return(fiveBuckets(20, [5]int64{1, 0, 0, 2, 3}), nil)

	out, err := uc.GetProductRating(context.Background(), 20)
	assert.NoError(t, err)
	assert.Equal(t, int64(6), out.FeedbackTotal)
	assert.Equal(t, 4.0, out.AverageRating)
	assert.Equal(t, [5]int64{1, 0, 0, 2, 3}, out.Buckets)

	//バケツの合計とfeedback_totalが一致している
	var sum int64
	for _, n := range out.Buckets {
		sum += n
	}
	assert.Equal(t, out.FeedbackTotal, sum)
}
