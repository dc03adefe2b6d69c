package model_test

import (
	"fmt"
	"testing"

	"app/internal/domain/model"

	"github.com/stretchr/testify/assert"
)

func TestNewRatingBuckets_FiveZeroedBuckets(t *testing.T) {
	buckets := model.NewRatingBuckets(42)

	assert.Equal(t, 5, len(buckets))
	for i, b := range buckets {
		assert.Equal(t, int64(42), b.ProductID)
		assert.Equal(t, i+1, b.Stars)
		assert.Equal(t, fmt.Sprintf("%d Star", i+1), b.Name)
		assert.Equal(t, int64(0), b.TotalRatings)
	}
}

func TestAverageRating_Empty(t *testing.T) {
	assert.Equal(t, 0.0, model.AverageRating(nil))
	assert.Equal(t, 0.0, model.AverageRating(model.NewRatingBuckets(1)))
}

func TestAverageRating_Weighted(t *testing.T) {
	buckets := model.NewRatingBuckets(1)
	buckets[0].TotalRatings = 1 // 1 Star x1
	buckets[4].TotalRatings = 3 // 5 Star x3

	// (1*1 + 5*3) / 4 = 4.0
	assert.Equal(t, 4.0, model.AverageRating(buckets))
}

func TestAverageRating_SingleFeedback(t *testing.T) {
	buckets := model.NewRatingBuckets(1)
	buckets[2].TotalRatings = 1

	assert.Equal(t, 3.0, model.AverageRating(buckets))
}

func TestIsValidRating(t *testing.T) {
	for rating := 1; rating <= 5; rating++ {
		assert.True(t, model.IsValidRating(rating))
	}
	assert.False(t, model.IsValidRating(0))
	assert.False(t, model.IsValidRating(6))
	assert.False(t, model.IsValidRating(-1))
}

func TestOrder_HasStatus(t *testing.T) {
	o := model.Order{
		Statuses: []model.OrderStatusEvent{
			{Status: model.OrderStatusPending},
			{Status: model.OrderStatusDelivered},
		},
	}

	assert.True(t, o.HasStatus(model.OrderStatusDelivered))
	assert.True(t, o.HasStatus(model.OrderStatusPending))
	assert.False(t, o.HasStatus(model.OrderStatusCanceled))
}

func TestOrderDetail_IsCartLine(t *testing.T) {
	orderID := int64(1)

	assert.True(t, model.OrderDetail{OrderID: nil}.IsCartLine())
	assert.False(t, model.OrderDetail{OrderID: &orderID}.IsCartLine())
}
