package model

import (
	"fmt"
	"time"
)

// 星の数は必ず1〜5の5段階
const (
	MinRating = 1
	MaxRating = 5
)

// 商品ごとの星バケツ。star値ごとに「その星のフィードバック件数」を数える。
// 5個セットで遅延作成される（最初のフィードバック時にまとめて作る）。
type RatingCategory struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64  `gorm:"not null;uniqueIndex:idx_rating_product_stars" json:"product_id"`
	Stars     int    `gorm:"not null;uniqueIndex:idx_rating_product_stars" json:"stars"`
	Name      string `gorm:"type:varchar(20);not null" json:"name"`

	//この星に付いている件数。負にはならない
	TotalRatings int64 `gorm:"not null;default:0" json:"total_ratings"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// 商品の5バケツをゼロ件で作る（"1 Star"〜"5 Star"）
func NewRatingBuckets(productID int64) []RatingCategory {
	buckets := make([]RatingCategory, 0, MaxRating)
	for stars := MinRating; stars <= MaxRating; stars++ {
		buckets = append(buckets, RatingCategory{
			ProductID:    productID,
			Stars:        stars,
			Name:         fmt.Sprintf("%d Star", stars),
			TotalRatings: 0,
		})
	}
	return buckets
}

// バケツ件数から加重平均を出す。
// 件数ゼロなら0。保存済みの平均は信用せず、常にここで出し直す。
func AverageRating(buckets []RatingCategory) float64 {
	var weighted int64
	var total int64

	for _, b := range buckets {
		weighted += int64(b.Stars) * b.TotalRatings
		total += b.TotalRatings
	}

	if total == 0 {
		return 0
	}
	return float64(weighted) / float64(total)
}

// 有効なratingか（1〜5）
func IsValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}
