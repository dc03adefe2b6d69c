package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// フィードバックのライフサイクル（作成・編集・削除）と資格判定。
// 書き込み系は1操作=1トランザクションで、最後に必ず集計を出し直す。
type FeedbackUsecase struct {
	tx           repo.TransactionManager
	feedbackRepo repo.FeedbackRepository
	odRepo       repo.OrderDetailRepository
	orderRepo    repo.OrderRepository
	productRepo  repo.ProductRepository
	rcRepo       repo.RatingCategoryRepository
	auditRepo    repo.AuditLogRepository
}

func NewFeedbackUsecase(
	tx repo.TransactionManager,
	feedbackRepo repo.FeedbackRepository,
	odRepo repo.OrderDetailRepository,
	orderRepo repo.OrderRepository,
	productRepo repo.ProductRepository,
	rcRepo repo.RatingCategoryRepository,
	auditRepo repo.AuditLogRepository,
) *FeedbackUsecase {
	return &FeedbackUsecase{
		tx:           tx,
		feedbackRepo: feedbackRepo,
		odRepo:       odRepo,
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		rcRepo:       rcRepo,
		auditRepo:    auditRepo,
	}
}

type CreateFeedbackInput struct {
	OrderID   int64
	ProductID int64
	Content   string
	Rating    int
}

type UpdateFeedbackInput struct {
	Content string
	Rating  int
}

type FeedbackOutput struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	ProductID     int64     `json:"product_id"`
	OrderDetailID int64     `json:"order_detail_id"`
	Content       string    `json:"content"`
	Rating        int       `json:"rating"`
	CreatedAt     time.Time `json:"created_at"`
}

type ProductRatingOutput struct {
	ProductID     int64   `json:"product_id"`
	FeedbackTotal int64   `json:"feedback_total"`
	AverageRating float64 `json:"average_rating"`

	//星ごとの件数（index 0 = 1 Star）
	Buckets [model.MaxRating]int64 `json:"buckets"`
}

// フィードバック作成。
// 届いた注文（DELIVEREDイベントあり）の明細に対してだけ作れる。
func (u *FeedbackUsecase) Create(ctx context.Context, userID int64, in CreateFeedbackInput) (FeedbackOutput, error) {
	if userID <= 0 {
		return FeedbackOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.OrderID <= 0 || in.ProductID <= 0 {
		return FeedbackOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if !model.IsValidRating(in.Rating) {
		return FeedbackOutput{}, NewHTTPError(http.StatusBadRequest, "invalid rating")
	}

	content := strings.TrimSpace(in.Content)

	var out FeedbackOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//注文をステータス履歴・明細込みで取得（他人の注文は存在しない扱い）
		order, err := r.Orders().FindByIDForUser(ctx, in.OrderID, userID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//配達済みか
		if !order.HasStatus(model.OrderStatusDelivered) {
			return NewHTTPError(http.StatusBadRequest, "order not delivered yet")
		}

		//注文の中にこの商品の明細があるか
		var detail *model.OrderDetail
		for i := range order.Details {
			if order.Details[i].ProductID == in.ProductID {
				detail = &order.Details[i]
				break
			}
		}
		if detail == nil {
			return NewHTTPError(http.StatusBadRequest, "product not in order")
		}

		//同じ明細への2件目は作れない
		exists, err := r.Feedbacks().ExistsForOrderDetail(ctx, detail.ID, in.ProductID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if exists {
			return NewHTTPError(http.StatusConflict, "feedback already exists")
		}

		//5バケツが無ければ作る（既にあれば何もしない）
		if err := r.RatingCategories().EnsureForProduct(ctx, in.ProductID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//ratingに合うバケツを解決
		bucket, err := r.RatingCategories().FindByProductAndStars(ctx, in.ProductID, in.Rating)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusBadRequest, "invalid rating")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//フィードバック本体を作成
		created, err := r.Feedbacks().Create(ctx, model.Feedback{
			UserID:           userID,
			ProductID:        in.ProductID,
			OrderDetailID:    detail.ID,
			RatingCategoryID: bucket.ID,
			Content:          content,
			Rating:           in.Rating,
			CreatedAt:        time.Now(),
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//バケツ件数+1
		if err := r.RatingCategories().IncrementTotal(ctx, bucket.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//集計を出し直す
		if err := recomputeProductStats(ctx, r, in.ProductID, 1); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toFeedbackOutput(created)
		return nil
	})

	if err != nil {
		return FeedbackOutput{}, err
	}
	return out, nil
}

// フィードバック編集。contentは常に上書き。
// ratingが変わったら旧バケツ-1・新バケツ+1して参照を付け替える。
func (u *FeedbackUsecase) Update(ctx context.Context, userID int64, feedbackID int64, in UpdateFeedbackInput) (FeedbackOutput, error) {
	if userID <= 0 {
		return FeedbackOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if feedbackID <= 0 {
		return FeedbackOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if !model.IsValidRating(in.Rating) {
		return FeedbackOutput{}, NewHTTPError(http.StatusBadRequest, "invalid rating")
	}

	var out FeedbackOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		fb, err := r.Feedbacks().FindByID(ctx, feedbackID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "feedback not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//他人のフィードバックは存在しない扱い
		if fb.UserID != userID {
			return NewHTTPError(http.StatusNotFound, "feedback not found")
		}

		oldRating := fb.Rating
		fb.Content = strings.TrimSpace(in.Content)
		fb.Rating = in.Rating

		if in.Rating != oldRating {
			//旧バケツから1件引く（0未満にはならない）
			if err := r.RatingCategories().DecrementTotal(ctx, fb.RatingCategoryID); err != nil && err != repo.ErrNotFound {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			//新しいratingのバケツへ
			newBucket, err := r.RatingCategories().FindByProductAndStars(ctx, fb.ProductID, in.Rating)
			if err == nil {
				if err := r.RatingCategories().IncrementTotal(ctx, newBucket.ID); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				fb.RatingCategoryID = newBucket.ID
			} else if err != repo.ErrNotFound {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			//バケツが見つからない場合は参照を付け替えない（この層では許容するズレ）
		}

		if err := r.Feedbacks().Update(ctx, fb); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//編集では件数は動かさず、平均だけ出し直す
		if err := recomputeProductStats(ctx, r, fb.ProductID, 0); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toFeedbackOutput(fb)
		return nil
	})

	if err != nil {
		return FeedbackOutput{}, err
	}
	return out, nil
}

// フィードバック削除。バケツと集計を巻き戻す。
// isAdmin=trueなら他人のフィードバックも消せる（管理者のモデレーション）。
func (u *FeedbackUsecase) Delete(ctx context.Context, userID int64, isAdmin bool, feedbackID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if feedbackID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		fb, err := r.Feedbacks().FindByID(ctx, feedbackID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "feedback not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if !isAdmin && fb.UserID != userID {
			return NewHTTPError(http.StatusNotFound, "feedback not found")
		}

		//バケツから1件引く
		if err := r.RatingCategories().DecrementTotal(ctx, fb.RatingCategoryID); err != nil && err != repo.ErrNotFound {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.Feedbacks().Delete(ctx, fb.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//削除なので件数を1件巻き戻す
		if err := recomputeProductStats(ctx, r, fb.ProductID, -1); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//管理者のモデレーションは監査ログに残す
		if isAdmin && fb.UserID != userID {
			if err := u.auditRepo.Create(ctx, model.AuditLog{
				ActorUserID:  userID,
				Action:       model.AuditActionDeleteFeedback,
				ResourceType: model.AuditResourceFeedback,
				ResourceID:   fb.ID,
				BeforeJSON:   feedbackAuditJSON(fb),
				CreatedAt:    time.Now(),
			}); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		return nil
	})
}

// 「このユーザーがこの注文明細の商品にフィードバックを書けるか」。
// 読み取り専用。UI側の出し分けにも使う。
func (u *FeedbackUsecase) CanProvideFeedback(ctx context.Context, userID int64, productID int64, orderDetailID int64) (bool, error) {
	if userID <= 0 || productID <= 0 || orderDetailID <= 0 {
		return false, nil
	}

	//（明細・ユーザー・商品）が一致する行があるか
	detail, err := u.odRepo.FindLine(ctx, orderDetailID, userID, productID)
	if err == repo.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//カート行（注文前）は対象外
	if detail.OrderID == nil {
		return false, nil
	}

	//配達済みか
	delivered, err := u.orderRepo.HasStatus(ctx, *detail.OrderID, model.OrderStatusDelivered)
	if err != nil {
		return false, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !delivered {
		return false, nil
	}

	//既にフィードバック済みなら不可
	exists, err := u.feedbackRepo.ExistsForOrderDetail(ctx, orderDetailID, productID)
	if err != nil {
		return false, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return !exists, nil
}

func (u *FeedbackUsecase) GetByID(ctx context.Context, feedbackID int64) (FeedbackOutput, error) {
	if feedbackID <= 0 {
		return FeedbackOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	fb, err := u.feedbackRepo.FindByID(ctx, feedbackID)
	if err == repo.ErrNotFound {
		return FeedbackOutput{}, NewHTTPError(http.StatusNotFound, "feedback not found")
	}
	if err != nil {
		return FeedbackOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toFeedbackOutput(fb), nil
}

func (u *FeedbackUsecase) ListByProduct(ctx context.Context, productID int64) ([]FeedbackOutput, error) {
	if productID <= 0 {
		return []FeedbackOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	items, err := u.feedbackRepo.ListByProductID(ctx, productID)
	if err != nil {
		return []FeedbackOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toFeedbackOutputs(items), nil
}

func (u *FeedbackUsecase) ListByUser(ctx context.Context, userID int64) ([]FeedbackOutput, error) {
	if userID <= 0 {
		return []FeedbackOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	items, err := u.feedbackRepo.ListByUserID(ctx, userID)
	if err != nil {
		return []FeedbackOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toFeedbackOutputs(items), nil
}

// 新着フィードバック（管理画面用）
func (u *FeedbackUsecase) ListRecent(ctx context.Context, count int) ([]FeedbackOutput, error) {
	if count < 1 || count > 100 {
		return []FeedbackOutput{}, NewHTTPError(http.StatusBadRequest, "invalid count")
	}

	items, err := u.feedbackRepo.ListRecent(ctx, count)
	if err != nil {
		return []FeedbackOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toFeedbackOutputs(items), nil
}

// 商品の集計（平均・件数・星ごとの内訳）
func (u *FeedbackUsecase) GetProductRating(ctx context.Context, productID int64) (ProductRatingOutput, error) {
	if productID <= 0 {
		return ProductRatingOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return ProductRatingOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return ProductRatingOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := ProductRatingOutput{
		ProductID:     p.ID,
		FeedbackTotal: p.FeedbackTotal,
		AverageRating: p.AverageRating,
	}

	buckets, err := u.rcRepo.ListByProductID(ctx, productID)
	if err != nil {
		return ProductRatingOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	for _, b := range buckets {
		if b.Stars >= model.MinRating && b.Stars <= model.MaxRating {
			out.Buckets[b.Stars-1] = b.TotalRatings
		}
	}

	return out, nil
}

func feedbackAuditJSON(f model.Feedback) string {
	b, err := json.Marshal(map[string]interface{}{
		"user_id":    f.UserID,
		"product_id": f.ProductID,
		"rating":     f.Rating,
		"content":    f.Content,
	})
	if err != nil {
		return ""
	}
	return string(b)
}

func toFeedbackOutput(f model.Feedback) FeedbackOutput {
	return FeedbackOutput{
		ID:            f.ID,
		UserID:        f.UserID,
		ProductID:     f.ProductID,
		OrderDetailID: f.OrderDetailID,
		Content:       f.Content,
		Rating:        f.Rating,
		CreatedAt:     f.CreatedAt,
	}
}

func toFeedbackOutputs(items []model.Feedback) []FeedbackOutput {
	outs := make([]FeedbackOutput, 0, len(items))
	for _, f := range items {
		outs = append(outs, toFeedbackOutput(f))
	}
	return outs
}
