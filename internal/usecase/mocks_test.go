package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProductRepoMock) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ProductRepoMock) SetStock(ctx context.Context, productID int64, newStock int64) error {
	args := m.Called(ctx, productID, newStock)
	return args.Error(0)
}

func (m *ProductRepoMock) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	args := m.Called(ctx, productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *ProductRepoMock) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	args := m.Called(ctx, productID, qty)
	return args.Error(0)
}

func (m *ProductRepoMock) UpdateFeedbackStats(ctx context.Context, productID int64, feedbackTotal int64, averageRating float64) error {
	args := m.Called(ctx, productID, feedbackTotal, averageRating)
	return args.Error(0)
}

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindByIDForUser(ctx context.Context, orderID int64, userID int64) (model.Order, error) {
	args := m.Called(ctx, orderID, userID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) AppendStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) HasStatus(ctx context.Context, orderID int64, status model.OrderStatus) (bool, error) {
	args := m.Called(ctx, orderID, status)
	return args.Bool(0), args.Error(1)
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Get(1).(int64), args.Error(2)
}

type OrderDetailRepoMock struct{ mock.Mock }

func (m *OrderDetailRepoMock) FindByID(ctx context.Context, orderDetailID int64) (model.OrderDetail, error) {
	args := m.Called(ctx, orderDetailID)
	d, _ := args.Get(0).(model.OrderDetail)
	return d, args.Error(1)
}

func (m *OrderDetailRepoMock) FindCartLine(ctx context.Context, userID int64, productID int64) (model.OrderDetail, error) {
	args := m.Called(ctx, userID, productID)
	d, _ := args.Get(0).(model.OrderDetail)
	return d, args.Error(1)
}

func (m *OrderDetailRepoMock) ListCart(ctx context.Context, userID int64) ([]model.OrderDetail, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.OrderDetail)
	return items, args.Error(1)
}

func (m *OrderDetailRepoMock) Create(ctx context.Context, d model.OrderDetail) (model.OrderDetail, error) {
	args := m.Called(ctx, d)
	created, _ := args.Get(0).(model.OrderDetail)
	return created, args.Error(1)
}

func (m *OrderDetailRepoMock) UpdateQuantity(ctx context.Context, orderDetailID int64, qty int64) error {
	args := m.Called(ctx, orderDetailID, qty)
	return args.Error(0)
}

func (m *OrderDetailRepoMock) DeleteByID(ctx context.Context, orderDetailID int64) error {
	args := m.Called(ctx, orderDetailID)
	return args.Error(0)
}

func (m *OrderDetailRepoMock) IsOwnedByUser(ctx context.Context, orderDetailID int64, userID int64) (bool, error) {
	args := m.Called(ctx, orderDetailID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *OrderDetailRepoMock) AttachToOrder(ctx context.Context, orderDetailIDs []int64, orderID int64) error {
	args := m.Called(ctx, orderDetailIDs, orderID)
	return args.Error(0)
}

func (m *OrderDetailRepoMock) FindLine(ctx context.Context, orderDetailID int64, userID int64, productID int64) (model.OrderDetail, error) {
	args := m.Called(ctx, orderDetailID, userID, productID)
	d, _ := args.Get(0).(model.OrderDetail)
	return d, args.Error(1)
}

func (m *OrderDetailRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderDetail, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderDetail)
	return items, args.Error(1)
}

type RatingCategoryRepoMock struct{ mock.Mock }

func (m *RatingCategoryRepoMock) EnsureForProduct(ctx context.Context, productID int64) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *RatingCategoryRepoMock) ListByProductID(ctx context.Context, productID int64) ([]model.RatingCategory, error) {
	args := m.Called(ctx, productID)
	items, _ := args.Get(0).([]model.RatingCategory)
	return items, args.Error(1)
}

func (m *RatingCategoryRepoMock) FindByProductAndStars(ctx context.Context, productID int64, stars int) (model.RatingCategory, error) {
	args := m.Called(ctx, productID, stars)
	rc, _ := args.Get(0).(model.RatingCategory)
	return rc, args.Error(1)
}

func (m *RatingCategoryRepoMock) IncrementTotal(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *RatingCategoryRepoMock) DecrementTotal(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type FeedbackRepoMock struct{ mock.Mock }

func (m *FeedbackRepoMock) Create(ctx context.Context, f model.Feedback) (model.Feedback, error) {
	args := m.Called(ctx, f)
	created, _ := args.Get(0).(model.Feedback)
	return created, args.Error(1)
}

func (m *FeedbackRepoMock) FindByID(ctx context.Context, feedbackID int64) (model.Feedback, error) {
	args := m.Called(ctx, feedbackID)
	f, _ := args.Get(0).(model.Feedback)
	return f, args.Error(1)
}

func (m *FeedbackRepoMock) Update(ctx context.Context, f model.Feedback) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *FeedbackRepoMock) Delete(ctx context.Context, feedbackID int64) error {
	args := m.Called(ctx, feedbackID)
	return args.Error(0)
}

func (m *FeedbackRepoMock) ListByProductID(ctx context.Context, productID int64) ([]model.Feedback, error) {
	args := m.Called(ctx, productID)
	items, _ := args.Get(0).([]model.Feedback)
	return items, args.Error(1)
}

func (m *FeedbackRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Feedback, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.Feedback)
	return items, args.Error(1)
}

func (m *FeedbackRepoMock) ListRecent(ctx context.Context, count int) ([]model.Feedback, error) {
	args := m.Called(ctx, count)
	items, _ := args.Get(0).([]model.Feedback)
	return items, args.Error(1)
}

func (m *FeedbackRepoMock) ExistsForOrderDetail(ctx context.Context, orderDetailID int64, productID int64) (bool, error) {
	args := m.Called(ctx, orderDetailID, productID)
	return args.Bool(0), args.Error(1)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	items, _ := args.Get(0).([]model.AuditLog)
	return items, args.Error(1)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByPhoneNumber(ctx context.Context, phone string) (*model.User, error) {
	args := m.Called(ctx, phone)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) Delete(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *UserRepoMock) List(ctx context.Context, page int, limit int) ([]model.User, int64, error) {
	args := m.Called(ctx, page, limit)
	items, _ := args.Get(0).([]model.User)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *UserRepoMock) IncrementTokenVersion(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type RefreshTokenRepoMock struct{ mock.Mock }

func (m *RefreshTokenRepoMock) Create(ctx context.Context, token *model.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *RefreshTokenRepoMock) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	rt, _ := args.Get(0).(*model.RefreshToken)
	return rt, args.Error(1)
}

func (m *RefreshTokenRepoMock) MarkUsed(ctx context.Context, tokenID string, usedAt time.Time) error {
	args := m.Called(ctx, tokenID, usedAt)
	return args.Error(0)
}

func (m *RefreshTokenRepoMock) Revoke(ctx context.Context, tokenID string, revokedAt time.Time) error {
	args := m.Called(ctx, tokenID, revokedAt)
	return args.Error(0)
}

func (m *RefreshTokenRepoMock) DeleteAllByUserID(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *RefreshTokenRepoMock) DeleteByID(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

// =====================
// Txスタブ
// =====================

type txRepos struct {
	orders    *OrderRepoMock
	details   *OrderDetailRepoMock
	products  *ProductRepoMock
	ratings   *RatingCategoryRepoMock
	feedbacks *FeedbackRepoMock
}

func newTxRepos() txRepos {
	return txRepos{
		orders:    new(OrderRepoMock),
		details:   new(OrderDetailRepoMock),
		products:  new(ProductRepoMock),
		ratings:   new(RatingCategoryRepoMock),
		feedbacks: new(FeedbackRepoMock),
	}
}

func (r txRepos) Orders() repo.OrderRepository                    { return r.orders }
func (r txRepos) OrderDetails() repo.OrderDetailRepository        { return r.details }
func (r txRepos) Products() repo.ProductRepository                { return r.products }
func (r txRepos) RatingCategories() repo.RatingCategoryRepository { return r.ratings }
func (r txRepos) Feedbacks() repo.FeedbackRepository              { return r.feedbacks }

// WithinTxをそのまま実行するスタブ（rollbackは模さない）
type txManagerStub struct{ repos txRepos }

func (t txManagerStub) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(t.repos)
}

// =====================
// Helpers
// =====================

func assertErrContains(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", want)
	}
	if !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error containing %q, got %q", want, err.Error())
	}
}
