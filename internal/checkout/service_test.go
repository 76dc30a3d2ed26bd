package checkout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ElizabetLu/Online-Tech/internal/domain"
	"github.com/ElizabetLu/Online-Tech/internal/session"
	apperrors "github.com/ElizabetLu/Online-Tech/pkg/errors"
)

// --- Mocks ---

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) Checkout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockCarts struct {
	mock.Mock
}

func (m *mockCarts) Detailed(ctx context.Context) (*domain.Cart, []domain.DetailedLine, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Cart), args.Get(1).([]domain.DetailedLine), args.Error(2)
}

// --- Test Helpers ---

func newTestService(t *testing.T, api *mockAPI, carts *mockCarts) (*Service, *session.Manager) {
	t.Helper()
	store, err := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := session.NewManager(store, logger)
	return NewService(api, carts, sessions, logger), sessions
}

func stockedCart() (*domain.Cart, []domain.DetailedLine) {
	cart := &domain.Cart{
		ID: "cart-1",
		Lines: []domain.CartLine{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 1},
		},
	}
	lines := []domain.DetailedLine{
		{Product: domain.Product{ID: "p1", Title: "Keyboard", Price: domain.Price{Current: 40, Currency: "USD"}}, Quantity: 2},
		{Product: domain.Product{ID: "p2", Title: "Mouse", Price: domain.Price{Current: 20, Currency: "USD"}}, Quantity: 1},
	}
	return cart, lines
}

// --- Tests ---

func TestShippingRate(t *testing.T) {
	tests := []struct {
		method string
		want   float64
	}{
		{domain.ShippingStandard, 15},
		{domain.ShippingExpress, 30},
		{domain.ShippingOvernight, 50},
	}
	for _, tt := range tests {
		rate, err := ShippingRate(tt.method)
		require.NoError(t, err)
		assert.Equal(t, tt.want, rate)
	}

	_, err := ShippingRate("teleport")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestSummarize_PricesCartWithShipping(t *testing.T) {
	api := new(mockAPI)
	carts := new(mockCarts)
	svc, _ := newTestService(t, api, carts)
	ctx := context.Background()

	cart, lines := stockedCart()
	carts.On("Detailed", ctx).Return(cart, lines, nil)

	summary, err := svc.Summarize(ctx, domain.ShippingExpress)
	require.NoError(t, err)
	assert.Equal(t, 100.0, summary.Subtotal)
	assert.Equal(t, 30.0, summary.Shipping)
	assert.Equal(t, 130.0, summary.Total)
	assert.Equal(t, "USD", summary.Currency)
}

func TestSummarize_EmptyCartIsRejected(t *testing.T) {
	api := new(mockAPI)
	carts := new(mockCarts)
	svc, _ := newTestService(t, api, carts)
	ctx := context.Background()

	carts.On("Detailed", ctx).Return(domain.EmptyCart(), []domain.DetailedLine{}, nil)

	_, err := svc.Summarize(ctx, domain.ShippingStandard)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestPlaceOrder_RecordsReceiptAndResetsSummary(t *testing.T) {
	api := new(mockAPI)
	carts := new(mockCarts)
	svc, sessions := newTestService(t, api, carts)
	ctx := context.Background()

	require.NoError(t, sessions.SetCartSummary(ctx, 3))
	require.NoError(t, sessions.SetCartNotification(ctx, true))

	cart, lines := stockedCart()
	carts.On("Detailed", ctx).Return(cart, lines, nil)
	api.On("Checkout", ctx).Return(nil)

	order, err := svc.PlaceOrder(ctx, "card", domain.ShippingStandard)
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, 115.0, order.Total)
	assert.Equal(t, "card", order.PaymentMethod)
	assert.False(t, order.CreatedAt.IsZero())

	ledger := sessions.Orders(ctx)
	require.Len(t, ledger, 1)
	assert.Equal(t, order.ID, ledger[0].ID)

	summary := sessions.CartSummary(ctx)
	assert.False(t, summary.HasCart)
	assert.Equal(t, 0, summary.ItemCount)
	assert.False(t, summary.HasUnseenNotification)
}

func TestPlaceOrder_RemoteFailureRecordsNothing(t *testing.T) {
	api := new(mockAPI)
	carts := new(mockCarts)
	svc, sessions := newTestService(t, api, carts)
	ctx := context.Background()

	cart, lines := stockedCart()
	carts.On("Detailed", ctx).Return(cart, lines, nil)
	api.On("Checkout", ctx).Return(apperrors.ErrServiceUnavail)

	_, err := svc.PlaceOrder(ctx, "card", domain.ShippingStandard)
	require.Error(t, err)
	assert.Empty(t, sessions.Orders(ctx))
}

func TestPlaceOrder_ValidatesInput(t *testing.T) {
	api := new(mockAPI)
	carts := new(mockCarts)
	svc, _ := newTestService(t, api, carts)
	ctx := context.Background()

	_, err := svc.PlaceOrder(ctx, "", domain.ShippingStandard)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, err = svc.PlaceOrder(ctx, "card", "carrier-pigeon")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	api.AssertNotCalled(t, "Checkout", mock.Anything)
}

func TestOrders_NewestFirst(t *testing.T) {
	api := new(mockAPI)
	carts := new(mockCarts)
	svc, sessions := newTestService(t, api, carts)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, sessions.AppendOrder(ctx, domain.Order{ID: "older", CreatedAt: now.Add(-time.Hour)}))
	require.NoError(t, sessions.AppendOrder(ctx, domain.Order{ID: "newer", CreatedAt: now}))

	orders := svc.Orders(ctx)
	require.Len(t, orders, 2)
	assert.Equal(t, "newer", orders[0].ID)
	assert.Equal(t, "older", orders[1].ID)
}
