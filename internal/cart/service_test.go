package cart

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ElizabetLu/Online-Tech/internal/domain"
	"github.com/ElizabetLu/Online-Tech/internal/session"
	apperrors "github.com/ElizabetLu/Online-Tech/pkg/errors"
)

// --- Mock API ---

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) Cart(ctx context.Context) (*domain.Cart, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockAPI) AddCartLine(ctx context.Context, productID string, quantity int) (*domain.Cart, error) {
	args := m.Called(ctx, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockAPI) UpdateCartLine(ctx context.Context, productID string, quantity int) (*domain.Cart, error) {
	args := m.Called(ctx, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockAPI) RemoveCartLine(ctx context.Context, productID string) (*domain.Cart, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockAPI) ClearCart(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockAPI) ProductByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

// --- Test Helpers ---

func newTestSessions(t *testing.T) *session.Manager {
	t.Helper()
	store, err := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)
	return session.NewManager(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestService(t *testing.T, api *mockAPI) (*Service, *session.Manager) {
	t.Helper()
	sessions := newTestSessions(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(api, sessions, logger), sessions
}

func cartWith(lines ...domain.CartLine) *domain.Cart {
	return &domain.Cart{ID: "cart-1", OwnerID: "user-1", Lines: lines}
}

// --- Tests ---

func TestAddOrIncrement_NewProductOnExistingCart(t *testing.T) {
	api := new(mockAPI)
	svc, sessions := newTestService(t, api)
	ctx := context.Background()

	api.On("Cart", ctx).Return(cartWith(domain.CartLine{ProductID: "p1", Quantity: 1}), nil)
	api.On("AddCartLine", ctx, "p2", 1).
		Return(cartWith(
			domain.CartLine{ProductID: "p1", Quantity: 1},
			domain.CartLine{ProductID: "p2", Quantity: 1},
		), nil)

	cart, err := svc.AddOrIncrement(ctx, "p2", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, cart.ItemCount())

	summary := sessions.CartSummary(ctx)
	assert.Equal(t, 2, summary.ItemCount)
	assert.True(t, summary.HasCart)
	assert.True(t, summary.HasUnseenNotification)
	api.AssertExpectations(t)
}

func TestAddOrIncrement_MergesQuantitiesForExistingLine(t *testing.T) {
	api := new(mockAPI)
	svc, _ := newTestService(t, api)
	ctx := context.Background()

	api.On("Cart", ctx).Return(cartWith(domain.CartLine{ProductID: "p1", Quantity: 1}), nil)
	// One line per product: 1 already in cart + 2 more = an update to 3.
	api.On("UpdateCartLine", ctx, "p1", 3).
		Return(cartWith(domain.CartLine{ProductID: "p1", Quantity: 3}), nil)

	cart, err := svc.AddOrIncrement(ctx, "p1", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, cart.ItemCount())
	api.AssertNotCalled(t, "AddCartLine", mock.Anything, mock.Anything, mock.Anything)
	api.AssertExpectations(t)
}

func TestAddOrIncrement_FallsBackToUpdateWhenCreateConflicts(t *testing.T) {
	for _, sentinel := range []error{apperrors.ErrInvalidInput, apperrors.ErrConflict} {
		api := new(mockAPI)
		svc, _ := newTestService(t, api)
		ctx := context.Background()

		api.On("Cart", ctx).Return(domain.EmptyCart(), nil)
		api.On("AddCartLine", ctx, "p1", 1).Return(nil, sentinel)
		api.On("UpdateCartLine", ctx, "p1", 1).
			Return(cartWith(domain.CartLine{ProductID: "p1", Quantity: 1}), nil)

		cart, err := svc.AddOrIncrement(ctx, "p1", 1)
		require.NoError(t, err, "sentinel %v", sentinel)
		assert.Equal(t, 1, cart.ItemCount())
		api.AssertExpectations(t)
	}
}

func TestAddOrIncrement_FallsBackOnConflictWithNonEmptyCart(t *testing.T) {
	api := new(mockAPI)
	svc, _ := newTestService(t, api)
	ctx := context.Background()

	// A concurrent writer added p2 between our fetch and our create, so the
	// cart we saw (holding only p1) is stale and the create is rejected.
	api.On("Cart", ctx).Return(cartWith(domain.CartLine{ProductID: "p1", Quantity: 2}), nil)
	api.On("AddCartLine", ctx, "p2", 1).Return(nil, apperrors.ErrConflict)
	api.On("UpdateCartLine", ctx, "p2", 1).
		Return(cartWith(
			domain.CartLine{ProductID: "p1", Quantity: 2},
			domain.CartLine{ProductID: "p2", Quantity: 1},
		), nil)

	cart, err := svc.AddOrIncrement(ctx, "p2", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, cart.ItemCount())
	api.AssertExpectations(t)
}

func TestAddOrIncrement_CreateFailureOtherThanConflictSurfaces(t *testing.T) {
	api := new(mockAPI)
	svc, _ := newTestService(t, api)
	ctx := context.Background()

	api.On("Cart", ctx).Return(domain.EmptyCart(), nil)
	api.On("AddCartLine", ctx, "p1", 1).Return(nil, apperrors.ErrInternal)

	_, err := svc.AddOrIncrement(ctx, "p1", 1)
	require.Error(t, err)
	api.AssertNotCalled(t, "UpdateCartLine", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddOrIncrement_RejectsBadInput(t *testing.T) {
	api := new(mockAPI)
	svc, _ := newTestService(t, api)
	ctx := context.Background()

	_, err := svc.AddOrIncrement(ctx, "", 1)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, err = svc.AddOrIncrement(ctx, "p1", 0)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestSetQuantity_RejectsBelowOne(t *testing.T) {
	api := new(mockAPI)
	svc, _ := newTestService(t, api)

	_, err := svc.SetQuantity(context.Background(), "p1", 0)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	api.AssertNotCalled(t, "UpdateCartLine", mock.Anything, mock.Anything, mock.Anything)
}

func TestDecrement_RemovesLineAtQuantityOne(t *testing.T) {
	api := new(mockAPI)
	svc, _ := newTestService(t, api)
	ctx := context.Background()

	api.On("Cart", ctx).Return(cartWith(domain.CartLine{ProductID: "p1", Quantity: 1}), nil)
	api.On("RemoveCartLine", ctx, "p1").Return(domain.EmptyCart(), nil)

	cart, err := svc.Decrement(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	api.AssertNotCalled(t, "UpdateCartLine", mock.Anything, mock.Anything, mock.Anything)
}

func TestDecrement_UnknownLineIsNotFound(t *testing.T) {
	api := new(mockAPI)
	svc, _ := newTestService(t, api)
	ctx := context.Background()

	api.On("Cart", ctx).Return(domain.EmptyCart(), nil)

	_, err := svc.Decrement(ctx, "p1")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestMutations_RejectedWhileAnotherIsInFlight(t *testing.T) {
	api := new(mockAPI)
	svc, _ := newTestService(t, api)
	ctx := context.Background()

	enter := make(chan struct{})
	release := make(chan struct{})
	api.On("Cart", ctx).Run(func(mock.Arguments) {
		close(enter)
		<-release
	}).Return(domain.EmptyCart(), nil)
	api.On("AddCartLine", ctx, "p1", 1).
		Return(cartWith(domain.CartLine{ProductID: "p1", Quantity: 1}), nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.AddOrIncrement(ctx, "p1", 1)
		assert.NoError(t, err)
	}()

	<-enter
	_, err := svc.SetQuantity(ctx, "p2", 1)
	assert.True(t, errors.Is(err, apperrors.ErrMutationInFlight))

	close(release)
	wg.Wait()

	// The guard releases once the first mutation completes.
	api.On("UpdateCartLine", ctx, "p2", 2).
		Return(cartWith(domain.CartLine{ProductID: "p2", Quantity: 2}), nil)
	_, err = svc.SetQuantity(ctx, "p2", 2)
	assert.NoError(t, err)
}

func TestClear_ResetsSummaryAndNotification(t *testing.T) {
	api := new(mockAPI)
	svc, sessions := newTestService(t, api)
	ctx := context.Background()

	require.NoError(t, sessions.SetCartSummary(ctx, 4))
	require.NoError(t, sessions.SetCartNotification(ctx, true))
	api.On("ClearCart", ctx).Return(nil)

	require.NoError(t, svc.Clear(ctx))

	summary := sessions.CartSummary(ctx)
	assert.False(t, summary.HasCart)
	assert.Equal(t, 0, summary.ItemCount)
	assert.False(t, summary.HasUnseenNotification)
}

func TestFetch_SyncsSummaryCount(t *testing.T) {
	api := new(mockAPI)
	svc, sessions := newTestService(t, api)
	ctx := context.Background()

	api.On("Cart", ctx).Return(cartWith(
		domain.CartLine{ProductID: "p1", Quantity: 2},
		domain.CartLine{ProductID: "p2", Quantity: 3},
	), nil)

	cart, err := svc.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, cart.ItemCount())
	assert.Equal(t, 5, sessions.CartSummary(ctx).ItemCount)
}

func TestDetailed_ResolvesProducts(t *testing.T) {
	api := new(mockAPI)
	svc, _ := newTestService(t, api)
	ctx := context.Background()

	api.On("Cart", ctx).Return(cartWith(
		domain.CartLine{ProductID: "p1", Quantity: 2},
		domain.CartLine{ProductID: "p2", Quantity: 1},
	), nil)
	api.On("ProductByID", mock.Anything, "p1").
		Return(&domain.Product{ID: "p1", Title: "Keyboard"}, nil)
	api.On("ProductByID", mock.Anything, "p2").
		Return(&domain.Product{ID: "p2", Title: "Mouse"}, nil)

	_, lines, err := svc.Detailed(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "Keyboard", lines[0].Product.Title)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "Mouse", lines[1].Product.Title)
}

func TestDetailed_EmptyCartSkipsLookups(t *testing.T) {
	api := new(mockAPI)
	svc, _ := newTestService(t, api)
	ctx := context.Background()

	api.On("Cart", ctx).Return(domain.EmptyCart(), nil)

	cart, lines, err := svc.Detailed(ctx)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.Empty(t, lines)
	api.AssertNotCalled(t, "ProductByID", mock.Anything, mock.Anything)
}
