package review

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
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

func (m *mockAPI) ProductByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockAPI) RateProduct(ctx context.Context, productID string, rate int) error {
	args := m.Called(ctx, productID, rate)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestService(t *testing.T, api *mockAPI) (*Service, *session.Manager) {
	t.Helper()
	store, err := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := session.NewManager(store, logger)
	return NewService(api, sessions, logger), sessions
}

func signIn(t *testing.T, sessions *session.Manager, userID string) {
	t.Helper()
	require.NoError(t, sessions.SetUser(context.Background(), &domain.User{
		ID:        userID,
		FirstName: "Ada",
		LastName:  "Lovelace",
	}))
}

func recordPurchase(t *testing.T, sessions *session.Manager, productIDs ...string) {
	t.Helper()
	lines := make([]domain.DetailedLine, len(productIDs))
	for i, id := range productIDs {
		lines[i] = domain.DetailedLine{Product: domain.Product{ID: id}, Quantity: 1}
	}
	require.NoError(t, sessions.AppendOrder(context.Background(), domain.Order{ID: "o-" + productIDs[0], Lines: lines}))
}

// --- Tests ---

func TestSubmit_RecordsReviewAndPushesRating(t *testing.T) {
	api := new(mockAPI)
	svc, sessions := newTestService(t, api)
	ctx := context.Background()

	signIn(t, sessions, "user-1")
	recordPurchase(t, sessions, "p1")
	api.On("ProductByID", ctx, "p1").Return(&domain.Product{
		ID:       "p1",
		Title:    "Keyboard",
		Category: domain.Category{Name: "Peripherals"},
	}, nil)
	api.On("RateProduct", ctx, "p1", 5).Return(nil)

	review, err := svc.Submit(ctx, "p1", 5, "Great keys")
	require.NoError(t, err)
	assert.NotEmpty(t, review.ID)
	assert.Equal(t, "Keyboard", review.ProductTitle)
	assert.Equal(t, "Ada Lovelace", review.AuthorName)
	assert.Equal(t, "user-1", review.AuthorID)

	ledger := sessions.Reviews(ctx)
	require.Len(t, ledger, 1)
	assert.Equal(t, review.ID, ledger[0].ID)
	api.AssertExpectations(t)
}

func TestSubmit_DefaultsEmptyText(t *testing.T) {
	api := new(mockAPI)
	svc, sessions := newTestService(t, api)
	ctx := context.Background()

	signIn(t, sessions, "user-1")
	recordPurchase(t, sessions, "p1")
	api.On("ProductByID", ctx, "p1").Return(&domain.Product{ID: "p1"}, nil)
	api.On("RateProduct", ctx, "p1", 4).Return(nil)

	review, err := svc.Submit(ctx, "p1", 4, "   ")
	require.NoError(t, err)
	assert.Equal(t, "No comment provided", review.Text)
}

func TestSubmit_RemoteRatingFailureIsSwallowed(t *testing.T) {
	api := new(mockAPI)
	svc, sessions := newTestService(t, api)
	ctx := context.Background()

	signIn(t, sessions, "user-1")
	recordPurchase(t, sessions, "p1")
	api.On("ProductByID", ctx, "p1").Return(&domain.Product{ID: "p1"}, nil)
	api.On("RateProduct", ctx, "p1", 5).Return(apperrors.ErrServiceUnavail)

	_, err := svc.Submit(ctx, "p1", 5, "still recorded")
	require.NoError(t, err)
	assert.Len(t, sessions.Reviews(ctx), 1)
}

func TestSubmit_RequiresPurchase(t *testing.T) {
	api := new(mockAPI)
	svc, sessions := newTestService(t, api)
	ctx := context.Background()

	signIn(t, sessions, "user-1")

	_, err := svc.Submit(ctx, "p1", 5, "never bought it")
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
	api.AssertNotCalled(t, "RateProduct", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_RequiresSignIn(t *testing.T) {
	api := new(mockAPI)
	svc, _ := newTestService(t, api)

	_, err := svc.Submit(context.Background(), "p1", 5, "")
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

func TestSubmit_RejectsOutOfRangeRating(t *testing.T) {
	api := new(mockAPI)
	svc, _ := newTestService(t, api)

	for _, score := range []int{0, 6, -1} {
		_, err := svc.Submit(context.Background(), "p1", score, "")
		assert.True(t, errors.Is(err, apperrors.ErrInvalidInput), "score %d", score)
	}
}

func TestEdit_OnlyAuthorMayEdit(t *testing.T) {
	api := new(mockAPI)
	svc, sessions := newTestService(t, api)
	ctx := context.Background()

	require.NoError(t, sessions.SaveReviews(ctx, []domain.Review{
		{ID: "r1", ProductID: "p1", AuthorID: "someone-else", Rating: 2, Text: "meh"},
	}))
	signIn(t, sessions, "user-1")

	_, err := svc.Edit(ctx, "r1", 5, "mine now")
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
}

func TestEdit_UpdatesOwnReview(t *testing.T) {
	api := new(mockAPI)
	svc, sessions := newTestService(t, api)
	ctx := context.Background()

	require.NoError(t, sessions.SaveReviews(ctx, []domain.Review{
		{ID: "r1", ProductID: "p1", AuthorID: "user-1", Rating: 2, Text: "meh"},
	}))
	signIn(t, sessions, "user-1")

	updated, err := svc.Edit(ctx, "r1", 4, "better than I thought")
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Rating)
	assert.Equal(t, "better than I thought", updated.Text)

	ledger := sessions.Reviews(ctx)
	require.Len(t, ledger, 1)
	assert.Equal(t, 4, ledger[0].Rating)
}

func TestDelete_RemovesOwnReview(t *testing.T) {
	api := new(mockAPI)
	svc, sessions := newTestService(t, api)
	ctx := context.Background()

	require.NoError(t, sessions.SaveReviews(ctx, []domain.Review{
		{ID: "r1", AuthorID: "user-1"},
		{ID: "r2", AuthorID: "user-1"},
	}))
	signIn(t, sessions, "user-1")

	require.NoError(t, svc.Delete(ctx, "r1"))

	ledger := sessions.Reviews(ctx)
	require.Len(t, ledger, 1)
	assert.Equal(t, "r2", ledger[0].ID)
}

func TestDelete_UnknownReviewIsNotFound(t *testing.T) {
	api := new(mockAPI)
	svc, sessions := newTestService(t, api)
	ctx := context.Background()

	signIn(t, sessions, "user-1")

	err := svc.Delete(ctx, "nope")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestDeleteAllMine_KeepsOtherAuthors(t *testing.T) {
	api := new(mockAPI)
	svc, sessions := newTestService(t, api)
	ctx := context.Background()

	require.NoError(t, sessions.SaveReviews(ctx, []domain.Review{
		{ID: "r1", AuthorID: "user-1"},
		{ID: "r2", AuthorID: "someone-else"},
		{ID: "r3", AuthorID: "user-1"},
	}))
	signIn(t, sessions, "user-1")

	require.NoError(t, svc.DeleteAllMine(ctx))

	ledger := sessions.Reviews(ctx)
	require.Len(t, ledger, 1)
	assert.Equal(t, "r2", ledger[0].ID)
}

func TestPurchasedProducts_DeduplicatesAcrossOrders(t *testing.T) {
	api := new(mockAPI)
	svc, sessions := newTestService(t, api)
	ctx := context.Background()

	recordPurchase(t, sessions, "p1", "p2")
	recordPurchase(t, sessions, "p2", "p3")

	assert.ElementsMatch(t, []string{"p1", "p2", "p3"}, svc.PurchasedProducts(ctx))
}
