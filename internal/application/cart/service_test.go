package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ugmart/storefront/internal/domain/cart"
	"github.com/ugmart/storefront/internal/domain/shared"
)

type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) Fetch(ctx context.Context) ([]cart.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cart.Item), args.Error(1)
}

func (m *MockCartRepository) Add(ctx context.Context, cmd cart.AddItem) (*cart.Item, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Item), args.Error(1)
}

func (m *MockCartRepository) Remove(ctx context.Context, id string) (*cart.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Item), args.Error(1)
}

func (m *MockCartRepository) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	return m.Called(ctx, id, quantity).Error(0)
}

func (m *MockCartRepository) Clear(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type syncCounter struct {
	mu       sync.Mutex
	ok, fail int
}

func (s *syncCounter) RecordCartSync(_ context.Context, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.fail++
		return
	}
	s.ok++
}

func twoLines() []cart.Item {
	return []cart.Item{
		{ID: "l1", ProductID: "p1", Name: "Sandals", Price: 30000, Quantity: 1},
		{ID: "l2", ProductID: "p2", Name: "Kitenge", Price: 45000, Quantity: 2},
	}
}

func TestService_UpdateQuantity_OptimisticAndDebounced(t *testing.T) {
	repo := new(MockCartRepository)
	d := NewDebouncer(time.Hour)
	defer d.Stop()
	metrics := &syncCounter{}
	svc := NewService(repo, d, WithSyncRecorder(metrics))
	ctx := context.Background()

	repo.On("Fetch", ctx).Return(twoLines(), nil)
	repo.On("UpdateQuantity", mock.Anything, "l1", 4).Return(nil).Once()

	for _, qty := range []int{2, 3, 4} {
		view, err := svc.UpdateQuantity(ctx, "u1", "l1", qty)
		require.NoError(t, err)
		line := view.Items[0]
		assert.Equal(t, qty, line.Quantity)
		assert.Equal(t, 2+qty, view.ItemCount)
	}

	// a fetch before the write lands still shows the pending quantity
	view, err := svc.Fetch(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, view.Items[0].Quantity)
	assert.Equal(t, "210000.00 UGX", view.Subtotal.String())

	svc.Flush()
	repo.AssertNumberOfCalls(t, "UpdateQuantity", 1)
	assert.Equal(t, 1, metrics.ok)

	// once written, the backend value is shown as is
	view, err = svc.Fetch(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, view.Items[0].Quantity)
}

func TestService_UpdateQuantity_Invalid(t *testing.T) {
	repo := new(MockCartRepository)
	svc := NewService(repo, NewDebouncer(time.Hour))
	_, err := svc.UpdateQuantity(context.Background(), "u1", "l1", 0)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.EqualError(t, err, "Quantity must be at least 1")
	repo.AssertNotCalled(t, "Fetch", mock.Anything)
}

func TestService_UpdateQuantity_WriteFailureIsReportedOnce(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	repo := new(MockCartRepository)
	d := NewDebouncer(time.Hour)
	defer d.Stop()
	svc := NewService(repo, d, WithLogger(zap.New(core)))
	ctx := context.Background()

	repo.On("Fetch", ctx).Return(twoLines(), nil)
	repo.On("UpdateQuantity", mock.Anything, "l2", 5).Return(errors.New("Failed to update cart")).Once()

	_, err := svc.UpdateQuantity(ctx, "u1", "l2", 5)
	require.NoError(t, err)
	svc.Flush()

	require.Equal(t, 1, logs.FilterMessage("Cart quantity sync failed").Len())

	view, err := svc.Fetch(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Failed to update cart", view.SyncError)

	view, err = svc.Fetch(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, view.SyncError)
}

func TestService_WriteOutlivesRequestContext(t *testing.T) {
	repo := new(MockCartRepository)
	d := NewDebouncer(time.Millisecond)
	defer d.Stop()
	svc := NewService(repo, d)

	ctx, cancel := context.WithCancel(context.Background())
	written := make(chan struct{})
	repo.On("Fetch", ctx).Return(twoLines(), nil)
	repo.On("UpdateQuantity", mock.MatchedBy(func(c context.Context) bool { return c.Err() == nil }), "l1", 2).
		Return(nil).
		Run(func(mock.Arguments) { close(written) })

	_, err := svc.UpdateQuantity(ctx, "u1", "l1", 2)
	require.NoError(t, err)
	cancel()

	select {
	case <-written:
	case <-time.After(time.Second):
		t.Fatal("quantity was not written")
	}
	d.Flush()
	repo.AssertExpectations(t)
}

func TestService_AddRemoveClear(t *testing.T) {
	repo := new(MockCartRepository)
	svc := NewService(repo, NewDebouncer(time.Hour))
	ctx := context.Background()

	_, err := svc.Add(ctx, cart.AddItem{ProductID: "p1", Quantity: 0})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	cmd := cart.AddItem{ProductID: "p3", Quantity: 1}
	repo.On("Add", ctx, cmd).Return(&cart.Item{ID: "l3", ProductID: "p3", Quantity: 1}, nil)
	item, err := svc.Add(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, "l3", item.ID)

	repo.On("Fetch", ctx).Return(twoLines(), nil)
	repo.On("Remove", ctx, "l2").Return(&cart.Item{ID: "l2", ProductID: "p2", Price: 45000, Quantity: 1}, nil).Once()
	view, err := svc.Remove(ctx, "u1", "l2")
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.Equal(t, 1, view.Items[1].Quantity)

	repo.On("Remove", ctx, "l1").Return(nil, nil).Once()
	view, err = svc.Remove(ctx, "u1", "l1")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "l2", view.Items[0].ID)

	repo.On("Clear", ctx).Return(nil)
	assert.NoError(t, svc.Clear(ctx, "u1"))
}

func TestService_ClearDropsPendingWrites(t *testing.T) {
	repo := new(MockCartRepository)
	d := NewDebouncer(time.Hour)
	defer d.Stop()
	svc := NewService(repo, d)
	ctx := context.Background()

	repo.On("Fetch", ctx).Return(twoLines(), nil).Once()
	_, err := svc.UpdateQuantity(ctx, "u1", "l1", 4)
	require.NoError(t, err)
	require.Equal(t, 1, d.Pending())

	repo.On("Clear", ctx).Return(nil)
	require.NoError(t, svc.Clear(ctx, "u1"))
	assert.Equal(t, 0, d.Pending())

	svc.Flush()
	repo.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)

	repo.On("Fetch", ctx).Return([]cart.Item{}, nil).Once()
	view, err := svc.Fetch(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Empty(t, view.SyncError)
}

func TestService_RemoveDropsPendingWriteForLine(t *testing.T) {
	repo := new(MockCartRepository)
	d := NewDebouncer(time.Hour)
	defer d.Stop()
	svc := NewService(repo, d)
	ctx := context.Background()

	repo.On("Fetch", ctx).Return(twoLines(), nil)
	repo.On("UpdateQuantity", mock.Anything, "l2", 6).Return(nil).Once()

	_, err := svc.UpdateQuantity(ctx, "u1", "l1", 4)
	require.NoError(t, err)
	_, err = svc.UpdateQuantity(ctx, "u1", "l2", 6)
	require.NoError(t, err)

	repo.On("Remove", ctx, "l1").Return(nil, nil).Once()
	view, err := svc.Remove(ctx, "u1", "l1")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 6, view.Items[0].Quantity)
	assert.Equal(t, 1, d.Pending())

	svc.Flush()
	repo.AssertNotCalled(t, "UpdateQuantity", mock.Anything, "l1", mock.Anything)
	repo.AssertNumberOfCalls(t, "UpdateQuantity", 1)
}
