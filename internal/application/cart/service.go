package cart

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ugmart/storefront/internal/domain/cart"
	"github.com/ugmart/storefront/internal/domain/shared/valueobject"
	"github.com/ugmart/storefront/internal/infrastructure/logger"
)

// DefaultDebounce is the quiet period before a quantity change is written
const DefaultDebounce = 500 * time.Millisecond

const writeTimeout = 10 * time.Second

// SyncRecorder counts debounced backend writes
type SyncRecorder interface {
	RecordCartSync(ctx context.Context, err error)
}

// View is the cart as the shopper should see it: backend lines with
// pending quantity changes applied.
type View struct {
	Items     []cart.Item       `json:"items"`
	Subtotal  valueobject.Money `json:"subtotal"`
	ItemCount int               `json:"itemCount"`
	// SyncError is the last failed background write, reported once
	SyncError string `json:"syncError,omitempty"`
}

func newView(c *cart.Cart) *View {
	return &View{Items: c.Items, Subtotal: c.Subtotal(), ItemCount: c.ItemCount()}
}

// Service handles cart operations for the user carried in ctx
type Service struct {
	repo      cart.Repository
	debouncer *Debouncer
	metrics   SyncRecorder
	logger    *zap.Logger

	mu        sync.Mutex
	quantity  map[string]map[string]int // user -> item -> pending quantity
	lastError map[string]string
}

// Option configures the Service
type Option func(*Service)

// WithSyncRecorder records each debounced write
func WithSyncRecorder(r SyncRecorder) Option {
	return func(s *Service) {
		s.metrics = r
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService creates a cart Service writing quantity changes through debouncer
func NewService(repo cart.Repository, debouncer *Debouncer, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		debouncer: debouncer,
		logger:    zap.NewNop(),
		quantity:  make(map[string]map[string]int),
		lastError: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch returns the cart of userID
func (s *Service) Fetch(ctx context.Context, userID string) (*View, error) {
	items, err := s.repo.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	c := cart.New(copyItems(items))

	s.mu.Lock()
	for id, qty := range s.quantity[userID] {
		_, _ = c.SetQuantity(id, qty)
	}
	syncErr := s.lastError[userID]
	delete(s.lastError, userID)
	s.mu.Unlock()

	v := newView(c)
	v.SyncError = syncErr
	return v, nil
}

// Add adds a product to the cart
func (s *Service) Add(ctx context.Context, cmd cart.AddItem) (*cart.Item, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Add(ctx, cmd)
}

// Remove decrements or deletes a line and returns the updated cart
func (s *Service) Remove(ctx context.Context, userID, id string) (*View, error) {
	items, err := s.repo.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	updated, err := s.repo.Remove(ctx, id)
	if err != nil {
		return nil, err
	}
	c := cart.New(copyItems(items))
	c.ApplyRemoval(id, updated)

	// the backend quantity now wins over any queued edit of this line
	s.debouncer.Cancel(lineKey(userID, id))
	s.mu.Lock()
	s.dropLine(userID, id)
	for lineID, qty := range s.quantity[userID] {
		_, _ = c.SetQuantity(lineID, qty)
	}
	s.mu.Unlock()
	return newView(c), nil
}

// UpdateQuantity applies the quantity to the returned view at once and
// schedules the backend write. Rapid changes to the same line collapse
// into one write of the last quantity.
func (s *Service) UpdateQuantity(ctx context.Context, userID, id string, quantity int) (*View, error) {
	if err := cart.ValidateQuantity(quantity); err != nil {
		return nil, err
	}
	items, err := s.repo.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	c := cart.New(copyItems(items))

	s.mu.Lock()
	lines, ok := s.quantity[userID]
	if !ok {
		lines = make(map[string]int)
		s.quantity[userID] = lines
	}
	lines[id] = quantity
	for lineID, qty := range lines {
		_, _ = c.SetQuantity(lineID, qty)
	}
	s.mu.Unlock()

	writeCtx := context.WithoutCancel(ctx)
	s.debouncer.Schedule(lineKey(userID, id), func() {
		s.write(writeCtx, userID, id, quantity)
	})
	return newView(c), nil
}

// copyItems keeps local edits off the slice the repository returned
func copyItems(items []cart.Item) []cart.Item {
	if items == nil {
		return nil
	}
	return append(make([]cart.Item, 0, len(items)), items...)
}

func (s *Service) write(ctx context.Context, userID, id string, quantity int) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	err := s.repo.UpdateQuantity(ctx, id, quantity)
	if s.metrics != nil {
		s.metrics.RecordCartSync(ctx, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if lines := s.quantity[userID]; lines != nil && lines[id] == quantity {
		s.dropLine(userID, id)
	}
	if err != nil {
		s.lastError[userID] = err.Error()
		logger.WithLogger(ctx, s.logger).Error("Cart quantity sync failed",
			zap.String("cart_item_id", id),
			zap.Int("quantity", quantity),
			zap.Error(err),
		)
	}
}

// Clear empties the cart and drops pending writes for the user
func (s *Service) Clear(ctx context.Context, userID string) error {
	if err := s.repo.Clear(ctx); err != nil {
		return err
	}
	s.debouncer.CancelPrefix(lineKey(userID, ""))
	s.mu.Lock()
	delete(s.quantity, userID)
	delete(s.lastError, userID)
	s.mu.Unlock()
	return nil
}

// lineKey is the debouncer key of one cart line
func lineKey(userID, id string) string {
	return userID + ":" + id
}

// dropLine forgets the quantity overlay of a line; s.mu must be held
func (s *Service) dropLine(userID, id string) {
	lines := s.quantity[userID]
	if lines == nil {
		return
	}
	delete(lines, id)
	if len(lines) == 0 {
		delete(s.quantity, userID)
	}
}

// Flush writes every pending quantity change now
func (s *Service) Flush() {
	s.debouncer.Flush()
}
