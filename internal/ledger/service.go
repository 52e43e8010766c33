package ledger

import (
	"context"
	"strings"
	"time"

	"finbot/internal/cache"
	"finbot/internal/core"
	applog "finbot/internal/log"
)

// Service is the accounting layer used by the command dispatcher and the
// advice responder. It never caches balances; only the fact that a user is
// already registered is remembered.
type Service struct {
	store  Store
	events EventPublisher
	users  *cache.LRUCache[int64, struct{}]
	now    func() time.Time
	loc    *time.Location
	logger *applog.Logger
}

type Option func(*Service)

// WithEvents publishes every committed change to p.
func WithEvents(p EventPublisher) Option {
	return func(s *Service) { s.events = p }
}

// WithUserCache skips the store round trip for users registered recently.
func WithUserCache(c *cache.LRUCache[int64, struct{}]) Option {
	return func(s *Service) { s.users = c }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the zone used for statement windows.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithLogger(l *applog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l.WithComponent(applog.ComponentLedger)
		}
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		now:    time.Now,
		loc:    time.Local,
		logger: applog.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location is the zone statement windows are computed in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// RegisterUser records the user on first contact. Repeated calls are no-ops.
func (s *Service) RegisterUser(ctx context.Context, id int64, displayName string) error {
	if s.users != nil {
		if _, ok := s.users.Get(id); ok {
			return nil
		}
	}

	u := core.User{ID: id, DisplayName: strings.TrimSpace(displayName), FirstSeen: s.now()}
	if err := u.Validate(); err != nil {
		return core.ValidationError(applog.OpRegister, err)
	}
	if err := s.store.RegisterUser(ctx, u); err != nil {
		return core.StorageError(applog.OpRegister, err)
	}

	if s.users != nil {
		s.users.Set(id, struct{}{})
	}
	return nil
}

// Record stores a new income or expense stamped with the current time.
// An empty description defaults to the kind label.
func (s *Service) Record(ctx context.Context, userID int64, kind core.Kind, amount core.Money, description string) (core.Transaction, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		description = kind.Label()
	}

	tx := core.Transaction{
		UserID:      userID,
		Kind:        kind,
		Amount:      amount,
		Description: description,
		CreatedAt:   s.now(),
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, core.ValidationError(applog.OpRecord, err)
	}

	id, err := s.store.AddTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, core.StorageError(applog.OpRecord, err)
	}
	tx.ID = id

	s.logger.InfoContext(ctx, "Transaction recorded",
		applog.NewFields().WithUser(userID).WithTransaction(id, kind.String(), amount.Cents).ToSlice()...)

	if s.events != nil {
		if err := s.events.PublishTransactionRecorded(ctx, tx); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish transaction event",
				applog.FieldTxID, id, applog.FieldError, err)
		}
	}
	return tx, nil
}

// Delete removes txID if it belongs to userID. A missing or foreign
// transaction is reported as false, not as an error.
func (s *Service) Delete(ctx context.Context, userID, txID int64) (bool, error) {
	removed, err := s.store.DeleteTransaction(ctx, userID, txID)
	if err != nil {
		return false, core.StorageError(applog.OpDelete, err)
	}
	if !removed {
		return false, nil
	}

	s.logger.InfoContext(ctx, "Transaction deleted", applog.FieldUserID, userID, applog.FieldTxID, txID)

	if s.events != nil {
		if err := s.events.PublishTransactionDeleted(ctx, userID, txID); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish delete event",
				applog.FieldTxID, txID, applog.FieldError, err)
		}
	}
	return true, nil
}

// List returns the newest transactions first, at most limit of them
// (DefaultListLimit when limit is not positive).
func (s *Service) List(ctx context.Context, userID int64, limit int) ([]core.Transaction, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	txs, err := s.store.ListTransactions(ctx, userID, limit)
	if err != nil {
		return nil, core.StorageError(applog.OpList, err)
	}
	return txs, nil
}

// Balance is the sum of incomes minus the sum of expenses, zero for an empty ledger.
func (s *Service) Balance(ctx context.Context, userID int64) (core.Money, error) {
	totals, err := s.store.Totals(ctx, userID)
	if err != nil {
		return core.Money{}, core.StorageError(applog.OpTotals, err)
	}
	return totals.Balance(), nil
}

// Statement lists the transactions created since the start of window.
func (s *Service) Statement(ctx context.Context, userID int64, window core.StatementWindow) ([]core.Transaction, error) {
	since := window.Start(s.now(), s.loc)
	txs, err := s.store.ListTransactionsSince(ctx, userID, since)
	if err != nil {
		return nil, core.StorageError(applog.OpListSince, err)
	}
	s.logger.DebugContext(ctx, "Statement computed",
		applog.FieldUserID, userID, applog.FieldWindow, window.String(), "count", len(txs))
	return txs, nil
}
