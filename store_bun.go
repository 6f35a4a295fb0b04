package session

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// StoredToken is the single-row credentials record backing BunTokenStore.
type StoredToken struct {
	bun.BaseModel `bun:"table:session_tokens,alias:st"`

	Key       string    `bun:"key,pk"`
	Token     string    `bun:"token,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// BunTokenStore persists the bearer token through Bun so a restart of the
// process resumes the previous session.
type BunTokenStore struct {
	db  *bun.DB
	key string
	now func() time.Time
}

var _ TokenStore = (*BunTokenStore)(nil)

// BunTokenStoreOption customizes a BunTokenStore.
type BunTokenStoreOption func(*BunTokenStore)

// WithStorageKey overrides the storage key the token row is kept under.
func WithStorageKey(key string) BunTokenStoreOption {
	return func(s *BunTokenStore) {
		if key != "" {
			s.key = key
		}
	}
}

// WithStoreClock injects a custom clock (useful for tests).
func WithStoreClock(clock func() time.Time) BunTokenStoreOption {
	return func(s *BunTokenStore) {
		if clock != nil {
			s.now = clock
		}
	}
}

func NewBunTokenStore(db *bun.DB, opts ...BunTokenStoreOption) *BunTokenStore {
	s := &BunTokenStore{
		db:  db,
		key: DefaultStorageKey,
		now: time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// Init creates the backing table if it does not exist.
func (s *BunTokenStore) Init(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*StoredToken)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to create session token table")
	}
	return nil
}

// Get implements TokenStore.
func (s *BunTokenStore) Get(ctx context.Context) (string, bool, error) {
	record := &StoredToken{}

	err := s.db.NewSelect().
		Model(record).
		Where("st.key = ?", s.key).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, errors.Wrap(err, errors.CategoryInternal, "failed to read session token")
	}

	return record.Token, true, nil
}

// Set implements TokenStore. Last write wins.
func (s *BunTokenStore) Set(ctx context.Context, token string) error {
	record := &StoredToken{
		Key:       s.key,
		Token:     token,
		UpdatedAt: s.now(),
	}

	_, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (key) DO UPDATE").
		Set("token = EXCLUDED.token").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to persist session token")
	}

	return nil
}

// Clear implements TokenStore. Clearing an absent token is not an error.
func (s *BunTokenStore) Clear(ctx context.Context) error {
	_, err := s.db.NewDelete().
		Model((*StoredToken)(nil)).
		Where("key = ?", s.key).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to clear session token")
	}

	return nil
}
