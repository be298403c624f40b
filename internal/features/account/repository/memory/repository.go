package memory

import (
	"context"
	"math/big"
	"sort"
	"sync"

	"quad-backend/internal/features/account/models"
	"quad-backend/internal/features/account/repository"
)

const defaultJournalMaxLen = 10000

// Store is an in-process AccountStore. Atomic units run one at a time under
// the store mutex and commit only on success.
type Store struct {
	mu             sync.RWMutex
	profiles       map[models.Identity]*models.Profile
	totalDeposited *big.Int
	journal        []models.Entry
	journalMaxLen  int
}

func NewStore(journalMaxLen int) *Store {
	if journalMaxLen <= 0 {
		journalMaxLen = defaultJournalMaxLen
	}
	return &Store{
		profiles:       make(map[models.Identity]*models.Profile),
		totalDeposited: new(big.Int),
		journalMaxLen:  journalMaxLen,
	}
}

var _ repository.AccountStore = (*Store)(nil)

func (s *Store) GetProfile(_ context.Context, id models.Identity) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookup(id), nil
}

func (s *Store) lookup(id models.Identity) *models.Profile {
	if p, ok := s.profiles[id]; ok {
		return p.Clone()
	}
	return models.NewUnregistered(id)
}

type memTx struct {
	store    *Store
	declared map[models.Identity]struct{}
	staged   map[models.Identity]*models.Profile
	order    []models.Identity
	deposit  *big.Int
	entries  []models.Entry
}

func (tx *memTx) Get(_ context.Context, id models.Identity) (*models.Profile, error) {
	if _, ok := tx.declared[id]; !ok {
		return nil, repository.ErrUndeclaredKey
	}
	if p, ok := tx.staged[id]; ok {
		return p.Clone(), nil
	}
	return tx.store.lookup(id), nil
}

func (tx *memTx) Put(p *models.Profile) {
	if _, ok := tx.staged[p.Identity]; !ok {
		tx.order = append(tx.order, p.Identity)
	}
	tx.staged[p.Identity] = p.Clone()
}

func (tx *memTx) AddDeposited(amount *big.Int) {
	tx.deposit.Add(tx.deposit, amount)
}

func (tx *memTx) Append(e models.Entry) {
	tx.entries = append(tx.entries, e)
}

func (s *Store) Atomic(_ context.Context, ids []models.Identity, fn func(tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		store:    s,
		declared: make(map[models.Identity]struct{}, len(ids)),
		staged:   make(map[models.Identity]*models.Profile, len(ids)),
		deposit:  new(big.Int),
	}
	for _, id := range ids {
		tx.declared[id] = struct{}{}
	}

	if err := fn(tx); err != nil {
		return err
	}

	for _, id := range tx.order {
		if _, ok := tx.declared[id]; !ok {
			return repository.ErrUndeclaredKey
		}
	}

	for _, id := range tx.order {
		s.profiles[id] = tx.staged[id]
	}
	s.totalDeposited.Add(s.totalDeposited, tx.deposit)
	s.journal = append(s.journal, tx.entries...)
	if over := len(s.journal) - s.journalMaxLen; over > 0 {
		s.journal = append([]models.Entry(nil), s.journal[over:]...)
	}
	return nil
}

func (s *Store) Stats(_ context.Context) (*models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, p := range s.profiles {
		if p.Registered {
			count++
		}
	}
	return &models.Stats{
		TotalDeposited:  new(big.Int).Set(s.totalDeposited),
		RegisteredCount: count,
	}, nil
}

// Journal returns the newest entries first.
func (s *Store) Journal(_ context.Context, limit int64) ([]models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := int64(len(s.journal))
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]models.Entry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.journal[i])
	}
	return out, nil
}

func (s *Store) ForEachRegistered(_ context.Context, fn func(p *models.Profile) error) error {
	s.mu.RLock()
	ids := make([]models.Identity, 0, len(s.profiles))
	for id, p := range s.profiles {
		if p.Registered {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	snapshot := make([]*models.Profile, 0, len(ids))
	for _, id := range ids {
		snapshot = append(snapshot, s.profiles[id].Clone())
	}
	s.mu.RUnlock()

	for _, p := range snapshot {
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Ping(context.Context) error {
	return nil
}
