// Package memory provides an in-process catalog.Store.
//
// It evaluates predicates with catalog.Match and is used by tests and by local
// runs started with DATABASE_URL=memory://.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/motorcat/internal/catalog"
)

// Op names a store method for FailFunc.
type Op string

const (
	OpFind   Op = "find"
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// FailFunc lets tests inject storage errors. A non-nil return aborts the call.
type FailFunc func(op Op, item catalog.Item) error

// Store is a thread-safe catalog.Store held in memory.
type Store struct {
	mu    sync.RWMutex
	items map[string]catalog.Item // by ID
	byUID map[string]string       // ExternalUID -> ID
	order []string                // insertion order, for stable iteration
	now   func() time.Time
	last  time.Time

	// Fail, when set, is consulted before every write and natural-key lookup.
	Fail FailFunc
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		items: make(map[string]catalog.Item),
		byUID: make(map[string]string),
		now:   time.Now,
	}
}

var _ catalog.Store = (*Store)(nil)

func (s *Store) fail(op Op, item catalog.Item) error {
	if s.Fail == nil {
		return nil
	}
	return s.Fail(op, item)
}

// FindByUID implements catalog.Store.
func (s *Store) FindByUID(ctx context.Context, uid string) (catalog.Item, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Item{}, err
	}
	if err := s.fail(OpFind, catalog.Item{ExternalUID: uid}); err != nil {
		return catalog.Item{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUID[strings.TrimSpace(uid)]
	if !ok || uid == "" {
		return catalog.Item{}, catalog.ErrNotFound
	}
	return clone(s.items[id]), nil
}

// FindByID implements catalog.Store.
func (s *Store) FindByID(ctx context.Context, id string) (catalog.Item, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Item{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[id]
	if !ok {
		return catalog.Item{}, catalog.ErrNotFound
	}
	return clone(it), nil
}

// Insert implements catalog.Store.
func (s *Store) Insert(ctx context.Context, item *catalog.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.fail(OpInsert, *item); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if item.HasNaturalKey() {
		if _, dup := s.byUID[item.ExternalUID]; dup {
			return fmt.Errorf("external_uid %q: %w", item.ExternalUID, catalog.ErrDuplicateKey)
		}
	}

	now := s.tick()
	item.ID = uuid.NewString()
	item.CreatedAt = now
	item.UpdatedAt = now

	s.items[item.ID] = clone(*item)
	s.order = append(s.order, item.ID)
	if item.HasNaturalKey() {
		s.byUID[item.ExternalUID] = item.ID
	}
	return nil
}

// UpdateByUID implements catalog.Store.
func (s *Store) UpdateByUID(ctx context.Context, uid string, item *catalog.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.fail(OpUpdate, *item); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byUID[uid]
	if !ok || uid == "" {
		return catalog.ErrNotFound
	}

	stored := s.items[id]
	stored.Overwrite(*item)
	stored.ExternalUID = uid
	stored.UpdatedAt = s.tick()
	s.items[id] = clone(stored)

	*item = clone(stored)
	return nil
}

// FindMany implements catalog.Store.
func (s *Store) FindMany(ctx context.Context, p catalog.Predicate, page catalog.Page) ([]catalog.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matched := s.match(p)
	catalog.SortItems(matched, page.Sort)

	if page.Offset >= len(matched) {
		return []catalog.Item{}, nil
	}
	matched = matched[max(page.Offset, 0):]
	if page.Limit > 0 && page.Limit < len(matched) {
		matched = matched[:page.Limit]
	}
	return matched, nil
}

// Count implements catalog.Store.
func (s *Store) Count(ctx context.Context, p catalog.Predicate) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return int64(len(s.match(p))), nil
}

// Distinct implements catalog.Store.
func (s *Store) Distinct(ctx context.Context, f catalog.Field, p catalog.Predicate) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return catalog.DistinctValues(s.match(p), f), nil
}

// Delete implements catalog.Store.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok {
		return catalog.ErrNotFound
	}
	if err := s.fail(OpDelete, it); err != nil {
		return err
	}
	s.remove(it)
	return nil
}

// DeleteMany implements catalog.Store. Unknown ids are skipped.
func (s *Store) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, id := range ids {
		it, ok := s.items[id]
		if !ok {
			continue
		}
		if err := s.fail(OpDelete, it); err != nil {
			return n, err
		}
		s.remove(it)
		n++
	}
	return n, nil
}

// DeleteAll implements catalog.Store.
func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.items))
	s.items = make(map[string]catalog.Item)
	s.byUID = make(map[string]string)
	s.order = nil
	return n, nil
}

// Len returns the number of stored items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// tick returns a strictly increasing timestamp so newest-first order matches
// insertion order. Caller holds the write lock.
func (s *Store) tick() time.Time {
	now := s.now().UTC()
	if !now.After(s.last) {
		now = s.last.Add(time.Microsecond)
	}
	s.last = now
	return now
}

// remove deletes it from every index. Caller holds the write lock.
func (s *Store) remove(it catalog.Item) {
	delete(s.items, it.ID)
	if it.HasNaturalKey() && s.byUID[it.ExternalUID] == it.ID {
		delete(s.byUID, it.ExternalUID)
	}
	for i, id := range s.order {
		if id == it.ID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Store) match(p catalog.Predicate) []catalog.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]catalog.Item, 0, len(s.order))
	for _, id := range s.order {
		it := s.items[id]
		if catalog.Match(p, it) {
			out = append(out, clone(it))
		}
	}
	return out
}

// clone copies the slice and pointer fields so callers cannot alias stored state.
func clone(it catalog.Item) catalog.Item {
	if it.Photos != nil {
		it.Photos = append([]string(nil), it.Photos...)
	}
	if it.PriceOld != nil {
		v := *it.PriceOld
		it.PriceOld = &v
	}
	return it
}
