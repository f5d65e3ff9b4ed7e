// Package memory keeps tools and rents in process memory. It backs local runs
// (storage type "memory") and end to end service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/repository"
)

type Store struct {
	repository.ToolRepository
	repository.RentRepository
	repository.OrderRepository
}

func NewStore() *Store {
	return &Store{
		ToolRepository:  NewToolRepository(),
		RentRepository:  NewRentRepository(),
		OrderRepository: NewOrderRepository(),
	}
}

type orderRepository struct {
	mu     sync.RWMutex
	orders map[string]domain.OrderBinding
}

func NewOrderRepository() repository.OrderRepository {
	return &orderRepository{orders: make(map[string]domain.OrderBinding)}
}

func (r *orderRepository) Create(_ context.Context, b *domain.OrderBinding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[b.OrderID]; ok {
		return fmt.Errorf("payment order %s already recorded", b.OrderID)
	}
	if b.CreatedOn.IsZero() {
		b.CreatedOn = time.Now().UTC()
	}
	r.orders[b.OrderID] = *b
	return nil
}

func (r *orderRepository) GetByID(_ context.Context, orderID string) (*domain.OrderBinding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return &b, nil
}

type toolRepository struct {
	mu     sync.RWMutex
	nextID int64
	tools  map[int64]domain.Tool
}

func NewToolRepository() repository.ToolRepository {
	return &toolRepository{tools: make(map[int64]domain.Tool)}
}

func (r *toolRepository) Create(_ context.Context, t *domain.Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	t.ID = r.nextID
	r.tools[t.ID] = *t
	return nil
}

func (r *toolRepository) GetByID(_ context.Context, id int64) (*domain.Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[id]
	if !ok {
		return nil, domain.ErrToolNotFound
	}
	return &t, nil
}

type rentRepository struct {
	mu     sync.RWMutex
	nextID int64
	rents  map[int64]domain.Rent

	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex
}

func NewRentRepository() repository.RentRepository {
	return &rentRepository{
		rents: make(map[int64]domain.Rent),
		locks: make(map[int64]*sync.Mutex),
	}
}

func (r *rentRepository) toolLock(toolID int64) *sync.Mutex {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()
	l, ok := r.locks[toolID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[toolID] = l
	}
	return l
}

func (r *rentRepository) WithToolLock(ctx context.Context, toolID int64, fn func(ctx context.Context, store repository.RentStore) error) error {
	l := r.toolLock(toolID)
	l.Lock()
	defer l.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, r)
}

func (r *rentRepository) Create(_ context.Context, rt *domain.Rent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rt.Status.IsLive() {
		for _, existing := range r.rents {
			if existing.ToolID == rt.ToolID && existing.Status.IsLive() && existing.Interval().Overlaps(rt.Interval()) {
				return domain.ErrToolNotAvailable
			}
		}
	}

	now := time.Now().UTC()
	r.nextID++
	rt.ID = r.nextID
	rt.Version = 1
	rt.CreatedOn = now
	rt.UpdatedOn = now
	r.rents[rt.ID] = *rt
	return nil
}

func (r *rentRepository) FindLiveByTool(_ context.Context, toolID int64) ([]domain.Rent, error) {
	return r.filter(func(rt domain.Rent) bool {
		return rt.ToolID == toolID && rt.Status.IsLive()
	}), nil
}

func (r *rentRepository) GetByID(_ context.Context, id int64) (*domain.Rent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.rents[id]
	if !ok {
		return nil, domain.ErrRentNotFound
	}
	return &rt, nil
}

func (r *rentRepository) Update(_ context.Context, rt *domain.Rent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.rents[rt.ID]
	if !ok || stored.Version != rt.Version {
		return domain.ErrConcurrentUpdate
	}
	rt.Version++
	rt.UpdatedOn = time.Now().UTC()
	stored.Status = rt.Status
	stored.Message = rt.Message
	stored.Version = rt.Version
	stored.UpdatedOn = rt.UpdatedOn
	r.rents[rt.ID] = stored
	return nil
}

func (r *rentRepository) FindByStartBetween(_ context.Context, from, to time.Time) ([]domain.Rent, error) {
	return r.filter(func(rt domain.Rent) bool {
		return !rt.StartDate.Before(from) && !rt.StartDate.After(to)
	}), nil
}

func (r *rentRepository) FinishElapsed(_ context.Context, now time.Time) ([]domain.Rent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var finished []domain.Rent
	for id, rt := range r.rents {
		if rt.Status != domain.RentStatusActive || rt.EndDate.After(now) {
			continue
		}
		rt.Status = domain.RentStatusFinished
		rt.Version++
		rt.UpdatedOn = now
		r.rents[id] = rt
		finished = append(finished, rt)
	}
	sortByStart(finished)
	return finished, nil
}

func (r *rentRepository) filter(keep func(domain.Rent) bool) []domain.Rent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Rent
	for _, rt := range r.rents {
		if keep(rt) {
			out = append(out, rt)
		}
	}
	sortByStart(out)
	return out
}

func sortByStart(rents []domain.Rent) {
	sort.Slice(rents, func(i, j int) bool {
		if rents[i].StartDate.Equal(rents[j].StartDate) {
			return rents[i].ID < rents[j].ID
		}
		return rents[i].StartDate.Before(rents[j].StartDate)
	})
}
