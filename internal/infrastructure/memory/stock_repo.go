package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger-api/internal/domain"
	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
	"github.com/jhoicas/retail-ledger-api/internal/domain/repository"
)

var (
	_ repository.StockRepository    = (*StockRepo)(nil)
	_ repository.MovementRepository = (*MovementRepo)(nil)
	_ repository.StoreRepository    = (*StoreRepo)(nil)
	_ repository.VariantRepository  = (*VariantRepo)(nil)
	_ repository.UserRepository     = (*UserRepo)(nil)
)

// StockRepo posiciones de stock en memoria.
type StockRepo struct{ base }

func (r *StockRepo) Get(_ context.Context, storeID, variantID string) (*entity.StockPosition, error) {
	defer r.guard()()
	p, ok := r.state().positions[entity.PositionKey{StoreID: storeID, VariantID: variantID}]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// GetForUpdate equivale a Get: el mutex de Run ya serializa la transacción.
func (r *StockRepo) GetForUpdate(ctx context.Context, storeID, variantID string) (*entity.StockPosition, error) {
	return r.Get(ctx, storeID, variantID)
}

func (r *StockRepo) Ensure(_ context.Context, storeID, variantID string) error {
	defer r.guard()()
	key := entity.PositionKey{StoreID: storeID, VariantID: variantID}
	if _, ok := r.state().positions[key]; ok {
		return nil
	}
	r.state().positions[key] = entity.StockPosition{
		StoreID: storeID, VariantID: variantID,
		Quantity: decimal.Zero, Reserved: decimal.Zero, LastCost: decimal.Zero, AvgCost: decimal.Zero,
		UpdatedAt: time.Now(),
	}
	return nil
}

func (r *StockRepo) Update(_ context.Context, p *entity.StockPosition) error {
	defer r.guard()()
	key := p.Key()
	if _, ok := r.state().positions[key]; !ok {
		return domain.ErrPositionNotFound
	}
	r.state().positions[key] = *p
	return nil
}

func (r *StockRepo) ListByStore(_ context.Context, storeID string, limit, offset int) ([]*entity.StockPosition, error) {
	defer r.guard()()
	var list []entity.StockPosition
	for k, p := range r.state().positions {
		if k.StoreID == storeID {
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].VariantID < list[j].VariantID })
	out := make([]*entity.StockPosition, 0, len(list))
	for _, p := range page(list, limit, offset) {
		p := p
		out = append(out, &p)
	}
	return out, nil
}

// MovementRepo log de movimientos en memoria (solo append).
type MovementRepo struct{ base }

func (r *MovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	defer r.guard()()
	r.state().movements = append(r.state().movements, *m)
	return nil
}

func (r *MovementRepo) ListByPosition(_ context.Context, storeID, variantID string, limit, offset int) ([]*entity.StockMovement, error) {
	defer r.guard()()
	var list []entity.StockMovement
	ms := r.state().movements
	for i := len(ms) - 1; i >= 0; i-- {
		if ms[i].StoreID == storeID && ms[i].VariantID == variantID {
			list = append(list, ms[i])
		}
	}
	out := make([]*entity.StockMovement, 0, len(list))
	for _, m := range page(list, limit, offset) {
		m := m
		out = append(out, &m)
	}
	return out, nil
}

func (r *MovementRepo) ListByReference(_ context.Context, referenceID string) ([]*entity.StockMovement, error) {
	defer r.guard()()
	var out []*entity.StockMovement
	for _, m := range r.state().movements {
		if m.ReferenceID == referenceID {
			m := m
			out = append(out, &m)
		}
	}
	return out, nil
}

func (r *MovementRepo) SumChange(_ context.Context, storeID, variantID string) (decimal.Decimal, error) {
	defer r.guard()()
	sum := decimal.Zero
	for _, m := range r.state().movements {
		if m.StoreID == storeID && m.VariantID == variantID {
			sum = sum.Add(m.Change)
		}
	}
	return sum, nil
}

// StoreRepo tiendas en memoria.
type StoreRepo struct{ base }

func (r *StoreRepo) Create(_ context.Context, s *entity.Store) error {
	defer r.guard()()
	for _, existing := range r.state().stores {
		if existing.Code == s.Code {
			return domain.ErrDuplicate
		}
	}
	r.state().stores[s.ID] = *s
	return nil
}

func (r *StoreRepo) GetByID(_ context.Context, id string) (*entity.Store, error) {
	defer r.guard()()
	s, ok := r.state().stores[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *StoreRepo) List(_ context.Context, limit, offset int) ([]*entity.Store, error) {
	defer r.guard()()
	list := make([]entity.Store, 0, len(r.state().stores))
	for _, s := range r.state().stores {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	out := make([]*entity.Store, 0, len(list))
	for _, s := range page(list, limit, offset) {
		s := s
		out = append(out, &s)
	}
	return out, nil
}

// VariantRepo variantes en memoria.
type VariantRepo struct{ base }

func (r *VariantRepo) Create(_ context.Context, v *entity.Variant) error {
	defer r.guard()()
	for _, existing := range r.state().variants {
		if existing.SKU == v.SKU {
			return domain.ErrDuplicate
		}
	}
	r.state().variants[v.ID] = *v
	return nil
}

func (r *VariantRepo) GetByID(_ context.Context, id string) (*entity.Variant, error) {
	defer r.guard()()
	v, ok := r.state().variants[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (r *VariantRepo) List(_ context.Context, limit, offset int) ([]*entity.Variant, error) {
	defer r.guard()()
	list := make([]entity.Variant, 0, len(r.state().variants))
	for _, v := range r.state().variants {
		list = append(list, v)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SKU < list[j].SKU })
	out := make([]*entity.Variant, 0, len(list))
	for _, v := range page(list, limit, offset) {
		v := v
		out = append(out, &v)
	}
	return out, nil
}

// UserRepo usuarios en memoria.
type UserRepo struct{ base }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	defer r.guard()()
	for _, existing := range r.state().users {
		if existing.Username == u.Username {
			return domain.ErrUsernameTaken
		}
	}
	r.state().users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	defer r.guard()()
	u, ok := r.state().users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	defer r.guard()()
	for _, u := range r.state().users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}
