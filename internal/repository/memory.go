package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"nectix/internal/domain"
)

// MemoryCatalog in-memory каталог товаров, заполняется при старте
type MemoryCatalog struct {
	mu           sync.RWMutex
	productsByID map[int64]domain.Product
}

func NewMemoryCatalog(products ...domain.Product) *MemoryCatalog {
	c := &MemoryCatalog{productsByID: make(map[int64]domain.Product, len(products))}
	for _, p := range products {
		c.productsByID[p.ID] = p
	}
	return c
}

var _ ProductRepository = (*MemoryCatalog)(nil)

func (c *MemoryCatalog) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.productsByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	// return copy
	cp := p
	return &cp, nil
}

func (c *MemoryCatalog) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Product, 0)
	for _, p := range c.productsByID {
		if !containsIgnoreCase(p.Name, f.NameSubstring) && !containsIgnoreCase(p.Description, f.NameSubstring) {
			continue
		}
		if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
			continue
		}
		if f.MinPrice != nil && p.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && p.Price > *f.MaxPrice {
			continue
		}
		out = append(out, p)
	}
	sortProducts(out, f.Sort)
	return out, nil
}

func sortProducts(ps []domain.Product, by ProductSort) {
	switch by {
	case SortPriceAsc:
		sort.Slice(ps, func(i, j int) bool { return ps[i].Price < ps[j].Price })
	case SortPriceDesc:
		sort.Slice(ps, func(i, j int) bool { return ps[i].Price > ps[j].Price })
	case SortName:
		sort.Slice(ps, func(i, j int) bool { return ps[i].Name < ps[j].Name })
	default:
		// stable order by id for the default listing
		sort.Slice(ps, func(i, j int) bool { return ps[i].ID < ps[j].ID })
	}
}

// MemoryUsers учётные записи, засеянные при старте
type MemoryUsers struct {
	mu      sync.RWMutex
	byEmail map[string]domain.User
}

func NewMemoryUsers(users ...domain.User) *MemoryUsers {
	m := &MemoryUsers{byEmail: make(map[string]domain.User, len(users))}
	for _, u := range users {
		m.byEmail[u.Email] = u
	}
	return m
}

var _ UserRepository = (*MemoryUsers)(nil)

func (m *MemoryUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := u
	return &cp, nil
}
