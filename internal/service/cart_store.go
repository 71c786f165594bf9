package service

import (
	"sync"

	"go.uber.org/zap"

	"nectix/internal/domain"
	"nectix/internal/storage"
)

// DefaultCartSlot фиксированный ключ слота корзины
const DefaultCartSlot = "nectix_cart"

// CartStore корзина: позиции под ключами LineKey с сохранением порядка
// вставки. Id товара никогда не перезаписывается — идентичность позиции
// живёт только в ключе. Каждая мутация сохраняет весь список в слот;
// битый или отсутствующий слот при загрузке даёт пустую корзину.
type CartStore struct {
	mu    sync.Mutex
	order []domain.LineKey
	lines map[domain.LineKey]*domain.CartLine
	store *storage.Store
	slot  string
	log   *zap.Logger
}

func NewCartStore(store *storage.Store, slot string, log *zap.Logger) *CartStore {
	c := &CartStore{
		lines: make(map[domain.LineKey]*domain.CartLine),
		store: store,
		slot:  slot,
		log:   log,
	}
	c.load()
	return c
}

func (c *CartStore) load() {
	var lines []domain.CartLine
	if !c.store.Get(c.slot, &lines) {
		return
	}
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		k := l.Key()
		if exist, ok := c.lines[k]; ok {
			exist.Quantity += l.Quantity
			continue
		}
		cp := l
		c.lines[k] = &cp
		c.order = append(c.order, k)
	}
}

// persist вызывается только под мьютексом
func (c *CartStore) persist() {
	if err := c.store.Put(c.slot, c.snapshotLocked()); err != nil {
		c.log.Error("persist cart", zap.Error(err))
	}
}

// Add добавляет товар с выбранным вариантом; существующая позиция с тем же
// ключом накапливает количество. quantity <= 0 трактуется как 1.
func (c *CartStore) Add(p domain.Product, quantity int64, color, size string) domain.LineKey {
	if quantity <= 0 {
		quantity = 1
	}
	k := domain.NewLineKey(p.ID, color, size)

	c.mu.Lock()
	defer c.mu.Unlock()
	if line, ok := c.lines[k]; ok {
		line.Quantity += quantity
	} else {
		c.lines[k] = &domain.CartLine{
			Product:       p,
			Quantity:      quantity,
			SelectedColor: color,
			SelectedSize:  size,
		}
		c.order = append(c.order, k)
	}
	c.persist()
	return k
}

// Remove убирает позицию; false, если такой позиции нет
func (c *CartStore) Remove(k domain.LineKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeLocked(k)
}

func (c *CartStore) removeLocked(k domain.LineKey) bool {
	if _, ok := c.lines[k]; !ok {
		return false
	}
	delete(c.lines, k)
	for i, key := range c.order {
		if key == k {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.persist()
	return true
}

// UpdateQuantity ставит количество напрямую; quantity <= 0 эквивалентно
// удалению позиции. Остатки на складе здесь не моделируются.
func (c *CartStore) UpdateQuantity(k domain.LineKey, quantity int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if quantity <= 0 {
		return c.removeLocked(k)
	}
	line, ok := c.lines[k]
	if !ok {
		return false
	}
	line.Quantity = quantity
	c.persist()
	return true
}

// Clear опустошает корзину (после успешного чекаута)
func (c *CartStore) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = make(map[domain.LineKey]*domain.CartLine)
	c.order = nil
	c.persist()
}

// Total = Σ цена × количество, пересчитывается на каждый вызов
func (c *CartStore) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total float64
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

// ItemCount суммарное количество единиц по всем позициям
func (c *CartStore) ItemCount() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Snapshot упорядоченные копии позиций
func (c *CartStore) Snapshot() []domain.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *CartStore) snapshotLocked() []domain.CartLine {
	out := make([]domain.CartLine, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, *c.lines[k])
	}
	return out
}
