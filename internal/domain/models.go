package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Product представляет товар витрины. Назначается бэкендом и с точки зрения
// клиента неизменяем: только чтение, никаких мутаций.
type Product struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"original_price,omitempty"`
	ImageURL      string   `json:"image_url,omitempty"`
	Category      string   `json:"category,omitempty"`
	DownloadURL   string   `json:"download_url,omitempty"`
}

// LineKey — идентичность позиции корзины: товар плюс выбранный вариант.
// Две позиции совпадают тогда и только тогда, когда совпадают id товара,
// цвет и размер. Id самого товара никогда не перезаписывается.
type LineKey struct {
	ProductID int64
	Color     string
	Size      string
}

func NewLineKey(productID int64, color, size string) LineKey {
	return LineKey{ProductID: productID, Color: color, Size: size}
}

// HasVariant истинно, если выбран хотя бы один вариантный атрибут.
// Достаточно одного: "5-Red-" и просто "5" — разные позиции.
func (k LineKey) HasVariant() bool {
	return k.Color != "" || k.Size != ""
}

// String отдаёт внешнюю форму ключа: составную "{id}-{color}-{size}" при
// выбранном варианте, иначе просто числовой id.
func (k LineKey) String() string {
	if !k.HasVariant() {
		return strconv.FormatInt(k.ProductID, 10)
	}
	return fmt.Sprintf("%d-%s-%s", k.ProductID, k.Color, k.Size)
}

// ParseLineKey разбирает внешнюю форму обратно в LineKey.
func ParseLineKey(s string) (LineKey, error) {
	if s == "" {
		return LineKey{}, fmt.Errorf("empty line key")
	}
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return LineKey{ProductID: id}, nil
	}
	parts := strings.SplitN(s, "-", 3)
	if len(parts) != 3 {
		return LineKey{}, fmt.Errorf("malformed line key %q", s)
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return LineKey{}, fmt.Errorf("malformed line key %q: %w", s, err)
	}
	return LineKey{ProductID: id, Color: parts[1], Size: parts[2]}, nil
}

// CartLine позиция корзины: товар, количество и выбранный вариант
type CartLine struct {
	Product       Product `json:"product"`
	Quantity      int64   `json:"quantity"`
	SelectedColor string  `json:"selected_color,omitempty"`
	SelectedSize  string  `json:"selected_size,omitempty"`
}

// Key возвращает идентичность позиции
func (l CartLine) Key() LineKey {
	return NewLineKey(l.Product.ID, l.SelectedColor, l.SelectedSize)
}

// Subtotal = цена × количество для одной позиции
func (l CartLine) Subtotal() float64 {
	return l.Product.Price * float64(l.Quantity)
}

// Favorite пара (пользователь, товар); семантика множества
type Favorite struct {
	UserID    string `json:"user_id"`
	ProductID int64  `json:"product_id"`
}
