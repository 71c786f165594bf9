package domain

// CheckoutForm данные покупателя, собранные формой чекаута. Цвет и размер
// выбираются один раз на весь заказ — намеренное упрощение относительно
// пер-позиционной модели вариантов.
type CheckoutForm struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	CPF           string `json:"cpf,omitempty"`
	PostalCode    string `json:"postal_code"`
	Street        string `json:"street"`
	Number        string `json:"number"`
	Complement    string `json:"complement,omitempty"`
	Neighborhood  string `json:"neighborhood"`
	City          string `json:"city"`
	State         string `json:"state"`
	SelectedColor string `json:"selected_color"`
	SelectedSize  string `json:"selected_size"`
}

// Формат тела запроса создания платежа. Имена полей — контракт платёжного
// бэкенда, менять нельзя.
type (
	PayloadVariation struct {
		Cor     string `json:"cor"`
		Tamanho string `json:"tamanho"`
	}

	PayloadItem struct {
		ID        int64            `json:"id"`
		Name      string           `json:"name"`
		Price     float64          `json:"price"`
		Quantity  int64            `json:"quantity"`
		Variacoes PayloadVariation `json:"variacoes"`
	}

	PayloadAddress struct {
		CEP         string `json:"cep"`
		Rua         string `json:"rua"`
		Numero      string `json:"numero"`
		Complemento string `json:"complemento,omitempty"`
		Bairro      string `json:"bairro"`
		Cidade      string `json:"cidade"`
		Estado      string `json:"estado"`
	}

	CheckoutPayload struct {
		Carrinho    []PayloadItem  `json:"carrinho"`
		NomeCliente string         `json:"nomeCliente"`
		Email       string         `json:"email"`
		Telefone    string         `json:"telefone"`
		Endereco    PayloadAddress `json:"endereco"`
		Total       float64        `json:"total"`
	}
)

// Session сессия пользователя: токены и срок жизни access-токена
type Session struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"` // unix seconds
}

// User учётная запись с bcrypt-хэшем пароля
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}
