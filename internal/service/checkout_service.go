package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"nectix/internal/domain"
	"nectix/internal/payment"
	"nectix/internal/validate"
)

// PaymentState наблюдаемое состояние платежа для интерфейса
type PaymentState struct {
	Payment   domain.Payment         `json:"payment"`
	Bundle    *domain.DownloadBundle `json:"bundle,omitempty"`
	LastError string                 `json:"last_error,omitempty"`
	Done      bool                   `json:"done"`
}

// CheckoutService собирает payload из корзины и формы, создаёт платёж и
// ведёт опрос его статуса до терминального состояния
type CheckoutService struct {
	client payment.Client
	poller *payment.Poller
	log    *zap.Logger

	mu      sync.Mutex
	states  map[string]*PaymentState
	cancels map[string]context.CancelFunc

	root context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup
}

func NewCheckoutService(client payment.Client, policy payment.Policy, log *zap.Logger) *CheckoutService {
	root, stop := context.WithCancel(context.Background())
	return &CheckoutService{
		client:  client,
		poller:  payment.NewPoller(client, policy, log),
		log:     log,
		states:  make(map[string]*PaymentState),
		cancels: make(map[string]context.CancelFunc),
		root:    root,
		stop:    stop,
	}
}

// BuildPayload чистая сборка тела запроса: обрезка пробелов на каждом
// строковом поле, пустой complemento опускается, total = Σ цена×количество.
// Цвет и размер формы применяются ко всему заказу целиком.
func BuildPayload(lines []domain.CartLine, form domain.CheckoutForm) domain.CheckoutPayload {
	items := make([]domain.PayloadItem, 0, len(lines))
	var total float64
	for _, l := range lines {
		items = append(items, domain.PayloadItem{
			ID:       l.Product.ID,
			Name:     strings.TrimSpace(l.Product.Name),
			Price:    l.Product.Price,
			Quantity: l.Quantity,
			Variacoes: domain.PayloadVariation{
				Cor:     strings.TrimSpace(form.SelectedColor),
				Tamanho: strings.TrimSpace(form.SelectedSize),
			},
		})
		total += l.Subtotal()
	}
	return domain.CheckoutPayload{
		Carrinho:    items,
		NomeCliente: strings.TrimSpace(form.Name),
		Email:       strings.TrimSpace(form.Email),
		Telefone:    strings.TrimSpace(form.Phone),
		Endereco: domain.PayloadAddress{
			CEP:         strings.TrimSpace(form.PostalCode),
			Rua:         strings.TrimSpace(form.Street),
			Numero:      strings.TrimSpace(form.Number),
			Complemento: strings.TrimSpace(form.Complement),
			Bairro:      strings.TrimSpace(form.Neighborhood),
			Cidade:      strings.TrimSpace(form.City),
			Estado:      strings.TrimSpace(form.State),
		},
		Total: total,
	}
}

// validateOrder: общие проверки полей плюс правило заказа — один цвет и
// один размер выбраны на весь заказ
func validateOrder(lines []domain.CartLine, form domain.CheckoutForm) *ValidationError {
	r := validate.CheckoutData(form)
	errs := append([]string{}, r.Errors...)
	if len(lines) == 0 {
		errs = append(errs, "O carrinho está vazio")
	}
	if strings.TrimSpace(form.SelectedColor) == "" {
		errs = append(errs, "Selecione uma cor")
	}
	if strings.TrimSpace(form.SelectedSize) == "" {
		errs = append(errs, "Selecione um tamanho")
	}
	if len(errs) > 0 {
		return &ValidationError{Problems: errs}
	}
	return nil
}

// Submit валидирует форму (собирая все проблемы разом), отправляет payload
// платёжному бэкенду и запускает опрос статуса. Корзина очищается только
// после успешного создания платежа; при невалидной форме запрос не уходит.
func (s *CheckoutService) Submit(ctx context.Context, cart *CartStore, form domain.CheckoutForm) (*domain.Payment, error) {
	lines := cart.Snapshot()
	if verr := validateOrder(lines, form); verr != nil {
		return nil, verr
	}

	payload := BuildPayload(lines, form)
	p, err := s.client.Create(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	cart.Clear()
	s.watch(p)
	s.log.Info("checkout submitted",
		zap.String("payment_id", p.ID), zap.Float64("total", payload.Total), zap.Int("items", len(payload.Carrinho)))
	return p, nil
}

// watch регистрирует платёж и запускает поллер; повторный watch того же id
// отменяет предыдущий цикл
func (s *CheckoutService) watch(p *domain.Payment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.cancels[p.ID]; ok {
		cancel()
	}
	s.states[p.ID] = &PaymentState{Payment: *p}
	ctx, cancel := context.WithCancel(s.root)
	s.cancels[p.ID] = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		_, err := s.poller.Run(ctx, p.ID, func(u payment.Update) { s.apply(p.ID, u) })
		s.mu.Lock()
		defer s.mu.Unlock()
		if st, ok := s.states[p.ID]; ok {
			st.Done = true
			if err != nil && !errors.Is(err, context.Canceled) {
				st.LastError = err.Error()
			}
		}
	}()
}

func (s *CheckoutService) apply(paymentID string, u payment.Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[paymentID]
	if !ok {
		return
	}
	if u.Status != "" {
		st.Payment.Status = u.Status
	}
	if u.Bundle != nil && st.Bundle == nil {
		st.Bundle = u.Bundle
	}
	if u.Err != nil {
		st.LastError = u.Err.Error()
	} else if u.Status != "" {
		st.LastError = ""
	}
}

// State снимок состояния платежа
func (s *CheckoutService) State(paymentID string) (PaymentState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[paymentID]
	if !ok {
		return PaymentState{}, false
	}
	return *st, true
}

// StopWatch останавливает опрос конкретного платежа (уход со страницы
// оплаты или смена id платежа)
func (s *CheckoutService) StopWatch(paymentID string) {
	s.mu.Lock()
	cancel, ok := s.cancels[paymentID]
	delete(s.cancels, paymentID)
	s.mu.Unlock()
	if ok {
		cancel()
	}
}

// Close гасит все поллеры и дожидается их завершения
func (s *CheckoutService) Close() {
	s.stop()
	s.wg.Wait()
}
