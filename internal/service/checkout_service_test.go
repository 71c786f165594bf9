package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"nectix/internal/domain"
	"nectix/internal/payment"
	"nectix/internal/storage"
)

// fakeBackend считает вызовы создания и отдаёт фиксированный платёж
type fakeBackend struct {
	mu        sync.Mutex
	created   []domain.CheckoutPayload
	createErr error
	status    domain.PaymentStatus
}

func (f *fakeBackend) Create(ctx context.Context, payload domain.CheckoutPayload) (*domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, payload)
	return &domain.Payment{ID: "pay_1", Status: domain.PaymentStatusPending, QRCode: "qr"}, nil
}

func (f *fakeBackend) Status(ctx context.Context, paymentID string) (domain.PaymentStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status, nil
}

func (f *fakeBackend) Downloads(ctx context.Context, paymentID string) (*domain.DownloadBundle, error) {
	return &domain.DownloadBundle{PaymentID: paymentID, Links: []domain.DownloadLink{{ProductID: 1, URL: "/d/1"}}}, nil
}

func (f *fakeBackend) createCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

func fastPolicy() payment.Policy {
	return payment.Policy{InitialInterval: time.Millisecond, MaxInterval: time.Millisecond, Multiplier: 1, MaxAttempts: 50}
}

func checkoutForm() domain.CheckoutForm {
	return domain.CheckoutForm{
		Name:          "  Maria Silva  ",
		Email:         "maria@example.com",
		Phone:         "(11) 98765-4321",
		PostalCode:    "01310-100",
		Street:        " Av. Paulista ",
		Number:        "1000",
		Neighborhood:  "Bela Vista",
		City:          "São Paulo",
		State:         "SP",
		SelectedColor: "Azul",
		SelectedSize:  "M",
	}
}

func TestBuildPayload_Shape(t *testing.T) {
	lines := []domain.CartLine{
		{Product: domain.Product{ID: 5, Name: " Camiseta ", Price: 99.90}, Quantity: 2, SelectedColor: "Azul", SelectedSize: "M"},
		{Product: domain.Product{ID: 1, Name: "Boné", Price: 59.90}, Quantity: 1},
	}
	form := checkoutForm()
	form.Complement = "   "

	p := BuildPayload(lines, form)

	if p.NomeCliente != "Maria Silva" {
		t.Fatalf("name not trimmed: %q", p.NomeCliente)
	}
	if p.Endereco.Complemento != "" {
		t.Fatalf("empty complement must be omitted, got %q", p.Endereco.Complemento)
	}
	if p.Endereco.Rua != "Av. Paulista" {
		t.Fatalf("street not trimmed: %q", p.Endereco.Rua)
	}
	want := 99.90*2 + 59.90
	if p.Total != want {
		t.Fatalf("total: got %v want %v", p.Total, want)
	}
	if len(p.Carrinho) != 2 {
		t.Fatalf("items: %d", len(p.Carrinho))
	}
	// the order-level variant is applied to every item
	for _, it := range p.Carrinho {
		if it.Variacoes.Cor != "Azul" || it.Variacoes.Tamanho != "M" {
			t.Fatalf("variant not applied: %+v", it.Variacoes)
		}
	}
}

func TestSubmit_InvalidEmailNeverSubmitted(t *testing.T) {
	backend := &fakeBackend{status: domain.PaymentStatusPending}
	svc := NewCheckoutService(backend, fastPolicy(), zap.NewNop())
	defer svc.Close()

	cart, _ := setupCart(t)
	cart.Add(product(1, 10), 1, "", "")

	form := checkoutForm()
	form.Email = "not-an-email"

	_, err := svc.Submit(context.Background(), cart, form)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	found := false
	for _, p := range verr.Problems {
		if p == "E-mail inválido" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected email error in %v", verr.Problems)
	}
	if backend.createCount() != 0 {
		t.Fatalf("payload must never be submitted on validation failure")
	}
	if cart.ItemCount() != 1 {
		t.Fatalf("cart must be untouched on validation failure")
	}
}

func TestSubmit_CollectsAllProblems(t *testing.T) {
	backend := &fakeBackend{}
	svc := NewCheckoutService(backend, fastPolicy(), zap.NewNop())
	defer svc.Close()

	cart, _ := setupCart(t)

	_, err := svc.Submit(context.Background(), cart, domain.CheckoutForm{})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	// 9 field problems + empty cart + color + size
	if len(verr.Problems) != 12 {
		t.Fatalf("expected 12 problems, got %d: %v", len(verr.Problems), verr.Problems)
	}
}

func TestSubmit_SuccessClearsCartAndTracksPayment(t *testing.T) {
	backend := &fakeBackend{status: domain.PaymentStatusApproved}
	svc := NewCheckoutService(backend, fastPolicy(), zap.NewNop())
	defer svc.Close()

	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cart := NewCartStore(store, DefaultCartSlot, zap.NewNop())
	cart.Add(product(5, 99.90), 2, "Azul", "M")

	p, err := svc.Submit(context.Background(), cart, checkoutForm())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if p.ID != "pay_1" {
		t.Fatalf("payment id: %s", p.ID)
	}
	if cart.ItemCount() != 0 {
		t.Fatalf("cart must be cleared after a successful submission")
	}

	// poller resolves the payment to approved with a bundle
	deadline := time.Now().Add(2 * time.Second)
	for {
		st, ok := svc.State(p.ID)
		if ok && st.Payment.Status == domain.PaymentStatusApproved && st.Bundle != nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("payment never resolved: %+v", st)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSubmit_BackendErrorKeepsCart(t *testing.T) {
	backend := &fakeBackend{createErr: &payment.BackendError{StatusCode: 500, Message: "Erro interno"}}
	svc := NewCheckoutService(backend, fastPolicy(), zap.NewNop())
	defer svc.Close()

	cart, _ := setupCart(t)
	cart.Add(product(1, 10), 1, "", "")

	_, err := svc.Submit(context.Background(), cart, checkoutForm())
	if err == nil {
		t.Fatalf("expected error")
	}
	if Classify(err) != CategoryPayment {
		t.Fatalf("expected payment category, got %v", Classify(err))
	}
	if cart.ItemCount() != 1 {
		t.Fatalf("cart must survive a failed submission")
	}
}

func TestStopWatch_CancelsPolling(t *testing.T) {
	backend := &fakeBackend{status: domain.PaymentStatusPending}
	policy := fastPolicy()
	policy.InitialInterval = time.Hour // the watcher must stop mid-wait
	svc := NewCheckoutService(backend, policy, zap.NewNop())

	cart, _ := setupCart(t)
	cart.Add(product(1, 10), 1, "", "")
	p, err := svc.Submit(context.Background(), cart, checkoutForm())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	svc.StopWatch(p.ID)
	done := make(chan struct{})
	go func() {
		svc.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("close hung: poller leaked")
	}
}
