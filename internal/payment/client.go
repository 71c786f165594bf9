package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"nectix/internal/domain"
)

// Client интерфейс платёжного бэкенда: создание платежа, статус, ссылки
// на скачивание после оплаты
type Client interface {
	Create(ctx context.Context, payload domain.CheckoutPayload) (*domain.Payment, error)
	Status(ctx context.Context, paymentID string) (domain.PaymentStatus, error)
	Downloads(ctx context.Context, paymentID string) (*domain.DownloadBundle, error)
}

// BackendError ошибка платёжного бэкенда с его собственным сообщением
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("payment backend: %s (http %d)", e.Message, e.StatusCode)
}

// RESTClient клиент PIX-бэкенда поверх net/http
type RESTClient struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func NewRESTClient(baseURL string, timeout time.Duration, log *zap.Logger) *RESTClient {
	return &RESTClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

var _ Client = (*RESTClient)(nil)

func (c *RESTClient) Create(ctx context.Context, payload domain.CheckoutPayload) (*domain.Payment, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/payments/criar-pagamento", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, backendError(resp)
	}

	var p domain.Payment
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode payment: %w", err)
	}
	c.log.Info("payment created", zap.String("payment_id", p.ID), zap.String("status", p.Status.String()))
	return &p, nil
}

func (c *RESTClient) Status(ctx context.Context, paymentID string) (domain.PaymentStatus, error) {
	var p domain.Payment
	if err := c.getJSON(ctx, "/payments/"+paymentID, &p); err != nil {
		return "", err
	}
	return p.Status, nil
}

func (c *RESTClient) Downloads(ctx context.Context, paymentID string) (*domain.DownloadBundle, error) {
	var b domain.DownloadBundle
	if err := c.getJSON(ctx, "/payments/"+paymentID+"/downloads", &b); err != nil {
		return nil, err
	}
	b.PaymentID = paymentID
	return &b, nil
}

func (c *RESTClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return backendError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// backendError вытаскивает body.error, иначе общий текст
func backendError(resp *http.Response) error {
	msg := "Erro ao processar pagamento"
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil {
		var body struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &body) == nil && body.Error != "" {
			msg = body.Error
		}
	}
	return &BackendError{StatusCode: resp.StatusCode, Message: msg}
}
