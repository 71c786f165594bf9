package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"nectix/internal/domain"
)

// MockClient демо-режим без реального бэкенда: платёж с префиксом mock_,
// статус становится approved после фиксированного числа опросов
type MockClient struct {
	mu           sync.Mutex
	approveAfter int
	polls        map[string]int
	payloads     map[string]domain.CheckoutPayload
}

func NewMockClient(approveAfter int) *MockClient {
	if approveAfter < 1 {
		approveAfter = 2
	}
	return &MockClient{
		approveAfter: approveAfter,
		polls:        make(map[string]int),
		payloads:     make(map[string]domain.CheckoutPayload),
	}
}

var _ Client = (*MockClient)(nil)

func (m *MockClient) Create(ctx context.Context, payload domain.CheckoutPayload) (*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := "mock_" + uuid.NewString()
	m.payloads[id] = payload
	return &domain.Payment{
		ID:     id,
		Status: domain.PaymentStatusPending,
		QRCode: fmt.Sprintf("00020126580014br.gov.bcb.pix0136%s5204000053039865802BR", id),
	}, nil
}

func (m *MockClient) Status(ctx context.Context, paymentID string) (domain.PaymentStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payloads[paymentID]; !ok {
		return "", fmt.Errorf("unknown payment %s", paymentID)
	}
	m.polls[paymentID]++
	if m.polls[paymentID] >= m.approveAfter {
		return domain.PaymentStatusApproved, nil
	}
	return domain.PaymentStatusPending, nil
}

func (m *MockClient) Downloads(ctx context.Context, paymentID string) (*domain.DownloadBundle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, ok := m.payloads[paymentID]
	if !ok {
		return nil, fmt.Errorf("unknown payment %s", paymentID)
	}
	bundle := &domain.DownloadBundle{PaymentID: paymentID, Links: []domain.DownloadLink{}}
	for _, item := range payload.Carrinho {
		bundle.Links = append(bundle.Links, domain.DownloadLink{
			ProductID: item.ID,
			Name:      item.Name,
			URL:       fmt.Sprintf("/downloads/%s/%d", paymentID, item.ID),
		})
	}
	return bundle, nil
}
