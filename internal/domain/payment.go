package domain

// PaymentStatus тип статуса платежа
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusInProcess PaymentStatus = "in_process"
	PaymentStatusApproved  PaymentStatus = "approved"
	PaymentStatusRejected  PaymentStatus = "rejected"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// IsTerminal — approved/rejected/cancelled завершают опрос статуса
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusApproved || s == PaymentStatusRejected || s == PaymentStatusCancelled
}

func (s PaymentStatus) String() string {
	return string(s)
}

// Payment платёж, созданный платёжным бэкендом по одному сабмиту чекаута.
// Поля QR присутствуют только пока платёж не завершён. Id с префиксом
// "mock_" означает локальный демо-режим без реального бэкенда.
type Payment struct {
	ID           string        `json:"id"`
	Status       PaymentStatus `json:"status"`
	QRCode       string        `json:"qr_code,omitempty"`
	QRCodeBase64 string        `json:"qr_code_base64,omitempty"`
	TicketURL    string        `json:"ticket_url,omitempty"`
}

// IsMock истинно для платежей, созданных в демо-режиме
func (p Payment) IsMock() bool {
	return len(p.ID) > 5 && p.ID[:5] == "mock_"
}

// DownloadLink ссылка на скачивание одного товара после оплаты
type DownloadLink struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	URL       string `json:"url"`
}

// DownloadBundle набор ссылок, доступный только после статуса approved;
// запрашивается лениво и кэшируется один раз на id платежа
type DownloadBundle struct {
	PaymentID string         `json:"payment_id"`
	Links     []DownloadLink `json:"links"`
}
