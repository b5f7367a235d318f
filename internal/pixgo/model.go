package pixgo

import "encoding/json"

type PaymentStatus string

const (
	StatusPending   PaymentStatus = "pending"
	StatusCompleted PaymentStatus = "completed"
	StatusExpired   PaymentStatus = "expired"
	StatusCancelled PaymentStatus = "cancelled"
	StatusRefunded  PaymentStatus = "refunded"
)

// IsTerminal reports whether polling should stop on this status. Refunded
// is not terminal from the checkout's point of view.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

type Customer struct {
	Name    string `json:"customer_name,omitempty"`
	CPF     string `json:"customer_cpf,omitempty"`
	Email   string `json:"customer_email,omitempty"`
	Phone   string `json:"customer_phone,omitempty"`
	Address string `json:"customer_address,omitempty"`
}

type CreateRequest struct {
	// Amount is sent as a JSON number with two decimals.
	Amount      json.Number `json:"amount"`
	Description string      `json:"description,omitempty"`
	Customer
	ExternalID string `json:"external_id,omitempty"`
	WebhookURL string `json:"webhook_url,omitempty"`
}

type PaymentData struct {
	PaymentID  string        `json:"payment_id"`
	ExternalID string        `json:"external_id"`
	Amount     float64       `json:"amount"`
	Status     PaymentStatus `json:"status"`
	QRCode     string        `json:"qr_code"`
	QRImageURL string        `json:"qr_image_url"`
	ExpiresAt  string        `json:"expires_at"`
	CreatedAt  string        `json:"created_at"`
}

type CreateResponse struct {
	Success bool        `json:"success"`
	Data    PaymentData `json:"data"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

type StatusData struct {
	PaymentID    string        `json:"payment_id"`
	ExternalID   string        `json:"external_id"`
	Amount       float64       `json:"amount"`
	Status       PaymentStatus `json:"status"`
	CustomerName string        `json:"customer_name,omitempty"`
	CustomerCPF  string        `json:"customer_cpf,omitempty"`
	CreatedAt    string        `json:"created_at"`
	UpdatedAt    string        `json:"updated_at"`
}

type StatusResponse struct {
	Success bool       `json:"success"`
	Data    StatusData `json:"data"`
	Error   string     `json:"error,omitempty"`
	Message string     `json:"message,omitempty"`
}
