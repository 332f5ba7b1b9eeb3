package payments

import (
	"context"
	"errors"
)

var (
	ErrGateway  = errors.New("payment gateway error")
	ErrDisabled = errors.New("payment gateway disabled")
)

type OrderRequest struct {
	// Amount is in the currency's smallest unit.
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

type Order struct {
	ID           string `json:"id"`
	Gateway      string `json:"gateway"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Receipt      string `json:"receipt"`
	Status       string `json:"status"`
	ClientSecret string `json:"client_secret,omitempty"`
}

// OrderCreator opens an order with a payment gateway.
type OrderCreator interface {
	Name() string
	CreateOrder(ctx context.Context, req OrderRequest) (Order, error)
}

// SignatureVerifier checks a gateway-signed payment confirmation locally.
type SignatureVerifier interface {
	VerifySignature(orderID, paymentID, signature string) bool
}
