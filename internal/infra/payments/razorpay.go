package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
)

// Razorpay opens orders through the Razorpay SDK and verifies checkout
// signatures.
type Razorpay struct {
	keyID     string
	keySecret string
	client    *razorpay.Client
}

func NewRazorpay(keyID, keySecret string) *Razorpay {
	return &Razorpay{
		keyID:     keyID,
		keySecret: keySecret,
		client:    razorpay.NewClient(keyID, keySecret),
	}
}

// WithBaseURL points the client at another host (used by tests).
func (r *Razorpay) WithBaseURL(baseURL string) *Razorpay {
	r.client.Order.Request.BaseURL = strings.TrimRight(baseURL, "/")
	return r
}

func (r *Razorpay) Name() string { return "razorpay" }

func (r *Razorpay) KeyID() string { return r.keyID }

// CreateOrder opens an auto-captured order. The SDK takes no context, so a
// cancelled ctx is only honoured before the call goes out.
func (r *Razorpay) CreateOrder(ctx context.Context, req OrderRequest) (Order, error) {
	if err := ctx.Err(); err != nil {
		return Order{}, err
	}

	notes := make(map[string]interface{}, len(req.Notes))
	for k, v := range req.Notes {
		notes[k] = v
	}
	body, err := r.client.Order.Create(map[string]interface{}{
		"amount":          req.Amount,
		"currency":        req.Currency,
		"receipt":         req.Receipt,
		"notes":           notes,
		"payment_capture": 1,
	}, nil)
	if err != nil {
		return Order{}, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	id, _ := body["id"].(string)
	if id == "" {
		return Order{}, fmt.Errorf("%w: order response without id", ErrGateway)
	}
	order := Order{
		ID:       id,
		Gateway:  r.Name(),
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
	}
	if amount, ok := body["amount"].(float64); ok {
		order.Amount = int64(amount)
	}
	if currency, ok := body["currency"].(string); ok {
		order.Currency = currency
	}
	if receipt, ok := body["receipt"].(string); ok {
		order.Receipt = receipt
	}
	order.Status, _ = body["status"].(string)
	return order, nil
}

func (r *Razorpay) VerifySignature(orderID, paymentID, signature string) bool {
	if r.keySecret == "" || orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	return utils.VerifyPaymentSignature(map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}, strings.ToLower(signature), r.keySecret)
}

// Sign produces the checkout signature Razorpay attaches to a payment:
// hex(HMAC-SHA256(secret, order_id + "|" + payment_id)). Callers use it to
// forge confirmations in tests and local demos.
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
