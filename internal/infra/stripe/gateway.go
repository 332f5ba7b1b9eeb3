package stripe

import (
	"context"
	"fmt"
	"strings"

	"repairmybike-api/internal/infra/payments"

	stripego "github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/paymentintent"
	"github.com/stripe/stripe-go/v75/webhook"
)

// Gateway opens PaymentIntents as orders and authenticates webhook events.
type Gateway struct {
	webhookSecret string
}

func NewGateway(secretKey, webhookSecret string) *Gateway {
	stripego.Key = secretKey
	return &Gateway{webhookSecret: webhookSecret}
}

func (g *Gateway) Name() string { return "stripe" }

func (g *Gateway) CreateOrder(ctx context.Context, req payments.OrderRequest) (payments.Order, error) {
	params := &stripego.PaymentIntentParams{
		Amount:   stripego.Int64(req.Amount),
		Currency: stripego.String(strings.ToLower(req.Currency)),
	}
	params.Context = ctx
	params.AddMetadata("receipt", req.Receipt)
	for k, v := range req.Notes {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return payments.Order{}, fmt.Errorf("%w: %v", payments.ErrGateway, err)
	}
	return payments.Order{
		ID:           pi.ID,
		Gateway:      g.Name(),
		Amount:       pi.Amount,
		Currency:     strings.ToUpper(string(pi.Currency)),
		Receipt:      req.Receipt,
		Status:       string(pi.Status),
		ClientSecret: pi.ClientSecret,
	}, nil
}

// ParseEvent verifies the Stripe-Signature header and decodes the event.
func (g *Gateway) ParseEvent(payload []byte, signatureHeader string) (stripego.Event, error) {
	if g.webhookSecret == "" {
		return stripego.Event{}, fmt.Errorf("STRIPE_WEBHOOK_SECRET not configured")
	}
	return webhook.ConstructEventWithOptions(
		payload,
		signatureHeader,
		g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
}
