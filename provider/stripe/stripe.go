package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"paygate/provider"
)

const (
	defaultCurrency = "cny"

	// metadataTradeNo carries the merchant trade number through the charge
	// and back on the webhook event
	metadataTradeNo = "trade_no"
)

// StripeProvider implements provider.PaymentProvider for hosted card charges.
// Pay issues a synchronous charge against a client-supplied payment token;
// amounts are already in the currency's smallest unit, which is what the
// Stripe API expects. Notify verifies webhook events directly against the
// endpoint secret rather than through the SDK's verification helper, so the
// check stays an inspectable part of this package.
type StripeProvider struct {
	secretKey     string
	publicKey     string
	webhookSecret string
	currency      string
	api           *client.API
}

// NewProvider creates a new Stripe payment provider
func NewProvider() provider.PaymentProvider {
	return &StripeProvider{}
}

// Initialize sets up the Stripe provider with API credentials
func (p *StripeProvider) Initialize(conf map[string]string) error {
	if err := provider.ValidateConfigFields("stripe", conf, p.FormFields()); err != nil {
		return err
	}

	p.secretKey = conf["secret_key"]
	p.publicKey = conf["public_key"]
	p.webhookSecret = conf["webhook_secret"]
	p.currency = strings.ToLower(conf["currency"])
	if p.currency == "" {
		p.currency = defaultCurrency
	}

	p.api = &client.API{}
	p.api.Init(p.secretKey, nil)
	return nil
}

// FormFields returns the configuration schema for the admin UI
func (p *StripeProvider) FormFields() []provider.ConfigField {
	return []provider.ConfigField{
		{Key: "secret_key", Label: "Secret key", Description: "Stripe API secret key", Type: "password", Required: true},
		{Key: "public_key", Label: "Publishable key", Description: "Used client-side to tokenize the card", Type: "input"},
		{Key: "webhook_secret", Label: "Webhook secret", Description: "Endpoint secret used to verify webhook signatures", Type: "password", Required: true},
		{Key: "currency", Label: "Currency", Description: "ISO currency code, defaults to CNY", Type: "input", Example: "cny"},
	}
}

// Pay charges the client-supplied payment token synchronously. The amount is
// passed through unchanged; the order already carries it in the currency's
// smallest unit.
func (p *StripeProvider) Pay(ctx context.Context, order provider.PaymentOrder) (*provider.PayResult, error) {
	if order.Token == "" {
		return nil, fmt.Errorf("stripe: %w: order carries no payment token", provider.ErrConfig)
	}
	if order.TradeNo == "" {
		return nil, fmt.Errorf("stripe: %w: trade number is required", provider.ErrConfig)
	}
	if order.TotalAmount <= 0 {
		return nil, fmt.Errorf("stripe: %w: amount must be positive", provider.ErrConfig)
	}

	params := &stripe.ChargeParams{
		Amount:      stripe.Int64(order.TotalAmount),
		Currency:    stripe.String(p.currency),
		Description: stripe.String("order " + order.TradeNo),
	}
	params.Context = ctx
	if err := params.SetSource(order.Token); err != nil {
		return nil, fmt.Errorf("stripe: %w: invalid payment token: %v", provider.ErrConfig, err)
	}
	params.AddMetadata(metadataTradeNo, order.TradeNo)

	ch, err := p.api.Charges.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			return nil, fmt.Errorf("stripe: %w: %s", provider.ErrProviderRejected, stripeErr.Msg)
		}
		return nil, fmt.Errorf("stripe: %w: %v", provider.ErrNetwork, err)
	}

	if ch.Status != stripe.ChargeStatusSucceeded {
		return nil, fmt.Errorf("stripe: %w: charge status %s", provider.ErrProviderRejected, ch.Status)
	}

	return &provider.PayResult{
		Type: provider.PayResultTypeDirect,
		Paid: true,
	}, nil
}

// Notify verifies a webhook event over the raw request body. Signature
// failures and event types other than charge.succeeded are rejections; only
// an undecodable body is an error.
func (p *StripeProvider) Notify(_ context.Context, req provider.NotifyRequest) (*provider.NotifyResult, error) {
	if len(req.Body) == 0 {
		return nil, fmt.Errorf("stripe: %w: empty webhook body", provider.ErrParse)
	}

	header := req.Headers["Stripe-Signature"]
	if err := verifySignature(req.Body, header, p.webhookSecret, signatureTolerance, time.Now()); err != nil {
		return provider.Rejected(), nil
	}

	var event stripe.Event
	if err := json.Unmarshal(req.Body, &event); err != nil {
		return nil, fmt.Errorf("stripe: %w: %v", provider.ErrParse, err)
	}

	if event.Type != stripe.EventTypeChargeSucceeded || event.Data == nil {
		return provider.Rejected(), nil
	}

	var ch stripe.Charge
	if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
		return nil, fmt.Errorf("stripe: %w: %v", provider.ErrParse, err)
	}

	tradeNo := ch.Metadata[metadataTradeNo]
	if tradeNo == "" || ch.ID == "" {
		return provider.Rejected(), nil
	}

	return &provider.NotifyResult{
		OK:         true,
		TradeNo:    tradeNo,
		CallbackNo: ch.ID,
	}, nil
}
