package alipay

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"paygate/provider"
)

const (
	gatewayURL = "https://openapi.alipay.com/gateway.do"

	methodPagePay = "alipay.trade.page.pay"
	productCode   = "FAST_INSTANT_TRADE_PAY"
	signType      = "RSA2"

	// Terminal success states of a trade; everything else is rejected
	tradeStatusSuccess  = "TRADE_SUCCESS"
	tradeStatusFinished = "TRADE_FINISHED"

	timestampLayout = "2006-01-02 15:04:05"
	defaultSubject  = "Order payment"
)

// AlipayProvider implements provider.PaymentProvider for Alipay web checkout.
// Pay builds a signed redirect URL; no outbound call is made. Notify verifies
// the asynchronous callback against the configured Alipay public key.
type AlipayProvider struct {
	appID       string
	privateKey  string
	publicKey   string
	productName string
}

// NewProvider creates a new Alipay payment provider
func NewProvider() provider.PaymentProvider {
	return &AlipayProvider{}
}

// Initialize sets up the Alipay provider with the operator configuration.
// Key material is kept as supplied and parsed lazily, so an unusable key
// surfaces on the operation that needs it.
func (p *AlipayProvider) Initialize(conf map[string]string) error {
	if err := provider.ValidateConfigFields("alipay", conf, p.FormFields()); err != nil {
		return err
	}

	p.appID = conf["app_id"]
	p.privateKey = conf["private_key"]
	p.publicKey = conf["public_key"]
	p.productName = conf["product_name"]
	return nil
}

// FormFields returns the configuration schema for the admin UI
func (p *AlipayProvider) FormFields() []provider.ConfigField {
	return []provider.ConfigField{
		{Key: "app_id", Label: "Alipay App ID", Type: "input", Required: true},
		{Key: "private_key", Label: "Merchant private key", Description: "PKCS1 or PKCS8, PEM or bare base64", Type: "textarea", Required: true},
		{Key: "public_key", Label: "Alipay public key", Description: "Used to verify asynchronous callbacks", Type: "textarea", Required: true},
		{Key: "product_name", Label: "Product name", Description: "Shown as the subject on the Alipay bill", Type: "input"},
	}
}

type bizContent struct {
	OutTradeNo  string `json:"out_trade_no"`
	ProductCode string `json:"product_code"`
	TotalAmount string `json:"total_amount"`
	Subject     string `json:"subject"`
}

// Pay builds the signed gateway redirect URL for the order. The amount is
// converted from minor units to Alipay's 2-decimal major-unit string.
func (p *AlipayProvider) Pay(_ context.Context, order provider.PaymentOrder) (*provider.PayResult, error) {
	if order.TradeNo == "" || order.NotifyURL == "" {
		return nil, fmt.Errorf("alipay: %w: trade number and notify URL are required", provider.ErrConfig)
	}
	if order.TotalAmount <= 0 {
		return nil, fmt.Errorf("alipay: %w: amount must be positive", provider.ErrConfig)
	}

	subject := p.productName
	if subject == "" {
		subject = defaultSubject
	}
	biz, err := json.Marshal(bizContent{
		OutTradeNo:  order.TradeNo,
		ProductCode: productCode,
		TotalAmount: provider.MajorUnitString(order.TotalAmount),
		Subject:     subject,
	})
	if err != nil {
		return nil, fmt.Errorf("alipay: failed to encode biz_content: %w", err)
	}

	params := map[string]string{
		"app_id":      p.appID,
		"method":      methodPagePay,
		"format":      "JSON",
		"charset":     "utf-8",
		"sign_type":   signType,
		"timestamp":   time.Now().Format(timestampLayout),
		"version":     "1.0",
		"return_url":  order.ReturnURL,
		"notify_url":  order.NotifyURL,
		"biz_content": string(biz),
	}

	signature, err := p.sign(provider.SignContent(params))
	if err != nil {
		return nil, err
	}
	params[provider.ParamSign] = signature

	values := url.Values{}
	for k, v := range params {
		if v != "" {
			values.Set(k, v)
		}
	}

	return &provider.PayResult{
		Type:        provider.PayResultTypeRedirect,
		RedirectURL: gatewayURL + "?" + values.Encode(),
	}, nil
}

// Notify verifies an Alipay asynchronous callback. Signature or status
// failures yield a rejection value; only undecodable input and unusable
// configuration are errors.
func (p *AlipayProvider) Notify(_ context.Context, req provider.NotifyRequest) (*provider.NotifyResult, error) {
	if len(req.Params) == 0 {
		return nil, fmt.Errorf("alipay: %w: empty callback parameters", provider.ErrParse)
	}

	signature := req.Params[provider.ParamSign]
	if signature == "" {
		return provider.Rejected(), nil
	}

	pub, err := parsePublicKey(p.publicKey)
	if err != nil {
		return nil, fmt.Errorf("alipay: %w: unusable public key: %v", provider.ErrConfig, err)
	}

	rawSig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return provider.Rejected(), nil
	}

	digest := sha256.Sum256([]byte(provider.SignContent(req.Params)))
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], rawSig); err != nil {
		return provider.Rejected(), nil
	}

	status := req.Params["trade_status"]
	if status != tradeStatusSuccess && status != tradeStatusFinished {
		return provider.Rejected(), nil
	}

	return &provider.NotifyResult{
		OK:         true,
		TradeNo:    req.Params["out_trade_no"],
		CallbackNo: req.Params["trade_no"],
	}, nil
}

// sign computes the RSA2 (SHA256 with RSA) signature over the canonical string
func (p *AlipayProvider) sign(content string) (string, error) {
	key, err := parsePrivateKey(p.privateKey)
	if err != nil {
		return "", fmt.Errorf("alipay: %w: %v", provider.ErrSignature, err)
	}

	digest := sha256.Sum256([]byte(content))
	signature, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	if err != nil {
		return "", fmt.Errorf("alipay: %w: %v", provider.ErrSignature, err)
	}
	return base64.StdEncoding.EncodeToString(signature), nil
}

// decodeKeyBytes accepts PEM-armored key material or the bare base64 body
// operators typically paste from the Alipay console
func decodeKeyBytes(material string) ([]byte, error) {
	material = strings.TrimSpace(material)
	if strings.Contains(material, "-----BEGIN") {
		block, _ := pem.Decode([]byte(material))
		if block == nil {
			return nil, errors.New("invalid PEM block")
		}
		return block.Bytes, nil
	}

	compact := strings.NewReplacer("\n", "", "\r", "", "\t", "", " ", "").Replace(material)
	der, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 key material: %v", err)
	}
	return der, nil
}

func parsePrivateKey(material string) (*rsa.PrivateKey, error) {
	der, err := decodeKeyBytes(material)
	if err != nil {
		return nil, err
	}

	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	keyAny, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("not a PKCS1 or PKCS8 private key: %v", err)
	}
	key, ok := keyAny.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("not an RSA private key")
	}
	return key, nil
}

func parsePublicKey(material string) (*rsa.PublicKey, error) {
	der, err := decodeKeyBytes(material)
	if err != nil {
		return nil, err
	}

	keyAny, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		if key, pkcs1Err := x509.ParsePKCS1PublicKey(der); pkcs1Err == nil {
			return key, nil
		}
		return nil, fmt.Errorf("not a PKIX or PKCS1 public key: %v", err)
	}
	key, ok := keyAny.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("not an RSA public key")
	}
	return key, nil
}
