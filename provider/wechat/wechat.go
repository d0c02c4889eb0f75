package wechat

import (
	"context"
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"paygate/provider"
)

const (
	apiBaseURL           = "https://api.mch.weixin.qq.com"
	endpointUnifiedOrder = "/pay/unifiedorder"

	tradeTypeNative = "NATIVE"

	// Both return_code and result_code must carry this value
	codeSuccess = "SUCCESS"

	defaultBody     = "Order payment"
	defaultClientIP = "127.0.0.1"
	defaultTimeout  = 30 * time.Second
)

// WechatProvider implements provider.PaymentProvider for WeChat Pay native
// (QR code) checkout. Amounts stay in minor units in both directions; the
// protocol already counts in fen.
type WechatProvider struct {
	appID       string
	mchID       string
	apiKey      string
	productName string
	client      *provider.ProviderHTTPClient
}

// NewProvider creates a new WeChat Pay payment provider
func NewProvider() provider.PaymentProvider {
	return &WechatProvider{}
}

// Initialize sets up the WeChat Pay provider with merchant credentials
func (p *WechatProvider) Initialize(conf map[string]string) error {
	if err := provider.ValidateConfigFields("wechat", conf, p.FormFields()); err != nil {
		return err
	}

	p.appID = conf["appid"]
	p.mchID = conf["mch_id"]
	p.apiKey = conf["key"]
	p.productName = conf["product_name"]

	baseURL := conf["api_base_url"]
	if baseURL == "" {
		baseURL = apiBaseURL
	}

	p.client = provider.NewProviderHTTPClient(&provider.HTTPClientConfig{
		BaseURL: baseURL,
		Timeout: defaultTimeout,
		DefaultHeaders: map[string]string{
			"User-Agent": "paygate/1.0",
		},
	})
	return nil
}

// FormFields returns the configuration schema for the admin UI
func (p *WechatProvider) FormFields() []provider.ConfigField {
	return []provider.ConfigField{
		{Key: "appid", Label: "App ID", Description: "WeChat official account AppID", Type: "input", Required: true},
		{Key: "mch_id", Label: "Merchant ID", Description: "WeChat Pay merchant number", Type: "input", Required: true},
		{Key: "key", Label: "API key", Description: "WeChat Pay API secret used for request signing", Type: "password", Required: true},
		{Key: "product_name", Label: "Product name", Description: "Shown on the WeChat Pay bill", Type: "input"},
	}
}

// Pay places a unified order and returns the scannable code URL. The amount
// is passed through unchanged; total_fee is already expressed in fen.
func (p *WechatProvider) Pay(ctx context.Context, order provider.PaymentOrder) (*provider.PayResult, error) {
	if order.TradeNo == "" || order.NotifyURL == "" {
		return nil, fmt.Errorf("wechat: %w: trade number and notify URL are required", provider.ErrConfig)
	}
	if order.TotalAmount <= 0 {
		return nil, fmt.Errorf("wechat: %w: amount must be positive", provider.ErrConfig)
	}

	body := p.productName
	if body == "" {
		body = defaultBody
	}
	clientIP := order.ClientIP
	if clientIP == "" {
		clientIP = defaultClientIP
	}

	params := map[string]string{
		"appid":            p.appID,
		"mch_id":           p.mchID,
		"nonce_str":        newNonce(),
		"body":             body,
		"out_trade_no":     order.TradeNo,
		"total_fee":        strconv.FormatInt(order.TotalAmount, 10),
		"spbill_create_ip": clientIP,
		"notify_url":       order.NotifyURL,
		"trade_type":       tradeTypeNative,
	}
	params[provider.ParamSign] = p.sign(params)

	resp, err := p.client.SendXML(ctx, &provider.HTTPRequest{
		Method:   http.MethodPost,
		Endpoint: endpointUnifiedOrder,
		Body:     encodeXML(params),
	})
	if err != nil {
		return nil, fmt.Errorf("wechat: %w", err)
	}

	result, err := decodeXML(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("wechat: %w", err)
	}

	if result["return_code"] != codeSuccess || result["result_code"] != codeSuccess {
		desc := result["err_code_des"]
		if desc == "" {
			desc = result["return_msg"]
		}
		if desc == "" {
			desc = "unknown error"
		}
		return nil, fmt.Errorf("wechat: %w: %s", provider.ErrProviderRejected, desc)
	}

	codeURL := result["code_url"]
	if codeURL == "" {
		return nil, fmt.Errorf("wechat: %w: response missing code_url", provider.ErrParse)
	}

	return &provider.PayResult{
		Type:   provider.PayResultTypeQRCode,
		QRCode: codeURL,
	}, nil
}

// Notify verifies a WeChat Pay asynchronous callback by recomputing the
// symmetric signature over the decoded XML body. A mismatched signature or a
// non-success status code pair is a rejection, not an error.
func (p *WechatProvider) Notify(_ context.Context, req provider.NotifyRequest) (*provider.NotifyResult, error) {
	if len(req.Body) == 0 {
		return nil, fmt.Errorf("wechat: %w: empty callback body", provider.ErrParse)
	}

	data, err := decodeXML(req.Body)
	if err != nil {
		return nil, fmt.Errorf("wechat: %w", err)
	}

	got := data[provider.ParamSign]
	if got == "" {
		return provider.Rejected(), nil
	}
	want := p.sign(data)
	if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
		return provider.Rejected(), nil
	}

	if data["return_code"] != codeSuccess || data["result_code"] != codeSuccess {
		return provider.Rejected(), nil
	}

	return &provider.NotifyResult{
		OK:         true,
		TradeNo:    data["out_trade_no"],
		CallbackNo: data["transaction_id"],
	}, nil
}

// sign computes the MD5 signature: canonical string, key=<secret> appended,
// digest upper-cased hex. The sign field itself never participates.
func (p *WechatProvider) sign(params map[string]string) string {
	content := provider.SignContent(params) + "&key=" + p.apiKey
	digest := md5.Sum([]byte(content))
	return strings.ToUpper(hex.EncodeToString(digest[:]))
}

// newNonce returns a fresh 32 character random string
func newNonce() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
