package wechat

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"paygate/provider"
)

func newTestProvider(t *testing.T, baseURL string) *WechatProvider {
	t.Helper()

	p := NewProvider()
	conf := map[string]string{
		"appid":  "wx1234567890",
		"mch_id": "1900000000",
		"key":    "k",
	}
	if baseURL != "" {
		conf["api_base_url"] = baseURL
	}
	if err := p.Initialize(conf); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	return p.(*WechatProvider)
}

func TestWechatProvider_Initialize(t *testing.T) {
	tests := []struct {
		name    string
		config  map[string]string
		wantErr bool
	}{
		{
			name:    "Valid configuration",
			config:  map[string]string{"appid": "wx1", "mch_id": "190", "key": "k"},
			wantErr: false,
		},
		{
			name:    "Missing app id",
			config:  map[string]string{"mch_id": "190", "key": "k"},
			wantErr: true,
		},
		{
			name:    "Missing merchant id",
			config:  map[string]string{"appid": "wx1", "key": "k"},
			wantErr: true,
		},
		{
			name:    "Missing API key",
			config:  map[string]string{"appid": "wx1", "mch_id": "190"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewProvider().Initialize(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("Initialize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, provider.ErrConfig) {
				t.Errorf("Initialize() error = %v, want ErrConfig", err)
			}
		})
	}
}

func TestWechatProvider_Sign(t *testing.T) {
	p := newTestProvider(t, "")

	params := map[string]string{
		"trade_no": "T1",
		"amount":   "100",
	}

	// MD5("amount=100&trade_no=T1&key=k") upper-cased
	want := "CC649BAD2AA03A387D64AC4CAD18838A"
	if got := p.sign(params); got != want {
		t.Errorf("sign() = %s, want %s", got, want)
	}

	// The sign field itself never participates
	params[provider.ParamSign] = want
	if got := p.sign(params); got != want {
		t.Errorf("sign() with sign field present = %s, want %s", got, want)
	}
}

func TestWechatProvider_Pay(t *testing.T) {
	var posted map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var err error
		posted, err = decodeXML(body)
		if err != nil {
			t.Errorf("request body not decodable: %v", err)
		}
		w.Write(encodeXML(map[string]string{
			"return_code": "SUCCESS",
			"result_code": "SUCCESS",
			"code_url":    "weixin://wxpay/bizpayurl?pr=abc123",
		}))
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL)

	result, err := p.Pay(context.Background(), provider.PaymentOrder{
		TradeNo:     "T20240101",
		TotalAmount: 5000,
		NotifyURL:   "https://merchant.example/notify",
		ClientIP:    "203.0.113.7",
	})
	if err != nil {
		t.Fatalf("Pay() error = %v", err)
	}
	if result.Type != provider.PayResultTypeQRCode {
		t.Fatalf("Pay() type = %s, want qrcode", result.Type)
	}
	if result.QRCode != "weixin://wxpay/bizpayurl?pr=abc123" {
		t.Errorf("QRCode = %q", result.QRCode)
	}

	// Minor units pass through unchanged
	if posted["total_fee"] != "5000" {
		t.Errorf("total_fee = %q, want %q", posted["total_fee"], "5000")
	}
	if posted["out_trade_no"] != "T20240101" || posted["trade_type"] != "NATIVE" {
		t.Errorf("unexpected request params: %v", posted)
	}
	if posted["spbill_create_ip"] != "203.0.113.7" {
		t.Errorf("spbill_create_ip = %q", posted["spbill_create_ip"])
	}
	if len(posted["nonce_str"]) != 32 {
		t.Errorf("nonce_str length = %d, want 32", len(posted["nonce_str"]))
	}

	// The request must carry a valid signature over its own fields
	if posted[provider.ParamSign] != p.sign(posted) {
		t.Error("request signature does not verify")
	}
}

func TestWechatProvider_Pay_ProviderRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(encodeXML(map[string]string{
			"return_code":  "SUCCESS",
			"result_code":  "FAIL",
			"err_code_des": "ORDERPAID",
		}))
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL)
	_, err := p.Pay(context.Background(), provider.PaymentOrder{
		TradeNo:     "T1",
		TotalAmount: 100,
		NotifyURL:   "https://merchant.example/notify",
	})
	if !errors.Is(err, provider.ErrProviderRejected) {
		t.Errorf("Pay() error = %v, want ErrProviderRejected", err)
	}
}

func TestWechatProvider_Pay_MissingCodeURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(encodeXML(map[string]string{
			"return_code": "SUCCESS",
			"result_code": "SUCCESS",
		}))
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL)
	_, err := p.Pay(context.Background(), provider.PaymentOrder{
		TradeNo:     "T1",
		TotalAmount: 100,
		NotifyURL:   "https://merchant.example/notify",
	})
	if !errors.Is(err, provider.ErrParse) {
		t.Errorf("Pay() error = %v, want ErrParse", err)
	}
}

func TestWechatProvider_Pay_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL)
	_, err := p.Pay(context.Background(), provider.PaymentOrder{
		TradeNo:     "T1",
		TotalAmount: 100,
		NotifyURL:   "https://merchant.example/notify",
	})
	if !errors.Is(err, provider.ErrNetwork) {
		t.Errorf("Pay() error = %v, want ErrNetwork", err)
	}
}

func TestWechatProvider_Notify(t *testing.T) {
	p := newTestProvider(t, "")

	makeBody := func(mutate func(map[string]string)) []byte {
		params := map[string]string{
			"return_code":    "SUCCESS",
			"result_code":    "SUCCESS",
			"out_trade_no":   "T20240101",
			"transaction_id": "4200000000202401011234567890",
			"total_fee":      "5000",
			"appid":          "wx1234567890",
			"mch_id":         "1900000000",
		}
		params[provider.ParamSign] = p.sign(params)
		if mutate != nil {
			mutate(params)
		}
		return encodeXML(params)
	}

	tests := []struct {
		name   string
		body   []byte
		wantOK bool
	}{
		{
			name:   "Verified success",
			body:   makeBody(nil),
			wantOK: true,
		},
		{
			name: "Tampered amount rejected",
			body: makeBody(func(m map[string]string) {
				m["total_fee"] = "1"
			}),
			wantOK: false,
		},
		{
			name: "Missing signature rejected",
			body: makeBody(func(m map[string]string) {
				delete(m, provider.ParamSign)
			}),
			wantOK: false,
		},
		{
			name: "Failed result code rejected even with valid signature",
			body: func() []byte {
				params := map[string]string{
					"return_code":  "SUCCESS",
					"result_code":  "FAIL",
					"out_trade_no": "T20240101",
				}
				params[provider.ParamSign] = p.sign(params)
				return encodeXML(params)
			}(),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.Notify(context.Background(), provider.NotifyRequest{Body: tt.body})
			if err != nil {
				t.Fatalf("Notify() error = %v", err)
			}
			if result.OK != tt.wantOK {
				t.Errorf("Notify() OK = %v, want %v", result.OK, tt.wantOK)
			}
			if tt.wantOK && (result.TradeNo != "T20240101" || result.CallbackNo != "4200000000202401011234567890") {
				t.Errorf("unexpected result: %+v", result)
			}
		})
	}
}

func TestWechatProvider_Notify_BadBody(t *testing.T) {
	p := newTestProvider(t, "")

	if _, err := p.Notify(context.Background(), provider.NotifyRequest{}); !errors.Is(err, provider.ErrParse) {
		t.Errorf("empty body = %v, want ErrParse", err)
	}

	if _, err := p.Notify(context.Background(), provider.NotifyRequest{Body: []byte("<xml></xml>")}); !errors.Is(err, provider.ErrParse) {
		t.Errorf("empty document = %v, want ErrParse", err)
	}
}
